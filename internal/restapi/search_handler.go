package restapi

import (
	"net/http"
	"strconv"
	"strings"

	"transitcatalogue.org/internal/search"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 50
)

func (api *RestAPI) searchHandler(w http.ResponseWriter, r *http.Request) {
	if api.Application == nil || api.SearchIndex == nil {
		api.sendError(w, r, http.StatusServiceUnavailable, "search index not loaded")
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		api.badRequestResponse(w, r, "q is required")
		return
	}
	limit := defaultSearchLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			api.badRequestResponse(w, r, "invalid limit")
			return
		}
		limit = min(n, maxSearchLimit)
	}

	results, err := api.SearchIndex.Search(r.Context(), query, limit)
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}
	if results == nil {
		results = []search.Result{}
	}
	api.sendResponse(w, r, map[string]any{"results": results})
}
