package restapi

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	"transitcatalogue.org/internal/requests"
	"transitcatalogue.org/internal/router"
)

const maxDocumentBytes = 10 << 20

// processRequestsHandler answers a whole request document against a fresh
// catalogue built from the document itself.
func (api *RestAPI) processRequestsHandler(w http.ResponseWriter, r *http.Request) {
	doc, err := requests.Decode(http.MaxBytesReader(w, r.Body, maxDocumentBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			api.sendError(w, r, http.StatusRequestEntityTooLarge, "request document too large")
			return
		}
		api.badRequestResponse(w, r, err.Error())
		return
	}

	var opts []router.Option
	if api.Metrics != nil {
		opts = append(opts, router.WithObserver(api.Metrics))
	}
	responses, err := requests.Process(r.Context(), doc, api.logger(), opts...)
	switch {
	case err == nil:
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		api.sendError(w, r, http.StatusServiceUnavailable, "request timed out")
		return
	default:
		api.sendError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	var buf bytes.Buffer
	if err := requests.Encode(&buf, responses); err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}
	setJSONResponseType(w)
	_, _ = w.Write(buf.Bytes())
}
