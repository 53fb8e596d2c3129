package restapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"transitcatalogue.org/internal/logging"
)

// ErrorResponse is the body of every non-2xx JSON answer.
type ErrorResponse struct {
	Code int    `json:"code"`
	Text string `json:"text"`
}

func setJSONResponseType(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
}

func (api *RestAPI) sendJSON(w http.ResponseWriter, r *http.Request, code int, body any) {
	setJSONResponseType(w)
	w.WriteHeader(code)

	enc := json.NewEncoder(w)
	// map documents carry SVG markup
	enc.SetEscapeHTML(false)
	if err := enc.Encode(body); err != nil {
		// headers are gone, so only log
		logging.LogError(api.logger(), "failed to encode response", err)
	}
}

func (api *RestAPI) sendResponse(w http.ResponseWriter, r *http.Request, body any) {
	api.sendJSON(w, r, http.StatusOK, body)
}

func (api *RestAPI) sendError(w http.ResponseWriter, r *http.Request, code int, message string) {
	api.sendJSON(w, r, code, ErrorResponse{Code: code, Text: message})
}

func (api *RestAPI) sendNotFound(w http.ResponseWriter, r *http.Request) {
	api.sendError(w, r, http.StatusNotFound, "resource not found")
}

func (api *RestAPI) sendUnauthorized(w http.ResponseWriter, r *http.Request) {
	api.sendError(w, r, http.StatusUnauthorized, "permission denied")
}

func (api *RestAPI) badRequestResponse(w http.ResponseWriter, r *http.Request, message string) {
	api.sendError(w, r, http.StatusBadRequest, message)
}

func (api *RestAPI) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	logging.LogError(api.logger(), "request failed", err,
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("request_id", GetRequestID(r.Context())))
	api.sendError(w, r, http.StatusInternalServerError, "internal server error")
}

func (api *RestAPI) logger() *slog.Logger {
	if api.Application == nil {
		return nil
	}
	return api.Logger
}
