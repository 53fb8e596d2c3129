// Package webui serves the debug pages and static assets next to the API.
package webui

import (
	"net/http"

	"transitcatalogue.org/internal/app"
)

// WebUI serves HTML pages backed by the loaded network.
type WebUI struct {
	*app.Application
	// StaticDir holds the files served under /static/. Defaults to "./public".
	StaticDir string
}

func (webUI *WebUI) SetWebUIRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /debug", webUI.debugIndexHandler)
	mux.HandleFunc("GET /static/", webUI.staticHandler)
}
