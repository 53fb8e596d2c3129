package webui

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/davecgh/go-spew/spew"
	"transitcatalogue.org/internal/appconf"
)

//go:embed debug_index.html
var templateFS embed.FS

var debugTemplate = template.Must(template.ParseFS(templateFS, "debug_index.html"))

var debugDataTypes = []string{"stops", "buses", "routing_settings", "render_settings", "config"}

type debugData struct {
	Title     string
	Pre       string
	DataTypes []string
}

func writeDebugData(w http.ResponseWriter, title string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	page := debugData{
		Title:     title,
		Pre:       spew.Sdump(data),
		DataTypes: debugDataTypes,
	}
	if err := debugTemplate.Execute(w, page); err != nil {
		slog.Error("failed to execute debug template", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// debugIndexHandler dumps part of the loaded network. It does not exist in production.
func (webUI *WebUI) debugIndexHandler(w http.ResponseWriter, r *http.Request) {
	if webUI.Application == nil || webUI.Config.Env == appconf.Production {
		http.NotFound(w, r)
		return
	}
	if webUI.Network == nil {
		http.Error(w, "network not loaded", http.StatusServiceUnavailable)
		return
	}

	var data any
	var title string

	switch r.URL.Query().Get("dataType") {
	case "stops":
		data = webUI.Network.Catalogue().Stops()
		title = "Catalogue - Stops"
	case "buses":
		data = webUI.Network.Catalogue().SortedBuses()
		title = "Catalogue - Buses"
	case "routing_settings":
		if rt := webUI.Network.Router(); rt != nil {
			data = rt.Settings()
		}
		title = "Routing Settings"
	case "render_settings":
		if rd := webUI.Network.Renderer(); rd != nil {
			data = rd.Settings()
		}
		title = "Render Settings"
	case "config":
		cfg := webUI.Config
		cfg.ApiKeys = nil
		data = cfg
		title = "Service Configuration"
	default:
		data = map[string][]string{"choose one of": debugDataTypes}
		title = "Choose a data type"
	}

	writeDebugData(w, title, data)
}
