package webui

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"transitcatalogue.org/internal/app"
	"transitcatalogue.org/internal/appconf"
	"transitcatalogue.org/internal/requests"
)

const debugNetwork = `{
  "base_requests": [
    {"type": "Stop", "name": "Harbour", "latitude": 43.59, "longitude": 39.72, "road_distances": {"Station": 1200}},
    {"type": "Stop", "name": "Station", "latitude": 43.58, "longitude": 39.73, "road_distances": {}},
    {"type": "Bus", "name": "14", "stops": ["Harbour", "Station"], "is_roundtrip": false}
  ],
  "routing_settings": {"bus_wait_time": 3, "bus_velocity": 25},
  "stat_requests": []
}`

func newDebugUI(t *testing.T, env appconf.Environment) *WebUI {
	t.Helper()
	doc, err := requests.Decode(strings.NewReader(debugNetwork))
	require.NoError(t, err)
	network, err := requests.Build(doc, nil)
	require.NoError(t, err)

	return &WebUI{Application: &app.Application{
		Config:  appconf.Config{Env: env, ApiKeys: []string{"secret-key"}},
		Network: network,
	}}
}

func TestDebugIndexHandler_ProductionReturns404(t *testing.T) {
	webUI := newDebugUI(t, appconf.Production)

	rr := httptest.NewRecorder()
	webUI.debugIndexHandler(rr, httptest.NewRequest(http.MethodGet, "/debug?dataType=stops", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDebugIndexHandler_DataTypes(t *testing.T) {
	webUI := newDebugUI(t, appconf.Development)

	tests := []struct {
		dataType  string
		wantTitle string
		wantText  string
	}{
		{"stops", "Catalogue - Stops", "Harbour"},
		{"buses", "Catalogue - Buses", "IsRoundtrip"},
		{"routing_settings", "Routing Settings", "BusVelocity"},
		{"render_settings", "Render Settings", "nil"},
		{"config", "Service Configuration", "Env"},
		{"", "Choose a data type", "choose one of"},
	}
	for _, tt := range tests {
		t.Run(tt.dataType, func(t *testing.T) {
			rr := httptest.NewRecorder()
			webUI.debugIndexHandler(rr, httptest.NewRequest(http.MethodGet, "/debug?dataType="+tt.dataType, nil))

			require.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
			body := rr.Body.String()
			assert.Contains(t, body, "<title>"+tt.wantTitle+"</title>")
			assert.Contains(t, body, tt.wantText)
			assert.NotContains(t, body, "secret-key")
		})
	}
}

func TestDebugIndexHandler_NoNetwork(t *testing.T) {
	webUI := &WebUI{Application: &app.Application{Config: appconf.Config{Env: appconf.Test}}}

	rr := httptest.NewRecorder()
	webUI.debugIndexHandler(rr, httptest.NewRequest(http.MethodGet, "/debug", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestSetWebUIRoutes(t *testing.T) {
	webUI := newDebugUI(t, appconf.Test)
	mux := http.NewServeMux()
	webUI.SetWebUIRoutes(mux)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/debug?dataType=stops", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}
