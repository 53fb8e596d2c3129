package restapi

import (
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"transitcatalogue.org/internal/geo"
)

func TestBusHandler(t *testing.T) {
	server := serveAPI(t, createTestApi(t))

	resp, body := getJSON(t, server.URL+"/api/buses/297?key="+testAPIKey)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 5990.0, body["route_length"])
	assert.Equal(t, 4.0, body["stop_count"])
	assert.Equal(t, 3.0, body["unique_stop_count"])
	assert.InDelta(t, 1.42963, body["curvature"], 1e-5)

	resp, body = getJSON(t, server.URL+"/api/buses/751?key="+testAPIKey)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not found", body["error_message"])
}

func TestStopHandler(t *testing.T) {
	server := serveAPI(t, createTestApi(t))

	tests := []struct {
		name       string
		stop       string
		wantStatus int
		wantBuses  []any
	}{
		{"served stop", "Universam", http.StatusOK, []any{"297", "635"}},
		{"stop name with space", "Biryulyovo Zapadnoye", http.StatusOK, []any{"297"}},
		{"unknown stop", "Tolstopaltsevo", http.StatusNotFound, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := getJSON(t, server.URL+"/api/stops/"+url.PathEscape(tt.stop)+"?key="+testAPIKey)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantBuses != nil {
				assert.Equal(t, tt.wantBuses, body["buses"])
			}
		})
	}
}

func TestRouteHandler(t *testing.T) {
	server := serveAPI(t, createTestApi(t))

	route := func(from, to string) string {
		q := url.Values{"key": {testAPIKey}}
		if from != "" {
			q.Set("from", from)
		}
		if to != "" {
			q.Set("to", to)
		}
		return server.URL + "/api/route?" + q.Encode()
	}

	resp, body := getJSON(t, route("Biryulyovo Zapadnoye", "Universam"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.InDelta(t, 11.235, body["total_time"], 1e-9)

	items, ok := body["items"].([]any)
	require.True(t, ok)
	require.Len(t, items, 2)
	wait := items[0].(map[string]any)
	assert.Equal(t, "Wait", wait["type"])
	assert.Equal(t, "Biryulyovo Zapadnoye", wait["stop_name"])
	ride := items[1].(map[string]any)
	assert.Equal(t, "Bus", ride["type"])
	assert.Equal(t, "297", ride["bus"])
	assert.Equal(t, 2.0, ride["span_count"])

	tests := []struct {
		name       string
		from, to   string
		wantStatus int
	}{
		{"unknown destination", "Universam", "Nowhere", http.StatusNotFound},
		{"missing to", "Universam", "", http.StatusBadRequest},
		{"missing from", "", "Universam", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := getJSON(t, route(tt.from, tt.to))
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestBusShapeHandler(t *testing.T) {
	api := createTestApi(t)
	server := serveAPI(t, api)

	resp, body := getJSON(t, server.URL+"/api/buses/635/shape?key="+testAPIKey)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "635", body["name"])
	assert.Equal(t, 5.0, body["stop_count"])

	points, err := geo.DecodePath(body["points"].(string))
	require.NoError(t, err)
	require.Len(t, points, 5)
	assert.InDelta(t, 55.592028, points[0].Lat, 1e-5)
	assert.InDelta(t, 37.603938, points[2].Lng, 1e-5)
	assert.InDelta(t, points[0].Lat, points[4].Lat, 1e-5)
	assert.InDelta(t, points[0].Lng, points[4].Lng, 1e-5)

	resp, _ = getJSON(t, server.URL+"/api/buses/751/shape?key="+testAPIKey)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestNearbyStopsHandler(t *testing.T) {
	server := serveAPI(t, createTestApi(t))

	resp, body := getJSON(t, server.URL+"/api/stops/nearby?lat=55.587655&lon=37.645687&radius=100&key="+testAPIKey)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"Universam"}, collectStrings(t, body["stops"], "name"))

	resp, body = getJSON(t, server.URL+"/api/stops/nearby?lat=55.587655&lon=37.645687&radius=5000&key="+testAPIKey)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	names := collectStrings(t, body["stops"], "name")
	require.Len(t, names, 4)
	assert.Equal(t, "Universam", names[0])

	tests := []struct {
		name  string
		query string
	}{
		{"missing lat", "lon=37.6"},
		{"bad lon", "lat=55.5&lon=east"},
		{"lat out of range", "lat=95&lon=37.6"},
		{"negative radius", "lat=55.5&lon=37.6&radius=-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := getJSON(t, server.URL+"/api/stops/nearby?"+tt.query+"&key="+testAPIKey)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestMapHandler(t *testing.T) {
	server := serveAPI(t, createTestApi(t))

	resp, err := http.Get(server.URL + "/api/map?key=" + testAPIKey)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(body), `<?xml version="1.0" encoding="UTF-8" ?>`))
	assert.Equal(t, 2, strings.Count(string(body), "<polyline"))
}

func TestNetworkHandlersWithoutNetwork(t *testing.T) {
	api := createTestApi(t)
	api.Network = nil
	server := serveAPI(t, api)

	resp, body := getJSON(t, server.URL+"/api/buses/297?key="+testAPIKey)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "network not loaded", body["text"])
}
