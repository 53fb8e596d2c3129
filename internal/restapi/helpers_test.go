package restapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"transitcatalogue.org/internal/app"
	"transitcatalogue.org/internal/appconf"
	"transitcatalogue.org/internal/clock"
	"transitcatalogue.org/internal/metrics"
	"transitcatalogue.org/internal/requests"
	"transitcatalogue.org/internal/router"
	"transitcatalogue.org/internal/search"
)

const testAPIKey = "TEST"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func loadTestDocument(t *testing.T) *requests.Document {
	t.Helper()
	f, err := os.Open(filepath.Join("..", "requests", "testdata", "basic.json"))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	doc, err := requests.Decode(f)
	require.NoError(t, err)
	return doc
}

// createTestApi serves the basic two-bus network with a metrics registry and
// a populated search index.
func createTestApi(t *testing.T) *RestAPI {
	t.Helper()
	return createTestApiWithConfig(t, appconf.Config{
		Env:            appconf.Test,
		ApiKeys:        []string{testAPIKey},
		RateLimit:      100,
		RequestTimeout: 5 * time.Second,
	})
}

func createTestApiWithConfig(t *testing.T, cfg appconf.Config) *RestAPI {
	t.Helper()
	ctx := context.Background()
	m := metrics.New()

	network, err := requests.Build(loadTestDocument(t), testLogger(), router.WithObserver(m))
	require.NoError(t, err)

	idx, err := search.NewIndex(ctx, testLogger())
	require.NoError(t, err)
	require.NoError(t, idx.Build(ctx, network.Catalogue()))

	a := &app.Application{
		Config:      cfg,
		Logger:      testLogger(),
		Clock:       clock.NewMockClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)),
		Metrics:     m,
		Network:     network,
		SearchIndex: idx,
	}
	api := NewRestAPI(a)
	t.Cleanup(func() {
		api.Shutdown()
		a.Close()
	})
	return api
}

// serveAPI starts a test server over the complete handler chain.
func serveAPI(t *testing.T, api *RestAPI) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(api.Handler())
	t.Cleanup(server.Close)
	return server
}

// getJSON fetches url and decodes the body into a generic map.
func getJSON(t *testing.T, url string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp, body
}

// collectStrings extracts the string field key from every object in list.
func collectStrings(t *testing.T, list any, key string) []string {
	t.Helper()
	items, ok := list.([]any)
	require.True(t, ok, "expected a JSON array, got %T", list)

	var values []string
	for i, item := range items {
		object, ok := item.(map[string]any)
		require.True(t, ok, "item %d is not an object", i)
		value, ok := object[key].(string)
		require.True(t, ok, "item %d key %q is not a string", i, key)
		values = append(values, value)
	}
	return values
}
