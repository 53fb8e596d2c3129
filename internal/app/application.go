package app

import (
	"log/slog"

	"transitcatalogue.org/internal/appconf"
	"transitcatalogue.org/internal/clock"
	"transitcatalogue.org/internal/logging"
	"transitcatalogue.org/internal/metrics"
	"transitcatalogue.org/internal/requests"
	"transitcatalogue.org/internal/search"
)

// Application holds the dependencies for our HTTP handlers, helpers,
// and middleware. The served network is loaded once at startup and is
// read-only afterwards.
type Application struct {
	Config      appconf.Config
	Logger      *slog.Logger
	Clock       clock.Clock
	Metrics     *metrics.Metrics
	Network     *requests.Handler
	SearchIndex *search.Index
}

// Ready reports whether the served network and its search index are loaded.
func (app *Application) Ready() bool {
	return app != nil && app.Network != nil && app.SearchIndex != nil && app.SearchIndex.DB != nil
}

// Close releases the search index and stops background metric collection.
func (app *Application) Close() {
	if app.Metrics != nil {
		app.Metrics.Shutdown()
	}
	if app.SearchIndex != nil {
		logging.SafeCloseWithLogging(app.SearchIndex, app.Logger, "search_index")
	}
}
