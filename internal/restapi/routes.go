package restapi

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetRoutes registers every endpoint on mux. /healthz and /metrics need no
// API key; everything under /api does.
func (api *RestAPI) SetRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", api.healthHandler)
	if api.Application != nil && api.Metrics != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(api.Metrics.Registry, promhttp.HandlerOpts{}))
	}

	mux.Handle("POST /api/requests", api.protected(noCache, api.processRequestsHandler))
	mux.Handle("GET /api/buses/{name}", api.protected(networkCacheSeconds, api.busHandler))
	mux.Handle("GET /api/buses/{name}/shape", api.protected(networkCacheSeconds, api.busShapeHandler))
	mux.Handle("GET /api/stops/nearby", api.protected(networkCacheSeconds, api.nearbyStopsHandler))
	mux.Handle("GET /api/stops/{name}", api.protected(networkCacheSeconds, api.stopHandler))
	mux.Handle("GET /api/route", api.protected(networkCacheSeconds, api.routeHandler))
	mux.Handle("GET /api/search", api.protected(networkCacheSeconds, api.searchHandler))
	mux.Handle("GET /api/map", api.protected(networkCacheSeconds, api.mapHandler))
}

// protected applies, outermost first, rate limiting, the API key check, the
// request deadline and Cache-Control.
func (api *RestAPI) protected(cacheSeconds int, h http.HandlerFunc) http.Handler {
	var handler http.Handler = h
	handler = CacheControlMiddleware(cacheSeconds, handler)
	handler = TimeoutMiddleware(api.Config.RequestTimeout)(handler)
	handler = api.requireAPIKey(handler)
	if api.rateLimiter != nil {
		handler = api.rateLimiter.Handler()(handler)
	}
	return handler
}
