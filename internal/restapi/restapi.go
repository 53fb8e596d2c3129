// Package restapi serves the loaded transit network over HTTP.
package restapi

import (
	"net/http"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"transitcatalogue.org/internal/app"
	"transitcatalogue.org/internal/clock"
)

// Cache tiers, in seconds, for Cache-Control on successful responses.
const (
	networkCacheSeconds = 300
	noCache             = 0
)

// RestAPI holds the handlers and the per-key rate limiter.
type RestAPI struct {
	*app.Application
	rateLimiter *RateLimitMiddleware
}

// NewRestAPI creates a RestAPI. Shutdown must be called to stop the rate
// limiter's cleanup goroutine.
func NewRestAPI(a *app.Application) *RestAPI {
	var c clock.Clock = clock.RealClock{}
	if a.Clock != nil {
		c = a.Clock
	}
	return &RestAPI{
		Application: a,
		rateLimiter: NewRateLimitMiddleware(a.Config.RateLimit, time.Second, nil, c),
	}
}

// Handler returns the API routes wrapped in WithMiddleware.
func (api *RestAPI) Handler() http.Handler {
	mux := http.NewServeMux()
	api.SetRoutes(mux)
	return api.WithMiddleware(mux)
}

// WithMiddleware wraps h, outermost first, in request id, request logging,
// metrics and gzip middleware.
func (api *RestAPI) WithMiddleware(h http.Handler) http.Handler {
	h = gzhttp.GzipHandler(h)
	h = MetricsHandler(api.Metrics)(h)
	h = NewRequestLoggingMiddleware(api.Logger)(h)
	h = RequestIDMiddleware(h)
	return h
}

func (api *RestAPI) Shutdown() {
	if api.rateLimiter != nil {
		api.rateLimiter.Stop()
	}
}
