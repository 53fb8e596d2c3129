package restapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
	"transitcatalogue.org/internal/app"
	"transitcatalogue.org/internal/clock"
)

const (
	anonymousClient   = "__no_key__"
	limiterIdleExpiry = 10 * time.Minute
	limiterSweepEvery = 5 * time.Minute
)

// rateLimitClient is one API key's limiter and when it was last used.
type rateLimitClient struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nanoseconds
}

// RateLimitMiddleware limits requests per API key.
type RateLimitMiddleware struct {
	mu         sync.RWMutex
	limiters   map[string]*rateLimitClient
	rateLimit  rate.Limit
	burstSize  int
	exemptKeys map[string]bool
	clock      clock.Clock

	sweep    *time.Ticker
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewRateLimitMiddleware allows requestsPerInterval requests per interval for
// each key, with bursts of the same size. Zero blocks every request; a
// negative value disables limiting.
func NewRateLimitMiddleware(requestsPerInterval int, interval time.Duration, exemptKeys []string, c clock.Clock) *RateLimitMiddleware {
	var limit rate.Limit
	switch {
	case requestsPerInterval < 0:
		limit = rate.Inf
	case requestsPerInterval == 0:
		limit = 0
	default:
		limit = rate.Every(interval / time.Duration(requestsPerInterval))
	}

	exempt := make(map[string]bool)
	for _, key := range exemptKeys {
		if key = strings.TrimSpace(key); key != "" {
			exempt[key] = true
		}
	}

	rl := &RateLimitMiddleware{
		limiters:   make(map[string]*rateLimitClient),
		rateLimit:  limit,
		burstSize:  requestsPerInterval,
		exemptKeys: exempt,
		clock:      c,
		sweep:      time.NewTicker(limiterSweepEvery),
		stopChan:   make(chan struct{}),
	}
	go rl.sweepLoop()
	return rl
}

func (rl *RateLimitMiddleware) Handler() func(http.Handler) http.Handler {
	return rl.limit
}

// getLimiter returns key's limiter, creating it on first use.
func (rl *RateLimitMiddleware) getLimiter(key string) *rate.Limiter {
	now := rl.clock.Now().UnixNano()

	rl.mu.RLock()
	client, ok := rl.limiters[key]
	rl.mu.RUnlock()
	if ok {
		client.lastSeen.Store(now)
		return client.limiter
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if client, ok := rl.limiters[key]; ok {
		client.lastSeen.Store(now)
		return client.limiter
	}
	client = &rateLimitClient{limiter: rate.NewLimiter(rl.rateLimit, rl.burstSize)}
	client.lastSeen.Store(now)
	rl.limiters[key] = client
	return client.limiter
}

func (rl *RateLimitMiddleware) limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := app.RequestAPIKey(r)
		if key == "" {
			key = anonymousClient
		}

		if rl.exemptKeys[key] || rl.getLimiter(key).AllowN(rl.clock.Now(), 1) {
			next.ServeHTTP(w, r)
			return
		}
		rl.sendRateLimitExceeded(w)
	})
}

func (rl *RateLimitMiddleware) sendRateLimitExceeded(w http.ResponseWriter) {
	retryAfter := time.Second
	switch rl.rateLimit {
	case 0:
		retryAfter = time.Hour
	case rate.Inf:
	default:
		retryAfter = max(time.Second, time.Duration(float64(time.Second)/float64(rl.rateLimit)))
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.burstSize))
	w.Header().Set("X-RateLimit-Remaining", "0")
	w.WriteHeader(http.StatusTooManyRequests)

	body := ErrorResponse{Code: http.StatusTooManyRequests, Text: "rate limit exceeded, try again later"}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode rate limit response", "error", err)
	}
}

// sweepOnce drops limiters idle for longer than limiterIdleExpiry.
func (rl *RateLimitMiddleware) sweepOnce() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.clock.Now()
	for key, client := range rl.limiters {
		lastSeen := client.lastSeen.Load()
		if lastSeen == 0 {
			continue
		}
		if now.Sub(time.Unix(0, lastSeen)) > limiterIdleExpiry {
			delete(rl.limiters, key)
		}
	}
}

func (rl *RateLimitMiddleware) sweepLoop() {
	for {
		select {
		case <-rl.sweep.C:
			rl.sweepOnce()
		case <-rl.stopChan:
			return
		}
	}
}

// Stop ends the sweep goroutine. It is safe to call more than once.
func (rl *RateLimitMiddleware) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.stopChan)
		rl.sweep.Stop()
	})
}

func (rl *RateLimitMiddleware) trackedKeys() int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	return len(rl.limiters)
}
