package ratelimit

import (
	"net/http"
	"strconv"
	"time"

	"github.com/garsonhq/backend-garson/internal/common"
)

// Config derives the rate limit key and thresholds per request.
type Config struct {
	Key    func(*http.Request) string
	Window time.Duration
	Max    int
}

// Handler enforces the limit before delegating to the next handler. Limiter
// errors fail open so a Redis outage never blocks the floor.
type Handler struct {
	Limiter SlidingWindow
	Config  Config
	OnError func(error)
}

// Middleware implements the chi middleware contract.
func (h Handler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Config.Key == nil {
			next.ServeHTTP(w, r)
			return
		}
		key := h.Config.Key(r)
		allowed, remaining, resetAt, err := h.Limiter.Allow(r.Context(), key, h.Config.Window, h.Config.Max)
		if err != nil {
			if h.OnError != nil {
				h.OnError(err)
			}
			next.ServeHTTP(w, r)
			return
		}

		headers := w.Header()
		headers.Set("X-RateLimit-Limit", strconv.Itoa(h.Config.Max))
		headers.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		headers.Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

		if !allowed {
			retryAfter := int(time.Until(resetAt).Seconds())
			if retryAfter < 0 {
				retryAfter = 0
			}
			headers.Set("Retry-After", strconv.Itoa(retryAfter))
			common.JSONError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ByClientIP keys the limit on the caller's resolved IP address.
func ByClientIP(r *http.Request) string {
	return common.ClientIP(r)
}

// ByWaiter keys the limit on the authenticated waiter, falling back to IP.
func ByWaiter(r *http.Request) string {
	if id, ok := common.WaiterID(r.Context()); ok {
		return "waiter:" + id
	}
	return "ip:" + common.ClientIP(r)
}
