package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/chris/escrow-marketplace/pkg/ratelimit"
)

// RateLimit applies limiter to mutating requests, keyed by the acting user
// or, for anonymous requests, the remote address. Limiter failures let the
// request through.
func RateLimit(limiter ratelimit.Limiter, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			key, ok := ActorFromContext(r.Context())
			if !ok {
				key = "ip:" + r.RemoteAddr
			}

			decision, err := limiter.Allow(r.Context(), key)
			if err != nil {
				logger.Warn("rate limiter unavailable, allowing request", "key", key, "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !decision.Allowed {
				retry := int(math.Ceil(decision.RetryAfter.Seconds()))
				if retry < 1 {
					retry = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				writeError(w, http.StatusTooManyRequests, "rate_limited", "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
