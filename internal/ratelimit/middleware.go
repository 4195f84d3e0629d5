package ratelimit

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"healthbadge/internal/models"
)

type middlewareOptions struct {
	resolver *IPResolver
}

// MiddlewareOption configures Middleware.
type MiddlewareOption func(*middlewareOptions)

// WithIPResolver keys requests by res instead of the loopback-only default.
func WithIPResolver(res *IPResolver) MiddlewareOption {
	return func(o *middlewareOptions) {
		if res != nil {
			o.resolver = res
		}
	}
}

// Middleware rejects requests over the limit with 429 and a JSON
// ErrorResponse. Every response carries X-RateLimit-Limit, -Remaining and
// -Reset.
func Middleware(limiter Limiter, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	o := middlewareOptions{resolver: defaultResolver}
	for _, opt := range opts {
		opt(&o)
	}
	resolver := o.resolver

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := resolver.ClientIP(r)
			allowed, info := limiter.Allow(key)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetAt.Unix(), 10))

			if !allowed {
				retryAfter := int(info.RetryAfter.Seconds()) + 1
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(models.NewErrorResponse("Rate limit exceeded", models.ErrorCodeRateLimitExceeded))

				slog.Warn("Rate limit exceeded", "client", key, "path", r.URL.Path, "retry_after", retryAfter)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
