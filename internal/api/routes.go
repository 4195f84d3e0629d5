package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
)

type routeOptions struct {
	middleware    []mux.MiddlewareFunc
	apiMiddleware []mux.MiddlewareFunc
}

// RouteOption configures optional route behavior.
type RouteOption func(*routeOptions)

// WithOTelMiddleware adds OpenTelemetry HTTP instrumentation middleware.
// Liveness checks are not traced.
func WithOTelMiddleware(serviceName string) RouteOption {
	return func(o *routeOptions) {
		o.middleware = append(o.middleware, otelmux.Middleware(serviceName,
			otelmux.WithFilter(func(r *http.Request) bool {
				return r.URL.Path != "/health" &&
					r.URL.Path != "/api/health"
			}),
		))
	}
}

// WithRateLimiter adds rate limiting middleware to the /api routes.
func WithRateLimiter(middleware func(http.Handler) http.Handler) RouteOption {
	return func(o *routeOptions) {
		o.apiMiddleware = append(o.apiMiddleware, middleware)
	}
}

// SetupRoutes configures the HTTP routes: the badge page on /, the
// health-check endpoint under /api and liveness checks.
func SetupRoutes(handlers *Handlers, opts ...RouteOption) *mux.Router {
	var o routeOptions
	for _, opt := range opts {
		opt(&o)
	}

	router := mux.NewRouter()
	router.Use(o.middleware...)
	router.Use(requestIDMiddleware)
	router.Use(loggingMiddleware)
	router.Use(recoveryMiddleware)

	api := router.PathPrefix("/api").Subrouter()
	// /api/health-check redirects to the canonical trailing-slash path
	api.StrictSlash(true)
	api.Use(o.apiMiddleware...)
	api.HandleFunc("/health-check/", handlers.HealthCheck).Methods(http.MethodGet)
	api.HandleFunc("/health", handlers.Liveness).Methods(http.MethodGet)
	api.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowedHandler)

	router.HandleFunc("/health", handlers.Liveness).Methods(http.MethodGet)
	router.HandleFunc("/", handlers.Page).Methods(http.MethodGet)

	router.NotFoundHandler = http.HandlerFunc(notFoundHandler)
	router.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowedHandler)

	return router
}
