// Package models - API response types and error handling.
//
// Every JSON error leaving the service uses ErrorResponse so that callers
// can rely on a single shape regardless of the route that failed.
package models

import (
	"time"
)

// ErrorResponse is the JSON body written for every non-2xx answer.
type ErrorResponse struct {
	Error     string    `json:"error"`                // always "error"
	Message   string    `json:"message"`              // human-readable description
	Code      string    `json:"code,omitempty"`       // machine-readable code
	Timestamp time.Time `json:"timestamp"`            // when the error occurred
	RequestID string    `json:"request_id,omitempty"` // X-Request-ID of the failed request
}

// HealthCheckResponse is the liveness report served on /health.
type HealthCheckResponse struct {
	Status     string                     `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
	Version    string                     `json:"version,omitempty"`
	Uptime     string                     `json:"uptime,omitempty"`
	Components map[string]ComponentHealth `json:"components,omitempty"`
}

type ComponentHealth struct {
	Status    string    `json:"status"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Liveness status values.
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
	StatusDegraded  = "degraded"
)

// Error codes
const (
	ErrorCodeNotFound           = "NOT_FOUND"           // 404
	ErrorCodeInvalidRequest     = "INVALID_REQUEST"     // 400, 405
	ErrorCodeInternalError      = "INTERNAL_ERROR"      // 500
	ErrorCodeRateLimitExceeded  = "RATE_LIMIT_EXCEEDED" // 429
	ErrorCodeServiceUnavailable = "SERVICE_UNAVAILABLE" // 503
)

func NewErrorResponse(message string, code string) *ErrorResponse {
	return &ErrorResponse{
		Error:     "error",
		Message:   message,
		Code:      code,
		Timestamp: time.Now(),
	}
}

func NewHealthCheckResponse(status string) *HealthCheckResponse {
	return &HealthCheckResponse{
		Status:     status,
		Timestamp:  time.Now(),
		Components: make(map[string]ComponentHealth),
	}
}

func (h *HealthCheckResponse) AddComponent(name, status, message string) {
	h.Components[name] = ComponentHealth{
		Status:    status,
		Message:   message,
		Timestamp: time.Now(),
	}
}
