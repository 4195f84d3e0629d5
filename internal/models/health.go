// Package models - health-check payload shared by the API, client and view.
package models

// Environment names reported by the health-check endpoint.
const (
	EnvironmentDev  = "DEV"
	EnvironmentProd = "PROD"
)

// StatusOK is the status value the health-check endpoint reports while the
// service is able to answer requests.
const StatusOK = "ok"

// HealthStatus is the body of GET /api/health-check/.
//
// The client hands it to callers exactly as decoded; no field is required
// and unknown fields are dropped.
type HealthStatus struct {
	Environment string `json:"environment"`
	Version     string `json:"version"`
	Status      string `json:"status"`
}

// NewHealthStatus builds the payload the service reports for the given
// application settings.
func NewHealthStatus(app AppConfig) *HealthStatus {
	return &HealthStatus{
		Status:      StatusOK,
		Environment: app.Environment,
		Version:     app.Version,
	}
}

// IsProduction reports whether the payload comes from the production
// environment. The comparison is exact; "prod" is not production.
func (h *HealthStatus) IsProduction() bool {
	return h != nil && h.Environment == EnvironmentProd
}
