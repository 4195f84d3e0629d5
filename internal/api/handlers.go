package api

import (
	"bytes"
	"context"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"healthbadge/internal/client"
	"healthbadge/internal/models"
	"healthbadge/internal/version"
	"healthbadge/internal/view"
)

const defaultRenderTimeout = 5 * time.Second

// Handlers contains HTTP handlers for the health-check API and badge page
type Handlers struct {
	fetcher       client.Fetcher
	app           models.AppConfig
	templates     *template.Template
	renderTimeout time.Duration
	build         version.Info
}

// HandlerOption configures optional Handlers dependencies.
type HandlerOption func(*Handlers)

// WithTemplates sets the templates the badge page renders with. Without it
// the view falls back to its embedded templates.
func WithTemplates(tmpl *template.Template) HandlerOption {
	return func(h *Handlers) {
		h.templates = tmpl
	}
}

// WithRenderTimeout bounds how long the page waits for the fetch to settle.
func WithRenderTimeout(d time.Duration) HandlerOption {
	return func(h *Handlers) {
		if d > 0 {
			h.renderTimeout = d
		}
	}
}

// WithBuildInfo overrides the build information reported on /health.
func WithBuildInfo(info version.Info) HandlerOption {
	return func(h *Handlers) {
		h.build = info
	}
}

// NewHandlers creates a new handlers instance. fetcher feeds the badge page;
// app is what /api/health-check/ reports.
func NewHandlers(fetcher client.Fetcher, app models.AppConfig, opts ...HandlerOption) *Handlers {
	h := &Handlers{
		fetcher:       fetcher,
		app:           app,
		renderTimeout: defaultRenderTimeout,
		build:         version.GetInfo(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HealthCheck reports the configured environment and version
// GET /api/health-check/
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeJSONResponse(w, http.StatusOK, models.NewHealthStatus(h.app))
}

// Liveness reports that the process is serving requests
// GET /health, GET /api/health
func (h *Handlers) Liveness(w http.ResponseWriter, r *http.Request) {
	response := models.NewHealthCheckResponse(models.StatusHealthy)
	response.Version = h.build.Version
	response.Uptime = h.build.Uptime().String()
	response.AddComponent("api", models.StatusHealthy, "API is operational")

	h.writeJSONResponse(w, http.StatusOK, response)
}

// Page mounts a health badge view, gives its fetch up to the render timeout
// to settle and renders whichever state it reached.
// GET /
func (h *Handlers) Page(w http.ResponseWriter, r *http.Request) {
	v := view.New(h.fetcher, h.templates)
	// an in-process fetch is rate limited as this visitor, not as loopback
	v.Mount(client.ContextWithCaller(r.Context(), r))
	defer v.Unmount()

	ctx, cancel := context.WithTimeout(r.Context(), h.renderTimeout)
	defer cancel()
	v.Wait(ctx)

	// freeze the state so the log line and the page agree
	v.Unmount()
	state := v.State()

	logger := slog.With("request_id", RequestIDFromContext(r.Context()), "phase", state.Phase.String())
	switch state.Phase {
	case view.Failed:
		logger.Warn("Health check failed", "error", state.Message)
	case view.Loading:
		logger.Warn("Health check did not settle before render", "render_timeout", h.renderTimeout)
	case view.Loaded:
		if state.Status != nil {
			logger = logger.With("environment", state.Status.Environment, "version", state.Status.Version)
		}
		logger.Debug("Health check loaded")
	}

	var buf bytes.Buffer
	if err := v.RenderPage(&buf); err != nil {
		logger.Error("Page render failed", "error", err)
		h.writeErrorResponse(w, r, http.StatusInternalServerError, models.ErrorCodeInternalError, "Failed to render page")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		logger.Debug("Page write interrupted", "error", err)
	}
}

// writeJSONResponse writes a JSON response
func (h *Handlers) writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	writeJSON(w, statusCode, data)
}

// writeErrorResponse writes an error response tagged with the request ID
func (h *Handlers) writeErrorResponse(w http.ResponseWriter, r *http.Request, statusCode int, errorCode, message string) {
	writeError(w, r, statusCode, errorCode, message)
}

func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// headers are already out; nothing left to send
		slog.Error("Error encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, statusCode int, errorCode, message string) {
	errorResp := models.NewErrorResponse(message, errorCode)
	errorResp.RequestID = RequestIDFromContext(r.Context())
	writeJSON(w, statusCode, errorResp)
}
