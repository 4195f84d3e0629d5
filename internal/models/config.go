// Package models - service configuration.
//
// Config is grouped by component (server, app, client, ui, security, logging,
// metrics, observability). Every section has defaults that work without a
// config file and a Validate method that rejects misconfiguration at start-up.
package models

import (
	"errors"
	"fmt"
	"net/netip"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
)

// Config is the root configuration structure.
type Config struct {
	Server        ServerConfig        `yaml:"server" json:"server"`               // HTTP listener
	App           AppConfig           `yaml:"app" json:"app"`                     // values reported by /api/health-check/
	Client        ClientConfig        `yaml:"client" json:"client"`               // upstream polled by the badge page
	UI            UIConfig            `yaml:"ui" json:"ui"`                       // badge page rendering
	Security      SecurityConfig      `yaml:"security" json:"security"`           // rate limiting
	Logging       LoggingConfig       `yaml:"logging" json:"logging"`             // slog output
	Metrics       MetricsConfig       `yaml:"metrics" json:"metrics"`             // Prometheus endpoint
	Observability ObservabilityConfig `yaml:"observability" json:"observability"` // OpenTelemetry
}

type ServerConfig struct {
	Port         int           `yaml:"port" json:"port"`
	Host         string        `yaml:"host" json:"host"`
	ReadTimeout  time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" json:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" json:"idle_timeout"`
	TLSEnabled   bool          `yaml:"tls_enabled" json:"tls_enabled"`
	TLSCertFile  string        `yaml:"tls_cert_file" json:"tls_cert_file"`
	TLSKeyFile   string        `yaml:"tls_key_file" json:"tls_key_file"`
}

// AppConfig holds what the service reports about itself.
type AppConfig struct {
	Environment string `yaml:"environment" json:"environment"`
	Version     string `yaml:"version" json:"version"`
}

// ClientConfig points the badge page at the service whose health it shows.
// Only the origin is configurable; the /api base path is fixed.
type ClientConfig struct {
	Origin  string        `yaml:"origin" json:"origin"`
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

type UIConfig struct {
	// RenderTimeout bounds how long the page waits for the fetch to settle
	// before rendering the loading state.
	RenderTimeout time.Duration `yaml:"render_timeout" json:"render_timeout"`
}

type SecurityConfig struct {
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`
}

type RateLimitConfig struct {
	Enabled           bool          `yaml:"enabled" json:"enabled"`
	RequestsPerMinute int           `yaml:"requests_per_minute" json:"requests_per_minute"`
	BurstSize         int           `yaml:"burst_size" json:"burst_size"`
	CleanupInterval   time.Duration `yaml:"cleanup_interval" json:"cleanup_interval"`
	// TrustedProxies lists CIDRs or addresses whose X-Forwarded-For and
	// X-Real-IP headers are believed. Loopback is always trusted.
	TrustedProxies []string `yaml:"trusted_proxies" json:"trusted_proxies"`
}

type LoggingConfig struct {
	Level    string `yaml:"level" json:"level"`
	Format   string `yaml:"format" json:"format"`
	Output   string `yaml:"output" json:"output"`
	FilePath string `yaml:"file_path" json:"file_path"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Path    string `yaml:"path" json:"path"`
	Port    int    `yaml:"port" json:"port"`
}

type ObservabilityConfig struct {
	ServiceName string        `yaml:"service_name" json:"service_name"`
	Tracing     TracingConfig `yaml:"tracing" json:"tracing"`
}

type TracingConfig struct {
	Enabled      bool    `yaml:"enabled" json:"enabled"`
	Exporter     string  `yaml:"exporter" json:"exporter"` // stdout or otlp
	OTLPEndpoint string  `yaml:"otlp_endpoint" json:"otlp_endpoint"`
	SampleRate   float64 `yaml:"sample_rate" json:"sample_rate"`
}

// NewDefaultConfig returns a configuration that serves the badge page and
// the health-check endpoint on :8080, with the page polling the same process.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8080,
			Host:         "0.0.0.0",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		App: AppConfig{
			Environment: EnvironmentDev,
			Version:     "0.1.0",
		},
		Client: ClientConfig{
			Origin:  "http://localhost:8080",
			Timeout: 10 * time.Second,
		},
		UI: UIConfig{
			RenderTimeout: 5 * time.Second,
		},
		Security: SecurityConfig{
			RateLimit: RateLimitConfig{
				Enabled:           false,
				RequestsPerMinute: 60,
				BurstSize:         10,
				CleanupInterval:   5 * time.Minute,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
			Port:    9090,
		},
		Observability: ObservabilityConfig{
			ServiceName: "healthbadge",
			Tracing: TracingConfig{
				Enabled:      false,
				Exporter:     "stdout",
				OTLPEndpoint: "localhost:4317",
				SampleRate:   1.0,
			},
		},
	}
}

func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("invalid server config: %w", err)
	}
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("invalid app config: %w", err)
	}
	if err := c.Client.Validate(); err != nil {
		return fmt.Errorf("invalid client config: %w", err)
	}
	if err := c.UI.Validate(); err != nil {
		return fmt.Errorf("invalid ui config: %w", err)
	}
	if err := c.Security.Validate(); err != nil {
		return fmt.Errorf("invalid security config: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("invalid logging config: %w", err)
	}
	if err := c.Metrics.Validate(); err != nil {
		return fmt.Errorf("invalid metrics config: %w", err)
	}
	if err := c.Observability.Validate(); err != nil {
		return fmt.Errorf("invalid observability config: %w", err)
	}
	return nil
}

func (sc *ServerConfig) Validate() error {
	if sc.Port <= 0 || sc.Port > 65535 {
		return errors.New("port must be between 1 and 65535")
	}
	if sc.Host == "" {
		return errors.New("host cannot be empty")
	}
	if sc.ReadTimeout < 0 || sc.WriteTimeout < 0 || sc.IdleTimeout < 0 {
		return errors.New("timeouts cannot be negative")
	}
	if sc.TLSEnabled {
		if sc.TLSCertFile == "" {
			return errors.New("TLS cert file is required when TLS is enabled")
		}
		if sc.TLSKeyFile == "" {
			return errors.New("TLS key file is required when TLS is enabled")
		}
	}
	return nil
}

func (ac *AppConfig) Validate() error {
	if ac.Environment == "" {
		return errors.New("environment cannot be empty")
	}
	if _, err := semver.NewVersion(ac.Version); err != nil {
		return fmt.Errorf("version %q is not a semantic version: %w", ac.Version, err)
	}
	return nil
}

func (cc *ClientConfig) Validate() error {
	if cc.Origin == "" {
		return errors.New("origin cannot be empty")
	}
	u, err := url.Parse(cc.Origin)
	if err != nil {
		return fmt.Errorf("invalid origin: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("origin scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("origin must include a host")
	}
	if cc.Timeout < 0 {
		return errors.New("timeout cannot be negative")
	}
	return nil
}

// TargetsServer reports whether the origin points back at the listener
// described by sc: a loopback or matching host on the server's port.
func (cc *ClientConfig) TargetsServer(sc ServerConfig) bool {
	u, err := url.Parse(cc.Origin)
	if err != nil || u.Host == "" {
		return false
	}

	port := u.Port()
	if port == "" {
		switch u.Scheme {
		case "http":
			port = "80"
		case "https":
			port = "443"
		}
	}
	if port != strconv.Itoa(sc.Port) {
		return false
	}

	host := u.Hostname()
	if strings.EqualFold(host, "localhost") || strings.EqualFold(host, sc.Host) {
		return true
	}
	addr, err := netip.ParseAddr(host)
	return err == nil && (addr.IsLoopback() || addr.IsUnspecified())
}

func (uc *UIConfig) Validate() error {
	if uc.RenderTimeout <= 0 {
		return errors.New("render timeout must be positive")
	}
	return nil
}

func (sec *SecurityConfig) Validate() error {
	if !sec.RateLimit.Enabled {
		return nil
	}
	if sec.RateLimit.RequestsPerMinute <= 0 {
		return errors.New("requests per minute must be positive")
	}
	if sec.RateLimit.BurstSize <= 0 {
		return errors.New("burst size must be positive")
	}
	if sec.RateLimit.CleanupInterval <= 0 {
		return errors.New("cleanup interval must be positive")
	}
	for _, proxy := range sec.RateLimit.TrustedProxies {
		if !validProxy(proxy) {
			return fmt.Errorf("invalid trusted proxy %q: want a CIDR or an IP address", proxy)
		}
	}
	return nil
}

func validProxy(entry string) bool {
	entry = strings.TrimSpace(entry)
	if _, err := netip.ParsePrefix(entry); err == nil {
		return true
	}
	_, err := netip.ParseAddr(entry)
	return err == nil
}

func (lc *LoggingConfig) Validate() error {
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, lc.Level) {
		return fmt.Errorf("invalid log level: %s", lc.Level)
	}
	if !slices.Contains([]string{"json", "text"}, lc.Format) {
		return fmt.Errorf("invalid log format: %s", lc.Format)
	}
	if !slices.Contains([]string{"stdout", "stderr", "file"}, lc.Output) {
		return fmt.Errorf("invalid log output: %s", lc.Output)
	}
	if lc.Output == "file" && lc.FilePath == "" {
		return errors.New("file path is required when output is file")
	}
	return nil
}

func (mc *MetricsConfig) Validate() error {
	if !mc.Enabled {
		return nil
	}
	if mc.Path == "" {
		return errors.New("metrics path cannot be empty")
	}
	if mc.Port <= 0 || mc.Port > 65535 {
		return errors.New("metrics port must be between 1 and 65535")
	}
	return nil
}

func (oc *ObservabilityConfig) Validate() error {
	if oc.ServiceName == "" {
		return errors.New("service name cannot be empty")
	}
	if !oc.Tracing.Enabled {
		return nil
	}
	switch oc.Tracing.Exporter {
	case "stdout":
	case "otlp":
		if oc.Tracing.OTLPEndpoint == "" {
			return errors.New("otlp endpoint is required for the otlp exporter")
		}
	default:
		return fmt.Errorf("unsupported trace exporter: %s", oc.Tracing.Exporter)
	}
	if oc.Tracing.SampleRate < 0 || oc.Tracing.SampleRate > 1 {
		return errors.New("sample rate must be between 0 and 1")
	}
	return nil
}
