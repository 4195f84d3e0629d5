package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"healthbadge/internal/models"

	"gopkg.in/yaml.v3"
)

// Load builds the configuration from defaults, then the YAML file at
// configPath (if non-empty), then HEALTHBADGE_* environment variables, and
// validates the result.
func Load(configPath string) (*models.Config, error) {
	config := models.NewDefaultConfig()

	if configPath != "" {
		if err := loadFromFile(config, configPath); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	loadFromEnvironment(config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(config *models.Config, filePath string) error {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return fmt.Errorf("config file not found: %s", filePath)
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse YAML config: %w", err)
	}
	return nil
}

// loadFromEnvironment applies HEALTHBADGE_* overrides. Values that do not
// parse are ignored and the previous value is kept.
func loadFromEnvironment(config *models.Config) {
	// Server
	envInt("HEALTHBADGE_PORT", &config.Server.Port)
	envString("HEALTHBADGE_HOST", &config.Server.Host)
	envDuration("HEALTHBADGE_READ_TIMEOUT", &config.Server.ReadTimeout)
	envDuration("HEALTHBADGE_WRITE_TIMEOUT", &config.Server.WriteTimeout)
	envDuration("HEALTHBADGE_IDLE_TIMEOUT", &config.Server.IdleTimeout)
	envBool("HEALTHBADGE_TLS_ENABLED", &config.Server.TLSEnabled)
	envString("HEALTHBADGE_TLS_CERT_FILE", &config.Server.TLSCertFile)
	envString("HEALTHBADGE_TLS_KEY_FILE", &config.Server.TLSKeyFile)

	// Reported identity. The bare ENVIRONMENT variable is honoured as well,
	// the prefixed one wins.
	envString("ENVIRONMENT", &config.App.Environment)
	envString("HEALTHBADGE_ENVIRONMENT", &config.App.Environment)
	envString("HEALTHBADGE_VERSION", &config.App.Version)

	// Badge page
	envString("HEALTHBADGE_CLIENT_ORIGIN", &config.Client.Origin)
	envDuration("HEALTHBADGE_CLIENT_TIMEOUT", &config.Client.Timeout)
	envDuration("HEALTHBADGE_UI_RENDER_TIMEOUT", &config.UI.RenderTimeout)

	// Rate limiting
	envBool("HEALTHBADGE_RATE_LIMIT_ENABLED", &config.Security.RateLimit.Enabled)
	envInt("HEALTHBADGE_RATE_LIMIT_RPM", &config.Security.RateLimit.RequestsPerMinute)
	envInt("HEALTHBADGE_RATE_LIMIT_BURST", &config.Security.RateLimit.BurstSize)
	envList("HEALTHBADGE_RATE_LIMIT_TRUSTED_PROXIES", &config.Security.RateLimit.TrustedProxies)

	// Logging
	envString("HEALTHBADGE_LOG_LEVEL", &config.Logging.Level)
	envString("HEALTHBADGE_LOG_FORMAT", &config.Logging.Format)
	envString("HEALTHBADGE_LOG_OUTPUT", &config.Logging.Output)
	envString("HEALTHBADGE_LOG_FILE_PATH", &config.Logging.FilePath)

	// Metrics
	envBool("HEALTHBADGE_METRICS_ENABLED", &config.Metrics.Enabled)
	envString("HEALTHBADGE_METRICS_PATH", &config.Metrics.Path)
	envInt("HEALTHBADGE_METRICS_PORT", &config.Metrics.Port)

	// Tracing
	envString("HEALTHBADGE_SERVICE_NAME", &config.Observability.ServiceName)
	envBool("HEALTHBADGE_TRACING_ENABLED", &config.Observability.Tracing.Enabled)
	envString("HEALTHBADGE_TRACING_EXPORTER", &config.Observability.Tracing.Exporter)
	envString("HEALTHBADGE_OTLP_ENDPOINT", &config.Observability.Tracing.OTLPEndpoint)
	if rate := os.Getenv("HEALTHBADGE_TRACING_SAMPLE_RATE"); rate != "" {
		if r, err := strconv.ParseFloat(rate, 64); err == nil {
			config.Observability.Tracing.SampleRate = r
		}
	}
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envBool(key string, dst *bool) {
	if v := os.Getenv(key); v != "" {
		*dst = strings.ToLower(v) == "true"
	}
}

// envList splits a comma-separated value, dropping empty entries.
func envList(key string, dst *[]string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	var items []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	*dst = items
}

func envDuration(key string, dst *time.Duration) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

// SaveExample writes the default configuration, with tracing switched to the
// OTLP exporter as a template, to filePath.
func SaveExample(filePath string) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	config := models.NewDefaultConfig()
	config.Observability.Tracing.Exporter = "otlp"
	config.Server.TLSCertFile = "/path/to/cert.pem"
	config.Server.TLSKeyFile = "/path/to/key.pem"

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
