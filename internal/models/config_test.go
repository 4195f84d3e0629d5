package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	config := NewDefaultConfig()

	assert.Equal(t, 8080, config.Server.Port)
	assert.Equal(t, "0.0.0.0", config.Server.Host)
	assert.Equal(t, 30*time.Second, config.Server.ReadTimeout)
	assert.False(t, config.Server.TLSEnabled)

	assert.Equal(t, "DEV", config.App.Environment)
	assert.Equal(t, "0.1.0", config.App.Version)

	assert.Equal(t, "http://localhost:8080", config.Client.Origin)
	assert.Equal(t, 10*time.Second, config.Client.Timeout)
	assert.Equal(t, 5*time.Second, config.UI.RenderTimeout)

	assert.False(t, config.Security.RateLimit.Enabled)
	assert.Equal(t, "info", config.Logging.Level)
	assert.Equal(t, "json", config.Logging.Format)
	assert.True(t, config.Metrics.Enabled)
	assert.Equal(t, "healthbadge", config.Observability.ServiceName)

	require.NoError(t, config.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "invalid server config",
		},
		{
			name:    "empty host",
			mutate:  func(c *Config) { c.Server.Host = "" },
			wantErr: "host cannot be empty",
		},
		{
			name:    "tls without cert",
			mutate:  func(c *Config) { c.Server.TLSEnabled = true },
			wantErr: "TLS cert file is required",
		},
		{
			name:    "empty environment",
			mutate:  func(c *Config) { c.App.Environment = "" },
			wantErr: "environment cannot be empty",
		},
		{
			name:    "non-semver version",
			mutate:  func(c *Config) { c.App.Version = "latest" },
			wantErr: "is not a semantic version",
		},
		{
			name:    "origin without scheme",
			mutate:  func(c *Config) { c.Client.Origin = "localhost:8080" },
			wantErr: "invalid client config",
		},
		{
			name:    "origin with ftp scheme",
			mutate:  func(c *Config) { c.Client.Origin = "ftp://example.com" },
			wantErr: "origin scheme must be http or https",
		},
		{
			name:    "zero render timeout",
			mutate:  func(c *Config) { c.UI.RenderTimeout = 0 },
			wantErr: "render timeout must be positive",
		},
		{
			name: "rate limit without burst",
			mutate: func(c *Config) {
				c.Security.RateLimit.Enabled = true
				c.Security.RateLimit.BurstSize = 0
			},
			wantErr: "burst size must be positive",
		},
		{
			name: "rate limit with bad trusted proxy",
			mutate: func(c *Config) {
				c.Security.RateLimit.Enabled = true
				c.Security.RateLimit.TrustedProxies = []string{"10.0.0.0/8", "proxy.internal"}
			},
			wantErr: `invalid trusted proxy "proxy.internal"`,
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "invalid log level",
		},
		{
			name:    "file output without path",
			mutate:  func(c *Config) { c.Logging.Output = "file" },
			wantErr: "file path is required",
		},
		{
			name:    "metrics without path",
			mutate:  func(c *Config) { c.Metrics.Path = "" },
			wantErr: "metrics path cannot be empty",
		},
		{
			name: "unknown trace exporter",
			mutate: func(c *Config) {
				c.Observability.Tracing.Enabled = true
				c.Observability.Tracing.Exporter = "jaeger"
			},
			wantErr: "unsupported trace exporter",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := NewDefaultConfig()
			tt.mutate(config)

			err := config.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_ValidateDisabledSections(t *testing.T) {
	config := NewDefaultConfig()
	config.Metrics.Enabled = false
	config.Metrics.Path = ""
	config.Security.RateLimit.BurstSize = 0
	config.Observability.Tracing.Exporter = "jaeger"

	assert.NoError(t, config.Validate())
}

func TestClientConfig_TargetsServer(t *testing.T) {
	server := ServerConfig{Host: "0.0.0.0", Port: 8080}

	tests := []struct {
		name     string
		origin   string
		server   ServerConfig
		expected bool
	}{
		{name: "default localhost", origin: "http://localhost:8080", server: server, expected: true},
		{name: "loopback ipv4", origin: "http://127.0.0.1:8080", server: server, expected: true},
		{name: "loopback ipv6", origin: "http://[::1]:8080", server: server, expected: true},
		{name: "listener host", origin: "http://badge.internal:8080", server: ServerConfig{Host: "badge.internal", Port: 8080}, expected: true},
		{name: "implicit https port", origin: "https://localhost", server: ServerConfig{Host: "0.0.0.0", Port: 443}, expected: true},
		{name: "other port", origin: "http://localhost:9000", server: server, expected: false},
		{name: "remote host", origin: "http://status.example.com:8080", server: server, expected: false},
		{name: "implicit http port differs", origin: "http://localhost", server: server, expected: false},
		{name: "malformed", origin: "://bad", server: server, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cc := ClientConfig{Origin: tt.origin}
			assert.Equal(t, tt.expected, cc.TargetsServer(tt.server))
		})
	}
}
