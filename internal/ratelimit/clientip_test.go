package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		expected   string
	}{
		{name: "remote addr without port", remoteAddr: "10.1.2.3:4567", expected: "10.1.2.3"},
		{name: "ipv6 loopback", remoteAddr: "[::1]:4567", expected: "::1"},
		{name: "unparseable remote addr", remoteAddr: "pipe", expected: "pipe"},
		{
			name:       "untrusted peer ignores forwarded for",
			remoteAddr: "192.0.2.10:1",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.7"},
			expected:   "192.0.2.10",
		},
		{
			name:       "untrusted peer ignores real ip",
			remoteAddr: "192.0.2.10:1",
			headers:    map[string]string{"X-Real-IP": "198.51.100.4"},
			expected:   "192.0.2.10",
		},
		{
			name:       "loopback peer honours forwarded for",
			remoteAddr: "127.0.0.1:1",
			headers:    map[string]string{"X-Forwarded-For": " 203.0.113.7 "},
			expected:   "203.0.113.7",
		},
		{
			name:       "rightmost untrusted hop wins",
			remoteAddr: "127.0.0.1:1",
			headers:    map[string]string{"X-Forwarded-For": "1.1.1.1, 203.0.113.7, 127.0.0.1"},
			expected:   "203.0.113.7",
		},
		{
			name:       "all hops trusted returns the first",
			remoteAddr: "127.0.0.1:1",
			headers:    map[string]string{"X-Forwarded-For": "127.0.0.2, 127.0.0.1"},
			expected:   "127.0.0.2",
		},
		{
			name:       "loopback peer honours real ip",
			remoteAddr: "127.0.0.1:1",
			headers:    map[string]string{"X-Real-IP": "198.51.100.4"},
			expected:   "198.51.100.4",
		},
		{
			name:       "forwarded wins over real ip",
			remoteAddr: "127.0.0.1:1",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.7", "X-Real-IP": "198.51.100.4"},
			expected:   "203.0.113.7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClientIP(request(tt.remoteAddr, tt.headers)))
		})
	}
}

func TestIPResolver_TrustedProxies(t *testing.T) {
	resolver, err := NewIPResolver([]string{"10.0.0.0/8", "192.0.2.1"})
	require.NoError(t, err)

	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		expected   string
	}{
		{name: "trusted cidr", remoteAddr: "10.9.8.7:1", xff: "203.0.113.7", expected: "203.0.113.7"},
		{name: "trusted single address", remoteAddr: "192.0.2.1:1", xff: "203.0.113.7", expected: "203.0.113.7"},
		{name: "neighbour of single address", remoteAddr: "192.0.2.2:1", xff: "203.0.113.7", expected: "192.0.2.2"},
		{name: "skips trusted hops", remoteAddr: "10.0.0.1:1", xff: "203.0.113.7, 10.0.0.2", expected: "203.0.113.7"},
		{name: "spoofed leftmost hop is ignored", remoteAddr: "10.0.0.1:1", xff: "1.2.3.4, 203.0.113.7", expected: "203.0.113.7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			req.Header.Set("X-Forwarded-For", tt.xff)
			assert.Equal(t, tt.expected, resolver.ClientIP(req))
		})
	}
}

func TestNewIPResolver_Invalid(t *testing.T) {
	for _, entry := range []string{"not-an-ip", "10.0.0.0/99", ""} {
		t.Run(entry, func(t *testing.T) {
			_, err := NewIPResolver([]string{entry})
			assert.Error(t, err)
		})
	}
}

func TestParseTrustedProxy(t *testing.T) {
	prefix, err := ParseTrustedProxy(" 10.1.2.3/8 ")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.0/8", prefix.String())

	prefix, err = ParseTrustedProxy("::ffff:192.0.2.1")
	require.NoError(t, err)
	assert.Equal(t, "192.0.2.1/32", prefix.String())
}
