package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithHandler_ServesInProcess(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/health-check/", r.URL.Path)
		assert.Equal(t, "/api/health-check/", r.RequestURI)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, loopbackAddr, r.RemoteAddr)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"environment":"PROD","version":"1.0.0","status":"ok"}`))
	})

	// nothing listens on this origin
	c := New("http://127.0.0.1:1", WithHandler(handler))

	status, err := c.FetchHealth(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "PROD", status.Environment)
	assert.Equal(t, "1.0.0", status.Version)
}

func TestWithHandler_ClassifiesStatus(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		check   func(t *testing.T, err error)
	}{
		{
			name: "non-2xx is a server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			},
			check: func(t *testing.T, err error) {
				assert.EqualError(t, err, "Server error: 429")
			},
		},
		{
			name: "implicit 200 with bad JSON is a request error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("nope"))
			},
			check: func(t *testing.T, err error) {
				assert.True(t, IsRequestError(err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New("http://localhost:8080", WithHandler(tt.handler)).FetchHealth(context.Background())
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestWithHandler_CancelledContextIsNetworkError(t *testing.T) {
	called := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New("http://localhost:8080", WithHandler(handler)).FetchHealth(ctx)
	assert.True(t, IsNetworkError(err))
	assert.False(t, called)
}

func TestWithHandler_CarriesCaller(t *testing.T) {
	var gotAddr, gotXFF, gotRealIP string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAddr = r.RemoteAddr
		gotXFF = r.Header.Get("X-Forwarded-For")
		gotRealIP = r.Header.Get("X-Real-IP")
		_, _ = w.Write([]byte(`{}`))
	})

	visitor := httptest.NewRequest(http.MethodGet, "/", nil)
	visitor.RemoteAddr = "127.0.0.1:50000"
	visitor.Header.Set("X-Forwarded-For", "203.0.113.1")
	visitor.Header.Set("X-Real-IP", "203.0.113.1")
	visitor.Header.Set("Authorization", "Bearer secret")

	ctx := ContextWithCaller(context.Background(), visitor)
	_, err := New("http://localhost:8080", WithHandler(handler)).FetchHealth(ctx)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:50000", gotAddr)
	assert.Equal(t, "203.0.113.1", gotXFF)
	assert.Equal(t, "203.0.113.1", gotRealIP)
}

func TestContextWithCaller_IgnoredOverNetwork(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("X-Forwarded-For"))
		_, _ = w.Write([]byte(`{}`))
	})

	visitor := httptest.NewRequest(http.MethodGet, "/", nil)
	visitor.Header.Set("X-Forwarded-For", "203.0.113.1")

	_, err := New(srv.URL).FetchHealth(ContextWithCaller(context.Background(), visitor))
	require.NoError(t, err)
}

func TestWithHandler_KeepsTimeout(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	c := New("http://localhost:8080", WithTimeout(time.Second), WithHandler(handler))
	assert.Equal(t, time.Second, c.httpClient.Timeout)
	assert.IsType(t, handlerTransport{}, c.httpClient.Transport)

	c = New("http://localhost:8080", WithHandler(handler), WithTimeout(time.Minute))
	assert.Equal(t, time.Minute, c.httpClient.Timeout)
	assert.IsType(t, handlerTransport{}, c.httpClient.Transport)
}
