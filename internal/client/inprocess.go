package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
)

// loopbackAddr is the RemoteAddr of in-process requests made without a caller.
const loopbackAddr = "127.0.0.1:0"

// forwardedHeaders are carried from the caller onto in-process requests.
var forwardedHeaders = []string{"X-Forwarded-For", "X-Real-IP"}

type callerKey struct{}

type caller struct {
	remoteAddr string
	header     http.Header
}

// ContextWithCaller records the network identity of r so that a fetch served
// in-process (see WithHandler) reaches the handler as if r's client made it.
// Out-of-process fetches ignore it.
func ContextWithCaller(ctx context.Context, r *http.Request) context.Context {
	c := caller{remoteAddr: r.RemoteAddr, header: http.Header{}}
	for _, name := range forwardedHeaders {
		for _, v := range r.Header.Values(name) {
			c.header.Add(name, v)
		}
	}
	return context.WithValue(ctx, callerKey{}, c)
}

// WithHandler serves every request with h inside the process instead of
// dialing the origin. The origin still forms the request URL. Status
// classification is unchanged; a cancelled context is a NetworkError.
func WithHandler(h http.Handler) Option {
	return func(c *Client) {
		hc := *c.httpClient
		hc.Transport = handlerTransport{handler: h}
		c.httpClient = &hc
	}
}

type handlerTransport struct {
	handler http.Handler
}

func (t handlerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := req.Context().Err(); err != nil {
		return nil, err
	}

	in := req.Clone(req.Context())
	in.RequestURI = req.URL.RequestURI()
	in.RemoteAddr = loopbackAddr
	if in.Body == nil {
		in.Body = http.NoBody
	}
	if c, ok := req.Context().Value(callerKey{}).(caller); ok {
		if c.remoteAddr != "" {
			in.RemoteAddr = c.remoteAddr
		}
		for name, values := range c.header {
			in.Header[name] = values
		}
	}

	buf := &responseBuffer{header: http.Header{}}
	t.handler.ServeHTTP(buf, in)
	return buf.response(req), nil
}

// responseBuffer collects a handler's response in memory.
type responseBuffer struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func (b *responseBuffer) Header() http.Header {
	return b.header
}

func (b *responseBuffer) WriteHeader(code int) {
	if b.status == 0 {
		b.status = code
	}
}

func (b *responseBuffer) Write(p []byte) (int, error) {
	b.WriteHeader(http.StatusOK)
	return b.body.Write(p)
}

func (b *responseBuffer) response(req *http.Request) *http.Response {
	status := b.status
	if status == 0 {
		status = http.StatusOK
	}
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", status, http.StatusText(status)),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        b.header.Clone(),
		Body:          io.NopCloser(bytes.NewReader(b.body.Bytes())),
		ContentLength: int64(b.body.Len()),
		Request:       req,
	}
}
