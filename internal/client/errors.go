package client

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a health fetch failed.
type ErrorKind string

const (
	// ServerError means the server answered with a non-2xx status.
	ServerError ErrorKind = "server"
	// NetworkError means the request was sent but no response came back.
	NetworkError ErrorKind = "network"
	// RequestError means the request could not be built or dispatched.
	RequestError ErrorKind = "request"
)

// networkErrorMessage is shown for every NetworkError regardless of cause.
const networkErrorMessage = "Network error: Unable to reach the server"

// ClientError is the only error type FetchHealth returns. Its message is
// meant for display as-is.
type ClientError struct {
	Kind       ErrorKind
	StatusCode int   // set for ServerError
	Err        error // underlying cause, nil for ServerError
}

func (e *ClientError) Error() string {
	switch e.Kind {
	case ServerError:
		return fmt.Sprintf("Server error: %d", e.StatusCode)
	case NetworkError:
		return networkErrorMessage
	default:
		msg := ""
		if e.Err != nil {
			msg = e.Err.Error()
		}
		return "Request error: " + msg
	}
}

func (e *ClientError) Unwrap() error {
	return e.Err
}

// NewServerError reports a non-2xx response.
func NewServerError(statusCode int) *ClientError {
	return &ClientError{Kind: ServerError, StatusCode: statusCode}
}

// NewNetworkError reports a request that got no response.
func NewNetworkError(err error) *ClientError {
	return &ClientError{Kind: NetworkError, Err: err}
}

// NewRequestError reports a request that could not be built or a response
// that could not be read as a HealthStatus.
func NewRequestError(err error) *ClientError {
	return &ClientError{Kind: RequestError, Err: err}
}

// KindOf returns the kind of err, or "" if err is not a *ClientError.
func KindOf(err error) ErrorKind {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}

// IsServerError reports whether err is a ServerError.
func IsServerError(err error) bool {
	return KindOf(err) == ServerError
}

// IsNetworkError reports whether err is a NetworkError.
func IsNetworkError(err error) bool {
	return KindOf(err) == NetworkError
}

// IsRequestError reports whether err is a RequestError.
func IsRequestError(err error) bool {
	return KindOf(err) == RequestError
}
