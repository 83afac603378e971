package fetcher

import (
	"errors"
	"fmt"
)

// ErrInvalidProxyAddress is returned when the proxy address format is invalid.
var ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")

// Kind classifies a fetch failure.
type Kind int

const (
	// KindNetwork covers DNS, connection, TLS and body read failures.
	KindNetwork Kind = iota
	// KindTimeout means the request did not complete within the timeout.
	KindTimeout
	// KindHTTPStatus means the server answered with a non-2xx status.
	KindHTTPStatus
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network error"
	case KindTimeout:
		return "timeout"
	case KindHTTPStatus:
		return "http status error"
	default:
		return "unknown"
	}
}

// FetchError describes why a single URL could not be fetched.
type FetchError struct {
	// Kind is the failure class.
	Kind Kind

	// URL is the requested URL.
	URL string

	// StatusCode is set for KindHTTPStatus.
	StatusCode int

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.Kind == KindHTTPStatus {
		return fmt.Sprintf("fetch %s: %s: status %d", e.URL, e.Kind, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Kind)
}

// Unwrap returns the underlying error.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsTimeout reports whether err is a FetchError of kind KindTimeout.
func IsTimeout(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Kind == KindTimeout
}
