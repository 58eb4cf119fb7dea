package weather

import (
	"errors"
	"fmt"
	"net"
)

// ErrUpstreamUnavailable is returned while the provider's circuit breaker is open.
var ErrUpstreamUnavailable = errors.New("forecast upstream unavailable")

// ErrPayloadTooLarge is returned when the response body exceeds the read limit.
var ErrPayloadTooLarge = errors.New("forecast payload too large")

// TransportError wraps a failed outbound request (timeout, refused connection, ...).
type TransportError struct {
	Provider string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: request failed: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Timeout reports whether the underlying failure was a timeout.
func (e *TransportError) Timeout() bool {
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// StatusError is returned for a non-2xx upstream response.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: unexpected status code %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s: unexpected status code %d: %s", e.Provider, e.StatusCode, e.Body)
}

// ParseError is returned when the payload is not valid JSON.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid forecast payload: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// StructureError is returned when valid JSON lacks the expected shape.
type StructureError struct {
	Path string
	Err  error
}

func (e *StructureError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("unexpected forecast structure at %s", e.Path)
	}
	return fmt.Sprintf("unexpected forecast structure at %s: %v", e.Path, e.Err)
}

func (e *StructureError) Unwrap() error { return e.Err }

// IsUpstream reports whether err originates from the forecast source rather
// than from the payload it returned.
func IsUpstream(err error) bool {
	var (
		te *TransportError
		se *StatusError
	)
	return errors.Is(err, ErrUpstreamUnavailable) || errors.Is(err, ErrPayloadTooLarge) ||
		errors.As(err, &te) || errors.As(err, &se)
}

// Outcome classifies err into a short label used for logs and metrics.
func Outcome(err error) string {
	var (
		te *TransportError
		se *StatusError
		pe *ParseError
		st *StructureError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrUpstreamUnavailable):
		return "unavailable"
	case errors.Is(err, ErrPayloadTooLarge):
		return "too_large"
	case errors.As(err, &te):
		if te.Timeout() {
			return "timeout"
		}
		return "transport"
	case errors.As(err, &se):
		return "status"
	case errors.As(err, &pe):
		return "parse"
	case errors.As(err, &st):
		return "structure"
	default:
		return "error"
	}
}
