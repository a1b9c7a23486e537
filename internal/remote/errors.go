package remote

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Kind classifies a remote-call failure. Every error leaving this package is
// an *Error carrying exactly one Kind; callers branch on it, never on raw
// transport errors.
type Kind int

const (
	// KindTransient is a 5xx-class response: retryable, server at fault.
	KindTransient Kind = iota
	// KindBusiness is any other unsuccessful response: not retried, the
	// upstream message is surfaced as-is with the status code.
	KindBusiness
	// KindNetwork means no response was received at all.
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindBusiness:
		return "business"
	case KindNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// Error is the classified outcome of a failed remote call. Message is
// user-facing; Status is zero for network failures.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// AsError unwraps err into a classified *Error, or nil.
func AsError(err error) *Error {
	var re *Error
	if errors.As(err, &re) {
		return re
	}
	return nil
}

// IsTransient reports whether err is a server-classified transient failure.
func IsTransient(err error) bool {
	re := AsError(err)
	return re != nil && re.Kind == KindTransient
}

// fromStatus classifies an unsuccessful HTTP response.
func fromStatus(status int, body string) *Error {
	if status >= 500 {
		return &Error{
			Kind:    KindTransient,
			Status:  status,
			Message: "Server error. Please try again later.",
		}
	}
	msg := body
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &Error{
		Kind:    KindBusiness,
		Status:  status,
		Message: fmt.Sprintf("Error %d: %s", status, msg),
	}
}

// fromTransport classifies a failure where no response arrived, separating
// "timed out" from "no connection" from "unexpected".
func fromTransport(err error) *Error {
	var netErr net.Error
	switch {
	case errors.As(err, &netErr) && netErr.Timeout(), errors.Is(err, context.DeadlineExceeded):
		return &Error{
			Kind:    KindNetwork,
			Message: "Request timed out. Please check your connection.",
			Err:     err,
		}
	case isConnectivity(err):
		return &Error{
			Kind:    KindNetwork,
			Message: "Network error. Please check your internet connection.",
			Err:     err,
		}
	default:
		return &Error{
			Kind:    KindNetwork,
			Message: fmt.Sprintf("Unexpected error: %v", err),
			Err:     err,
		}
	}
}

func isConnectivity(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}
