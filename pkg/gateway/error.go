package gateway

import (
	"errors"
	"fmt"
)

// Kind classifies a failed backend interaction so callers can pick the right
// user-facing message without string matching.
type Kind int

const (
	// KindUnreachable: the request never produced an HTTP response
	// (connection refused, DNS failure, timeout).
	KindUnreachable Kind = iota + 1

	// KindNotFound: the server answered with a not-found envelope
	// (unknown barcode, unknown bill).
	KindNotFound

	// KindRouteMissing: the route itself does not exist, a bare 404 page
	// instead of an API envelope. Usually "backend not deployed".
	KindRouteMissing

	// KindRejected: the server understood the request and said no
	// (validation failure, concurrent stock depletion, any other non-2xx).
	KindRejected

	// KindDecode: the response arrived but could not be decoded.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindUnreachable:
		return "unreachable"
	case KindNotFound:
		return "not_found"
	case KindRouteMissing:
		return "route_missing"
	case KindRejected:
		return "rejected"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Error is the structured failure every gateway call resolves to.
// Message is always safe to show to the operator.
type Error struct {
	Kind       Kind
	StatusCode int // 0 when no HTTP response was received
	Message    string
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("gateway: %s (%d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("gateway: %s: %s", e.Kind, e.Message)
}

// KindOf returns the Kind of err, or 0 when err is not a gateway error.
func KindOf(err error) Kind {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return 0
}

// IsNotFound reports whether err is a server-side not-found condition.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsUnreachable reports whether err is a transport-level failure.
func IsUnreachable(err error) bool { return KindOf(err) == KindUnreachable }

// Message extracts the operator-safe message from err, falling back to
// err.Error() for non-gateway errors.
func Message(err error) string {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

const unreachableMessage = "cannot connect to server"
