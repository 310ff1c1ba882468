package backend

import (
	"errors"
	"fmt"
)

// ErrorKind classifies backend failures.
type ErrorKind int

const (
	// KindConnection covers transport failures: refused, reset, timed out.
	// Fatal to the current request; never retried internally.
	KindConnection ErrorKind = iota
	// KindModelNotFound maps HTTP 404 from the backend.
	KindModelNotFound
	// KindInvalidResponse covers unexpected statuses and unparseable
	// non-streaming bodies.
	KindInvalidResponse
	// KindImageEncoding covers unreadable or unsupported image attachments.
	// Surfaced before any network I/O.
	KindImageEncoding
	// KindUnsupportedBackend means no client constructor exists for the
	// requested backend type.
	KindUnsupportedBackend
)

// String returns a short name for the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindConnection:
		return "connection"
	case KindModelNotFound:
		return "model not found"
	case KindInvalidResponse:
		return "invalid response"
	case KindImageEncoding:
		return "image encoding"
	case KindUnsupportedBackend:
		return "unsupported backend"
	default:
		return "unknown"
	}
}

// Error is the typed failure every backend operation propagates. It carries
// the backend type and endpoint so CLI layers can print useful diagnostics
// without string-matching.
type Error struct {
	Kind       ErrorKind
	Backend    Type
	Endpoint   string
	Model      string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s error", e.Backend, e.Kind)
	if e.Model != "" {
		msg += fmt.Sprintf(" (model %q)", e.Model)
	}
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (HTTP %d)", e.StatusCode)
	}
	if e.Endpoint != "" {
		msg += " at " + e.Endpoint
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a backend Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var be *Error
	return errors.As(err, &be) && be.Kind == kind
}

func connectionError(t Type, endpoint string, err error) *Error {
	return &Error{Kind: KindConnection, Backend: t, Endpoint: endpoint, Err: err}
}

func modelNotFoundError(t Type, endpoint, model string) *Error {
	return &Error{Kind: KindModelNotFound, Backend: t, Endpoint: endpoint, Model: model}
}

func invalidResponseError(t Type, endpoint string, status int, err error) *Error {
	return &Error{Kind: KindInvalidResponse, Backend: t, Endpoint: endpoint, StatusCode: status, Err: err}
}

func imageEncodingError(t Type, err error) *Error {
	return &Error{Kind: KindImageEncoding, Backend: t, Err: err}
}
