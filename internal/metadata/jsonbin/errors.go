package jsonbin

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for document fetches.
var (
	ErrNotFound         = errors.New("jsonbin: not found")
	ErrRateLimited      = errors.New("jsonbin: rate limited by server")
	ErrServer           = errors.New("jsonbin: server error")
	ErrUnexpectedStatus = errors.New("jsonbin: unexpected status")
	ErrMalformed        = errors.New("jsonbin: malformed document")
	ErrEmpty            = errors.New("empty or invalid JSON document")
)

// Error wraps an underlying error with operation context.
type Error struct {
	Op     string // Operation: "fetch"
	URL    string
	Status int // HTTP status, zero if the request never got one
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("jsonbin %s [%s] HTTP %d: %v", e.Op, e.URL, e.Status, e.Err)
	}
	return fmt.Sprintf("jsonbin %s [%s]: %v", e.Op, e.URL, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Reason is the short cause shown to users, e.g. "HTTP 500".
func (e *Error) Reason() string {
	switch {
	case e.Status != 0:
		return fmt.Sprintf("HTTP %d", e.Status)
	case errors.Is(e.Err, ErrEmpty):
		return ErrEmpty.Error()
	case errors.Is(e.Err, ErrMalformed):
		return "invalid JSON document"
	case errors.Is(e.Err, context.DeadlineExceeded):
		return "request timed out"
	case errors.Is(e.Err, context.Canceled):
		return "request canceled"
	default:
		return "network error"
	}
}

// wrapError creates an Error with context.
func wrapError(op, url string, status int, err error) error {
	return &Error{
		Op:     op,
		URL:    url,
		Status: status,
		Err:    err,
	}
}
