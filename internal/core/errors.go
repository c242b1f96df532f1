package core

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrNotFound is returned by lookups that match no record.
var ErrNotFound = errors.New("processor not found")

// ValidationError reports a record or file whose shape cannot be stored.
type ValidationError struct {
	Field  string // Schema column or CSV header, if known
	Line   int    // 1-indexed CSV line, 0 when not tied to a file
	Reason string
}

func (e *ValidationError) Error() string {
	switch {
	case e.Line > 0 && e.Field != "":
		return fmt.Sprintf("validation error: line %d: %s: %s", e.Line, e.Field, e.Reason)
	case e.Line > 0:
		return fmt.Sprintf("validation error: line %d: %s", e.Line, e.Reason)
	case e.Field != "":
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Reason)
	default:
		return "validation error: " + e.Reason
	}
}

// TransientError wraps connectivity and timeout failures from the store.
// The enclosing transaction has been rolled back when it is returned.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient store error: %s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// IsValidation reports whether err is or wraps a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsTransient reports whether err is or wraps a *TransientError.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// Transient wraps err as a *TransientError if it looks like a timeout or a
// network failure. Other errors are returned unchanged.
func Transient(op string, err error) error {
	if err == nil || IsTransient(err) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &TransientError{Op: op, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return &TransientError{Op: op, Err: err}
	}
	return err
}
