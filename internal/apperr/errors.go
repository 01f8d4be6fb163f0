// Package apperr defines the error kinds the ledger surfaces to its callers.
package apperr

import (
	"context"
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindStore      Kind = "store"
	KindTimeout    Kind = "timeout"
)

// Error carries a Kind plus the offending field, if any.
type Error struct {
	Kind    Kind
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Field != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %s: %v", e.Kind, e.Field, e.Message, e.Err)
	case e.Field != "":
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(field, msg string) error {
	return &Error{Kind: KindValidation, Field: field, Message: msg}
}

func NotFound(field, msg string) error {
	return &Error{Kind: KindNotFound, Field: field, Message: msg}
}

func Conflict(msg string, err error) error {
	return &Error{Kind: KindConflict, Message: msg, Err: err}
}

func Store(msg string, err error) error {
	return &Error{Kind: KindStore, Message: msg, Err: err}
}

func Timeout(msg string, err error) error {
	return &Error{Kind: KindTimeout, Message: msg, Err: err}
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf classifies err. Context deadline errors count as timeouts and anything
// unrecognised is a store failure.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	if e, ok := As(err); ok {
		return e.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindStore
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
