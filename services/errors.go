package services

import (
	"errors"
	"fmt"

	"gatherly-api/repositories"

	"gorm.io/gorm"
)

// Kind classifies an engine error for callers.
type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindInvalidState Kind = "invalid_state"
	KindForbidden    Kind = "forbidden"
	KindValidation   Kind = "validation"
	KindUnavailable  Kind = "unavailable"
)

// Sentinels for errors.Is; any *Error of the same kind matches.
var (
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrInvalidState = &Error{Kind: KindInvalidState}
	ErrForbidden    = &Error{Kind: KindForbidden}
	ErrValidation   = &Error{Kind: KindValidation}
	ErrUnavailable  = &Error{Kind: KindUnavailable}
)

// Error is the error type returned by the lifecycle and shortlist services.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on Kind so callers can write errors.Is(err, ErrForbidden).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of err, or Unavailable for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnavailable
}

func notFound(op, format string, args ...interface{}) error {
	return &Error{Kind: KindNotFound, Op: op, Message: fmt.Sprintf(format, args...)}
}

func invalidState(op, format string, args ...interface{}) error {
	return &Error{Kind: KindInvalidState, Op: op, Message: fmt.Sprintf(format, args...)}
}

func forbidden(op, format string, args ...interface{}) error {
	return &Error{Kind: KindForbidden, Op: op, Message: fmt.Sprintf(format, args...)}
}

func validation(op, format string, args ...interface{}) error {
	return &Error{Kind: KindValidation, Op: op, Message: fmt.Sprintf(format, args...)}
}

// storeError classifies an error coming back from persistence or the
// catalog. Missing rows become NotFound with the given message; guarded
// write conflicts become InvalidState; everything else is Unavailable so the
// caller may retry.
func storeError(op string, err error, missing string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &Error{Kind: KindNotFound, Op: op, Message: missing}
	case errors.Is(err, repositories.ErrConflict):
		return &Error{Kind: KindInvalidState, Op: op, Message: "plan state changed concurrently", Err: err}
	default:
		var e *Error
		if errors.As(err, &e) {
			return err
		}
		return &Error{Kind: KindUnavailable, Op: op, Message: "storage unavailable", Err: err}
	}
}
