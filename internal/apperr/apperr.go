package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies failures so callers can react without string matching.
type Kind string

const (
	KindInvalidInput      Kind = "InvalidInput"
	KindDanglingReference Kind = "DanglingReference"
	KindOutOfRangeDate    Kind = "OutOfRangeDate"
	KindStoreUnavailable  Kind = "StoreUnavailable"
	KindNotFound          Kind = "NotFound"
)

// Sentinels for errors.Is checks against a kind.
var (
	ErrInvalidInput      = &Error{Kind: KindInvalidInput}
	ErrDanglingReference = &Error{Kind: KindDanglingReference}
	ErrOutOfRangeDate    = &Error{Kind: KindOutOfRangeDate}
	ErrStoreUnavailable  = &Error{Kind: KindStoreUnavailable}
	ErrNotFound          = &Error{Kind: KindNotFound}
)

// Error is the single error type surfaced by the core.
type Error struct {
	Kind   Kind
	Entity string // entity kind or collection, when relevant
	ID     string // offending identifier or date token
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Invalid reports a missing or malformed field.
func Invalid(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidInput, Msg: fmt.Sprintf(format, args...)}
}

// Dangling reports a reference to an entity that does not exist.
func Dangling(entity, id string) *Error {
	return &Error{
		Kind:   KindDanglingReference,
		Entity: entity,
		ID:     id,
		Msg:    fmt.Sprintf("%s %q does not exist", entity, id),
	}
}

// OutOfRange reports a date outside the record's period.
func OutOfRange(date, period string) *Error {
	return &Error{
		Kind: KindOutOfRangeDate,
		ID:   date,
		Msg:  fmt.Sprintf("date %q is outside %s", date, period),
	}
}

// Unavailable wraps a failed store call.
func Unavailable(op string, err error) *Error {
	return &Error{Kind: KindStoreUnavailable, Msg: op + " failed", Err: err}
}

// NotFound reports a missing document.
func NotFound(collection, id string) *Error {
	return &Error{
		Kind:   KindNotFound,
		Entity: collection,
		ID:     id,
		Msg:    fmt.Sprintf("%s/%s not found", collection, id),
	}
}

// KindOf returns the kind carried by err, or "" for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
