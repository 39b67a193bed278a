package service

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindInvalid      Kind = "invalid"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindUnavailable  Kind = "unavailable"
)

// Error is an expected failure whose message is safe to show to the client.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func invalid(format string, args ...any) error   { return newError(KindInvalid, format, args...) }
func forbidden(format string, args ...any) error { return newError(KindForbidden, format, args...) }
func notFound(format string, args ...any) error  { return newError(KindNotFound, format, args...) }
func conflict(format string, args ...any) error  { return newError(KindConflict, format, args...) }

var (
	ErrUnauthorized = &Error{Kind: KindUnauthorized, Message: "not authenticated"}
	ErrForbidden    = &Error{Kind: KindForbidden, Message: "you do not have permission to perform this action"}
)

// KindOf returns the kind of a service error, or "" for unexpected errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
