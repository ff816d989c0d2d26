// Package service implements the business rules on top of the
// repositories.  Every error it returns is a *Error carrying one of the
// kinds below; handlers map the kind to an HTTP status.
package service

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for the transport layer.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindNotFound
	KindConflict
	KindExpired
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindExpired:
		return "expired"
	}
	return "internal"
}

// Error is a classified failure.  Msg is safe to show to callers; Err is
// the underlying cause and is only logged.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(k Kind, msg string) *Error { return &Error{Kind: k, Msg: msg} }

func validationf(format string, args ...any) *Error {
	return newErr(KindValidation, fmt.Sprintf(format, args...))
}

func unauthorized() *Error { return newErr(KindUnauthorized, "Unauthorized") }

func notFound(msg string) *Error { return newErr(KindNotFound, msg) }

func conflict(msg string) *Error { return newErr(KindConflict, msg) }

func expired(msg string) *Error { return newErr(KindExpired, msg) }

// internal wraps an unexpected store or dependency failure.
func internal(op string, err error) *Error {
	return &Error{Kind: KindInternal, Msg: "internal error", Err: fmt.Errorf("%s: %w", op, err)}
}

// classify passes *Error through and wraps anything else as internal.
func classify(op string, err error) error {
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	return internal(op, err)
}

// KindOf returns the kind of err, KindInternal for foreign errors.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

// Messages shared between services and tests.
const (
	MsgInvitationNotFound = "invitation not found"
	MsgInvitationExpired  = "invitation has expired"
	MsgInvitationAccepted = "invitation already accepted"
	MsgEmployeeExists     = "an employee with this email or employee ID already exists in this company"
	MsgEmployeeIDTaken    = "employee ID is already in use, contact your employer"
	MsgCardRegistered     = "card already registered"
	MsgEmployeeNotFound   = "employee not found"
	MsgCardNotFound       = "card not found"
	MsgEmailRegistered    = "email already registered"
	MsgCompanyNameTaken   = "company name is not available, choose another"
)
