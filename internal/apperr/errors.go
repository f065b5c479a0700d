// Package apperr defines the error kinds returned across shiptracker's
// component boundaries. Callers switch on the Code, never on message text.
package apperr

import (
	"errors"
	"fmt"
)

// Code identifies an error kind.
type Code string

const (
	// NotFound means an unknown war, ship, resource or instance.
	NotFound Code = "NOT_FOUND"
	// DuplicateName means a (guild, war, name) or war id collision.
	DuplicateName Code = "DUPLICATE_NAME"
	// ImmutableScope means an attempt to change a ship's guild or war.
	ImmutableScope Code = "IMMUTABLE_SCOPE"
	// OperationForbidden means an attempted delete of archive-only data.
	OperationForbidden Code = "OPERATION_FORBIDDEN"
	// Validation means an out-of-range or unrecognized value.
	Validation Code = "VALIDATION"
	// NotAuthorized means the authorization resolver denied the principal.
	NotAuthorized Code = "NOT_AUTHORIZED"
	// StoreUnavailable means the backing store timed out or failed.
	StoreUnavailable Code = "STORE_UNAVAILABLE"
)

// Error is the typed error carried across component boundaries.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil && e.Message != "" {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return string(e.Code)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Sentinels for errors.Is comparisons.
var (
	ErrNotFound           = &Error{Code: NotFound}
	ErrDuplicateName      = &Error{Code: DuplicateName}
	ErrImmutableScope     = &Error{Code: ImmutableScope}
	ErrOperationForbidden = &Error{Code: OperationForbidden}
	ErrValidation         = &Error{Code: Validation}
	ErrNotAuthorized      = &Error{Code: NotAuthorized}
	ErrStoreUnavailable   = &Error{Code: StoreUnavailable}
)

// New creates an error of the given kind.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an error of the given kind around cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// CodeOf returns the kind of the first *Error in err's chain, or "" if none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCode reports whether err carries the given kind.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}
