package userbase

import (
	"errors"
	"fmt"
)

type ErrorCode int

const (
	Unknown ErrorCode = iota
	// BadInput signifies a validation failure. Never retried, reported verbatim.
	BadInput
	// Unauthorized signifies the caller does not own the bundle lock.
	Unauthorized
	// NotFound signifies the requested bundle or user is absent.
	NotFound
	// Conflict signifies a conditional-write predicate violation. It is internal
	// to the transaction engine and never surfaces to callers.
	Conflict
	// TransientFailure signifies a network or store failure that may succeed on retry.
	TransientFailure
	// Internal signifies an invariant violation, e.g. an unknown command.
	Internal
)

// Userbase custom error carrying the taxonomy code surfaced to callers.
type Error struct {
	Code     ErrorCode
	Err      error
	UserData any
}

func (e Error) Error() string {
	if e.UserData == nil {
		return fmt.Errorf("error code: %d, details: %w", e.Code, e.Err).Error()
	}
	return fmt.Errorf("error code: %d, user data: %v, details: %w", e.Code, e.UserData, e.Err).Error()
}

func (e Error) Unwrap() error {
	return e.Err
}

// NewError packages an error with a taxonomy code.
func NewError(code ErrorCode, err error) Error {
	return Error{Code: code, Err: err}
}

// Errorf is a convenience formatter that packages the message under the given code.
func Errorf(code ErrorCode, format string, a ...any) Error {
	return Error{Code: code, Err: fmt.Errorf(format, a...)}
}

// CodeOf extracts the taxonomy code from an error, or Unknown if it carries none.
func CodeOf(err error) ErrorCode {
	var e Error
	if errors.As(err, &e) {
		return e.Code
	}
	return Unknown
}

// IsCode reports whether the error carries the given taxonomy code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
