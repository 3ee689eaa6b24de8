package domain

import (
	"errors"
	"fmt"
)

// ErrorKind is a stable discriminant for business-rule failures.
// Transports map each kind to their own status codes.
type ErrorKind string

const (
	KindNotFound          ErrorKind = "not_found"
	KindUnauthorized      ErrorKind = "unauthorized"
	KindInvalidRoleTarget ErrorKind = "invalid_role_target"
	KindIllegalState      ErrorKind = "illegal_state"
	KindOutOfRange        ErrorKind = "out_of_range"
	KindValidation        ErrorKind = "validation_error"
)

// Error is a typed failure carrying a human-readable reason.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewError builds an Error with a formatted message.
func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain, or "" if there is none.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
