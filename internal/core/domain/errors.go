package domain

import (
	"errors"
	"fmt"
)

// UserError carries a message that is shown to the invoking user verbatim.
type UserError struct {
	Message string
}

func (e *UserError) Error() string {
	return e.Message
}

func NewUserError(format string, args ...any) error {
	return &UserError{Message: fmt.Sprintf(format, args...)}
}

// InternalError wraps a failure whose cause must stay in the logs. Public is the
// non-diagnostic text shown to the user instead of GenericFailure.
type InternalError struct {
	Public string
	Err    error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return e.Public
	}
	return fmt.Sprintf("%s: %v", e.Public, e.Err)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

func NewInternalError(public string, err error) error {
	return &InternalError{Public: public, Err: err}
}

// PublicMessage returns the text a user should see for err and whether err is a
// user-facing error.
func PublicMessage(err error) (string, bool) {
	var ue *UserError
	if errors.As(err, &ue) {
		return ue.Message, true
	}

	var ie *InternalError
	if errors.As(err, &ie) && ie.Public != "" {
		return ie.Public, false
	}

	return GenericFailure, false
}
