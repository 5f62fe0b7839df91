package store

import (
	"fmt"

	domainerrors "github.com/kanineapp/kanine-server/internal/errors"
)

// Error is returned by store implementations for conditions callers are
// expected to handle. Code says how the condition reaches clients.
type Error struct {
	Code    domainerrors.Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is compares codes only, so a message-specific copy still matches its sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// WithMessage returns a copy of e with msg as the client-facing message.
func (e *Error) WithMessage(msg string) *Error {
	c := *e
	c.Message = msg
	return &c
}

// ErrNotFound is returned when a row does not exist or is owned by another user.
var ErrNotFound = &Error{Code: domainerrors.CodeNotFound, Message: "resource not found"}

// ErrAlreadyExists is returned when a write violates a unique constraint.
var ErrAlreadyExists = &Error{Code: domainerrors.CodeAlreadyExists, Message: "resource already exists"}
