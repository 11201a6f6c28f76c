// Package service holds the task, room and account operations. Every mutation
// validates and authorizes first, commits to storage second, and only then
// publishes a live notification.
package service

import (
	"errors"
	"fmt"
)

// Error kinds. Callers classify with errors.Is; the HTTP layer maps each kind
// to one status code.
var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Error is a classified failure whose message is safe to show to clients.
type Error struct {
	kind error
	msg  string
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() error { return e.kind }

func newError(kind error, format string, args ...any) error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}
