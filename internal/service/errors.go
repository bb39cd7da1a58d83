// Package service implements the item and account operations behind the
// HTTP API. Callers get *validate.FieldError for bad input and one of the
// sentinel errors below for everything a client can act on.
package service

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
)

// Error pairs one of the sentinels with a message meant for the client.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Kind }

func failure(kind error, message string) error {
	return &Error{Kind: kind, Message: message}
}
