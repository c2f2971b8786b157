package service

import "errors"

// Error kinds. Every error the service returns for a caller mistake wraps
// one of these; anything else is internal.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
	ErrNotFound     = errors.New("not found")
)

// Error pairs a kind with the message shown to the client.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func invalidInput(msg string) error {
	return &Error{Kind: ErrInvalidInput, Message: msg}
}

var (
	errInvalidCredentials = &Error{Kind: ErrUnauthorized, Message: "invalid credentials"}
	errNoSession          = &Error{Kind: ErrUnauthorized, Message: "unauthorized"}
	errEmailTaken         = &Error{Kind: ErrConflict, Message: "email already registered"}
	errNoteNotFound       = &Error{Kind: ErrNotFound, Message: "not found"}
)
