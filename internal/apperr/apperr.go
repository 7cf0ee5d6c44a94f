package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error taxonomy for the API boundary. Business failures are wrapped in an
// *Error carrying the HTTP status; anything else is treated as a server
// error, logged in full and surfaced to the caller as a generic message.
type Error struct {
	Status  int    // HTTP status code
	Message string // Message returned to the caller
	Err     error  // Optional underlying cause, not serialized
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Status: http.StatusNotFound, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Status: http.StatusForbidden, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Status: http.StatusConflict, Message: message}
}

func Unauthorized(message string) *Error {
	return &Error{Status: http.StatusUnauthorized, Message: message}
}

// InsufficientFunds is a 400, not a 402.
func InsufficientFunds() *Error {
	return &Error{Status: http.StatusBadRequest, Message: "Insufficient balance"}
}

// From extracts an *Error from err, or nil if err is not one.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}
