// Package apperr defines coded application errors. An Error carries
// a stable machine code, a message safe to show to users, an
// optional debug cause that never leaves the process and the HTTP
// status used when the error reaches the API.
package apperr

import (
	"errors"
	"net/http"
)

// Error is a coded, user-facing error.
type Error struct {
	code       string
	msgToUser  string
	debugErr   error
	httpStatus int
}

// New creates an Error with the given code and user message.
func New(code, msgToUser string) *Error {
	return &Error{
		code:      code,
		msgToUser: msgToUser,
	}
}

func (e *Error) Error() string {
	return e.msgToUser
}

// Code returns the machine-readable error code.
func (e *Error) Code() string {
	return e.code
}

// Debug returns the private cause, if any.
func (e *Error) Debug() error {
	return e.debugErr
}

// Unwrap exposes the debug cause to errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.debugErr
}

// SetDebug attaches a private cause.
func (e *Error) SetDebug(err error) *Error {
	e.debugErr = err
	return e
}

// HTTPStatus returns the status code for API responses,
// defaulting to 500.
func (e *Error) HTTPStatus() int {
	if e.httpStatus == 0 {
		return http.StatusInternalServerError
	}
	return e.httpStatus
}

// SetHTTPStatus sets the status code for API responses.
func (e *Error) SetHTTPStatus(code int) *Error {
	e.httpStatus = code
	return e
}

// As returns the *Error in err's chain, if there is one.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code string) bool {
	ae, ok := As(err)
	return ok && ae.code == code
}

const (
	CodeInternal     = "internal_server_error"
	CodeNotFound     = "not_found"
	CodeInvalidInput = "invalid_input"
	CodeUnauthorized = "unauthorized"
)

// Internal returns a generic internal error wrapping cause.
func Internal(cause error) *Error {
	return New(CodeInternal, "internal server error").
		SetDebug(cause).
		SetHTTPStatus(http.StatusInternalServerError)
}

// NotFound returns a 404 error with the given message.
func NotFound(msg string) *Error {
	return New(CodeNotFound, msg).SetHTTPStatus(http.StatusNotFound)
}

// InvalidInput returns a 400 error with the given message.
func InvalidInput(msg string) *Error {
	return New(CodeInvalidInput, msg).
		SetHTTPStatus(http.StatusBadRequest)
}

// Unauthorized returns a 401 error with the given message.
func Unauthorized(msg string) *Error {
	return New(CodeUnauthorized, msg).
		SetHTTPStatus(http.StatusUnauthorized)
}
