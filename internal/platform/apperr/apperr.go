package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Code identifica la clase de error que ve el caller.
type Code string

const (
	CodeUnauthenticated   Code = "UNAUTHENTICATED"
	CodeInvalidCapability Code = "INVALID_CAPABILITY"
	CodeNotFound          Code = "NOT_FOUND"
	CodeConflict          Code = "CONFLICT"
	CodeValidation        Code = "VALIDATION_FAILED"
	CodeUnavailable       Code = "UNAVAILABLE"
	CodeInternal          Code = "INTERNAL"
)

// Error es el error tipado que cruza las capas domain -> handler.
// Message es seguro para devolver al cliente; Cause queda solo para logs.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Is compara por código, así errors.Is(err, apperr.ErrNotFound) funciona
// aunque el mensaje sea distinto.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Sentinels por código (para errors.Is).
var (
	ErrUnauthenticated   = &Error{Code: CodeUnauthenticated, Message: "unauthenticated"}
	ErrInvalidCapability = &Error{Code: CodeInvalidCapability, Message: "invalid or expired token"}
	ErrNotFound          = &Error{Code: CodeNotFound, Message: "not found"}
	ErrConflict          = &Error{Code: CodeConflict, Message: "conflict"}
	ErrValidation        = &Error{Code: CodeValidation, Message: "validation failed"}
	ErrUnavailable       = &Error{Code: CodeUnavailable, Message: "temporarily unavailable"}
)

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(err error, code Code, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Cause: err}
}

func NotFound(what string) *Error {
	return &Error{Code: CodeNotFound, Message: what + " not found"}
}

func Validation(message string) *Error {
	return &Error{Code: CodeValidation, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Code: CodeConflict, Message: message}
}

// CodeOf devuelve el código de err; errores no tipados cuentan como internos,
// salvo timeouts/cancelaciones de storage que son reintentables.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return CodeUnavailable
	}
	return CodeInternal
}

// HTTPStatus traduce el código a status HTTP.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeUnauthenticated, CodeInvalidCapability:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeValidation:
		return http.StatusBadRequest
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage es el texto que puede ver el cliente: nunca la causa interna.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Code != CodeInternal {
		return e.Message
	}
	if CodeOf(err) == CodeUnavailable {
		return ErrUnavailable.Message
	}
	return "internal error"
}
