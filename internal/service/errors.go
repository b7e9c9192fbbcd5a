package service

import (
	"errors"
	"fmt"
)

// ErrUnauthorized is returned when an operation needs an authenticated caller
var ErrUnauthorized = errors.New("authentication credentials were not provided")

// ValidationError rejects a request field before anything is persisted
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NotFoundError is returned when a referenced row does not exist
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// ConflictError is returned when a write would violate a uniqueness rule
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// ForbiddenError is returned when the caller may not act on a resource
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string { return e.Message }

func invalid(field string, kind MessageKind, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: Format(kind, args...)}
}

func notFound(kind MessageKind, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: Format(kind, args...)}
}

func conflict(kind MessageKind, args ...interface{}) *ConflictError {
	return &ConflictError{Message: Format(kind, args...)}
}

func forbidden(kind MessageKind, args ...interface{}) *ForbiddenError {
	return &ForbiddenError{Message: Format(kind, args...)}
}
