package service

import (
	"errors"
	"fmt"
)

// Error kinds. Match them with errors.Is; the text doubles as the API error code.
var (
	ErrNotFound         = errors.New("entity:notfound")
	ErrInvalidParameter = errors.New("parameter:invalid")
	ErrPermissionDenied = errors.New("permission:denied")
	ErrConflict         = errors.New("resource:conflict")
)

// Error is a client-facing failure. Data names the entity or field involved.
type Error struct {
	Kind    error
	Data    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Data, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// Code returns the machine-readable error code, e.g. "entity:notfound".
func (e *Error) Code() string {
	return e.Kind.Error()
}

// NotFound reports that the named entity does not exist.
func NotFound(entity string) *Error {
	return &Error{Kind: ErrNotFound, Data: entity, Message: entity + " not found"}
}

// InvalidParam reports a bad request parameter.
func InvalidParam(field, message string) *Error {
	return &Error{Kind: ErrInvalidParameter, Data: field, Message: message}
}

// PermissionDenied reports that the caller lacks a required role.
func PermissionDenied(message string) *Error {
	return &Error{Kind: ErrPermissionDenied, Data: "permission", Message: message}
}

// Conflict reports that the request clashes with the current state of entity.
func Conflict(entity, message string) *Error {
	return &Error{Kind: ErrConflict, Data: entity, Message: message}
}
