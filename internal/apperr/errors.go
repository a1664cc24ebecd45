// Package apperr holds the error taxonomy shared by the services and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound entity id or share token does not resolve
	ErrNotFound = errors.New("not found")
	// ErrForbidden authenticated but not the owner
	ErrForbidden = errors.New("forbidden")
	// ErrValidation malformed input
	ErrValidation = errors.New("validation failed")
	// ErrExternal object store or vision backend failure
	ErrExternal = errors.New("external service error")
	// ErrPersistence database failure
	ErrPersistence = errors.New("persistence error")
)

// Error carries an operation name and a cause under one of the sentinel kinds.
type Error struct {
	Kind error
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NotFound 资源不存在
func NotFound(op, msg string) error {
	return &Error{Kind: ErrNotFound, Op: op, Msg: msg}
}

// Forbidden 无权访问
func Forbidden(op, msg string) error {
	return &Error{Kind: ErrForbidden, Op: op, Msg: msg}
}

// Validation 参数非法
func Validation(op, msg string) error {
	return &Error{Kind: ErrValidation, Op: op, Msg: msg}
}

// External wraps an object store or vision failure.
func External(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: ErrExternal, Op: op, Err: err}
}

// Persistence wraps a database failure.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: ErrPersistence, Op: op, Err: err}
}

// Message returns the user-facing message of err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Msg != "" {
			return e.Msg
		}
		return e.Kind.Error()
	}
	return err.Error()
}
