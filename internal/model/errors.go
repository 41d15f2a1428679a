package model

import (
	"errors"
	"fmt"
)

// Sentinel categories. Concrete errors below match them through errors.Is.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrDelivery   = errors.New("delivery failed")

	// ErrTokenUnregistered marks a send the provider rejected because the
	// device token is no longer valid.
	ErrTokenUnregistered = errors.New("device token unregistered")
)

// Error codes carried by auth failures
const (
	CodeTokenExpired = "TOKEN_EXPIRED"
	CodeTokenInvalid = "TOKEN_INVALID"
)

// NotFoundError reports a referenced order, user, vendor or menu item that
// does not exist. It is always surfaced to the caller.
type NotFoundError struct {
	Resource string
	ID       any
}

func NewNotFound(resource string, id any) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func (e *NotFoundError) Error() string {
	if e.ID == nil {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s %v not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ValidationError reports malformed input. It is returned before any store
// mutation or provider call happens.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidation(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// DeliveryError wraps a failed best-effort side effect (push send, live store
// write). It never leaves the dispatcher or the sync bridge.
type DeliveryError struct {
	Op        string
	Recipient string
	Err       error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Recipient, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

func (e *DeliveryError) Is(target error) bool {
	return target == ErrDelivery
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}
