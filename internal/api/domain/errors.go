package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound matches any *NotFoundError
	ErrNotFound = errors.New("not found")

	// ErrConflict matches any *ConflictError
	ErrConflict = errors.New("conflict")

	// ErrInvalidCredentials is returned by login for an unknown email or wrong password
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailDelivery marks a transition that succeeded while its email did not
	ErrEmailDelivery = errors.New("email delivery failed")
)

// NotFoundError names the entity and id that did not resolve
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFound creates a NotFoundError
func NewNotFound(entity string, id int64) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// ConflictError is a rejected transition; nothing was mutated
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return e.Reason
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// NewConflict creates a ConflictError
func NewConflict(reason string) error {
	return &ConflictError{Reason: reason}
}

// IsConflictReason reports whether err is a conflict with the given reason
func IsConflictReason(err error, reason string) bool {
	var conflict *ConflictError
	return errors.As(err, &conflict) && conflict.Reason == reason
}
