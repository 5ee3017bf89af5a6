package service

import (
	"errors"
	"fmt"
)

// Error kinds returned by the services. Match them with errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidState      = errors.New("invalid state")
	ErrConflict          = errors.New("conflict")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrConsistency       = errors.New("consistency error")
)

// DomainError carries a message that is safe to show to API clients along
// with the error kind used for status mapping.
type DomainError struct {
	Kind    error
	Also    error // optional secondary kind
	Message string
	Context map[string]any
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Unwrap() []error {
	if e.Also != nil {
		return []error{e.Kind, e.Also}
	}
	return []error{e.Kind}
}

func newDomainError(kind error, format string, args ...any) *DomainError {
	return &DomainError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func notFound(format string, args ...any) error {
	return newDomainError(ErrNotFound, format, args...)
}

func invalidState(format string, args ...any) error {
	return newDomainError(ErrInvalidState, format, args...)
}

func conflict(format string, args ...any) error {
	return newDomainError(ErrConflict, format, args...)
}

func invalidArgument(format string, args ...any) error {
	return newDomainError(ErrInvalidArgument, format, args...)
}

// consistencyError marks a fatal data inconsistency. It also matches
// ErrNotFound because the usual cause is a row that vanished mid-transaction.
func consistencyError(format string, args ...any) error {
	err := newDomainError(ErrConsistency, format, args...)
	err.Also = ErrNotFound
	return err
}

func insufficientFunds(available, amount int64) error {
	err := newDomainError(ErrInsufficientFunds, "Insufficient tokens. You have %d, need %d", available, amount)
	err.Context = map[string]any{"available": available, "required": amount}
	return err
}
