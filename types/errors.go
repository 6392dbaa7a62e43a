package types

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindConfiguration       Kind = "configuration_error"
	KindValidation          Kind = "validation_error"
	KindNetwork             Kind = "network_error"
	KindPaymentData         Kind = "payment_data_error"
	KindPaymentConfirmation Kind = "payment_confirmation_error"
	KindUnhandled           Kind = "unhandled_error"
)

// Error carries the single user-facing message of a failed step.
type Error struct {
	Kind    Kind
	Message string
	Field   string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func NewConfigurationError(message string, err error) *Error {
	return NewError(KindConfiguration, message, err)
}

// NewValidationError records the offending field so callers can move focus to it.
func NewValidationError(field, message string) *Error {
	return &Error{Kind: KindValidation, Message: message, Field: field}
}

func NewNetworkError(message string, err error) *Error {
	return NewError(KindNetwork, message, err)
}

func NewPaymentDataError(message string, err error) *Error {
	return NewError(KindPaymentData, message, err)
}

func NewPaymentConfirmationError(message string, err error) *Error {
	return NewError(KindPaymentConfirmation, message, err)
}

func NewUnhandledError(message string, err error) *Error {
	return NewError(KindUnhandled, message, err)
}

// KindOf returns the kind of the first *Error in the chain, or KindUnhandled.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnhandled
}

// MessageOf returns the user-facing message of err, falling back when none is present.
func MessageOf(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Message != "" {
			return e.Message
		}
		return fallback
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
