// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrSymbolNotFound   = errors.New("symbol not found")
	ErrConnectionFailed = errors.New("connection failed")
	ErrRateLimited      = errors.New("rate limited")
	ErrMissingLineItem  = errors.New("statement line item missing")
	ErrConfigInvalid    = errors.New("invalid configuration")
	ErrNoDisplay        = errors.New("no display available")
)

// FetchError represents an error from the market data provider.
type FetchError struct {
	Symbol     string
	Operation  string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch error [%s] %s: status %d: %v", e.Symbol, e.Operation, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch error [%s] %s: %v", e.Symbol, e.Operation, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError creates a new FetchError.
func NewFetchError(symbol, operation string, statusCode int, err error) *FetchError {
	return &FetchError{
		Symbol:     symbol,
		Operation:  operation,
		StatusCode: statusCode,
		Err:        err,
	}
}

// MissingLineError is returned when a statement table lacks an expected row.
type MissingLineError struct {
	Entity string
	Symbol string
	Line   string
}

func (e *MissingLineError) Error() string {
	return fmt.Sprintf("statement for %s (%s) has no %q row", e.Entity, e.Symbol, e.Line)
}

func (e *MissingLineError) Unwrap() error {
	return ErrMissingLineItem
}

// NewMissingLineError creates a new MissingLineError.
func NewMissingLineError(entity, symbol, line string) *MissingLineError {
	return &MissingLineError{
		Entity: entity,
		Symbol: symbol,
		Line:   line,
	}
}

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrConfigInvalid
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
