// Package errors provides structured error handling with typed error codes.
//
// Error codes are organized into categories:
//   - General errors (1-99): Unknown and general errors
//   - Validation errors (100-199): Invalid parameters, step sizes, short price samples
//   - Market data errors (200-299): Feed and order book fetching, empty books
//   - Exchange errors (300-399): Rejected orders and cancels, account lookups
//   - Engine errors (400-499): Engine wiring, configuration versions, journals
//   - Callback errors (800-899): Callback execution failures
//
// Usage:
//
//	// Create a new error
//	err := errors.New(errors.ErrCodeInvalidParameter, "invalid parameter value")
//
//	// Wrap a transport failure for a market
//	err := errors.NewDataFetchError("ETH-USD", "order book", cause)
//
//	// Check error code
//	if errors.HasCode(err, errors.ErrCodeEmptyBook) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Error represents a structured error with an error code and message.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// New creates a new Error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   nil,
	}
}

// Newf creates a new Error with the given code and formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   nil,
	}
}

// Wrap wraps an existing error with a new Error containing the given code and message.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an existing error with a new Error containing the given code and formatted message.
func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}

	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// GetCode extracts the ErrorCode from an error.
// Returns ErrCodeUnknown if nothing in the chain carries a code.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	var sampleErr *InsufficientSampleError
	if errors.As(err, &sampleErr) {
		return ErrCodeInsufficientSample
	}

	return ErrCodeUnknown
}

// HasCode checks if an error has a specific ErrorCode.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// InsufficientSampleError is returned when a price sample is too short for
// a statistic (the sample standard deviation needs at least two points).
type InsufficientSampleError struct {
	Required int    // Minimum data points required
	Actual   int    // Actual data points available
	Symbol   string // Optional: market context
	Message  string
}

// NewInsufficientSampleError creates a new InsufficientSampleError.
func NewInsufficientSampleError(required, actual int, symbol string) *InsufficientSampleError {
	return &InsufficientSampleError{
		Required: required,
		Actual:   actual,
		Symbol:   symbol,
		Message:  fmt.Sprintf("insufficient price sample: required %d, got %d", required, actual),
	}
}

// Error implements the error interface.
func (e *InsufficientSampleError) Error() string {
	if e.Symbol != "" {
		return fmt.Sprintf("%s: %s", e.Symbol, e.Message)
	}

	return e.Message
}

// IsInsufficientSampleError checks if an error is an InsufficientSampleError.
func IsInsufficientSampleError(err error) bool {
	var sampleErr *InsufficientSampleError

	return errors.As(err, &sampleErr)
}

// NewDataFetchError reports a network or timeout failure while fetching
// market data (closes, order book, market info) for a market.
func NewDataFetchError(symbol, what string, cause error) *Error {
	return Wrapf(ErrCodeDataFetchFailed, cause, "failed to fetch %s for %s", what, symbol)
}

// NewEmptyBookError reports an order book side with fewer levels than requested.
func NewEmptyBookError(symbol, side string, depth int) *Error {
	return Newf(ErrCodeEmptyBook, "order book for %s has no %s level at depth %d", symbol, side, depth)
}

// NewInvalidStepSizeError reports a non-positive market step size.
func NewInvalidStepSizeError(symbol, stepSize string) *Error {
	return Newf(ErrCodeInvalidStepSize, "invalid step size %q for %s: must be greater than zero", stepSize, symbol)
}

// NewExchangeRejectionError reports an order or cancel call rejected by the venue.
func NewExchangeRejectionError(symbol, action string, cause error) *Error {
	return Wrapf(ErrCodeExchangeRejected, cause, "exchange rejected %s for %s", action, symbol)
}

// IsDataFetchError reports whether err carries ErrCodeDataFetchFailed.
func IsDataFetchError(err error) bool {
	return HasCode(err, ErrCodeDataFetchFailed)
}

// IsEmptyBookError reports whether err carries ErrCodeEmptyBook.
func IsEmptyBookError(err error) bool {
	return HasCode(err, ErrCodeEmptyBook)
}

// IsInvalidStepSizeError reports whether err carries ErrCodeInvalidStepSize.
func IsInvalidStepSizeError(err error) bool {
	return HasCode(err, ErrCodeInvalidStepSize)
}

// IsExchangeRejectionError reports whether err carries ErrCodeExchangeRejected.
func IsExchangeRejectionError(err error) bool {
	return HasCode(err, ErrCodeExchangeRejected)
}
