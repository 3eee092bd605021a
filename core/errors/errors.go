// Package errors provides the error taxonomy for result parsing and serialization.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	// ErrInvalidInput indicates input that is not well-formed XML or not a fragment at all
	ErrInvalidInput = errors.New("invalid input")
	// ErrShape indicates well-formed XML that does not hold exactly one result element
	ErrShape = errors.New("unexpected shape")
	// ErrUnsupported indicates a value type that has no text form
	ErrUnsupported = errors.New("unsupported")
)

// ArgumentError reports input that cannot be interpreted as an XML fragment.
type ArgumentError struct {
	Op      string // Operation that rejected the input (e.g., "parse", "from node")
	Message string // Human-readable error message
	Err     error  // Underlying error, if any
}

func (e *ArgumentError) Error() string {
	msg := e.Message
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg = fmt.Sprintf("%s: %v", msg, e.Err)
		}
	}
	if e.Op != "" {
		return fmt.Sprintf("invalid argument to %s: %s", e.Op, msg)
	}
	return fmt.Sprintf("invalid argument: %s", msg)
}

func (e *ArgumentError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvalidInput, e.Err}
	}
	return []error{ErrInvalidInput}
}

// ShapeError reports well-formed XML holding zero or several candidate elements.
type ShapeError struct {
	Element string // Element name that was searched for
	Count   int    // Number of candidates found
}

func (e *ShapeError) Error() string {
	if e.Count == 0 {
		return fmt.Sprintf("no %s element", e.Element)
	}
	return fmt.Sprintf("ambiguous %s element", e.Element)
}

func (e *ShapeError) Unwrap() error {
	return ErrShape
}

// ValidationError represents an input validation error with context
type ValidationError struct {
	Field   string // Field name that failed validation
	Value   string // Value that failed validation (may be redacted)
	Message string // Human-readable error message
	Err     error  // Underlying error, if any
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// IOError represents an I/O operation error with context
type IOError struct {
	Operation string // Operation being performed (e.g., "read", "write")
	Path      string // File/resource path involved
	Err       error  // Underlying error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("failed to %s: %v", e.Operation, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// UnsupportedError represents a value or feature without a text form
type UnsupportedError struct {
	Feature string // Feature or type that is unsupported
	Reason  string // Why it's not supported
	Err     error  // Underlying error, if any
}

func (e *UnsupportedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unsupported %s: %s", e.Feature, e.Reason)
	}
	return fmt.Sprintf("unsupported %s", e.Feature)
}

func (e *UnsupportedError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrUnsupported
}

// Helper functions for creating common errors

// NewArgument creates an ArgumentError
func NewArgument(op, message string, err error) *ArgumentError {
	return &ArgumentError{
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// NewShape creates a ShapeError for the named element
func NewShape(element string, count int) *ShapeError {
	return &ShapeError{
		Element: element,
		Count:   count,
	}
}

// NewValidation creates a ValidationError
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// NewIO creates an IOError
func NewIO(operation, path string, err error) *IOError {
	return &IOError{
		Operation: operation,
		Path:      path,
		Err:       err,
	}
}

// NewUnsupported creates an UnsupportedError
func NewUnsupported(feature, reason string) *UnsupportedError {
	return &UnsupportedError{
		Feature: feature,
		Reason:  reason,
	}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
