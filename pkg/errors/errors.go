// Package errors provides custom error types for the userdetails system.
// These errors enable programmatic error checking (errors.Is / errors.As)
// across the form, the record store, and the HTTP layer.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the userdetails system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict indicates the operation cannot run in the current state
	ErrConflict = errors.New("conflict")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")
)

// Kind classifies a field validation failure.
type Kind string

const (
	// Required means the field was empty.
	Required Kind = "Required"
	// PatternMismatch means the field was present but malformed.
	PatternMismatch Kind = "PatternMismatch"
)

// ValidationError represents a validation failure for a single field
type ValidationError struct {
	Field   string
	Kind    Kind
	Value   interface{}
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, kind Kind, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Kind: kind, Value: value, Message: message}
}

// ValidationErrors is an ordered set of field failures. A nil or empty
// ValidationErrors means the input is valid.
type ValidationErrors []*ValidationError

// Error implements the error interface
func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, e.Field+": "+e.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Is implements errors.Is support
func (v ValidationErrors) Is(target error) bool {
	return target == ErrInvalidInput
}

// For returns the failure for field, or nil.
func (v ValidationErrors) For(field string) *ValidationError {
	for _, e := range v {
		if e.Field == field {
			return e
		}
	}
	return nil
}

// Message returns the message for field, or "".
func (v ValidationErrors) Message(field string) string {
	if e := v.For(field); e != nil {
		return e.Message
	}
	return ""
}

// Fields returns a field -> message map, convenient for JSON and templates.
func (v ValidationErrors) Fields() map[string]string {
	out := make(map[string]string, len(v))
	for _, e := range v {
		out[e.Field] = e.Message
	}
	return out
}

// Err returns v as an error, or nil when there are no failures.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// StateError reports an operation attempted in a state that does not allow it,
// such as editing a form while it is submitting.
type StateError struct {
	Operation string
	State     string
	Err       error
}

// Error implements the error interface
func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s while %s: %v", e.Operation, e.State, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *StateError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *StateError) Is(target error) bool {
	return target == ErrConflict
}

// NewStateError creates a new StateError
func NewStateError(operation, state string, err error) *StateError {
	return &StateError{Operation: operation, State: state, Err: err}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "json", "yaml"
	File    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, file string, err error) *ParseError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ParseError{
		Format:  format,
		File:    file,
		Message: message,
		Err:     err,
	}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "open"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsConflict checks if an error is a state conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsCanceled checks if an error is a cancellation error
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// AsValidationErrors extracts field failures from err, if any.
func AsValidationErrors(err error) (ValidationErrors, bool) {
	var verrs ValidationErrors
	if errors.As(err, &verrs) {
		return verrs, true
	}
	var single *ValidationError
	if errors.As(err, &single) {
		return ValidationErrors{single}, true
	}
	return nil, false
}

// WrapResource wraps err with the operation and resource it failed on.
func WrapResource(operation, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	if id != "" {
		return fmt.Errorf("failed to %s %s %s: %w", operation, resource, id, err)
	}
	return fmt.Errorf("failed to %s %s: %w", operation, resource, err)
}
