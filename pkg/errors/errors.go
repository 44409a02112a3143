// Package errors provides custom error types for the panmap system.
// These errors enable programmatic error checking across the aggregation,
// reconciliation and retrieval layers.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is reports whether any error in err's tree matches target.
var Is = errors.Is

// As finds the first error in err's tree that matches target.
var As = errors.As

// Common sentinel errors for the panmap system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrRetrievalExhausted indicates every download attempt for a file failed
	ErrRetrievalExhausted = errors.New("retrieval exhausted")

	// ErrConflict indicates two taxa resolved to the same canonical name
	ErrConflict = errors.New("canonical name conflict")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")
)

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

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   any
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
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// ColumnError reports required columns missing from a tabular input.
type ColumnError struct {
	Table   string   // "reference catalog", "synonym table", "manifest"
	Path    string
	Missing []string
	Found   []string
}

// Error implements the error interface
func (e *ColumnError) Error() string {
	where := e.Table
	if e.Path != "" {
		where = fmt.Sprintf("%s %s", e.Table, e.Path)
	}
	return fmt.Sprintf("%s is missing required column(s) %s (found: %s)",
		where, quoteAll(e.Missing), quoteAll(e.Found))
}

// Is implements errors.Is support
func (e *ColumnError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewColumnError creates a new ColumnError
func NewColumnError(table, path string, missing, found []string) *ColumnError {
	return &ColumnError{Table: table, Path: path, Missing: missing, Found: found}
}

// RetrievalError represents a terminal download failure for an accession.
type RetrievalError struct {
	Accession string
	File      string
	Attempts  int
	Err       error // last attempt's error
}

// Error implements the error interface
func (e *RetrievalError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("retrieval of %s (%s) failed after %d attempts: %v", e.Accession, e.File, e.Attempts, e.Err)
	}
	return fmt.Sprintf("retrieval of %s failed after %d attempts: %v", e.Accession, e.Attempts, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *RetrievalError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *RetrievalError) Is(target error) bool {
	return target == ErrRetrievalExhausted
}

// NewRetrievalError creates a new RetrievalError
func NewRetrievalError(accession, file string, attempts int, err error) *RetrievalError {
	return &RetrievalError{
		Accession: accession,
		File:      file,
		Attempts:  attempts,
		Err:       err,
	}
}

// ConflictError represents taxa that collapse onto one canonical name
// when the reconciliation strategy forbids silent merging.
type ConflictError struct {
	Canonical string
	Taxa      []string
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return fmt.Sprintf("taxa %s all resolve to %s", quoteAll(e.Taxa), e.Canonical)
}

// Is implements errors.Is support
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// NewConflictError creates a new ConflictError
func NewConflictError(canonical string, taxa []string) *ConflictError {
	return &ConflictError{Canonical: canonical, Taxa: taxa}
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
	Format  string // "tsv", "csv", "yaml", etc.
	File    string
	Line    int
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" && e.Line > 0 {
		return fmt.Sprintf("parse error in %s at %s:%d: %s", e.Format, e.File, e.Line, e.Message)
	}
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
func NewParseError(format, file string, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		File:    file,
		Message: message,
		Err:     err,
	}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "create", "delete", "open", "close"
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

// ResourceError represents an error during resource operations
type ResourceError struct {
	Operation string // "load", "aggregate", "merge", "reconcile", "fetch"
	Resource  string // "catalog", "synonyms", "sample", "table"
	ID        string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ResourceError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("failed to %s %s %s: %s", e.Operation, e.Resource, e.ID, e.Message)
	}
	return fmt.Sprintf("failed to %s %s: %s", e.Operation, e.Resource, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ResourceError) Unwrap() error {
	return e.Err
}

// NewResourceError creates a new ResourceError
func NewResourceError(operation, resource, id string, err error) *ResourceError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ResourceError{
		Operation: operation,
		Resource:  resource,
		ID:        id,
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

// IsRetrievalExhausted checks if an error is a terminal retrieval failure
func IsRetrievalExhausted(err error) bool {
	return errors.Is(err, ErrRetrievalExhausted)
}

// IsConflict checks if an error is a canonical name conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsCanceled checks if an error is a cancellation error
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// Helper wrapping functions for common patterns

// WrapValidation wraps an error as a ValidationError
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapResource wraps an error as a ResourceError
func WrapResource(operation, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	return NewResourceError(operation, resource, id, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}

func quoteAll(values []string) string {
	if len(values) == 0 {
		return "none"
	}
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return strings.Join(quoted, ", ")
}
