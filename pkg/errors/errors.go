// Package errors provides custom error types for the wircatalog system.
// These errors enable programmatic error checking across reconciliation
// and apply, and carry the business key an operator needs to fix a batch.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is, As and Join are re-exported so callers need only one errors import.
var (
	Is   = errors.Is
	As   = errors.As
	Join = errors.Join
)

// Common sentinel errors for the wircatalog system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrMalformedRecord indicates a seed record failed entity validation
	ErrMalformedRecord = errors.New("malformed record")

	// ErrDanglingReference indicates a checklist item points at a missing category or reference
	ErrDanglingReference = errors.New("dangling reference")

	// ErrDuplicateSequence indicates two checklist items share a WIR and sequence
	ErrDuplicateSequence = errors.New("duplicate sequence")

	// ErrStoreFailure indicates the transactional write failed
	ErrStoreFailure = errors.New("store failure")

	// ErrLockNotObtained indicates the apply lock is held by someone else
	ErrLockNotObtained = errors.New("lock not obtained")

	// ErrTimeout indicates that an operation timed out
	ErrTimeout = errors.New("operation timed out")
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

// MalformedRecordError reports a seed record that failed entity validation.
type MalformedRecordError struct {
	Batch    string
	Kind     string
	Key      string // business key, or id when no key can be derived
	Problems []string
}

// Error implements the error interface
func (e *MalformedRecordError) Error() string {
	where := e.Kind
	if e.Key != "" {
		where = fmt.Sprintf("%s %q", e.Kind, e.Key)
	}
	if e.Batch != "" {
		where = fmt.Sprintf("%s in batch %s", where, e.Batch)
	}
	return fmt.Sprintf("malformed %s: %s", where, strings.Join(e.Problems, "; "))
}

// Is implements errors.Is support
func (e *MalformedRecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}

// NewMalformedRecordError creates a new MalformedRecordError
func NewMalformedRecordError(batch, kind, key string, problems ...string) *MalformedRecordError {
	return &MalformedRecordError{Batch: batch, Kind: kind, Key: key, Problems: problems}
}

// DanglingReferenceError reports a checklist item whose category or
// reference cannot be resolved after alias rewriting.
type DanglingReferenceError struct {
	WIRCode    string
	ItemNumber string
	Field      string // "category_id" or "reference_id"
	TargetID   string
}

// Error implements the error interface
func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("checklist item %s/%s: %s %s does not resolve to any record",
		e.WIRCode, e.ItemNumber, e.Field, e.TargetID)
}

// Is implements errors.Is support
func (e *DanglingReferenceError) Is(target error) bool {
	return target == ErrDanglingReference
}

// NewDanglingReferenceError creates a new DanglingReferenceError
func NewDanglingReferenceError(wirCode, itemNumber, field, targetID string) *DanglingReferenceError {
	return &DanglingReferenceError{
		WIRCode:    wirCode,
		ItemNumber: itemNumber,
		Field:      field,
		TargetID:   targetID,
	}
}

// DuplicateSequenceError reports checklist items sharing a WIR and sequence.
type DuplicateSequenceError struct {
	WIRCode     string
	Sequence    int
	ItemNumbers []string
}

// Error implements the error interface
func (e *DuplicateSequenceError) Error() string {
	return fmt.Sprintf("duplicate sequence %d under %s (items: %s)",
		e.Sequence, e.WIRCode, strings.Join(e.ItemNumbers, ", "))
}

// Is implements errors.Is support
func (e *DuplicateSequenceError) Is(target error) bool {
	return target == ErrDuplicateSequence
}

// NewDuplicateSequenceError creates a new DuplicateSequenceError
func NewDuplicateSequenceError(wirCode string, sequence int, itemNumbers []string) *DuplicateSequenceError {
	return &DuplicateSequenceError{WIRCode: wirCode, Sequence: sequence, ItemNumbers: itemNumbers}
}

// StoreError represents a failure of the transactional write.
type StoreError struct {
	Operation string // "begin", "snapshot", "upsert", "commit", ...
	Kind      string
	Err       error
}

// Error implements the error interface
func (e *StoreError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("store %s of %s failed: %v", e.Operation, e.Kind, e.Err)
	}
	return fmt.Sprintf("store %s failed: %v", e.Operation, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *StoreError) Is(target error) bool {
	return target == ErrStoreFailure
}

// NewStoreError creates a new StoreError
func NewStoreError(operation, kind string, err error) *StoreError {
	return &StoreError{Operation: operation, Kind: kind, Err: err}
}

// LockError represents a failure to obtain or release the apply lock.
type LockError struct {
	Key string
	Err error
}

// Error implements the error interface
func (e *LockError) Error() string {
	return fmt.Sprintf("lock %s: %v", e.Key, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *LockError) Unwrap() error {
	return e.Err
}

// NewLockError creates a new LockError
func NewLockError(key string, err error) *LockError {
	return &LockError{Key: key, Err: err}
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

// Is implements errors.Is support
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidInput
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
	Format  string // "yaml", "uuid", ...
	File    string
	Line    int
	Column  int
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" && e.Line > 0 {
		return fmt.Sprintf("parse error in %s at %s:%d:%d: %s", e.Format, e.File, e.Line, e.Column, e.Message)
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

// Is implements errors.Is support
func (e *ParseError) Is(target error) bool {
	return target == ErrInvalidInput
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
	Operation string // "read", "write", "open", "close"
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
	Operation string // "create", "open", "load", "connect"
	Resource  string // "store", "locker", "batch", "config"
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

// IsMalformedRecord checks if an error is a malformed record error
func IsMalformedRecord(err error) bool {
	return errors.Is(err, ErrMalformedRecord)
}

// IsDanglingReference checks if an error is a dangling reference error
func IsDanglingReference(err error) bool {
	return errors.Is(err, ErrDanglingReference)
}

// IsDuplicateSequence checks if an error is a duplicate sequence error
func IsDuplicateSequence(err error) bool {
	return errors.Is(err, ErrDuplicateSequence)
}

// IsStoreFailure checks if an error is a store failure
func IsStoreFailure(err error) bool {
	return errors.Is(err, ErrStoreFailure)
}

// IsLockNotObtained checks if an error means the apply lock was busy
func IsLockNotObtained(err error) bool {
	return errors.Is(err, ErrLockNotObtained)
}

// IsTimeout checks if an error is a timeout error
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsAuthoringError reports whether err is one of the reconciliation-time
// errors that must be fixed in the seed batches rather than retried.
func IsAuthoringError(err error) bool {
	return IsMalformedRecord(err) || IsDanglingReference(err) || IsDuplicateSequence(err)
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

// WrapStore wraps an error as a StoreError
func WrapStore(operation, kind string, err error) error {
	if err == nil {
		return nil
	}
	return NewStoreError(operation, kind, err)
}
