package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorType represents the category of domain error
type ErrorType string

const (
	// ErrorTypeValidation indicates input validation failure
	ErrorTypeValidation ErrorType = "VALIDATION_ERROR"

	// ErrorTypeNotFound indicates a unit or frame was not found
	ErrorTypeNotFound ErrorType = "NOT_FOUND"

	// ErrorTypeConflict indicates a conflict with existing state
	ErrorTypeConflict ErrorType = "CONFLICT"

	// ErrorTypeContent indicates a frame-index fault inside a Content
	ErrorTypeContent ErrorType = "CONTENT_ERROR"

	// ErrorTypeConversion indicates a failed atomic/composite conversion
	ErrorTypeConversion ErrorType = "CONVERSION_ERROR"

	// ErrorTypeRegistry indicates a registry-level fault
	ErrorTypeRegistry ErrorType = "REGISTRY_ERROR"

	// ErrorTypeInvalidMode indicates an atomic-only or composite-only
	// operation was called on a unit in the wrong mode. This is a
	// programming fault, not a recoverable condition.
	ErrorTypeInvalidMode ErrorType = "INVALID_MODE"

	// ErrorTypeMessage indicates a message-exchange fault
	ErrorTypeMessage ErrorType = "MESSAGE_ERROR"

	// ErrorTypeRelation indicates a relation-store fault
	ErrorTypeRelation ErrorType = "RELATION_ERROR"

	// ErrorTypeExport indicates a visualization/export fault
	ErrorTypeExport ErrorType = "EXPORT_ERROR"

	// ErrorTypeInternal indicates an unexpected internal failure
	ErrorTypeInternal ErrorType = "INTERNAL_ERROR"
)

// DomainError represents a domain-specific error with rich context
type DomainError struct {
	Type    ErrorType              `json:"type"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// New creates a new domain error
func New(errorType ErrorType, code string, message string) *DomainError {
	return &DomainError{
		Type:    errorType,
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Type, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Type, e.Code, e.Message)
}

// WithCause adds a cause to the error
func (e *DomainError) WithCause(cause error) *DomainError {
	e.Cause = cause
	return e
}

// WithDetail adds a detail to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *DomainError) WithDetails(details map[string]interface{}) *DomainError {
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// Is reports whether target carries the same type and code. Messages and
// details are not compared, so the predeclared errors below work as
// comparison targets for errors built at the call site.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

// Unwrap returns the underlying cause
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// NewValidationError creates a validation error
func NewValidationError(code string, message string) *DomainError {
	return New(ErrorTypeValidation, code, message)
}

// NewNotFoundError creates a not-found error
func NewNotFoundError(code string, message string) *DomainError {
	return New(ErrorTypeNotFound, code, message)
}

// NewConflictError creates a conflict error
func NewConflictError(code string, message string) *DomainError {
	return New(ErrorTypeConflict, code, message)
}

// NewContentError creates a content-index error
func NewContentError(code string, message string) *DomainError {
	return New(ErrorTypeContent, code, message)
}

// NewConversionError creates a conversion error
func NewConversionError(code string, message string) *DomainError {
	return New(ErrorTypeConversion, code, message)
}

// NewRegistryError creates a registry error
func NewRegistryError(code string, message string) *DomainError {
	return New(ErrorTypeRegistry, code, message)
}

// NewInvalidModeError creates an invalid-mode error for an operation
// called on a unit in the wrong mode
func NewInvalidModeError(operation string, mode string) *DomainError {
	return New(
		ErrorTypeInvalidMode,
		"INVALID_MODE",
		fmt.Sprintf("operation %q is not available on a %s unit", operation, mode),
	).WithDetail("operation", operation).WithDetail("mode", mode)
}

// NewMessageError creates a message-exchange error
func NewMessageError(code string, message string) *DomainError {
	return New(ErrorTypeMessage, code, message)
}

// NewRelationError creates a relation-store error
func NewRelationError(code string, message string) *DomainError {
	return New(ErrorTypeRelation, code, message)
}

// NewExportError creates an export error
func NewExportError(code string, message string) *DomainError {
	return New(ErrorTypeExport, code, message)
}

// NewInternalError creates an internal error
func NewInternalError(code string, message string) *DomainError {
	return New(ErrorTypeInternal, code, message)
}

// Wrap wraps an existing error, preserving its type and code when it is
// already a domain error
func Wrap(err error, message string) *DomainError {
	if de, ok := AsDomainError(err); ok {
		return New(de.Type, de.Code, message).WithCause(err)
	}
	return New(ErrorTypeInternal, "WRAPPED_ERROR", message).WithCause(err)
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, format string, args ...interface{}) *DomainError {
	return Wrap(err, fmt.Sprintf(format, args...))
}

// AsDomainError extracts a DomainError from err's chain
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if stderrors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// IsType checks if the error chain contains a domain error of the given type
func IsType(err error, errorType ErrorType) bool {
	if de, ok := AsDomainError(err); ok {
		return de.Type == errorType
	}
	return false
}

// IsValidation checks for a validation error
func IsValidation(err error) bool {
	return IsType(err, ErrorTypeValidation)
}

// IsNotFound checks for a not-found error
func IsNotFound(err error) bool {
	return IsType(err, ErrorTypeNotFound)
}

// IsConflict checks for a conflict error
func IsConflict(err error) bool {
	return IsType(err, ErrorTypeConflict)
}

// IsContentError checks for a content-index error
func IsContentError(err error) bool {
	return IsType(err, ErrorTypeContent)
}

// IsConversionError checks for a conversion error
func IsConversionError(err error) bool {
	return IsType(err, ErrorTypeConversion)
}

// IsRegistryError checks for a registry error
func IsRegistryError(err error) bool {
	return IsType(err, ErrorTypeRegistry)
}

// IsInvalidMode checks for an invalid-mode error
func IsInvalidMode(err error) bool {
	return IsType(err, ErrorTypeInvalidMode)
}

// Common domain errors - these are pre-defined errors that can be reused
// as comparison targets

var (
	// Frame and content errors
	ErrFrameNameRequired = New(
		ErrorTypeContent,
		"FRAME_NAME_REQUIRED",
		"Frame name is required",
	)

	ErrFrameDescriptionRequired = New(
		ErrorTypeContent,
		"FRAME_DESCRIPTION_REQUIRED",
		"Frame description is required",
	)

	ErrFrameRefRequired = New(
		ErrorTypeContent,
		"FRAME_REF_REQUIRED",
		"A typed frame requires a referenced unit id",
	)

	ErrFrameNotFound = New(
		ErrorTypeContent,
		"FRAME_NOT_FOUND",
		"No frame exists at the requested sequence",
	)

	ErrSeqOutOfRange = New(
		ErrorTypeContent,
		"SEQ_OUT_OF_RANGE",
		"Target sequence is outside the frame range",
	)

	ErrDuplicateLocalUnit = New(
		ErrorTypeContent,
		"DUPLICATE_LOCAL_UNIT",
		"A unit with this id is already cached locally",
	)

	ErrLocalUnitNotFound = New(
		ErrorTypeContent,
		"LOCAL_UNIT_NOT_FOUND",
		"No locally cached unit with this id",
	)

	// Conversion errors
	ErrChildrenPresent = New(
		ErrorTypeConversion,
		"CHILDREN_PRESENT",
		"Cannot simplify a unit that still has child frames",
	)

	ErrLocalCountInvalid = New(
		ErrorTypeConversion,
		"LOCAL_COUNT_INVALID",
		"Simplification requires exactly one local frame",
	)

	// Unit errors
	ErrUnitNameRequired = New(
		ErrorTypeValidation,
		"UNIT_NAME_REQUIRED",
		"Unit name is required",
	)

	ErrCompositeLocal = New(
		ErrorTypeValidation,
		"COMPOSITE_LOCAL",
		"Only atomic units may be cached locally",
	)

	// Registry errors
	ErrUnitNotFound = New(
		ErrorTypeNotFound,
		"UNIT_NOT_FOUND",
		"The requested unit does not exist",
	)

	ErrDuplicateUnitID = New(
		ErrorTypeRegistry,
		"DUPLICATE_UNIT_ID",
		"A unit with this id is already registered",
	)

	ErrIDCollision = New(
		ErrorTypeRegistry,
		"ID_COLLISION",
		"Could not allocate a unique unit id",
	)
)

// ValidationErrors aggregates multiple validation errors
type ValidationErrors struct {
	Errors []*DomainError `json:"errors"`
}

// NewValidationErrors creates a new validation errors collection
func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{
		Errors: make([]*DomainError, 0),
	}
}

// Add adds a validation error for a field
func (v *ValidationErrors) Add(field string, message string) {
	err := New(ErrorTypeValidation, "FIELD_VALIDATION_ERROR", message).
		WithDetail("field", field)
	v.Errors = append(v.Errors, err)
}

// AddError adds a pre-existing domain error
func (v *ValidationErrors) AddError(err *DomainError) {
	v.Errors = append(v.Errors, err)
}

// HasErrors returns true if there are validation errors
func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

// Error implements the error interface
func (v *ValidationErrors) Error() string {
	if len(v.Errors) == 0 {
		return ""
	}

	messages := make([]string, len(v.Errors))
	for i, err := range v.Errors {
		messages[i] = err.Message
	}
	return fmt.Sprintf("Validation failed: %s", strings.Join(messages, "; "))
}

// ToMap converts validation errors to a field-keyed map
func (v *ValidationErrors) ToMap() map[string][]string {
	result := make(map[string][]string)

	for _, err := range v.Errors {
		field, ok := err.Details["field"].(string)
		if !ok {
			field = "general"
		}

		result[field] = append(result[field], err.Message)
	}

	return result
}
