package recgen

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for common operations.
var (
	// ErrNotFound is returned when a requested record does not exist,
	// when an optimistic update matched zero rows, or when a relation
	// triple is not recognized.
	ErrNotFound = errors.New("recgen: record not found")

	// ErrMissingOpenParen reports an optional text value that does not
	// start with '('.
	ErrMissingOpenParen = errors.New("recgen: missing opening parenthesis")

	// ErrMissingCloseParen reports an optional text value that does not
	// end with ')'.
	ErrMissingCloseParen = errors.New("recgen: missing closing parenthesis")
)

// NotFoundError reports a missing record, a lost optimistic-update
// race, or an unrecognized relation triple.
type NotFoundError struct {
	label string
	id    any // optional: the identifier that was searched for
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	if e.id != nil {
		return fmt.Sprintf("recgen: %s not found (id=%v)", e.label, e.id)
	}
	return fmt.Sprintf("recgen: %s not found", e.label)
}

// Is reports whether the target error matches NotFoundError. This
// allows errors.Is(err, ErrNotFound) to return true.
func (e *NotFoundError) Is(err error) bool {
	return err == ErrNotFound
}

// Label returns the record type label.
func (e *NotFoundError) Label() string {
	return e.label
}

// ID returns the identifier that was searched for, if available.
func (e *NotFoundError) ID() any {
	return e.id
}

// NewNotFoundError returns a new NotFoundError for the given record type.
func NewNotFoundError(label string) *NotFoundError {
	return &NotFoundError{label: label}
}

// NewNotFoundErrorWithID returns a new NotFoundError with the
// identifier that was searched for.
func NewNotFoundErrorWithID(label string, id any) *NotFoundError {
	return &NotFoundError{label: label, id: id}
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *NotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrNotFound)
}

// UnknownAttributeError reports a generic get or set against an
// attribute the record type does not expose.
type UnknownAttributeError struct {
	Type      string // record type name
	Attribute string // requested attribute name
}

// Error returns the error string.
func (e *UnknownAttributeError) Error() string {
	return fmt.Sprintf("recgen: unknown attribute %q on %s", e.Attribute, e.Type)
}

// NewUnknownAttributeError returns a new UnknownAttributeError.
func NewUnknownAttributeError(typ, attr string) *UnknownAttributeError {
	return &UnknownAttributeError{Type: typ, Attribute: attr}
}

// IsUnknownAttribute returns true if the error is an UnknownAttributeError.
func IsUnknownAttribute(err error) bool {
	if err == nil {
		return false
	}
	var e *UnknownAttributeError
	return errors.As(err, &e)
}

// ImmutableAttributeError reports a generic set against id, version,
// or an attribute not declared mutable.
type ImmutableAttributeError struct {
	Type      string
	Attribute string
}

// Error returns the error string.
func (e *ImmutableAttributeError) Error() string {
	return fmt.Sprintf("recgen: attribute %q on %s is not mutable", e.Attribute, e.Type)
}

// NewImmutableAttributeError returns a new ImmutableAttributeError.
func NewImmutableAttributeError(typ, attr string) *ImmutableAttributeError {
	return &ImmutableAttributeError{Type: typ, Attribute: attr}
}

// IsImmutableAttribute returns true if the error is an ImmutableAttributeError.
func IsImmutableAttribute(err error) bool {
	if err == nil {
		return false
	}
	var e *ImmutableAttributeError
	return errors.As(err, &e)
}

// ParseError reports text that does not convert to an attribute's base
// type, including a malformed optional encoding.
type ParseError struct {
	Value string // the offending input
	Err   error  // underlying conversion error
}

// Error returns the error string.
func (e *ParseError) Error() string {
	return fmt.Sprintf("recgen: cannot parse %q: %v", e.Value, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError returns a new ParseError wrapping the conversion error.
func NewParseError(value string, err error) *ParseError {
	return &ParseError{Value: value, Err: err}
}

// IsParseError returns true if the error is a ParseError.
func IsParseError(err error) bool {
	if err == nil {
		return false
	}
	var e *ParseError
	return errors.As(err, &e)
}

// ValidationError reports a schema integrity violation or a rejection
// by a configured record validator.
type ValidationError struct {
	Name string // record or attribute name
	Err  error  // underlying validation error
}

// Error returns the error string.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("recgen: validation failed for %q: %v", e.Name, e.Err)
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError returns a new ValidationError.
func NewValidationError(name string, err error) *ValidationError {
	return &ValidationError{Name: name, Err: err}
}

// IsValidation returns true if the error is a ValidationError.
func IsValidation(err error) bool {
	if err == nil {
		return false
	}
	var e *ValidationError
	return errors.As(err, &e)
}

// MissingMandatoryError reports a factory finalize with a mandatory
// attribute that was never set.
type MissingMandatoryError struct {
	Type      string
	Attribute string
}

// Error returns the error string.
func (e *MissingMandatoryError) Error() string {
	return fmt.Sprintf("recgen: mandatory attribute %q on %s not set", e.Attribute, e.Type)
}

// NewMissingMandatoryError returns a new MissingMandatoryError.
func NewMissingMandatoryError(typ, attr string) *MissingMandatoryError {
	return &MissingMandatoryError{Type: typ, Attribute: attr}
}

// IsMissingMandatory returns true if the error is a MissingMandatoryError.
func IsMissingMandatory(err error) bool {
	if err == nil {
		return false
	}
	var e *MissingMandatoryError
	return errors.As(err, &e)
}

// MutationError wraps a store-level mutation failure with its context.
type MutationError struct {
	Type string // record type being mutated
	Op   string // operation ("create", "update", "delete", "mass-create")
	Err  error  // underlying error
}

// Error returns the error string.
func (e *MutationError) Error() string {
	return fmt.Sprintf("recgen: %s %s: %v", e.Op, e.Type, e.Err)
}

// Unwrap returns the underlying error.
func (e *MutationError) Unwrap() error {
	return e.Err
}

// NewMutationError returns a new MutationError.
func NewMutationError(typ, op string, err error) *MutationError {
	return &MutationError{Type: typ, Op: op, Err: err}
}

// IsMutationError returns true if the error is a MutationError.
func IsMutationError(err error) bool {
	if err == nil {
		return false
	}
	var e *MutationError
	return errors.As(err, &e)
}
