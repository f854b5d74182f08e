// Package errors provides standardized error types and helpers for the ArenaForge codebase.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates invalid input or validation failure
	ErrInvalidInput = errors.New("invalid input")
	// ErrMalformedConstruct indicates a choice construct with an invalid shape
	ErrMalformedConstruct = errors.New("malformed construct")
	// ErrOverRestricted indicates a restriction asking for more combinations than exist
	ErrOverRestricted = errors.New("over-restricted")
	// ErrCardinalityOverflow indicates a variant count exceeding the configured ceiling
	ErrCardinalityOverflow = errors.New("cardinality overflow")
	// ErrForwardReference indicates a reference that cannot be resolved to a literal
	ErrForwardReference = errors.New("forward reference")
	// ErrUnmatchedCase indicates a conditional with no matching case and no default
	ErrUnmatchedCase = errors.New("unmatched case")
	// ErrPaletteExhausted indicates a draw larger than the palette
	ErrPaletteExhausted = errors.New("palette exhausted")
)

// MalformedConstructError reports a construct whose declared shape is invalid:
// misaligned labels, nested constructs where literals are required, a bad
// amount, or the wrong field set for its tag.
type MalformedConstructError struct {
	Key       string // Position key of the construct (e.g., "arenas.0.items.1.sizes")
	Construct string // Construct tag (e.g., "!ProcIf")
	Message   string // Human-readable error message
	Err       error  // Underlying error, if any
}

func (e *MalformedConstructError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("malformed %s at %s: %s", e.Construct, e.Key, e.Message)
	}
	return fmt.Sprintf("malformed %s: %s", e.Construct, e.Message)
}

func (e *MalformedConstructError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrMalformedConstruct
}

// OverRestrictedError reports a restriction requesting more distinct
// combinations than its inner content can produce.
type OverRestrictedError struct {
	Key     string // Position key of the restricting construct
	Amount  int    // Requested number of combinations
	Natural int64  // Number of combinations that actually exist
}

func (e *OverRestrictedError) Error() string {
	return fmt.Sprintf("cannot pick %d distinct combinations at %s: only %d exist", e.Amount, e.Key, e.Natural)
}

func (e *OverRestrictedError) Unwrap() error {
	return ErrOverRestricted
}

// CardinalityOverflowError reports a total variant count that exceeds the
// configured ceiling (or overflows int64, in which case Total saturates).
type CardinalityOverflowError struct {
	Key     string // Position key of the compound construct, empty for the whole template
	Total   int64  // Computed variant count
	Ceiling int64  // Configured ceiling
}

func (e *CardinalityOverflowError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("variant count %d at %s exceeds ceiling %d", e.Total, e.Key, e.Ceiling)
	}
	return fmt.Sprintf("variant count %d exceeds ceiling %d", e.Total, e.Ceiling)
}

func (e *CardinalityOverflowError) Unwrap() error {
	return ErrCardinalityOverflow
}

// ForwardReferenceError reports a conditional reference that did not resolve
// to a concrete literal when the conditional was evaluated.
type ForwardReferenceError struct {
	Key    string // Position key of the referencing conditional
	Ref    string // The reference path as written (e.g., "wall.sizes.0.x")
	Reason string // Why resolution failed
}

func (e *ForwardReferenceError) Error() string {
	return fmt.Sprintf("unresolvable reference %q at %s: %s", e.Ref, e.Key, e.Reason)
}

func (e *ForwardReferenceError) Unwrap() error {
	return ErrForwardReference
}

// UnmatchedCaseError reports a conditional whose referenced values matched no
// case, with no default to fall back to (or no default label when the
// conditional is labelled).
type UnmatchedCaseError struct {
	Key    string        // Position key of the conditional
	Values []interface{} // Referenced values that matched nothing
}

func (e *UnmatchedCaseError) Error() string {
	return fmt.Sprintf("no case matched values %v at %s and no default given", e.Values, e.Key)
}

func (e *UnmatchedCaseError) Unwrap() error {
	return ErrUnmatchedCase
}

// PaletteExhaustionError reports a color draw larger than the palette.
type PaletteExhaustionError struct {
	Key    string // Position key of the drawing construct
	Amount int    // Requested number of values
	Size   int    // Palette size
}

func (e *PaletteExhaustionError) Error() string {
	return fmt.Sprintf("cannot draw %d colors at %s: palette has %d", e.Amount, e.Key, e.Size)
}

func (e *PaletteExhaustionError) Unwrap() error {
	return ErrPaletteExhausted
}

// NotFoundError represents a resource not found error with context
type NotFoundError struct {
	Resource string // Type of resource (e.g., "run", "template", "variant")
	ID       string // Identifier of the resource
	Err      error  // Underlying error, if any
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrNotFound
}

// IOError represents an I/O operation error with context
type IOError struct {
	Operation string // Operation being performed (e.g., "read", "write", "open")
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

// ParseError represents a parsing or deserialization error
type ParseError struct {
	Format  string // Format being parsed (e.g., "YAML", "reference")
	Path    string // File path, if applicable
	Message string // Error details
	Err     error  // Underlying error, if any
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to parse %s at %s: %s", e.Format, e.Path, e.Message)
	}
	return fmt.Sprintf("failed to parse %s: %s", e.Format, e.Message)
}

func (e *ParseError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// Helper functions for creating common errors

// NewMalformedConstruct creates a MalformedConstructError
func NewMalformedConstruct(key, construct, message string) *MalformedConstructError {
	return &MalformedConstructError{
		Key:       key,
		Construct: construct,
		Message:   message,
	}
}

// NewOverRestricted creates an OverRestrictedError
func NewOverRestricted(key string, amount int, natural int64) *OverRestrictedError {
	return &OverRestrictedError{
		Key:     key,
		Amount:  amount,
		Natural: natural,
	}
}

// NewCardinalityOverflow creates a CardinalityOverflowError
func NewCardinalityOverflow(key string, total, ceiling int64) *CardinalityOverflowError {
	return &CardinalityOverflowError{
		Key:     key,
		Total:   total,
		Ceiling: ceiling,
	}
}

// NewForwardReference creates a ForwardReferenceError
func NewForwardReference(key, ref, reason string) *ForwardReferenceError {
	return &ForwardReferenceError{
		Key:    key,
		Ref:    ref,
		Reason: reason,
	}
}

// NewUnmatchedCase creates an UnmatchedCaseError
func NewUnmatchedCase(key string, values []interface{}) *UnmatchedCaseError {
	return &UnmatchedCaseError{
		Key:    key,
		Values: values,
	}
}

// NewPaletteExhaustion creates a PaletteExhaustionError
func NewPaletteExhaustion(key string, amount, size int) *PaletteExhaustionError {
	return &PaletteExhaustionError{
		Key:    key,
		Amount: amount,
		Size:   size,
	}
}

// NewNotFound creates a NotFoundError
func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		ID:       id,
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

// NewParse creates a ParseError
func NewParse(format, path, message string) *ParseError {
	return &ParseError{
		Format:  format,
		Path:    path,
		Message: message,
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
