// Package errors defines the typed error taxonomy used across the isoforest
// library.
//
// All errors carry enough context to identify the failing operation without
// consulting stack traces, and every type participates in Go 1.13+ error
// wrapping so callers can use errors.Is / errors.As through arbitrary layers
// of fmt.Errorf("%w") wrapping. Internally the package builds on
// cockroachdb/errors, which attaches stack traces retrievable with "%+v".
package errors

import (
	"fmt"

	cockroach "github.com/cockroachdb/errors"
)

// Sentinel errors for common failure conditions. Compare with errors.Is.
var (
	// ErrEmptyData indicates an operation received a matrix or slice with no rows.
	ErrEmptyData = cockroach.New("empty data")

	// ErrInvalidWeights indicates row or column weights whose total is NaN or
	// non-positive. Operations that hit this condition degrade to unweighted
	// behavior instead of failing; the sentinel exists for the few callers
	// that want to detect the downgrade.
	ErrInvalidWeights = cockroach.New("invalid weights")

	// ErrInterrupted indicates a fit or scoring pass was cancelled through an
	// interrupt token. Partial results already produced remain valid.
	ErrInterrupted = cockroach.New("procedure was interrupted")

	// ErrNotImplemented indicates a requested variant is not available.
	ErrNotImplemented = cockroach.New("not implemented")
)

// ValueError indicates an argument value outside the accepted domain.
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("isoforest: %s: %s", e.Op, e.Message)
}

// NewValueError creates a ValueError for the given operation.
func NewValueError(op, message string) *ValueError {
	return &ValueError{Op: op, Message: message}
}

// DimensionError indicates mismatched array or matrix dimensions.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("isoforest: %s: dimension mismatch on axis %d: expected %d, got %d",
		e.Op, e.Axis, e.Expected, e.Got)
}

// NewDimensionError creates a DimensionError for the given operation.
func NewDimensionError(op string, expected, got, axis int) *DimensionError {
	return &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
}

// NotFittedError indicates use of a model before Fit succeeded.
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("isoforest: %s.%s: model is not fitted; call Fit first", e.ModelName, e.Method)
}

// NewNotFittedError creates a NotFittedError.
func NewNotFittedError(modelName, method string) *NotFittedError {
	return &NotFittedError{ModelName: modelName, Method: method}
}

// ModelError wraps a lower-level cause with the operation and a message.
type ModelError struct {
	Op      string
	Message string
	Err     error
}

func (e *ModelError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("isoforest: %s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("isoforest: %s: %s: %v", e.Op, e.Message, e.Err)
}

func (e *ModelError) Unwrap() error { return e.Err }

// NewModelError creates a ModelError wrapping cause (which may be nil).
func NewModelError(op, message string, cause error) *ModelError {
	return &ModelError{Op: op, Message: message, Err: cause}
}

// ValidationError indicates caller-supplied data violating a documented
// contract: malformed sparse index arrays, category codes at or above the
// declared category count, and similar. These are bugs in the caller, not
// runtime conditions to recover from.
type ValidationError struct {
	Field   string
	Message string
	Value   any
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("isoforest: validation failed for %s: %s", e.Field, e.Message)
}

// NewValidationError creates a ValidationError recording the offending value.
func NewValidationError(field, message string, value any) *ValidationError {
	return &ValidationError{Field: field, Message: message, Value: value}
}

// Wrap annotates err with a message, preserving the chain. Returns nil when
// err is nil.
func Wrap(err error, message string) error {
	return cockroach.Wrap(err, message)
}

// Wrapf annotates err with a formatted message, preserving the chain.
func Wrapf(err error, format string, args ...any) error {
	return cockroach.Wrapf(err, format, args...)
}

// Recover converts a panic in the surrounding function into an error assigned
// to *err, tagged with the operation name. Intended for use at API
// boundaries:
//
//	func (m *Model) Fit(X mat.Matrix) (err error) {
//		defer errors.Recover(&err, "Model.Fit")
//		...
//	}
func Recover(err *error, op string) {
	if r := recover(); r != nil {
		switch v := r.(type) {
		case error:
			*err = NewModelError(op, "panic during operation", cockroach.WithStack(v))
		default:
			*err = NewModelError(op, "panic during operation", cockroach.Newf("%v", v))
		}
	}
}
