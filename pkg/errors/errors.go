// Package errors provides structured error handling for the tabular
// pipeline. Error kinds distinguish caller mistakes (missing features,
// bad values) from service problems (model unavailable) so that callers
// can pattern-match with errors.As instead of string inspection.
package errors

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	Inference error kinds
//
// ===========================================================================

// NotConfiguredError indicates that no preprocessing contract exists for
// the requested model. This is never retried.
type NotConfiguredError struct {
	ModelID string
}

func (e *NotConfiguredError) Error() string {
	return fmt.Sprintf("tabular: model %q has no preprocessing contract; train and deploy it first", e.ModelID)
}

// MarshalZerologObject adds structured error information to a zerolog event.
func (e *NotConfiguredError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_id", e.ModelID).
		Str("type", "NotConfiguredError")
}

// NewNotConfiguredError creates a NotConfiguredError with a stack trace.
func NewNotConfiguredError(modelID string) error {
	return errors.WithStack(&NotConfiguredError{ModelID: modelID})
}

// MissingFeaturesError indicates that the caller's input lacks one or more
// features the contract requires. Names carries every missing column, not
// just the first.
type MissingFeaturesError struct {
	ModelID string
	Names   []string
}

func (e *MissingFeaturesError) Error() string {
	return fmt.Sprintf("tabular: missing required features for model %q: [%s]", e.ModelID, strings.Join(e.Names, ", "))
}

// MarshalZerologObject adds structured error information to a zerolog event.
func (e *MissingFeaturesError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_id", e.ModelID).
		Strs("missing_features", e.Names).
		Str("type", "MissingFeaturesError")
}

// NewMissingFeaturesError creates a MissingFeaturesError with a stack trace.
func NewMissingFeaturesError(modelID string, names []string) error {
	return errors.WithStack(&MissingFeaturesError{ModelID: modelID, Names: names})
}

// InvalidFeatureValueError indicates that a numeric feature received a
// value that cannot be coerced to a number. Unknown categorical values are
// NOT errors (they encode to -1); this error is for numeric columns only.
type InvalidFeatureValueError struct {
	Column string
	Value  interface{}
}

func (e *InvalidFeatureValueError) Error() string {
	return fmt.Sprintf("tabular: cannot convert %v to a number for feature %q", e.Value, e.Column)
}

// MarshalZerologObject adds structured error information to a zerolog event.
func (e *InvalidFeatureValueError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("column", e.Column).
		Interface("value", e.Value).
		Str("type", "InvalidFeatureValueError")
}

// NewInvalidFeatureValueError creates an InvalidFeatureValueError with a stack trace.
func NewInvalidFeatureValueError(column string, value interface{}) error {
	return errors.WithStack(&InvalidFeatureValueError{Column: column, Value: value})
}

// ModelUnavailableError indicates that the model loader failed (fetch or
// deserialize). Distinct from input errors so callers can tell "your
// request is wrong" from "the service is unhealthy".
type ModelUnavailableError struct {
	ModelID string
	Err     error
}

func (e *ModelUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("tabular: model %q could not be loaded: %v", e.ModelID, e.Err)
	}
	return fmt.Sprintf("tabular: model %q could not be loaded", e.ModelID)
}

func (e *ModelUnavailableError) Unwrap() error {
	return e.Err
}

// MarshalZerologObject adds structured error information to a zerolog event.
func (e *ModelUnavailableError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_id", e.ModelID).
		AnErr("cause", e.Err).
		Str("type", "ModelUnavailableError")
}

// NewModelUnavailableError creates a ModelUnavailableError with a stack trace.
func NewModelUnavailableError(modelID string, err error) error {
	return errors.WithStack(&ModelUnavailableError{ModelID: modelID, Err: err})
}

// ===========================================================================
//
//	Fit-time error kinds
//
// ===========================================================================

// FitConfigurationError indicates an unrecoverable fit configuration: the
// target column is absent, or no feature columns remain after dropping
// useless ones. Degenerate-but-legal inputs (single-class target,
// all-numeric table) do not produce this error.
type FitConfigurationError struct {
	TargetColumn string
	Reason       string
}

func (e *FitConfigurationError) Error() string {
	return fmt.Sprintf("tabular: cannot fit with target %q: %s", e.TargetColumn, e.Reason)
}

// MarshalZerologObject adds structured error information to a zerolog event.
func (e *FitConfigurationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("target_column", e.TargetColumn).
		Str("reason", e.Reason).
		Str("type", "FitConfigurationError")
}

// NewFitConfigurationError creates a FitConfigurationError with a stack trace.
func NewFitConfigurationError(target, reason string) error {
	return errors.WithStack(&FitConfigurationError{TargetColumn: target, Reason: reason})
}

// ContractError indicates a structurally invalid preprocessing contract:
// empty feature columns, or categorical mappings that reference columns
// outside the feature list.
type ContractError struct {
	Reason string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("tabular: invalid preprocessing contract: %s", e.Reason)
}

// MarshalZerologObject adds structured error information to a zerolog event.
func (e *ContractError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("reason", e.Reason).
		Str("type", "ContractError")
}

// NewContractError creates a ContractError with a stack trace.
func NewContractError(reason string) error {
	return errors.WithStack(&ContractError{Reason: reason})
}

// ===========================================================================
//
//	Estimator error kinds
//
// ===========================================================================

// NotFittedError is returned when Transform or Contract is called on a
// preprocessor that has not been fitted.
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("tabular: %s: not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject adds structured error information to a zerolog event.
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError creates a NotFittedError with a stack trace.
func NewNotFittedError(modelName, method string) error {
	return errors.WithStack(&NotFittedError{ModelName: modelName, Method: method})
}

// DimensionError is returned when input dimensions differ from what was
// seen at fit time.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/features
}

func (e *DimensionError) Error() string {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("tabular: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject adds structured error information to a zerolog event.
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("type", "DimensionError")
}

// NewDimensionError creates a DimensionError with a stack trace.
func NewDimensionError(op string, expected, got, axis int) error {
	return errors.WithStack(&DimensionError{Op: op, Expected: expected, Got: got, Axis: axis})
}

// ValueError is returned when an argument value is inappropriate, such as
// an empty vector passed to a metric.
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("tabular: %s: %s", e.Op, e.Message)
}

// NewValueError creates a ValueError with a stack trace.
func NewValueError(op, message string) error {
	return errors.WithStack(&ValueError{Op: op, Message: message})
}

// ===========================================================================
//
//	cockroachdb/errors wrappers
//
// ===========================================================================

// Is reports whether err matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with a message.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New creates a new error with a stack trace.
func New(message string) error {
	return errors.New(message)
}

// Newf creates a new formatted error with a stack trace.
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack annotates an error with a stack trace.
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	Common error variables
//
// ===========================================================================

var (
	// ErrEmptyData is returned when empty data is passed.
	ErrEmptyData = New("empty data")

	// ErrJobNotFound is returned by metadata stores for unknown job ids.
	ErrJobNotFound = New("job not found")
)
