// Package model provides the shared estimator plumbing: fitted-state
// tracking and persistence of fitted components.
package model

// EstimatorState represents the training state of an estimator.
type EstimatorState int

const (
	// NotFitted means the estimator has not been fitted yet.
	NotFitted EstimatorState = iota
	// Fitted means the estimator has been fitted.
	Fitted
)

// BaseEstimator is embedded by every stateful fit/transform component.
type BaseEstimator struct {
	state EstimatorState
}

// IsFitted reports whether the estimator has been fitted.
func (e *BaseEstimator) IsFitted() bool {
	return e.state == Fitted
}

// SetFitted marks the estimator as fitted.
func (e *BaseEstimator) SetFitted() {
	e.state = Fitted
}

// Reset returns the estimator to its initial state.
func (e *BaseEstimator) Reset() {
	e.state = NotFitted
}

// GobEncode persists the fitted flag; gob cannot see the unexported state
// field on its own.
func (e *BaseEstimator) GobEncode() ([]byte, error) {
	return []byte{byte(e.state)}, nil
}

// GobDecode restores the fitted flag written by GobEncode.
func (e *BaseEstimator) GobDecode(data []byte) error {
	if len(data) > 0 {
		e.state = EstimatorState(data[0])
	}
	return nil
}
