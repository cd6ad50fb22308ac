package preprocessing

import (
	"encoding/json"
	"strconv"

	"github.com/automlhq/tabular/pkg/errors"
)

// FeatureType tags a feature column as numeric or categorical in the
// contract.
type FeatureType string

const (
	// FeatureNumeric marks a column whose raw values are coerced to
	// numbers at transform time.
	FeatureNumeric FeatureType = "numeric"
	// FeatureCategorical marks a column encoded through a label mapping.
	FeatureCategorical FeatureType = "categorical"
)

// NumericStats summarizes a numeric feature's original training
// distribution. Downstream consumers use it for validation and input
// forms; the transform itself does not need it.
type NumericStats struct {
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	IsInteger bool    `json:"is_integer"`
}

// Contract is the serialized snapshot of preprocessing state that crosses
// the training/inference boundary. It is produced once after a successful
// fit and never mutated; retraining produces a new Contract. The JSON
// field names are the wire format shared with any runtime that reads the
// job metadata, so they must not change.
type Contract struct {
	// FeatureColumns defines the exact numeric-vector layout the model
	// expects. Order is load-bearing.
	FeatureColumns []string `json:"feature_columns"`

	// DroppedColumns lists columns excluded by the column classifier,
	// kept for transparency only.
	DroppedColumns []string `json:"dropped_columns"`

	// FeatureTypes maps each feature column to numeric or categorical.
	FeatureTypes map[string]FeatureType `json:"feature_types"`

	// CategoricalMappings flattens the label encoders of categorical
	// features: column -> original value -> integer code.
	CategoricalMappings map[string]map[string]int `json:"categorical_mappings"`

	// NumericStats maps numeric feature columns to their training
	// distribution summary.
	NumericStats map[string]NumericStats `json:"numeric_stats"`

	// TargetMapping inverts the target label encoder (encoded label ->
	// original label). Present only for classification with a
	// non-numeric target. Keys are the string form of the integer code
	// because JSON object keys are strings.
	TargetMapping map[string]string `json:"target_mapping,omitempty"`
}

// Validate checks the structural invariants a contract must satisfy
// regardless of where it was produced: a non-empty feature list, and
// categorical mappings that only reference feature columns.
func (c *Contract) Validate() error {
	if len(c.FeatureColumns) == 0 {
		return errors.NewContractError("feature_columns is empty")
	}
	features := make(map[string]struct{}, len(c.FeatureColumns))
	for _, name := range c.FeatureColumns {
		features[name] = struct{}{}
	}
	for name := range c.CategoricalMappings {
		if _, ok := features[name]; !ok {
			return errors.NewContractError("categorical_mappings references non-feature column " + strconv.Quote(name))
		}
	}
	return nil
}

// Encode serializes the contract to its JSON wire form.
func (c *Contract) Encode() ([]byte, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(err, "encode contract")
	}
	return data, nil
}

// ParseContract deserializes and validates a contract. Structurally
// invalid contracts are rejected here, not at prediction time.
func ParseContract(data []byte) (*Contract, error) {
	var c Contract
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrap(err, "decode contract")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// IsCategorical reports whether the named feature is categorical.
func (c *Contract) IsCategorical(name string) bool {
	return c.FeatureTypes[name] == FeatureCategorical
}

// AllowedValues returns the known vocabulary of a categorical feature in
// code order, for building input forms. Nil for non-categorical columns.
func (c *Contract) AllowedValues(name string) []string {
	mapping, ok := c.CategoricalMappings[name]
	if !ok {
		return nil
	}
	out := make([]string, len(mapping))
	for v, code := range mapping {
		if code >= 0 && code < len(out) {
			out[code] = v
		}
	}
	return out
}

// TargetLabel translates an encoded class back to its original label.
// The second return is false when no target mapping exists or the code is
// unknown.
func (c *Contract) TargetLabel(code int) (string, bool) {
	if c.TargetMapping == nil {
		return "", false
	}
	label, ok := c.TargetMapping[strconv.Itoa(code)]
	return label, ok
}
