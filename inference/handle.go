// Package inference implements the prediction path: a bounded cache of
// loaded model handles, contract-driven feature vector assembly, and
// output decoding for classification and regression models.
package inference

import "context"

// DType is the element type a model's input tensor expects. The handle
// declares it; callers never assume one.
type DType int

const (
	// Float32 inputs, the common case for compiled tabular models.
	Float32 DType = iota
	// Float64 inputs.
	Float64
)

func (d DType) String() string {
	if d == Float64 {
		return "float64"
	}
	return "float32"
}

// Vector is a single-row feature vector whose element order follows the
// contract's feature_columns.
type Vector struct {
	Values []float64
}

// ProbKind discriminates the two probability shapes a model output can
// carry. The shape is a property of the model's output description,
// resolved once at load time, not re-sniffed per request.
type ProbKind int

const (
	// ProbNone means the model emits no probability output.
	ProbNone ProbKind = iota
	// ProbPerClassMap means probabilities keyed by class (encoded label
	// in string form).
	ProbPerClassMap
	// ProbIndexedArray means a flat probability array aligned by class
	// index.
	ProbIndexedArray
)

// ProbSet is the tagged union of probability outputs. Exactly the field
// matching Kind is populated.
type ProbSet struct {
	Kind     ProbKind
	PerClass map[string]float64
	Indexed  []float64
}

// RawOutput is a model's undecoded response to one input vector: the
// primary prediction scalar (a regression value, or an encoded class) and
// an optional probability set.
type RawOutput struct {
	Prediction float64
	Probs      *ProbSet
}

// Handle is a loaded, ready-to-run model bound to one identifier.
// Implementations must be safe for concurrent Run calls.
type Handle interface {
	// InputDType reports the element type the model expects.
	InputDType() DType
	// Run executes the model on a single-row vector.
	Run(ctx context.Context, in *Vector) (*RawOutput, error)
	// Close releases model resources. A closed handle must not be run.
	Close() error
}

// Loader fetches and compiles the model behind an identifier. Invoked by
// the cache on a miss, outside its critical section.
type Loader func(ctx context.Context, modelID string) (Handle, error)
