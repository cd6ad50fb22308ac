// Package automl orchestrates training: it fits the preprocessing
// pipeline over a raw table, hands the numeric partitions to an external
// model trainer, and runs complete training jobs against the metadata and
// blob stores.
package automl

import (
	"context"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/automlhq/tabular/preprocessing"
)

// TrainSpec is everything an external trainer needs for one model search:
// preprocessed partitions, the detected problem type, and a wall-clock
// budget.
type TrainSpec struct {
	JobID          string
	ProblemType    preprocessing.ProblemType
	FeatureColumns []string

	XTrain *mat.Dense
	XTest  *mat.Dense
	YTrain []float64
	YTest  []float64

	TimeBudget time.Duration
}

// TrainResult is the trainer's output: a compiled model artifact ready
// for the inference runtime, plus evaluation metrics and per-feature
// importances passed through to the job record.
type TrainResult struct {
	Artifact          []byte
	Metrics           map[string]float64
	FeatureImportance map[string]float64
}

// Trainer runs the model search itself. The search is opaque to this
// module; only its inputs and outputs are specified.
type Trainer interface {
	Fit(ctx context.Context, spec TrainSpec) (*TrainResult, error)
}
