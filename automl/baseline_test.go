package automl

import (
	"bytes"
	"context"
	"encoding/gob"
	"math"
	"testing"

	"github.com/automlhq/tabular/preprocessing"
)

func TestBaselineTrainerClassification(t *testing.T) {
	spec := TrainSpec{
		JobID:          "job-1",
		ProblemType:    preprocessing.ProblemClassification,
		FeatureColumns: []string{"age", "income"},
		YTrain:         []float64{0, 0, 0, 1, 1},
		YTest:          []float64{0, 0, 1},
	}

	res, err := BaselineTrainer{}.Fit(context.Background(), spec)
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	var model BaselineModel
	if err := gob.NewDecoder(bytes.NewReader(res.Artifact)).Decode(&model); err != nil {
		t.Fatalf("decode artifact: %v", err)
	}
	if model.Value != 0 {
		t.Errorf("majority class = %v, want 0", model.Value)
	}

	// Constant 0 over [0,0,1] is right two times out of three.
	if got := res.Metrics["accuracy"]; math.Abs(got-2.0/3.0) > 1e-9 {
		t.Errorf("accuracy = %v, want 2/3", got)
	}
	if _, ok := res.Metrics["f1_score"]; !ok {
		t.Error("f1_score missing from metrics")
	}
	if got := res.FeatureImportance["age"]; got != 0.5 {
		t.Errorf("importance = %v, want 0.5", got)
	}
}

func TestBaselineTrainerRegression(t *testing.T) {
	spec := TrainSpec{
		JobID:       "job-1",
		ProblemType: preprocessing.ProblemRegression,
		YTrain:      []float64{10, 20, 30},
		YTest:       []float64{15, 25},
	}

	res, err := BaselineTrainer{}.Fit(context.Background(), spec)
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	var model BaselineModel
	if err := gob.NewDecoder(bytes.NewReader(res.Artifact)).Decode(&model); err != nil {
		t.Fatalf("decode artifact: %v", err)
	}
	if model.Value != 20 {
		t.Errorf("mean = %v, want 20", model.Value)
	}
	if got := res.Metrics["rmse"]; math.Abs(got-5) > 1e-9 {
		t.Errorf("rmse = %v, want 5", got)
	}
	if got := res.Metrics["mae"]; math.Abs(got-5) > 1e-9 {
		t.Errorf("mae = %v, want 5", got)
	}
}

func TestBaselineTrainerMajorityTieBreak(t *testing.T) {
	if got := majorityLabel([]float64{2, 1, 1, 2}); got != 1 {
		t.Errorf("majorityLabel() = %v, want 1", got)
	}
}

func TestBaselineTrainerEmptyTrain(t *testing.T) {
	_, err := BaselineTrainer{}.Fit(context.Background(), TrainSpec{
		ProblemType: preprocessing.ProblemClassification,
	})
	if err == nil {
		t.Error("Fit() with no training labels should fail")
	}
}
