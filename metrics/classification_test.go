package metrics

import (
	"math"
	"testing"
)

func TestAccuracy(t *testing.T) {
	tests := []struct {
		name    string
		yTrue   []float64
		yPred   []float64
		want    float64
		wantErr bool
	}{
		{
			name:  "all correct",
			yTrue: []float64{0, 1, 2},
			yPred: []float64{0, 1, 2},
			want:  1,
		},
		{
			name:  "two thirds correct",
			yTrue: []float64{0, 0, 0, 1, 1, 1},
			yPred: []float64{0, 0, 1, 1, 1, 0},
			want:  2.0 / 3.0,
		},
		{
			name:  "all wrong",
			yTrue: []float64{0, 1},
			yPred: []float64{1, 0},
			want:  0,
		},
		{
			name:    "empty input",
			yTrue:   nil,
			yPred:   nil,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Accuracy(tt.yTrue, tt.yPred)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Accuracy() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && math.Abs(got-tt.want) > tol {
				t.Errorf("Accuracy() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWeightedScoresBalanced(t *testing.T) {
	yTrue := []float64{0, 0, 0, 1, 1, 1}
	yPred := []float64{0, 0, 1, 1, 1, 0}

	// Both classes: tp=2, fp=1, fn=1, so precision, recall, and F1 are
	// all 2/3.
	want := 2.0 / 3.0

	p, err := PrecisionWeighted(yTrue, yPred)
	if err != nil {
		t.Fatalf("PrecisionWeighted() error = %v", err)
	}
	if math.Abs(p-want) > tol {
		t.Errorf("PrecisionWeighted() = %v, want %v", p, want)
	}

	r, err := RecallWeighted(yTrue, yPred)
	if err != nil {
		t.Fatalf("RecallWeighted() error = %v", err)
	}
	if math.Abs(r-want) > tol {
		t.Errorf("RecallWeighted() = %v, want %v", r, want)
	}

	f1, err := F1Weighted(yTrue, yPred)
	if err != nil {
		t.Fatalf("F1Weighted() error = %v", err)
	}
	if math.Abs(f1-want) > tol {
		t.Errorf("F1Weighted() = %v, want %v", f1, want)
	}
}

func TestWeightedScoresImbalanced(t *testing.T) {
	// Minority class never predicted: its precision denominator is zero
	// and it contributes nothing to the weighted sums.
	yTrue := []float64{0, 0, 0, 0, 1}
	yPred := []float64{0, 0, 0, 0, 0}

	p, err := PrecisionWeighted(yTrue, yPred)
	if err != nil {
		t.Fatalf("PrecisionWeighted() error = %v", err)
	}
	if want := 0.8 * 4 / 5; math.Abs(p-want) > tol {
		t.Errorf("PrecisionWeighted() = %v, want %v", p, want)
	}

	r, err := RecallWeighted(yTrue, yPred)
	if err != nil {
		t.Fatalf("RecallWeighted() error = %v", err)
	}
	if want := 0.8; math.Abs(r-want) > tol {
		t.Errorf("RecallWeighted() = %v, want %v", r, want)
	}

	f1, err := F1Weighted(yTrue, yPred)
	if err != nil {
		t.Fatalf("F1Weighted() error = %v", err)
	}
	perClassF1 := 2 * 0.8 * 1.0 / (0.8 + 1.0)
	if want := perClassF1 * 4 / 5; math.Abs(f1-want) > tol {
		t.Errorf("F1Weighted() = %v, want %v", f1, want)
	}
}
