package automl

import (
	"context"
	"reflect"
	"testing"

	"github.com/automlhq/tabular/pkg/errors"
	"github.com/automlhq/tabular/preprocessing"
	"github.com/automlhq/tabular/table"
)

func trainingTable(t *testing.T) *table.Table {
	t.Helper()
	tbl, err := table.New(
		table.NewStringColumn("customer_id", []string{
			"C001", "C002", "C003", "C004", "C005",
			"C006", "C007", "C008", "C009", "C010",
		}, nil),
		table.NewNumericColumn("age",
			[]float64{25, 32, 44, 41, 28, 35, 29, 52, 47, 38}, nil),
		table.NewNumericColumn("income",
			[]float64{50000, 64000, 58000, 72000, 51000, 66000, 53000, 90000, 85000, 70000}, nil),
		table.NewStringColumn("category", []string{
			"red", "blue", "red", "green", "blue",
			"red", "green", "blue", "red", "blue",
		}, nil),
		table.NewNumericColumn("target",
			[]float64{0, 1, 0, 1, 0, 1, 0, 1, 0, 1}, nil),
	)
	if err != nil {
		t.Fatalf("table.New() error = %v", err)
	}
	return tbl
}

func TestPipelineFit(t *testing.T) {
	pipe := NewPipeline()
	res, err := pipe.Fit(context.Background(), trainingTable(t), "target")
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	if res.ProblemType != preprocessing.ProblemClassification {
		t.Errorf("ProblemType = %v, want classification", res.ProblemType)
	}
	if want := []string{"age", "income", "category"}; !reflect.DeepEqual(res.Contract.FeatureColumns, want) {
		t.Errorf("FeatureColumns = %v, want %v", res.Contract.FeatureColumns, want)
	}
	if want := []string{"customer_id"}; !reflect.DeepEqual(res.Contract.DroppedColumns, want) {
		t.Errorf("DroppedColumns = %v, want %v", res.Contract.DroppedColumns, want)
	}

	rTrain, cols := res.XTrain.Dims()
	rTest, _ := res.XTest.Dims()
	if rTrain+rTest != 10 || cols != 3 {
		t.Errorf("partition shapes = %d+%d rows, %d cols", rTrain, rTest, cols)
	}
	if res.Preprocessor == nil || !res.Preprocessor.IsFitted() {
		t.Error("fit result carries no fitted preprocessor")
	}

	// A numeric 0/1 target has no label mapping.
	if res.Contract.TargetMapping != nil {
		t.Errorf("TargetMapping = %v, want nil", res.Contract.TargetMapping)
	}
}

func TestPipelineFitBadTarget(t *testing.T) {
	pipe := NewPipeline()
	_, err := pipe.Fit(context.Background(), trainingTable(t), "nope")
	var fce *errors.FitConfigurationError
	if !errors.As(err, &fce) {
		t.Fatalf("Fit() error = %v, want *FitConfigurationError", err)
	}
}

func TestPipelineFitCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pipe := NewPipeline()
	if _, err := pipe.Fit(ctx, trainingTable(t), "target"); err == nil {
		t.Error("Fit() with a cancelled context should fail")
	}
}
