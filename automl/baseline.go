package automl

import (
	"bytes"
	"context"
	"encoding/gob"

	"github.com/automlhq/tabular/metrics"
	"github.com/automlhq/tabular/pkg/errors"
	"github.com/automlhq/tabular/preprocessing"
)

// BaselineModel is the artifact a BaselineTrainer emits: a constant
// predictor, gob-encoded.
type BaselineModel struct {
	ProblemType preprocessing.ProblemType
	Value       float64
}

// BaselineTrainer fits a constant predictor: the majority training class
// for classification, the training mean for regression. It stands in when
// no external model search service is wired, so jobs still complete with
// honest held-out metrics.
type BaselineTrainer struct{}

func (BaselineTrainer) Fit(ctx context.Context, spec TrainSpec) (*TrainResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(spec.YTrain) == 0 {
		return nil, errors.NewValueError("BaselineTrainer.Fit", "empty training labels")
	}

	model := BaselineModel{ProblemType: spec.ProblemType}
	if spec.ProblemType == preprocessing.ProblemClassification {
		model.Value = majorityLabel(spec.YTrain)
	} else {
		var sum float64
		for _, y := range spec.YTrain {
			sum += y
		}
		model.Value = sum / float64(len(spec.YTrain))
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(model); err != nil {
		return nil, errors.Wrap(err, "encode baseline model")
	}

	res := &TrainResult{
		Artifact:          buf.Bytes(),
		Metrics:           baselineMetrics(spec, model.Value),
		FeatureImportance: uniformImportance(spec.FeatureColumns),
	}
	return res, nil
}

// majorityLabel returns the most frequent label, ties toward the smallest.
func majorityLabel(labels []float64) float64 {
	counts := make(map[float64]int, len(labels))
	for _, y := range labels {
		counts[y]++
	}
	best := labels[0]
	bestCount := 0
	for label, n := range counts {
		if n > bestCount || (n == bestCount && label < best) {
			best = label
			bestCount = n
		}
	}
	return best
}

// baselineMetrics scores the constant prediction on the held-out
// partition. Scores whose denominator degenerates (no test rows, constant
// target for R2) are simply omitted.
func baselineMetrics(spec TrainSpec, value float64) map[string]float64 {
	if len(spec.YTest) == 0 {
		return nil
	}
	preds := make([]float64, len(spec.YTest))
	for i := range preds {
		preds[i] = value
	}

	out := make(map[string]float64)
	record := func(name string, score float64, err error) {
		if err == nil {
			out[name] = score
		}
	}
	if spec.ProblemType == preprocessing.ProblemClassification {
		acc, err := metrics.Accuracy(spec.YTest, preds)
		record("accuracy", acc, err)
		f1, err := metrics.F1Weighted(spec.YTest, preds)
		record("f1_score", f1, err)
		p, err := metrics.PrecisionWeighted(spec.YTest, preds)
		record("precision", p, err)
		r, err := metrics.RecallWeighted(spec.YTest, preds)
		record("recall", r, err)
	} else {
		r2, err := metrics.R2Score(spec.YTest, preds)
		record("r2_score", r2, err)
		rmse, err := metrics.RMSE(spec.YTest, preds)
		record("rmse", rmse, err)
		mae, err := metrics.MAE(spec.YTest, preds)
		record("mae", mae, err)
	}
	return out
}

func uniformImportance(features []string) map[string]float64 {
	if len(features) == 0 {
		return nil
	}
	out := make(map[string]float64, len(features))
	share := 1 / float64(len(features))
	for _, name := range features {
		out[name] = share
	}
	return out
}
