package automl

import (
	"context"

	"gonum.org/v1/gonum/mat"

	"github.com/automlhq/tabular/preprocessing"
	"github.com/automlhq/tabular/table"
)

// Pipeline fits the preprocessing stage over raw tables. The zero value is
// not useful; construct with NewPipeline, then adjust the exported knobs.
type Pipeline struct {
	TestFraction             float64
	Seed                     int64
	HighCardinalityThreshold float64
}

// NewPipeline creates a pipeline with the standard split fraction, seed,
// and cardinality threshold.
func NewPipeline() *Pipeline {
	return &Pipeline{
		TestFraction:             0.2,
		Seed:                     preprocessing.DefaultSeed,
		HighCardinalityThreshold: preprocessing.DefaultHighCardinalityThreshold,
	}
}

// FitResult bundles the preprocessed partitions with the contract and the
// fitted preprocessor that produced them.
type FitResult struct {
	XTrain *mat.Dense
	XTest  *mat.Dense
	YTrain []float64
	YTest  []float64

	ProblemType  preprocessing.ProblemType
	Contract     *preprocessing.Contract
	Preprocessor *preprocessing.Preprocessor
}

// Fit runs the full preprocessing fit for target over tbl: useless-column
// dropping, problem type detection, imputation, encoding, and the seeded
// train/test split. The resulting contract is ready to persist.
func (p *Pipeline) Fit(ctx context.Context, tbl *table.Table, target string) (*FitResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prep := preprocessing.NewPreprocessor(target)
	prep.TestFraction = p.TestFraction
	prep.Seed = p.Seed
	prep.HighCardinalityThreshold = p.HighCardinalityThreshold

	res, err := prep.Preprocess(tbl)
	if err != nil {
		return nil, err
	}
	contract, err := prep.Contract()
	if err != nil {
		return nil, err
	}

	return &FitResult{
		XTrain:       res.XTrain,
		XTest:        res.XTest,
		YTrain:       res.YTrain,
		YTest:        res.YTest,
		ProblemType:  res.ProblemType,
		Contract:     contract,
		Preprocessor: prep,
	}, nil
}
