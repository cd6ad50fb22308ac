package preprocessing

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/automlhq/tabular/core/model"
	"github.com/automlhq/tabular/pkg/errors"
	"github.com/automlhq/tabular/pkg/log"
	"github.com/automlhq/tabular/table"
)

// missingPlaceholder fills a categorical column that has no present values
// at all.
const missingPlaceholder = "Unknown"

// Preprocessor owns the fit-time state of the automatic preprocessing
// pipeline: dropped columns, per-column label encoders, feature ordering,
// numeric statistics, and the optional target encoding. Fields are
// exported for gob persistence.
//
// A Preprocessor is fitted once by Preprocess; afterwards its state is
// read-only. Transform-mode operations (EncodeCategorical with fit=false)
// never mutate encoder state, so a fitted value can serve concurrent
// readers.
type Preprocessor struct {
	model.BaseEstimator

	TargetColumn             string
	TestFraction             float64
	Seed                     int64
	HighCardinalityThreshold float64

	DroppedColumns     []string
	FeatureColumns     []string
	NumericColumns     []string
	CategoricalColumns []string
	Encoders           map[string]*LabelEncoder
	TargetEncoder      *LabelEncoder
	Stats              map[string]NumericStats
	Problem            ProblemType
}

// NewPreprocessor creates a preprocessor for the given target column with
// the default held-out fraction and split seed.
func NewPreprocessor(targetColumn string) *Preprocessor {
	return &Preprocessor{
		TargetColumn:             targetColumn,
		TestFraction:             0.2,
		Seed:                     DefaultSeed,
		HighCardinalityThreshold: DefaultHighCardinalityThreshold,
		Encoders:                 make(map[string]*LabelEncoder),
	}
}

// Result carries the partitioned numeric output of a fit. XTest/YTest may
// be nil/empty when the table is too small to hold anything out.
type Result struct {
	XTrain      *mat.Dense
	XTest       *mat.Dense
	YTrain      []float64
	YTest       []float64
	ProblemType ProblemType
}

// DetectUselessColumns classifies every non-target column and returns the
// names of those excluded from training: identifiers, constants, and
// high-cardinality categoricals. The target column is never included, no
// matter its shape. A constant target must still reach the trainer, which
// will fail loudly rather than silently losing the label here. The result
// is recorded as the preprocessor's DroppedColumns.
func (p *Preprocessor) DetectUselessColumns(tbl *table.Table) []string {
	dropped := []string{}
	for _, c := range tbl.Columns() {
		if c.Name == p.TargetColumn {
			continue
		}
		switch {
		case IsIdentifierColumn(c):
			dropped = append(dropped, c.Name)
		case IsConstantColumn(c):
			dropped = append(dropped, c.Name)
		case IsHighCardinalityCategorical(c, p.HighCardinalityThreshold):
			dropped = append(dropped, c.Name)
		}
	}
	p.DroppedColumns = dropped
	return dropped
}

// HandleMissingValues returns a new table with absent cells filled:
// numeric columns with the column median of present values, categorical
// columns with the mode (ties to the smallest value), and categorical
// columns with no present values at all with the "Unknown" placeholder.
// The input table is not modified.
func (p *Preprocessor) HandleMissingValues(tbl *table.Table) *table.Table {
	out := tbl
	for _, c := range tbl.Columns() {
		if c.PresentCount() == c.Len() {
			continue
		}
		filled := c.Clone()
		if c.IsNumeric() {
			med := median(c.PresentFloats())
			for i, m := range filled.Missing {
				if m {
					filled.Floats[i] = med
					filled.Missing[i] = false
				}
			}
		} else {
			fill, ok := mode(c.PresentStrings())
			if !ok {
				fill = missingPlaceholder
			}
			for i, m := range filled.Missing {
				if m {
					filled.Strings[i] = fill
					filled.Missing[i] = false
				}
			}
		}
		out = out.Replace(c.Name, filled)
	}
	return out
}

// EncodeCategorical replaces every non-numeric column with integer codes.
//
// With fit=true, a fresh LabelEncoder is fitted per column (first-seen
// dense codes) and stored under the column name. With fit=false, stored
// encoders are reused read-only and values outside the fitted vocabulary
// encode to UnknownCode rather than failing. Numeric columns pass through
// unchanged in both modes. The input table is not modified.
func (p *Preprocessor) EncodeCategorical(tbl *table.Table, fit bool) *table.Table {
	out := tbl
	var categorical []string
	for _, c := range tbl.Columns() {
		if c.IsNumeric() {
			continue
		}
		categorical = append(categorical, c.Name)

		values := make([]string, c.Len())
		for i := range values {
			v, ok := c.CellString(i)
			if !ok {
				// Absent cells normally disappear in
				// HandleMissingValues first; treat any stragglers
				// as their own category.
				v = "nan"
			}
			values[i] = v
		}

		var le *LabelEncoder
		if fit {
			le = NewLabelEncoder()
			le.Fit(values)
			p.Encoders[c.Name] = le
		} else {
			le = p.Encoders[c.Name]
			if le == nil {
				continue
			}
		}

		codes := le.Transform(values)
		floats := make([]float64, len(codes))
		for i, code := range codes {
			floats[i] = float64(code)
		}
		out = out.Replace(c.Name, table.NewNumericColumn(c.Name, floats, nil))
	}
	if fit {
		p.CategoricalColumns = categorical
	}
	return out
}

// Preprocess runs the complete fit pipeline: split off the target, drop
// useless columns, detect the problem type, impute missing values, fix the
// feature order, encode categoricals, encode a non-numeric classification
// target, and partition into train/test sets (stratified by label for
// classification). The split is deterministic for a fixed Seed.
//
// Degenerate but legal inputs (single-class target, all-numeric or
// all-categorical tables) succeed. Preprocess fails only when the target
// column is absent or no feature columns remain after dropping useless
// ones.
func (p *Preprocessor) Preprocess(tbl *table.Table) (*Result, error) {
	target := tbl.Column(p.TargetColumn)
	if target == nil {
		return nil, errors.NewFitConfigurationError(p.TargetColumn, "target column not found in table")
	}

	features := tbl.Drop(p.TargetColumn)
	dropped := p.DetectUselessColumns(tbl)
	features = features.Drop(dropped...)
	if features.NumCols() == 0 {
		return nil, errors.NewFitConfigurationError(p.TargetColumn, "no feature columns remain after dropping useless columns")
	}

	problemType := DetectProblemType(target)
	p.Problem = problemType

	// Numeric stats come from the original distribution, before
	// imputation shifts anything.
	p.Stats = make(map[string]NumericStats)
	p.NumericColumns = p.NumericColumns[:0]
	for _, c := range features.Columns() {
		if !c.IsNumeric() {
			continue
		}
		p.NumericColumns = append(p.NumericColumns, c.Name)
		p.Stats[c.Name] = numericStats(c)
	}

	features = p.HandleMissingValues(features)

	// This ordering is the contract's feature_columns; every later
	// transform reproduces it exactly.
	p.FeatureColumns = features.Names()

	features = p.EncodeCategorical(features, true)

	// Rows without a target value cannot be labeled examples. They are
	// excluded here, once and audibly, rather than leaking NaN labels
	// into the split.
	kept := presentRows(target)
	if len(kept) == 0 {
		return nil, errors.NewFitConfigurationError(p.TargetColumn, "target column has no present values")
	}
	if excluded := target.Len() - len(kept); excluded > 0 {
		slog.Warn("rows with missing target excluded from fit",
			log.TargetColumnKey, p.TargetColumn,
			log.RowsKey, excluded,
		)
	}
	y := p.encodeTarget(target, kept, problemType)

	var trainIdx, testIdx []int
	if problemType == ProblemClassification {
		trainIdx, testIdx = stratifiedSplit(y, p.TestFraction, p.Seed)
	} else {
		trainIdx, testIdx = randomSplit(len(y), p.TestFraction, p.Seed)
	}

	res := &Result{
		XTrain:      matrixFor(features, p.FeatureColumns, gatherRows(kept, trainIdx)),
		XTest:       matrixFor(features, p.FeatureColumns, gatherRows(kept, testIdx)),
		YTrain:      gather(y, trainIdx),
		YTest:       gather(y, testIdx),
		ProblemType: problemType,
	}

	p.SetFitted()
	slog.Debug("preprocessing fit complete",
		log.OperationKey, "fit",
		log.TargetColumnKey, p.TargetColumn,
		log.ProblemTypeKey, string(problemType),
		log.FeaturesKey, len(p.FeatureColumns),
		log.DroppedKey, len(p.DroppedColumns),
	)
	return res, nil
}

// encodeTarget turns the target values at the given rows into float
// labels. A non-numeric classification target gets its own label encoder,
// recorded for the contract's inverse mapping. Rows must all hold a
// present value.
func (p *Preprocessor) encodeTarget(target *table.Column, rows []int, problemType ProblemType) []float64 {
	y := make([]float64, len(rows))

	if problemType == ProblemClassification && !target.IsNumeric() {
		values := make([]string, len(rows))
		for i, r := range rows {
			v, _ := target.CellString(r)
			values[i] = v
		}
		le := NewLabelEncoder()
		le.Fit(values)
		p.TargetEncoder = le
		for i, code := range le.Transform(values) {
			y[i] = float64(code)
		}
		return y
	}

	for i, r := range rows {
		y[i] = target.Floats[r]
	}
	return y
}

// presentRows lists the indices of cells holding a value.
func presentRows(c *table.Column) []int {
	rows := make([]int, 0, c.Len())
	for i, m := range c.Missing {
		if !m {
			rows = append(rows, i)
		}
	}
	return rows
}

// Contract snapshots the fitted state into the immutable boundary object
// persisted next to the trained model.
func (p *Preprocessor) Contract() (*Contract, error) {
	if !p.IsFitted() {
		return nil, errors.NewNotFittedError("Preprocessor", "Contract")
	}

	c := &Contract{
		FeatureColumns:      append([]string(nil), p.FeatureColumns...),
		DroppedColumns:      append([]string(nil), p.DroppedColumns...),
		FeatureTypes:        make(map[string]FeatureType, len(p.FeatureColumns)),
		CategoricalMappings: make(map[string]map[string]int),
		NumericStats:        make(map[string]NumericStats, len(p.Stats)),
	}
	for _, name := range p.NumericColumns {
		c.FeatureTypes[name] = FeatureNumeric
	}
	for _, name := range p.CategoricalColumns {
		c.FeatureTypes[name] = FeatureCategorical
		if le, ok := p.Encoders[name]; ok {
			c.CategoricalMappings[name] = le.Mapping()
		}
	}
	for name, stats := range p.Stats {
		c.NumericStats[name] = stats
	}
	if p.TargetEncoder != nil {
		c.TargetMapping = make(map[string]string, p.TargetEncoder.NumClasses())
		for code, label := range p.TargetEncoder.Classes {
			c.TargetMapping[table.FormatFloat(float64(code))] = label
		}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func numericStats(c *table.Column) NumericStats {
	stats := NumericStats{IsInteger: true}
	first := true
	for _, v := range c.PresentFloats() {
		if math.IsNaN(v) {
			continue
		}
		if first {
			stats.Min, stats.Max = v, v
			first = false
		} else {
			stats.Min = math.Min(stats.Min, v)
			stats.Max = math.Max(stats.Max, v)
		}
		if v != math.Trunc(v) {
			stats.IsInteger = false
		}
	}
	return stats
}

// matrixFor assembles the selected rows into a dense matrix whose column
// order follows the contract's feature ordering. Returns nil when no rows
// are selected, since an empty partition has no shape.
func matrixFor(tbl *table.Table, order []string, rows []int) *mat.Dense {
	if len(rows) == 0 || len(order) == 0 {
		return nil
	}
	out := mat.NewDense(len(rows), len(order), nil)
	for j, name := range order {
		col := tbl.Column(name)
		for i, r := range rows {
			out.Set(i, j, col.Floats[r])
		}
	}
	return out
}

func gather(values []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = values[j]
	}
	return out
}

// gatherRows maps split positions back to original table row indices.
func gatherRows(rows, idx []int) []int {
	out := make([]int, len(idx))
	for i, j := range idx {
		out[i] = rows[j]
	}
	return out
}
