// Package preprocessing implements automatic column classification and the
// fit/transform pipeline that turns raw tables into model-ready numeric
// matrices. A successful fit produces an immutable Contract that the
// inference side replays to reproduce the training-time encoding exactly.
package preprocessing

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/automlhq/tabular/table"
)

// ProblemType is the detected learning task for a target column.
type ProblemType string

const (
	// ProblemClassification covers categorical and low-cardinality
	// integer targets.
	ProblemClassification ProblemType = "classification"
	// ProblemRegression covers continuous numeric targets.
	ProblemRegression ProblemType = "regression"
)

// DefaultHighCardinalityThreshold is the distinct/total ratio above which a
// categorical column is considered too sparse to encode.
const DefaultHighCardinalityThreshold = 0.5

// idPatterns match column names that conventionally hold row identifiers.
// Checked case-insensitively against the trimmed name.
var idPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^id$`),
	regexp.MustCompile(`_id$`),
	regexp.MustCompile(`^id_`),
	regexp.MustCompile(`_id_`),
	regexp.MustCompile(`^uuid$`),
	regexp.MustCompile(`^guid$`),
	regexp.MustCompile(`order.*id`),
	regexp.MustCompile(`customer.*id`),
	regexp.MustCompile(`user.*id`),
	regexp.MustCompile(`transaction.*id`),
	regexp.MustCompile(`product.*id`),
	regexp.MustCompile(`session.*id`),
	regexp.MustCompile(`^index$`),
	regexp.MustCompile(`^row.*num`),
	regexp.MustCompile(`^serial`),
	regexp.MustCompile(`^record.*id`),
}

// idValueShape matches values that look like alphanumeric codes.
var idValueShape = regexp.MustCompile(`^[A-Za-z0-9\-_]+$`)

// IsIdentifierColumn reports whether a column is a row identifier that
// carries no predictive signal. The name pattern is checked first and wins
// regardless of contents, so an empty column with an id-like name still
// matches.
func IsIdentifierColumn(c *table.Column) bool {
	name := strings.ToLower(strings.TrimSpace(c.Name))
	for _, p := range idPatterns {
		if p.MatchString(name) {
			return true
		}
	}

	n := c.Len()
	if n == 0 {
		return false
	}

	if c.IsNumeric() {
		// All values present and distinct, strictly sequential with
		// step 1 when sorted.
		if c.DistinctPresent() != n {
			return false
		}
		vals := append([]float64(nil), c.PresentFloats()...)
		sort.Float64s(vals)
		for i := 1; i < len(vals); i++ {
			if vals[i]-vals[i-1] != 1 {
				return false
			}
		}
		return true
	}

	// String columns: nearly all distinct and shaped like codes.
	if float64(c.DistinctPresent())/float64(n) <= 0.95 {
		return false
	}
	sample := c.PresentStrings()
	if len(sample) > 100 {
		sample = sample[:100]
	}
	if len(sample) == 0 {
		return false
	}
	matched := 0
	for _, v := range sample {
		if idValueShape.MatchString(v) {
			matched++
		}
	}
	return float64(matched)/float64(len(sample)) > 0.9
}

// IsConstantColumn reports whether a column has at most one distinct
// present value. An all-absent column counts as constant.
func IsConstantColumn(c *table.Column) bool {
	return c.DistinctPresent() <= 1
}

// IsHighCardinalityCategorical reports whether a non-numeric column has a
// distinct/total ratio strictly above threshold. Numeric columns are never
// flagged, and a ratio exactly at the threshold is not flagged.
func IsHighCardinalityCategorical(c *table.Column, threshold float64) bool {
	if c.IsNumeric() {
		return false
	}
	n := c.Len()
	if n == 0 {
		return false
	}
	return float64(c.DistinctPresent())/float64(n) > threshold
}

// DetectProblemType decides between classification and regression for a
// target column. The rules apply in order:
//
//  1. empty target: classification (safe default)
//  2. non-numeric target: classification
//  3. numeric, every present value integer-valued, and at most 10
//     distinct values: classification
//  4. numeric, fewer than 20 distinct values, and distinct/total below
//     0.05: classification
//  5. otherwise: regression
//
// Absent values are ignored for integer-valuedness and distinct counts.
// Note that an all-identical column of fractional floats falls through
// rule 3 (not integer-valued) and rule 4 (ratio too high on small data)
// and lands on regression. That ordering is deliberate and relied upon by
// existing trained models; see TestDetectProblemTypeFractionalConstant.
func DetectProblemType(c *table.Column) ProblemType {
	if c.Len() == 0 {
		return ProblemClassification
	}
	if !c.IsNumeric() {
		return ProblemClassification
	}

	distinct := c.DistinctPresent()
	ratio := float64(distinct) / float64(c.Len())

	integerValued := true
	for _, v := range c.PresentFloats() {
		if math.IsNaN(v) || v != math.Trunc(v) {
			integerValued = false
			break
		}
	}

	if integerValued && distinct <= 10 {
		return ProblemClassification
	}
	if distinct < 20 && ratio < 0.05 {
		return ProblemClassification
	}
	return ProblemRegression
}
