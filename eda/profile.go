// Package eda computes exploratory summaries of a raw table before
// training: per-column missing/distinct counts, numeric distribution
// statistics, top categorical values, and the same usefulness flags the
// preprocessing classifier applies. Summaries are stored with the job so
// callers can inspect what the pipeline saw.
package eda

import (
	"math"
	"sort"

	"github.com/automlhq/tabular/preprocessing"
	"github.com/automlhq/tabular/table"
)

// topValueCount bounds how many categorical values a profile lists.
const topValueCount = 5

// NumericSummary describes a numeric column's present values.
type NumericSummary struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
}

// ValueCount is one categorical value with its frequency.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// ColumnProfile summarizes a single column.
type ColumnProfile struct {
	Name            string          `json:"name"`
	Numeric         bool            `json:"numeric"`
	Rows            int             `json:"rows"`
	Missing         int             `json:"missing"`
	Distinct        int             `json:"distinct"`
	Identifier      bool            `json:"identifier"`
	Constant        bool            `json:"constant"`
	HighCardinality bool            `json:"high_cardinality"`
	Stats           *NumericSummary `json:"stats,omitempty"`
	TopValues       []ValueCount    `json:"top_values,omitempty"`
}

// Report is the full table profile.
type Report struct {
	Rows    int             `json:"rows"`
	Columns []ColumnProfile `json:"columns"`
}

// Profile summarizes every column of the table.
func Profile(tbl *table.Table) *Report {
	report := &Report{Rows: tbl.NumRows()}
	for _, c := range tbl.Columns() {
		report.Columns = append(report.Columns, profileColumn(c))
	}
	return report
}

func profileColumn(c *table.Column) ColumnProfile {
	p := ColumnProfile{
		Name:            c.Name,
		Numeric:         c.IsNumeric(),
		Rows:            c.Len(),
		Missing:         c.Len() - c.PresentCount(),
		Distinct:        c.DistinctPresent(),
		Identifier:      preprocessing.IsIdentifierColumn(c),
		Constant:        preprocessing.IsConstantColumn(c),
		HighCardinality: preprocessing.IsHighCardinalityCategorical(c, preprocessing.DefaultHighCardinalityThreshold),
	}
	if c.IsNumeric() {
		p.Stats = summarize(c.PresentFloats())
	} else {
		p.TopValues = topValues(c.PresentStrings())
	}
	return p
}

func summarize(values []float64) *NumericSummary {
	finite := values[:0:0]
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite = append(finite, v)
		}
	}
	if len(finite) == 0 {
		return nil
	}

	s := &NumericSummary{Min: finite[0], Max: finite[0]}
	var sum float64
	for _, v := range finite {
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
		sum += v
	}
	s.Mean = sum / float64(len(finite))

	sorted := append([]float64(nil), finite...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		s.Median = sorted[n/2]
	} else {
		s.Median = (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return s
}

func topValues(values []string) []ValueCount {
	counts := make(map[string]int, len(values))
	for _, v := range values {
		counts[v]++
	}
	out := make([]ValueCount, 0, len(counts))
	for v, n := range counts {
		out = append(out, ValueCount{Value: v, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Value < out[j].Value
		}
		return out[i].Count > out[j].Count
	})
	if len(out) > topValueCount {
		out = out[:topValueCount]
	}
	return out
}
