package eda

import (
	"bytes"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/automlhq/tabular/core/parallel"
	"github.com/automlhq/tabular/pkg/errors"
	"github.com/automlhq/tabular/table"
)

// defaultBins is used when the caller passes a non-positive bin count.
const defaultBins = 20

// Histogram renders a PNG histogram of a numeric column's present values.
func Histogram(c *table.Column, bins int) ([]byte, error) {
	if !c.IsNumeric() {
		return nil, errors.NewValueError("eda.Histogram", "column "+c.Name+" is not numeric")
	}
	values := plotter.Values{}
	for _, v := range c.PresentFloats() {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return nil, errors.NewValueError("eda.Histogram", "column "+c.Name+" has no plottable values")
	}
	if bins <= 0 {
		bins = defaultBins
	}

	p := plot.New()
	p.Title.Text = c.Name
	p.X.Label.Text = c.Name
	p.Y.Label.Text = "count"

	h, err := plotter.NewHist(values, bins)
	if err != nil {
		return nil, errors.Wrapf(err, "build histogram for %s", c.Name)
	}
	p.Add(h)

	wt, err := p.WriterTo(5*vg.Inch, 3.5*vg.Inch, "png")
	if err != nil {
		return nil, errors.Wrapf(err, "render histogram for %s", c.Name)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, errors.Wrapf(err, "render histogram for %s", c.Name)
	}
	return buf.Bytes(), nil
}

// Histograms renders one histogram per numeric column, keyed by column
// name. Columns that cannot be plotted are skipped. Rendering is
// CPU-bound, so columns are drawn in parallel when there are several.
func Histograms(tbl *table.Table, bins int) map[string][]byte {
	var numeric []*table.Column
	for _, c := range tbl.Columns() {
		if c.IsNumeric() {
			numeric = append(numeric, c)
		}
	}

	rendered := make([][]byte, len(numeric))
	parallel.ParallelizeWithThreshold(len(numeric), 2, func(start, end int) {
		for i := start; i < end; i++ {
			if png, err := Histogram(numeric[i], bins); err == nil {
				rendered[i] = png
			}
		}
	})

	out := make(map[string][]byte)
	for i, c := range numeric {
		if rendered[i] != nil {
			out[c.Name] = rendered[i]
		}
	}
	return out
}
