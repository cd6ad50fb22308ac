// Package table implements the column-oriented raw data model the
// preprocessing pipeline consumes. A Table owns named Columns of equal
// length; values are numeric, boolean, or string, and any cell can be
// absent. Columns carry no identity beyond their name.
package table

import (
	"math"
	"strconv"

	"github.com/automlhq/tabular/pkg/errors"
)

// Kind describes the storage type of a column.
type Kind int

const (
	// KindNumeric holds float64 values.
	KindNumeric Kind = iota
	// KindBool holds booleans, stored as 0/1 floats. Bool columns count
	// as numeric for classification purposes, matching how the training
	// side treats them.
	KindBool
	// KindString holds free-form text / categorical values.
	KindString
)

// Column is a named sequence of raw values of fixed length.
type Column struct {
	Name    string
	Kind    Kind
	Floats  []float64 // valid for KindNumeric and KindBool
	Strings []string  // valid for KindString
	Missing []bool    // Missing[i] marks cell i absent; value slices keep a zero there
}

// NewNumericColumn builds a numeric column. missing may be nil when every
// value is present.
func NewNumericColumn(name string, values []float64, missing []bool) *Column {
	if missing == nil {
		missing = make([]bool, len(values))
	}
	return &Column{Name: name, Kind: KindNumeric, Floats: values, Missing: missing}
}

// NewStringColumn builds a string column. missing may be nil when every
// value is present.
func NewStringColumn(name string, values []string, missing []bool) *Column {
	if missing == nil {
		missing = make([]bool, len(values))
	}
	return &Column{Name: name, Kind: KindString, Strings: values, Missing: missing}
}

// NewBoolColumn builds a boolean column stored as 0/1 floats.
func NewBoolColumn(name string, values []bool, missing []bool) *Column {
	floats := make([]float64, len(values))
	for i, v := range values {
		if v {
			floats[i] = 1
		}
	}
	if missing == nil {
		missing = make([]bool, len(values))
	}
	return &Column{Name: name, Kind: KindBool, Floats: floats, Missing: missing}
}

// Len returns the number of cells, absent ones included.
func (c *Column) Len() int {
	return len(c.Missing)
}

// IsNumeric reports whether the column holds numeric data. Bool columns
// are numeric.
func (c *Column) IsNumeric() bool {
	return c.Kind == KindNumeric || c.Kind == KindBool
}

// PresentCount returns the number of non-absent cells.
func (c *Column) PresentCount() int {
	n := 0
	for _, m := range c.Missing {
		if !m {
			n++
		}
	}
	return n
}

// PresentFloats returns the non-absent values of a numeric column.
func (c *Column) PresentFloats() []float64 {
	out := make([]float64, 0, c.Len())
	for i, m := range c.Missing {
		if !m {
			out = append(out, c.Floats[i])
		}
	}
	return out
}

// PresentStrings returns the non-absent values of a string column.
func (c *Column) PresentStrings() []string {
	out := make([]string, 0, c.Len())
	for i, m := range c.Missing {
		if !m {
			out = append(out, c.Strings[i])
		}
	}
	return out
}

// DistinctPresent counts distinct non-absent values. NaN floats compare
// equal to each other here, so an all-NaN numeric column has one distinct
// value rather than many.
func (c *Column) DistinctPresent() int {
	if c.IsNumeric() {
		seen := make(map[float64]struct{})
		sawNaN := false
		for i, m := range c.Missing {
			if m {
				continue
			}
			v := c.Floats[i]
			if math.IsNaN(v) {
				sawNaN = true
				continue
			}
			seen[v] = struct{}{}
		}
		n := len(seen)
		if sawNaN {
			n++
		}
		return n
	}
	seen := make(map[string]struct{})
	for i, m := range c.Missing {
		if m {
			continue
		}
		seen[c.Strings[i]] = struct{}{}
	}
	return len(seen)
}

// CellString returns the string form of cell i, coercing numeric values
// the same way the encoder does at fit time. The second return is false
// for absent cells.
func (c *Column) CellString(i int) (string, bool) {
	if c.Missing[i] {
		return "", false
	}
	if c.Kind == KindString {
		return c.Strings[i], true
	}
	return FormatFloat(c.Floats[i]), true
}

// Clone returns a deep copy of the column.
func (c *Column) Clone() *Column {
	out := &Column{Name: c.Name, Kind: c.Kind}
	out.Missing = append([]bool(nil), c.Missing...)
	if c.Floats != nil {
		out.Floats = append([]float64(nil), c.Floats...)
	}
	if c.Strings != nil {
		out.Strings = append([]string(nil), c.Strings...)
	}
	return out
}

// FormatFloat renders a float the way categorical coercion expects:
// integer-valued floats drop the fractional part ("3", not "3.000000").
func FormatFloat(v float64) string {
	if v == math.Trunc(v) && !math.IsInf(v, 0) && !math.IsNaN(v) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Table is an ordered collection of equal-length columns with unique names.
type Table struct {
	cols   []*Column
	byName map[string]int
}

// New builds a table from columns, validating equal lengths and unique
// names.
func New(cols ...*Column) (*Table, error) {
	t := &Table{byName: make(map[string]int, len(cols))}
	rows := -1
	for _, c := range cols {
		if _, dup := t.byName[c.Name]; dup {
			return nil, errors.NewValueError("table.New", "duplicate column name: "+c.Name)
		}
		if rows == -1 {
			rows = c.Len()
		} else if c.Len() != rows {
			return nil, errors.NewDimensionError("table.New", rows, c.Len(), 0)
		}
		t.byName[c.Name] = len(t.cols)
		t.cols = append(t.cols, c)
	}
	return t, nil
}

// NumRows returns the row count; zero for an empty table.
func (t *Table) NumRows() int {
	if len(t.cols) == 0 {
		return 0
	}
	return t.cols[0].Len()
}

// NumCols returns the column count.
func (t *Table) NumCols() int {
	return len(t.cols)
}

// Columns returns the columns in order. Callers must not mutate the slice.
func (t *Table) Columns() []*Column {
	return t.cols
}

// Column returns the named column, or nil if absent.
func (t *Table) Column(name string) *Column {
	i, ok := t.byName[name]
	if !ok {
		return nil
	}
	return t.cols[i]
}

// Names returns the column names in order.
func (t *Table) Names() []string {
	out := make([]string, len(t.cols))
	for i, c := range t.cols {
		out[i] = c.Name
	}
	return out
}

// Drop returns a new table without the named columns. Column order is
// preserved; unknown names are ignored.
func (t *Table) Drop(names ...string) *Table {
	dropped := make(map[string]struct{}, len(names))
	for _, n := range names {
		dropped[n] = struct{}{}
	}
	out := &Table{byName: make(map[string]int)}
	for _, c := range t.cols {
		if _, skip := dropped[c.Name]; skip {
			continue
		}
		out.byName[c.Name] = len(out.cols)
		out.cols = append(out.cols, c)
	}
	return out
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out := &Table{byName: make(map[string]int, len(t.cols))}
	for _, c := range t.cols {
		out.byName[c.Name] = len(out.cols)
		out.cols = append(out.cols, c.Clone())
	}
	return out
}

// Replace returns a new table with the named column swapped for col. The
// original table is untouched.
func (t *Table) Replace(name string, col *Column) *Table {
	out := &Table{byName: make(map[string]int, len(t.cols))}
	for _, c := range t.cols {
		next := c
		if c.Name == name {
			next = col
		}
		out.byName[next.Name] = len(out.cols)
		out.cols = append(out.cols, next)
	}
	return out
}
