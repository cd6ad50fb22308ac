package table

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/automlhq/tabular/pkg/errors"
)

// missingTokens are the cell values treated as absent, mirroring the
// training side's CSV reader defaults.
var missingTokens = map[string]struct{}{
	"":     {},
	"NA":   {},
	"N/A":  {},
	"NaN":  {},
	"nan":  {},
	"null": {},
	"NULL": {},
}

// ReadCSV parses a headered CSV stream into a Table, inferring a Kind per
// column: numeric if every present cell parses as a float, boolean if every
// present cell is true/false, string otherwise. A column with no present
// cells at all is inferred as string.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.NewValueError("table.ReadCSV", "empty input")
	}
	if err != nil {
		return nil, errors.Wrap(err, "read csv header")
	}

	raw := make([][]string, len(header))
	missing := make([][]bool, len(header))
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "read csv record")
		}
		for i := range header {
			cell := strings.TrimSpace(record[i])
			_, absent := missingTokens[cell]
			raw[i] = append(raw[i], cell)
			missing[i] = append(missing[i], absent)
		}
	}

	cols := make([]*Column, len(header))
	for i, name := range header {
		cols[i] = inferColumn(name, raw[i], missing[i])
	}
	return New(cols...)
}

// ReadCSVFile parses a CSV file into a Table.
func ReadCSVFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()
	return ReadCSV(f)
}

func inferColumn(name string, cells []string, missing []bool) *Column {
	numeric := true
	boolean := true
	present := 0
	for i, cell := range cells {
		if missing[i] {
			continue
		}
		present++
		if numeric {
			if _, err := strconv.ParseFloat(cell, 64); err != nil {
				numeric = false
			}
		}
		if boolean {
			switch strings.ToLower(cell) {
			case "true", "false":
			default:
				boolean = false
			}
		}
	}

	switch {
	case present > 0 && numeric:
		floats := make([]float64, len(cells))
		for i, cell := range cells {
			if missing[i] {
				continue
			}
			floats[i], _ = strconv.ParseFloat(cell, 64)
		}
		return NewNumericColumn(name, floats, missing)
	case present > 0 && boolean:
		floats := make([]float64, len(cells))
		for i, cell := range cells {
			if missing[i] {
				continue
			}
			if strings.EqualFold(cell, "true") {
				floats[i] = 1
			}
		}
		return &Column{Name: name, Kind: KindBool, Floats: floats, Missing: missing}
	default:
		strs := make([]string, len(cells))
		for i, cell := range cells {
			if missing[i] {
				continue
			}
			strs[i] = cell
		}
		return NewStringColumn(name, strs, missing)
	}
}
