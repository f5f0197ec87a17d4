package dataset

import (
	"slices"
	"strconv"
	"strings"
)

// ParseNumber parses a cell written with optional thousands separators,
// ex. "1,020" or "71.4".
func ParseNumber(c Cell) (float64, bool) {
	if c.Missing {
		return 0, false
	}
	text := strings.ReplaceAll(strings.TrimSpace(c.Text), ",", "")
	if text == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// FormatNumber is the inverse of ParseNumber without separators.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// CoerceNumber rewrites a cell as a plain number, cells that do not parse
// become NA.
func CoerceNumber(c Cell) Cell {
	v, ok := ParseNumber(c)
	if !ok {
		return NA
	}
	return Value(FormatNumber(v))
}

// NumericColumns returns the columns whose present cells all parse as
// numbers. Columns without any present cell are left out.
func NumericColumns(t Table, exclude ...string) []string {
	var out []string
	for idx, name := range t.columns {
		if slices.Contains(exclude, name) {
			continue
		}
		present := 0
		numeric := true
		for _, row := range t.rows {
			if row[idx].Missing {
				continue
			}
			present++
			if _, ok := ParseNumber(row[idx]); !ok {
				numeric = false
				break
			}
		}
		if numeric && present > 0 {
			out = append(out, name)
		}
	}
	return out
}
