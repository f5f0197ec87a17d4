// Package dataset holds the immutable tables produced by projecting
// extracted html tables and the operations used to combine them.
package dataset

import (
	"fmt"
	"slices"
	"sort"
)

// MissingText is how a missing cell is written out.
const MissingText = "N/a"

// Cell is either a text value or the missing marker, the empty string is a
// valid value and is not missing.
type Cell struct {
	Text    string
	Missing bool
}

// NA is the missing marker.
var NA = Cell{Missing: true}

func Value(text string) Cell {
	return Cell{Text: text}
}

func (c Cell) String() string {
	if c.Missing {
		return MissingText
	}
	return c.Text
}

// Table is an ordered set of named columns and rows of cells. Every
// operation returns a new Table, the receiver is never modified.
type Table struct {
	columns []string
	rows    [][]Cell
}

// New copies `columns` and `rows` into a Table, rows must have one cell per
// column.
func New(columns []string, rows [][]Cell) (Table, error) {
	seen := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		if _, ok := seen[c]; ok {
			return Table{}, fmt.Errorf("duplicate column '%s'", c)
		}
		seen[c] = struct{}{}
	}
	out := Table{
		columns: slices.Clone(columns),
		rows:    make([][]Cell, len(rows)),
	}
	for i, row := range rows {
		if len(row) != len(columns) {
			return Table{}, fmt.Errorf(
				"row %d has %d cells, expected %d",
				i, len(row), len(columns),
			)
		}
		out.rows[i] = slices.Clone(row)
	}
	return out, nil
}

// Strings builds a Table out of plain text rows, mostly useful in tests.
func Strings(columns []string, rows [][]string) (Table, error) {
	cells := make([][]Cell, len(rows))
	for i, row := range rows {
		cells[i] = make([]Cell, len(row))
		for j, text := range row {
			cells[i][j] = Value(text)
		}
	}
	return New(columns, cells)
}

// Empty reports whether the table has no columns, which is the starting
// accumulator of a merge.
func (t Table) Empty() bool {
	return len(t.columns) == 0
}

func (t Table) Columns() []string {
	return slices.Clone(t.columns)
}

func (t Table) Len() int {
	return len(t.rows)
}

func (t Table) Row(i int) []Cell {
	return slices.Clone(t.rows[i])
}

// Index returns the position of column `name` or -1.
func (t Table) Index(name string) int {
	return slices.Index(t.columns, name)
}

// Get returns the cell of row `i` in column `name`, missing if the column
// does not exist.
func (t Table) Get(i int, name string) Cell {
	idx := t.Index(name)
	if idx < 0 {
		return NA
	}
	return t.rows[i][idx]
}

// Column returns every cell of column `name`.
func (t Table) Column(name string) ([]Cell, error) {
	idx := t.Index(name)
	if idx < 0 {
		return nil, fmt.Errorf("unknown column '%s'", name)
	}
	out := make([]Cell, len(t.rows))
	for i, row := range t.rows {
		out[i] = row[idx]
	}
	return out, nil
}

// Rename returns a table with columns renamed according to `names`, columns
// not in the map keep their name.
func (t Table) Rename(names map[string]string) (Table, error) {
	columns := make([]string, len(t.columns))
	for i, c := range t.columns {
		if renamed, ok := names[c]; ok {
			columns[i] = renamed
			continue
		}
		columns[i] = c
	}
	return New(columns, t.rows)
}

// Drop returns a table without the given columns, unknown names are ignored.
func (t Table) Drop(names ...string) Table {
	var keep []int
	for i, c := range t.columns {
		if !slices.Contains(names, c) {
			keep = append(keep, i)
		}
	}
	out := Table{
		columns: make([]string, len(keep)),
		rows:    make([][]Cell, len(t.rows)),
	}
	for i, idx := range keep {
		out.columns[i] = t.columns[idx]
	}
	for r, row := range t.rows {
		out.rows[r] = make([]Cell, len(keep))
		for i, idx := range keep {
			out.rows[r][i] = row[idx]
		}
	}
	return out
}

// MapColumn returns a table where every cell of column `name` went through fn.
func (t Table) MapColumn(name string, fn func(Cell) Cell) (Table, error) {
	idx := t.Index(name)
	if idx < 0 {
		return Table{}, fmt.Errorf("unknown column '%s'", name)
	}
	out := t.clone()
	for _, row := range out.rows {
		row[idx] = fn(row[idx])
	}
	return out, nil
}

// MapCells returns a table where every cell went through fn.
func (t Table) MapCells(fn func(Cell) Cell) Table {
	out := t.clone()
	for _, row := range out.rows {
		for i := range row {
			row[i] = fn(row[i])
		}
	}
	return out
}

// Filter keeps the rows for which keep returns true. keep must not retain
// or modify the row.
func (t Table) Filter(keep func(row []Cell) bool) Table {
	out := Table{columns: slices.Clone(t.columns)}
	for _, row := range t.rows {
		if keep(row) {
			out.rows = append(out.rows, slices.Clone(row))
		}
	}
	return out
}

// SortBy stably sorts rows by the text of column `name` in byte order,
// missing cells sort last.
func (t Table) SortBy(name string) (Table, error) {
	idx := t.Index(name)
	if idx < 0 {
		return Table{}, fmt.Errorf("unknown column '%s'", name)
	}
	out := t.clone()
	sort.SliceStable(out.rows, func(i, j int) bool {
		a, b := out.rows[i][idx], out.rows[j][idx]
		if a.Missing != b.Missing {
			return !a.Missing
		}
		return a.Text < b.Text
	})
	return out, nil
}

// Records returns every row as its display strings, missing cells rendered
// as MissingText.
func (t Table) Records() [][]string {
	out := make([][]string, len(t.rows))
	for i, row := range t.rows {
		out[i] = make([]string, len(row))
		for j, c := range row {
			out[i][j] = c.String()
		}
	}
	return out
}

func (t Table) clone() Table {
	out := Table{
		columns: slices.Clone(t.columns),
		rows:    make([][]Cell, len(t.rows)),
	}
	for i, row := range t.rows {
		out.rows[i] = slices.Clone(row)
	}
	return out
}
