package dataset

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
)

type rowKey string

func makeKey(row []Cell, idx []int) rowKey {
	parts := make([]string, len(idx))
	for i, k := range idx {
		parts[i] = row[k].Text
	}
	return rowKey(strings.Join(parts, "\x00"))
}

func keyIndexes(t Table, key []string) ([]int, error) {
	out := make([]int, len(key))
	for i, k := range key {
		idx := t.Index(k)
		if idx < 0 {
			return nil, fmt.Errorf("key column '%s' is not in the table", k)
		}
		out[i] = idx
	}
	return out, nil
}

// Merge left joins `in` onto `acc` by the `key` columns.
//
//   - every row of acc is kept, in order, and appears once per key.
//   - columns of `in` that acc lacks are appended, unmatched rows hold NA.
//   - columns both tables have are not duplicated, a matched value only
//     fills a cell of acc that is missing.
//   - when `in` repeats a key, its first row is used.
//   - rows that end up identical across all columns collapse to the first.
//
// An empty acc yields `in` itself.
func Merge(acc, in Table, key ...string) (Table, error) {
	if acc.Empty() {
		return DropDuplicates(in), nil
	}

	accKey, err := keyIndexes(acc, key)
	if err != nil {
		return Table{}, fmt.Errorf("accumulator: %w", err)
	}
	inKey, err := keyIndexes(in, key)
	if err != nil {
		return Table{}, fmt.Errorf("incoming: %w", err)
	}

	lookup := make(map[rowKey][]Cell, len(in.rows))
	for _, row := range in.rows {
		k := makeKey(row, inKey)
		if first, ok := lookup[k]; ok {
			if !slices.Equal(first, row) {
				slog.Warn(
					"duplicate key in merged table, keeping first row",
					"key", strings.ReplaceAll(string(k), "\x00", " / "),
				)
			}
			continue
		}
		lookup[k] = row
	}

	// for every incoming column, the position it fills in the output.
	columns := slices.Clone(acc.columns)
	targets := make([]int, len(in.columns))
	for i, c := range in.columns {
		if slices.Contains(inKey, i) {
			targets[i] = -1
			continue
		}
		idx := acc.Index(c)
		if idx < 0 {
			idx = len(columns)
			columns = append(columns, c)
		}
		targets[i] = idx
	}

	rows := make([][]Cell, len(acc.rows))
	for r, accRow := range acc.rows {
		row := make([]Cell, len(columns))
		copy(row, accRow)
		for i := len(accRow); i < len(columns); i++ {
			row[i] = NA
		}

		match, ok := lookup[makeKey(accRow, accKey)]
		if ok {
			for i, target := range targets {
				if target < 0 {
					continue
				}
				if target >= len(accRow) || row[target].Missing {
					row[target] = match[i]
				}
			}
		}
		rows[r] = row
	}

	return DropDuplicates(Table{columns: columns, rows: rows}), nil
}

// DropDuplicates collapses rows equal across every column into the first
// occurrence.
func DropDuplicates(t Table) Table {
	seen := make(map[string]struct{}, len(t.rows))
	out := Table{columns: slices.Clone(t.columns)}
	for _, row := range t.rows {
		var b strings.Builder
		for _, c := range row {
			if c.Missing {
				b.WriteString("\x01")
			} else {
				b.WriteString("\x02")
				b.WriteString(c.Text)
			}
			b.WriteString("\x00")
		}
		k := b.String()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out.rows = append(out.rows, slices.Clone(row))
	}
	if dropped := len(t.rows) - len(out.rows); dropped > 0 {
		slog.Debug("collapsed duplicate rows", "dropped", dropped)
	}
	return out
}
