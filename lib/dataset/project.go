package dataset

import (
	"fmt"
	"footstats/lib/htmltable"
	"strings"
)

// canonical names of the join key after projection.
const (
	PlayerColumn = "Player"
	TeamColumn   = "Squad"
)

type Kind string

const (
	KindText   Kind = "text"
	KindNumber Kind = "number"
)

// Column selects the source label `Source` out of an extracted table and
// names it `Name` (defaults to Source).
type Column struct {
	Source    string `json:"source"`
	Name      string `json:"name,omitempty"`
	Kind      Kind   `json:"kind,omitempty"`
	Transform string `json:"transform,omitempty"`
}

func (c Column) Target() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Source
}

// Key names the projected columns holding the player and team of a category.
type Key struct {
	Player string `json:"player"`
	Team   string `json:"team"`
}

var DefaultKey = Key{Player: PlayerColumn, Team: TeamColumn}

// Schema is the ordered, typed column list of one category.
type Schema struct {
	Key     Key      `json:"key"`
	Columns []Column `json:"columns"`
}

// KeyOrDefault fills in empty key names with the canonical ones.
func (s Schema) KeyOrDefault() Key {
	key := s.Key
	if key.Player == "" {
		key.Player = PlayerColumn
	}
	if key.Team == "" {
		key.Team = TeamColumn
	}
	return key
}

// MissingColumnError means a configured source label is not in the
// extracted header, which usually means the header rules are stale.
type MissingColumnError struct {
	Category string
	Column   string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("category '%s' has no column '%s'", e.Category, e.Column)
}

var transforms = map[string]func(string) string{
	// "23-045" (years-days) -> "23"
	"age_years": func(s string) string {
		years, _, _ := strings.Cut(s, "-")
		return years
	},
}

// KnownTransform reports whether a column transform with `name` exists.
func KnownTransform(name string) bool {
	_, ok := transforms[name]
	return ok
}

// Project restricts `raw` to the schema's columns in order, renamed, with
// column transforms applied and the key unified to Player/Squad. When a
// source label appears more than once, the first occurrence is used.
func Project(category string, raw htmltable.RawTable, schema Schema) (Table, error) {
	columns := make([]string, len(schema.Columns))
	sources := make([]int, len(schema.Columns))
	fns := make([]func(string) string, len(schema.Columns))

	for i, col := range schema.Columns {
		idx := raw.Index(col.Source)
		if idx < 0 {
			return Table{}, &MissingColumnError{Category: category, Column: col.Source}
		}
		sources[i] = idx
		columns[i] = col.Target()

		if col.Transform != "" {
			fn, ok := transforms[col.Transform]
			if !ok {
				return Table{}, fmt.Errorf(
					"category '%s' column '%s': unknown transform '%s'",
					category, col.Source, col.Transform,
				)
			}
			fns[i] = fn
		}
	}

	key := schema.KeyOrDefault()
	for _, name := range []string{key.Player, key.Team} {
		found := false
		for _, c := range columns {
			if c == name {
				found = true
				break
			}
		}
		if !found {
			return Table{}, &MissingColumnError{Category: category, Column: name}
		}
	}

	rows := make([][]Cell, 0, len(raw.Rows))
	for _, rawRow := range raw.Rows {
		row := make([]Cell, len(columns))
		for i, idx := range sources {
			if idx >= len(rawRow) {
				return Table{}, fmt.Errorf(
					"category '%s': row has %d cells, header has %d, filter rows first",
					category, len(rawRow), len(raw.Header),
				)
			}
			text := rawRow[idx]
			if fns[i] != nil {
				text = fns[i](text)
			}
			row[i] = Value(text)
		}
		rows = append(rows, row)
	}

	table, err := New(columns, rows)
	if err != nil {
		return Table{}, fmt.Errorf("category '%s': %w", category, err)
	}
	return table.Rename(map[string]string{
		key.Player: PlayerColumn,
		key.Team:   TeamColumn,
	})
}
