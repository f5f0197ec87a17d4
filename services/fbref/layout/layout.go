// Package layout describes which tables are scraped, where they live and how
// their headers map onto the merged dataset.
package layout

import (
	_ "embed"
	"fmt"
	"footstats/lib/configutil"
	"footstats/lib/dataset"
	"footstats/lib/htmltable"
)

//go:embed layout.json5
var defaultLayout []byte

type Category struct {
	Name    string            `json:"name"`
	Url     string            `json:"url"`
	Locator htmltable.Locator `json:"locator"`
	// tried when Locator matches nothing. pages fetched without running
	// their scripts lack the classes the scripts add, so class locators
	// fall back to the table id.
	Fallback *htmltable.Locator     `json:"fallback,omitempty"`
	Key      dataset.Key            `json:"key"`
	Rules    []htmltable.HeaderRule `json:"rules"`
	Columns  []dataset.Column       `json:"columns"`
	// applied after the columns are selected
	Renames map[string]string `json:"renames"`
}

func (c Category) Schema() dataset.Schema {
	return dataset.Schema{Key: c.Key, Columns: c.Columns}
}

// OutputColumns returns the column names the category contributes to the
// merged dataset, with the key already unified.
func (c Category) OutputColumns() []string {
	key := c.Schema().KeyOrDefault()
	out := make([]string, len(c.Columns))
	for i, col := range c.Columns {
		name := col.Target()
		switch name {
		case key.Player:
			name = dataset.PlayerColumn
		case key.Team:
			name = dataset.TeamColumn
		}
		if renamed, ok := c.Renames[name]; ok {
			name = renamed
		}
		out[i] = name
	}
	return out
}

type Layout struct {
	Version       string            `json:"version"`
	MinutesColumn string            `json:"minutes_column"`
	MinMinutes    float64           `json:"min_minutes"`
	Renames       map[string]string `json:"renames"`
	Categories    []Category        `json:"categories"`
}

// Category returns the category named `name`.
func (l Layout) Category(name string) (Category, bool) {
	for _, c := range l.Categories {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}

// NumberColumns returns the output names of every column declared as a
// number, in merge order.
func (l Layout) NumberColumns() []string {
	var out []string
	for _, c := range l.Categories {
		names := c.OutputColumns()
		for i, col := range c.Columns {
			if col.Kind == dataset.KindNumber {
				out = append(out, names[i])
			}
		}
	}
	return out
}

func fail(category string, format string, args ...any) error {
	return &htmltable.LayoutError{
		Category: category,
		Reason:   fmt.Sprintf(format, args...),
	}
}

// Validate rejects layouts that cannot produce a consistent dataset.
func (l Layout) Validate() error {
	if l.Version == "" {
		return fail("", "version is not set")
	}
	if len(l.Categories) == 0 {
		return fail("", "no categories")
	}

	names := map[string]bool{}
	owners := map[string]string{}
	for _, c := range l.Categories {
		if c.Name == "" {
			return fail("", "category without a name")
		}
		if names[c.Name] {
			return fail(c.Name, "category is defined twice")
		}
		names[c.Name] = true

		if c.Url == "" {
			return fail(c.Name, "url is not set")
		}
		if (c.Locator.Class == "") == (c.Locator.Id == "") {
			return fail(c.Name, "locator must set exactly one of class or id")
		}
		if c.Fallback != nil && (c.Fallback.Class == "") == (c.Fallback.Id == "") {
			return fail(c.Name, "fallback must set exactly one of class or id")
		}
		for _, r := range c.Rules {
			err := r.Validate()
			if err != nil {
				return fail(c.Name, "%s", err.Error())
			}
		}

		key := c.Schema().KeyOrDefault()
		hasPlayer, hasTeam := false, false
		for _, col := range c.Columns {
			if col.Source == "" {
				return fail(c.Name, "column without a source")
			}
			switch col.Kind {
			case "", dataset.KindText, dataset.KindNumber:
			default:
				return fail(c.Name, "column '%s' has unknown kind '%s'", col.Source, col.Kind)
			}
			if col.Transform != "" && !dataset.KnownTransform(col.Transform) {
				return fail(c.Name, "column '%s' has unknown transform '%s'", col.Source, col.Transform)
			}
			hasPlayer = hasPlayer || col.Target() == key.Player
			hasTeam = hasTeam || col.Target() == key.Team
		}
		if !hasPlayer || !hasTeam {
			return fail(c.Name, "columns must include the key '%s' and '%s'", key.Player, key.Team)
		}

		for _, name := range c.OutputColumns() {
			if name == dataset.PlayerColumn || name == dataset.TeamColumn {
				continue
			}
			if owner, ok := owners[name]; ok {
				return fail(c.Name, "column '%s' is already produced by category '%s'", name, owner)
			}
			owners[name] = c.Name
		}
	}

	if l.MinutesColumn == "" {
		return fail("", "minutes_column is not set")
	}
	if _, ok := owners[l.MinutesColumn]; !ok {
		return fail("", "minutes_column '%s' is not produced by any category", l.MinutesColumn)
	}
	return nil
}

// Default returns the embedded layout.
func Default() (Layout, error) {
	l, err := configutil.Decode[Layout](defaultLayout)
	if err != nil {
		return Layout{}, fmt.Errorf("parse embedded layout: %w", err)
	}
	err = l.Validate()
	if err != nil {
		return Layout{}, err
	}
	return l, nil
}

// Load reads the layout at `path` (with its .local override), an empty path
// means the embedded default.
func Load(path string) (Layout, error) {
	if path == "" {
		return Default()
	}
	l, err := configutil.ReadConfig[Layout](path)
	if err != nil {
		return Layout{}, fmt.Errorf("read layout %s: %w", path, err)
	}
	err = l.Validate()
	if err != nil {
		return Layout{}, err
	}
	return l, nil
}
