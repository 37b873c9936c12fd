// Package category classifies raw event titles into a fixed, priority-ordered
// set of categories using keyword substring matching.
package category

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// DisplaySeparator joins the category label and the generated title in a
// display title such as "🏸 Sport · Badminton".
const DisplaySeparator = " · "

// ErrInvalidTable is returned when a category table fails validation.
var ErrInvalidTable = errors.New("invalid category table")

// Category is one entry of the classification table.
type Category struct {
	Name     string   `yaml:"name"`
	Emoji    string   `yaml:"emoji"`
	Priority int      `yaml:"priority"`
	Keywords []string `yaml:"keywords"`
}

// Label returns the "emoji name" part of a display title.
func (c Category) Label() string {
	return c.Emoji + " " + c.Name
}

// General is returned when no category matches.
var General = Category{Name: "General", Emoji: "🗓️"}

// Table is an immutable, priority-ordered list of categories. It is safe for
// concurrent use.
type Table struct {
	cats []Category
}

// NewTable validates cats and returns a table sorted by descending priority.
// Categories of equal priority keep their declaration order. Keywords are
// lowercased and blank keywords dropped.
func NewTable(cats []Category) (*Table, error) {
	seen := make(map[string]struct{}, len(cats))
	sorted := make([]Category, 0, len(cats))

	for i, c := range cats {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: category %d has no name", ErrInvalidTable, i)
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: duplicate category %q", ErrInvalidTable, name)
		}
		seen[key] = struct{}{}

		keywords := make([]string, 0, len(c.Keywords))
		for _, k := range c.Keywords {
			k = strings.ToLower(strings.TrimSpace(k))
			if k != "" {
				keywords = append(keywords, k)
			}
		}
		if len(keywords) == 0 {
			return nil, fmt.Errorf("%w: category %q has no keywords", ErrInvalidTable, name)
		}

		sorted = append(sorted, Category{
			Name:     name,
			Emoji:    strings.TrimSpace(c.Emoji),
			Priority: c.Priority,
			Keywords: keywords,
		})
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority > sorted[j].Priority
	})

	return &Table{cats: sorted}, nil
}

// Categories returns a copy of the table in classification order.
func (t *Table) Categories() []Category {
	out := make([]Category, len(t.cats))
	copy(out, t.cats)
	return out
}

// Lookup finds a category by name, case-insensitively. General is always found.
func (t *Table) Lookup(name string) (Category, bool) {
	for _, c := range t.cats {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	if strings.EqualFold(General.Name, name) {
		return General, true
	}
	return Category{}, false
}

// Classify returns the first category, in priority order, that has a keyword
// contained in the lowercased title. Matching is plain substring matching, so
// "date" also matches "update".
//
// A title that already carries a display prefix for a known category is
// classified as that category.
func (t *Table) Classify(title string) Category {
	if c, _, ok := t.SplitDisplay(title); ok {
		return c
	}

	lower := strings.ToLower(title)
	for _, c := range t.cats {
		for _, k := range c.Keywords {
			if strings.Contains(lower, k) {
				return c
			}
		}
	}
	return General
}

// SplitDisplay recognizes a display title "emoji name · rest" for a category of
// the table (or General) and returns the category and the rest.
func (t *Table) SplitDisplay(title string) (Category, string, bool) {
	title = strings.TrimSpace(title)
	for _, c := range append(t.Categories(), General) {
		prefix := c.Label() + DisplaySeparator
		if strings.HasPrefix(title, prefix) {
			return c, strings.TrimSpace(title[len(prefix):]), true
		}
	}
	return Category{}, "", false
}
