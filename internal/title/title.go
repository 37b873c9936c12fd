// Package title turns raw event titles into display titles of the form
// "emoji Category · Title".
package title

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/edgard/calbot/internal/category"
)

var (
	wordStart      = regexp.MustCompile(`\b\w`)
	studyFillers   = regexp.MustCompile(`(?i)\b(session|class|lesson|time)\b`)
	generalFillers = regexp.MustCompile(`(?i)\b(time|session)\b`)
)

// Capitalize collapses whitespace and upper-cases the first character of
// every ASCII word, e.g. "ielts  prep" becomes "Ielts Prep".
func Capitalize(s string) string {
	return wordStart.ReplaceAllStringFunc(collapse(s), strings.ToUpper)
}

type rule func(raw, lower string) string

var defaultRules = map[string]rule{
	"Study":     studyTitle,
	"Couple":    coupleTitle,
	"Household": householdTitle,
	"Meal":      mealTitle,
}

// Generate produces the display title body for raw in category cat.
// It never fails: if a rule panics the capitalized raw title is returned.
func Generate(raw string, cat category.Category) string {
	return generate(raw, cat, defaultRules)
}

func generate(raw string, cat category.Category, rules map[string]rule) (title string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("Title generation failed, using fallback", "category", cat.Name, "panic", r)
			title = Capitalize(raw)
		}
	}()

	lower := strings.ToLower(strings.TrimSpace(raw))
	if fn, ok := rules[cat.Name]; ok {
		return fn(raw, lower)
	}
	return generalTitle(raw, lower)
}

func studyTitle(raw, _ string) string {
	t := collapse(studyFillers.ReplaceAllString(raw, ""))
	switch {
	case strings.Contains(strings.ToUpper(t), "IELTS"):
		return "IELTS Study"
	case strings.Contains(strings.ToLower(t), "english"):
		return "English Practice"
	case t == "":
		return "Study Session"
	default:
		return t
	}
}

func coupleTitle(raw, lower string) string {
	for _, phrase := range []string{"couple time", "private time"} {
		if !strings.Contains(lower, phrase) {
			continue
		}
		base := Capitalize(phrase)
		switch {
		case strings.Contains(lower, "shower"):
			return base + " – Shower"
		case strings.Contains(lower, "massage"):
			return base + " – Massage & Relax"
		default:
			return base
		}
	}
	if strings.Contains(lower, "date") {
		return "Date Night"
	}
	return Capitalize(raw)
}

func householdTitle(raw, lower string) string {
	switch {
	case strings.Contains(lower, "housework"):
		return "Housework"
	case strings.Contains(lower, "clean"):
		return "Cleaning"
	default:
		return Capitalize(raw)
	}
}

func mealTitle(_, lower string) string {
	switch {
	case strings.Contains(lower, "dinner"), strings.Contains(lower, "eat"):
		return "Dinner"
	case strings.Contains(lower, "lunch"):
		return "Lunch"
	case strings.Contains(lower, "breakfast"):
		return "Breakfast"
	default:
		return "Meal"
	}
}

func generalTitle(raw, _ string) string {
	if t := Capitalize(generalFillers.ReplaceAllString(raw, "")); t != "" {
		return t
	}
	return Capitalize(raw)
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Formatter classifies raw titles against a category table and renders
// display titles.
type Formatter struct {
	table *category.Table
}

// NewFormatter returns a formatter backed by table.
func NewFormatter(table *category.Table) *Formatter {
	return &Formatter{table: table}
}

// Classify returns the category of raw.
func (f *Formatter) Classify(raw string) category.Category {
	return f.table.Classify(raw)
}

// Format renders "emoji Category · Title". A title that already carries a
// display prefix is reformatted from its body, so the prefix never doubles.
func (f *Formatter) Format(raw string) string {
	if _, rest, ok := f.table.SplitDisplay(raw); ok {
		raw = rest
	}
	cat := f.table.Classify(raw)
	return cat.Label() + category.DisplaySeparator + Generate(raw, cat)
}
