package schedule

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	bulletPattern      = regexp.MustCompile(`^[-•*]\s*`)
	groupedLinePattern = regexp.MustCompile(`^(\S+?)\s*,\s*(\d{1,2}(?::\d{2})?)\s*-\s*(\d{1,2}(?::\d{2})?)$`)
	dayBulletPattern   = regexp.MustCompile(`(?im)^\s*[-•*]\s*(t[2-7]|cn)\s*,`)
	plainClockPattern  = regexp.MustCompile(`^\d{1,2}(?::\d{2})?$`)
)

// GroupedResult is the outcome of parsing a weekly template.
type GroupedResult struct {
	Drafts  []Draft
	Skipped []SkippedLine
}

// IsGrouped reports whether text looks like a weekly template, that is it
// has at least one bullet of the form "- T3, ...".
func IsGrouped(text string) bool {
	return dayBulletPattern.MatchString(text)
}

// ParseGrouped parses a weekly template:
//
//	Gym Session
//	- T3, 18:00 - 19:00
//	- T5, 18:00 - 19:00
//
// Every bullet inherits the most recent header as its raw title. Drafts carry
// DateNextWeekday so that today's weekday resolves to today.
func ParseGrouped(text string) GroupedResult {
	var res GroupedResult
	header := ""

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		loc := bulletPattern.FindStringIndex(line)
		if loc == nil {
			header = strings.Join(strings.Fields(line), " ")
			continue
		}

		if header == "" {
			res.Skipped = append(res.Skipped, SkippedLine{Line: line, Err: ErrNoHeader})
			continue
		}

		draft, err := parseBullet(strings.TrimSpace(line[loc[1]:]))
		if err != nil {
			res.Skipped = append(res.Skipped, SkippedLine{Line: line, Err: err})
			continue
		}
		draft.RawTitle = header
		res.Drafts = append(res.Drafts, draft)
	}

	return res
}

func parseBullet(body string) (Draft, error) {
	m := groupedLinePattern.FindStringSubmatch(body)
	if m == nil {
		return Draft{}, ErrBulletFormat
	}

	wd, ok := LookupDayCode(m[1])
	if !ok {
		return Draft{}, fmt.Errorf("%w: %q", ErrUnknownDay, m[1])
	}

	start, err := parsePlainClock(m[2])
	if err != nil {
		return Draft{}, err
	}
	end, err := parsePlainClock(m[3])
	if err != nil {
		return Draft{}, err
	}

	return Draft{
		Date:  DateToken{Kind: DateNextWeekday, Weekday: wd},
		Start: start,
		End:   end,
	}, nil
}

// parsePlainClock accepts hour[:minute] only; weekly templates have no am/pm/h suffixes.
func parsePlainClock(s string) (Clock, error) {
	if !plainClockPattern.MatchString(s) {
		return Clock{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return ParseClock(s)
}
