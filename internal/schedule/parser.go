package schedule

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrParse is the root of every recoverable parse failure. Callers skip the
// offending line and keep going.
var ErrParse = errors.New("parse failure")

var (
	ErrNoTimeRange  = fmt.Errorf("%w: no time range", ErrParse)
	ErrEmptyTitle   = fmt.Errorf("%w: empty title", ErrParse)
	ErrInvalidTime  = fmt.Errorf("%w: invalid time", ErrParse)
	ErrNoHeader     = fmt.Errorf("%w: bullet without header", ErrParse)
	ErrUnknownDay   = fmt.Errorf("%w: unknown day code", ErrParse)
	ErrBulletFormat = fmt.Errorf("%w: bullet does not match '<day>, <time> - <time>'", ErrParse)
)

// tomorrowMarker is the relative-date token the normalizer substitutes for "tomorrow".
const tomorrowMarker = "mai"

var wordRewrites = []struct {
	re   *regexp.Regexp
	with string
}{
	{regexp.MustCompile(`(?i)\bmorning\b`), "8-10"},
	{regexp.MustCompile(`(?i)\bafternoon\b`), "14-16"},
	{regexp.MustCompile(`(?i)\bevening\b`), "18-20"},
	{regexp.MustCompile(`(?i)\btomorrow\b`), tomorrowMarker},
	{regexp.MustCompile(`(?i)\btonight\b`), ""},
}

var (
	leadingDatePattern = regexp.MustCompile(`(?i)^(mai|t[2-7])\b\s*`)
	timeRangePattern   = regexp.MustCompile(`(?i)\b(\d{1,2}(?::\d{2})?(?:am|pm|h)?)\s*-\s*(\d{1,2}(?::\d{2})?(?:am|pm|h)?)\b`)
	clockPattern       = regexp.MustCompile(`(?i)^(\d{1,2})(?::(\d{2}))?(am|pm|h)?$`)
)

// dayCodes maps Vietnamese weekday codes to weekdays. T2 is Monday, CN is Sunday.
var dayCodes = map[string]time.Weekday{
	"t2": time.Monday,
	"t3": time.Tuesday,
	"t4": time.Wednesday,
	"t5": time.Thursday,
	"t6": time.Friday,
	"t7": time.Saturday,
	"cn": time.Sunday,
}

// LookupDayCode returns the weekday for a code such as "T3" or "CN".
func LookupDayCode(code string) (time.Weekday, bool) {
	wd, ok := dayCodes[strings.ToLower(strings.TrimSpace(code))]
	return wd, ok
}

// SkippedLine records an input line that produced no draft.
type SkippedLine struct {
	Line string
	Err  error
}

// ParseLine converts a single line such as "T3 16-18h: badminton @Gym" into a draft.
// Every failure wraps ErrParse.
func ParseLine(line string) (Draft, error) {
	text := normalize(line)

	var draft Draft
	if m := leadingDatePattern.FindStringSubmatch(text); m != nil {
		draft.Date = dateTokenFor(m[1])
		text = text[len(m[0]):]
	}

	main := text
	if at := strings.Index(text, "@"); at >= 0 {
		main = text[:at]
		draft.Location = strings.TrimSpace(text[at+1:])
	}

	loc := timeRangePattern.FindStringSubmatchIndex(main)
	if loc == nil {
		return Draft{}, ErrNoTimeRange
	}

	start, err := ParseClock(main[loc[2]:loc[3]])
	if err != nil {
		return Draft{}, err
	}
	end, err := ParseClock(main[loc[4]:loc[5]])
	if err != nil {
		return Draft{}, err
	}
	draft.Start, draft.End = start, end

	title := strings.Join(strings.Fields(main[:loc[0]]+" "+main[loc[1]:]), " ")
	title = strings.TrimSpace(strings.Trim(title, ":"))
	if title == "" {
		return Draft{}, ErrEmptyTitle
	}
	draft.RawTitle = title

	return draft, nil
}

// ParseMessage parses every non-empty line of text independently. Lines that
// fail are returned as skipped; they never abort the batch.
func ParseMessage(text string) ([]Draft, []SkippedLine) {
	var drafts []Draft
	var skipped []SkippedLine
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		d, err := ParseLine(line)
		if err != nil {
			skipped = append(skipped, SkippedLine{Line: line, Err: err})
			continue
		}
		drafts = append(drafts, d)
	}
	return drafts, skipped
}

// ParseClock parses "16", "16:30", "4pm", "12am" or "18h" into a 24-hour clock.
func ParseClock(s string) (Clock, error) {
	m := clockPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Clock{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}

	hour, _ := strconv.Atoi(m[1])
	minute := 0
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}

	switch strings.ToLower(m[3]) {
	case "pm":
		if hour != 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}

	c := Clock{Hour: hour, Minute: minute}
	if !c.valid() {
		return Clock{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return c, nil
}

func normalize(line string) string {
	text := line
	for _, r := range wordRewrites {
		text = r.re.ReplaceAllString(text, r.with)
	}
	return strings.Join(strings.Fields(text), " ")
}

func dateTokenFor(token string) DateToken {
	token = strings.ToLower(token)
	if token == tomorrowMarker {
		return DateToken{Kind: DateTomorrow}
	}
	if wd, ok := dayCodes[token]; ok {
		return DateToken{Kind: DateWeekday, Weekday: wd}
	}
	return DateToken{}
}
