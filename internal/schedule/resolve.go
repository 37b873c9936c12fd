package schedule

import (
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDate is returned by ParseDay for arguments it does not recognize.
var ErrInvalidDate = fmt.Errorf("%w: unrecognized date", ErrParse)

// Resolve converts a date token into local midnight of the target day.
// Weekday tokens always land in the future: when today already is the target
// weekday the result is one full week ahead. Absent tokens resolve to today.
func Resolve(tok DateToken, now time.Time, loc *time.Location) time.Time {
	today := startOfDay(now.In(loc))

	switch tok.Kind {
	case DateTomorrow:
		return today.AddDate(0, 0, 1)
	case DateWeekday:
		diff := (int(tok.Weekday) - int(today.Weekday()) + 7) % 7
		if diff == 0 {
			diff = 7
		}
		return today.AddDate(0, 0, diff)
	case DateNextWeekday:
		return NextWeekday(tok.Weekday, now, loc)
	default:
		return today
	}
}

// NextWeekday returns local midnight of the next day falling on wd, counting
// today. Unlike Resolve, a match on today returns today.
func NextWeekday(wd time.Weekday, now time.Time, loc *time.Location) time.Time {
	today := startOfDay(now.In(loc))
	diff := (int(wd) - int(today.Weekday()) + 7) % 7
	return today.AddDate(0, 0, diff)
}

// At places a wall-clock time on the given day, in the day's location.
func At(day time.Time, c Clock) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), c.Hour, c.Minute, 0, 0, day.Location())
}

// ParseDay interprets a command argument naming a day: "", "today",
// "tomorrow"/"mai", a weekday code (T2..T7, CN), "2006-01-02" or "02/01".
func ParseDay(arg string, now time.Time, loc *time.Location) (time.Time, error) {
	arg = strings.ToLower(strings.TrimSpace(arg))
	local := now.In(loc)

	switch arg {
	case "", "today":
		return startOfDay(local), nil
	case "tomorrow", tomorrowMarker:
		return Resolve(DateToken{Kind: DateTomorrow}, now, loc), nil
	}

	if wd, ok := dayCodes[arg]; ok {
		return Resolve(DateToken{Kind: DateWeekday, Weekday: wd}, now, loc), nil
	}

	if t, err := time.ParseInLocation(time.DateOnly, arg, loc); err == nil {
		return t, nil
	}

	if t, err := time.ParseInLocation("2/1", arg, loc); err == nil {
		// The layout parses in year 0, so 29/02 needs checking against this year.
		day := time.Date(local.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
		if day.Month() == t.Month() && day.Day() == t.Day() {
			return day, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, arg)
}

// Resolver resolves drafts against a fixed timezone and a replaceable clock.
type Resolver struct {
	loc *time.Location
	now func() time.Time
}

// NewResolver creates a resolver for loc using the wall clock.
func NewResolver(loc *time.Location) *Resolver {
	if loc == nil {
		loc = time.Local
	}
	return &Resolver{loc: loc, now: time.Now}
}

// SetNow replaces the clock, mainly for tests.
func (r *Resolver) SetNow(now func() time.Time) {
	r.now = now
}

// Location returns the resolver's timezone.
func (r *Resolver) Location() *time.Location {
	return r.loc
}

// Now returns the current time in the resolver's timezone.
func (r *Resolver) Now() time.Time {
	return r.now().In(r.loc)
}

// Day parses a day argument relative to the resolver's clock.
func (r *Resolver) Day(arg string) (time.Time, error) {
	return ParseDay(arg, r.now(), r.loc)
}

// Build attaches dates and display titles to drafts. format receives the
// raw title and returns the display title.
func (r *Resolver) Build(drafts []Draft, format func(string) string) []ResolvedEvent {
	now := r.now()
	events := make([]ResolvedEvent, 0, len(drafts))
	for _, d := range drafts {
		day := Resolve(d.Date, now, r.loc)
		events = append(events, ResolvedEvent{
			Title:    format(d.RawTitle),
			RawTitle: d.RawTitle,
			Location: d.Location,
			Start:    At(day, d.Start),
			End:      At(day, d.End),
		})
	}
	return events
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
