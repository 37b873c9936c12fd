// Package schedule turns chat text into event drafts and resolves them into
// concrete, timezone-aware events. It has no knowledge of the chat transport
// or of the calendar backend.
package schedule

import (
	"fmt"
	"time"
)

// DateKind tells how a draft's calendar date should be resolved.
type DateKind int

const (
	// DateNone resolves to today.
	DateNone DateKind = iota
	// DateTomorrow resolves to today plus one day.
	DateTomorrow
	// DateWeekday resolves to the next occurrence of Weekday strictly after today.
	DateWeekday
	// DateNextWeekday resolves to the next occurrence of Weekday, today included.
	// Grouped weekly templates use it.
	DateNextWeekday
)

// DateToken is the optional date part of a draft.
type DateToken struct {
	Kind    DateKind
	Weekday time.Weekday
}

func (t DateToken) String() string {
	switch t.Kind {
	case DateTomorrow:
		return "tomorrow"
	case DateWeekday:
		return "weekday:" + t.Weekday.String()
	case DateNextWeekday:
		return "next:" + t.Weekday.String()
	default:
		return "today"
	}
}

// Clock is a 24-hour wall-clock time without a date.
type Clock struct {
	Hour   int
	Minute int
}

// String formats the clock as zero-padded HH:MM.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

func (c Clock) valid() bool {
	return c.Hour >= 0 && c.Hour <= 23 && c.Minute >= 0 && c.Minute <= 59
}

// Draft is an unresolved event candidate produced by the parsers.
// Start is not required to precede End: cross-midnight and zero-length
// ranges are passed through unchanged.
type Draft struct {
	Date     DateToken
	Start    Clock
	End      Clock
	RawTitle string
	Location string
}

// ResolvedEvent is a draft with a concrete date and a display title attached.
type ResolvedEvent struct {
	Title    string
	RawTitle string
	Location string
	Start    time.Time
	End      time.Time
}
