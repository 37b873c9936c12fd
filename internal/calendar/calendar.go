// Package calendar defines the calendar backend contract used by the bot,
// conflict detection over it, and iCalendar export of its events.
package calendar

import (
	"context"
	"time"
)

// MaxEventsPerDay caps the number of owned events a backend returns for a day.
const MaxEventsPerDay = 20

// Event is an event stored in a calendar backend.
type Event struct {
	ID          string
	Title       string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
}

// Overlaps reports whether e intersects the half-open range [start, end).
// Touching ranges do not overlap.
func (e Event) Overlaps(start, end time.Time) bool {
	return Overlaps(e.Start, e.End, start, end)
}

// NewEvent is an event to be created.
type NewEvent struct {
	Title       string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
}

// Recreate returns a NewEvent that re-creates e with a fresh description.
func (e Event) Recreate(description string) NewEvent {
	return NewEvent{
		Title:       e.Title,
		Description: description,
		Location:    e.Location,
		Start:       e.Start,
		End:         e.End,
	}
}

// Reader lists events owned by the bot.
type Reader interface {
	// ListEvents returns owned events overlapping the local day containing
	// day, ordered by start time, at most MaxEventsPerDay.
	ListEvents(ctx context.Context, day time.Time) ([]Event, error)
}

// Writer creates and deletes events.
type Writer interface {
	InsertEvent(ctx context.Context, ev NewEvent) error
	DeleteEvent(ctx context.Context, id string) error
}

// Calendar is a full calendar backend.
type Calendar interface {
	Reader
	Writer
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// DayBounds returns local midnight of day and of the following day.
func DayBounds(day time.Time) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return start, start.AddDate(0, 0, 1)
}
