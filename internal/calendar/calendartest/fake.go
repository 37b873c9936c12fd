// Package calendartest provides an in-memory calendar backend for tests.
package calendartest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/edgard/calbot/internal/calendar"
)

// Fake is an in-memory calendar.Calendar. Failures can be injected per call.
type Fake struct {
	mu      sync.Mutex
	tag     string
	events  []calendar.Event
	nextID  int
	inserts int
	deletes int
	lists   int

	// ListErr, when set, is returned by every ListEvents call.
	ListErr error
	// InsertErr, when set, decides the outcome of each insert.
	InsertErr func(ev calendar.NewEvent) error
	// DeleteErr, when set, decides the outcome of each delete.
	DeleteErr func(id string) error
}

// New returns an empty fake that owns events tagged with the default tag.
func New() *Fake {
	return &Fake{tag: calendar.DefaultOwnerTag}
}

// Seed stores events directly. Events without an ID get one; events without
// a description get the owner tag.
func (f *Fake) Seed(events ...calendar.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range events {
		if e.ID == "" {
			e.ID = f.newID()
		}
		if e.Description == "" {
			e.Description = f.tag
		}
		f.events = append(f.events, e)
	}
}

// Events returns every stored event in start order.
func (f *Fake) Events() []calendar.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]calendar.Event(nil), f.events...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

// InsertCount returns the number of InsertEvent calls.
func (f *Fake) InsertCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inserts
}

// DeleteCount returns the number of DeleteEvent calls.
func (f *Fake) DeleteCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deletes
}

// ListCount returns the number of ListEvents calls.
func (f *Fake) ListCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists
}

// ListEvents implements calendar.Reader.
func (f *Fake) ListEvents(_ context.Context, day time.Time) ([]calendar.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if f.ListErr != nil {
		return nil, f.ListErr
	}

	from, to := calendar.DayBounds(day)
	var out []calendar.Event
	for _, e := range f.events {
		if calendar.Owned(e.Description, f.tag) && e.Overlaps(from, to) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	if len(out) > calendar.MaxEventsPerDay {
		out = out[:calendar.MaxEventsPerDay]
	}
	return out, nil
}

// InsertEvent implements calendar.Writer.
func (f *Fake) InsertEvent(_ context.Context, ev calendar.NewEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserts++
	if f.InsertErr != nil {
		if err := f.InsertErr(ev); err != nil {
			return err
		}
	}
	f.events = append(f.events, calendar.Event{
		ID:          f.newID(),
		Title:       ev.Title,
		Description: ev.Description,
		Location:    ev.Location,
		Start:       ev.Start,
		End:         ev.End,
	})
	return nil
}

// DeleteEvent implements calendar.Writer.
func (f *Fake) DeleteEvent(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	if f.DeleteErr != nil {
		if err := f.DeleteErr(id); err != nil {
			return err
		}
	}
	for i, e := range f.events {
		if e.ID == id {
			f.events = append(f.events[:i], f.events[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("event %s not found", id)
}

func (f *Fake) newID() string {
	f.nextID++
	return fmt.Sprintf("evt-%d", f.nextID)
}
