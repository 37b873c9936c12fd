package database

import (
	"time"

	"github.com/edgard/calbot/internal/calendar"
)

// eventRow is a row of the events table. Times are stored as unix seconds.
type eventRow struct {
	ID          string `db:"id"`
	Title       string `db:"title"`
	Description string `db:"description"`
	Location    string `db:"location"`
	StartsAt    int64  `db:"starts_at"`
	EndsAt      int64  `db:"ends_at"`
}

func (r eventRow) toEvent(loc *time.Location) calendar.Event {
	return calendar.Event{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Location:    r.Location,
		Start:       time.Unix(r.StartsAt, 0).In(loc),
		End:         time.Unix(r.EndsAt, 0).In(loc),
	}
}
