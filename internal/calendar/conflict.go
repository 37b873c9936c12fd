package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Span is a candidate time range checked for conflicts.
type Span struct {
	Start time.Time
	End   time.Time
}

// Detector finds owned events that overlap candidate ranges.
type Detector struct {
	reader Reader
	log    *slog.Logger
}

// NewDetector creates a detector reading through r.
func NewDetector(r Reader, logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{reader: r, log: logger.With("component", "conflict_detector")}
}

// FindConflicts returns the owned events of day that strictly overlap
// [start, end). A read failure is returned as is; no partial result is given.
func (d *Detector) FindConflicts(ctx context.Context, day, start, end time.Time) ([]Event, error) {
	existing, err := d.reader.ListEvents(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("list events for %s: %w", day.Format(time.DateOnly), err)
	}

	var conflicts []Event
	for _, e := range existing {
		if e.Overlaps(start, end) {
			conflicts = append(conflicts, e)
		}
	}
	return conflicts, nil
}

type conflictKey struct {
	start, end int64
	title      string
}

// CheckBatch checks every span in order, one read per span, and returns the
// union of conflicts deduplicated by start, end and title in first-seen order.
func (d *Detector) CheckBatch(ctx context.Context, spans []Span) ([]Event, error) {
	seen := make(map[conflictKey]struct{})
	var all []Event

	for _, s := range spans {
		found, err := d.FindConflicts(ctx, s.Start, s.Start, s.End)
		if err != nil {
			return nil, err
		}
		for _, e := range found {
			k := conflictKey{start: e.Start.Unix(), end: e.End.Unix(), title: e.Title}
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			all = append(all, e)
		}
	}

	if len(all) > 0 {
		d.log.DebugContext(ctx, "Conflicts detected", "candidates", len(spans), "conflicts", len(all))
	}
	return all, nil
}
