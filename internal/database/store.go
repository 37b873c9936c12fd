package database

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edgard/calbot/internal/calendar"
)

// ErrEventNotFound is returned when deleting an event that does not exist.
var ErrEventNotFound = errors.New("event not found")

// Store is the local calendar backend plus database housekeeping.
type Store interface {
	calendar.Calendar

	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// RunSQLMaintenance compacts the database and reports its size.
	RunSQLMaintenance(ctx context.Context) (MaintenanceReport, error)
}

// StoreOptions configures the calendar store.
type StoreOptions struct {
	// Location is the timezone used to compute day boundaries and to return event times.
	Location *time.Location
	// OwnerTag selects the events ListEvents returns.
	OwnerTag string
}

// sqlxStore implements Store using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	loc    *time.Location
	tag    string
	logger *slog.Logger
}

// NewStore creates a Store backed by db.
func NewStore(db *sqlx.DB, opts StoreOptions, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.OwnerTag == "" {
		opts.OwnerTag = calendar.DefaultOwnerTag
	}
	return &sqlxStore{
		db:     db,
		loc:    opts.Location,
		tag:    opts.OwnerTag,
		logger: logger.With("component", "store"),
	}
}

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// ListEvents returns owned events overlapping the local day of day.
func (s *sqlxStore) ListEvents(ctx context.Context, day time.Time) ([]calendar.Event, error) {
	from, to := calendar.DayBounds(day.In(s.loc))

	const query = `
		SELECT id, title, description, location, starts_at, ends_at
		FROM events
		WHERE starts_at < ? AND ends_at > ? AND instr(description, ?) > 0
		ORDER BY starts_at ASC, id ASC
		LIMIT ?`

	var rows []eventRow
	if err := s.db.SelectContext(ctx, &rows, query, to.Unix(), from.Unix(), s.tag, calendar.MaxEventsPerDay); err != nil {
		s.logger.ErrorContext(ctx, "Error listing events", "day", from.Format(time.DateOnly), "error", err)
		return nil, fmt.Errorf("failed to list events for %s: %w", from.Format(time.DateOnly), err)
	}

	events := make([]calendar.Event, 0, len(rows))
	for _, r := range rows {
		events = append(events, r.toEvent(s.loc))
	}
	return events, nil
}

// InsertEvent stores a new event with a generated id.
func (s *sqlxStore) InsertEvent(ctx context.Context, ev calendar.NewEvent) error {
	if ev.Title == "" {
		return errors.New("event must have a title")
	}

	row := eventRow{
		ID:          uuid.NewString(),
		Title:       ev.Title,
		Description: ev.Description,
		Location:    ev.Location,
		StartsAt:    ev.Start.Unix(),
		EndsAt:      ev.End.Unix(),
	}

	const query = `
		INSERT INTO events (id, title, description, location, starts_at, ends_at)
		VALUES (:id, :title, :description, :location, :starts_at, :ends_at)`

	if _, err := s.db.NamedExecContext(ctx, query, row); err != nil {
		s.logger.ErrorContext(ctx, "Failed to insert event", "title", ev.Title, "error", err)
		return fmt.Errorf("failed to insert event: %w", err)
	}

	s.logger.DebugContext(ctx, "Event inserted", "event_id", row.ID)
	return nil
}

// DeleteEvent removes an event by id.
func (s *sqlxStore) DeleteEvent(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete event", "event_id", id, "error", err)
		return fmt.Errorf("failed to delete event %s: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrEventNotFound, id)
	}
	return nil
}

// MaintenanceReport describes the calendar database around a compaction.
type MaintenanceReport struct {
	Events     int
	SizeBefore int64
	SizeAfter  int64
}

// Reclaimed is the number of bytes VACUUM released.
func (r MaintenanceReport) Reclaimed() int64 {
	return max(r.SizeBefore-r.SizeAfter, 0)
}

// RunSQLMaintenance compacts the events database with VACUUM and refreshes
// planner statistics. The report carries the file size on both sides.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) (MaintenanceReport, error) {
	var report MaintenanceReport
	if err := ctx.Err(); err != nil {
		s.logger.WarnContext(ctx, "Context cancelled before compacting events database", "error", err)
		return report, err
	}

	if _, err := s.db.ExecContext(ctx, "PRAGMA busy_timeout = 5000;"); err != nil {
		s.logger.WarnContext(ctx, "Failed to set busy timeout", "error", err)
	}

	if err := s.db.GetContext(ctx, &report.Events, "SELECT COUNT(*) FROM events"); err != nil {
		return report, fmt.Errorf("count events: %w", err)
	}
	size, err := s.databaseSize(ctx)
	if err != nil {
		return report, err
	}
	report.SizeBefore = size

	// VACUUM must run outside a transaction.
	if _, err := s.db.ExecContext(ctx, "VACUUM;"); err != nil {
		s.logger.ErrorContext(ctx, "Compacting events database failed", "events", report.Events, "error", err)
		return report, fmt.Errorf("vacuum events database: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, "PRAGMA optimize;"); err != nil {
		s.logger.WarnContext(ctx, "PRAGMA optimize failed", "error", err)
	}

	if report.SizeAfter, err = s.databaseSize(ctx); err != nil {
		return report, err
	}

	s.logger.InfoContext(ctx, "Compacted events database",
		"events", report.Events,
		"bytes_before", report.SizeBefore,
		"bytes_after", report.SizeAfter)
	return report, nil
}

func (s *sqlxStore) databaseSize(ctx context.Context) (int64, error) {
	var pages, pageSize int64
	if err := s.db.GetContext(ctx, &pages, "PRAGMA page_count;"); err != nil {
		return 0, fmt.Errorf("read page count: %w", err)
	}
	if err := s.db.GetContext(ctx, &pageSize, "PRAGMA page_size;"); err != nil {
		return 0, fmt.Errorf("read page size: %w", err)
	}
	return pages * pageSize, nil
}
