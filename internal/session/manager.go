// Package session drives the per-chat conversation protocol: staging
// conflicting batches for confirmation, committing batches, bulk deletion with
// a one-shot undo buffer, and per-chat serialization of turns.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/edgard/calbot/internal/calendar"
	"github.com/edgard/calbot/internal/schedule"
)

var (
	// ErrNothingToConfirm is returned for a yes/no answer with no pending batch.
	ErrNothingToConfirm = errors.New("nothing to confirm")
	// ErrNothingToUndo is returned when the undo buffer is empty.
	ErrNothingToUndo = errors.New("nothing to undo")
	// ErrPreviewRequired is returned when a clear is confirmed without a
	// preview of the same day.
	ErrPreviewRequired = errors.New("clear preview required")
)

// Result is the outcome of one calendar write.
type Result struct {
	Event calendar.NewEvent
	Err   error
}

// Report collects per-event results of a batch. When Conflicts is non-empty
// and Staged is true nothing was written.
type Report struct {
	Results   []Result
	Conflicts []calendar.Event
	Staged    bool
}

// Created counts successful writes.
func (r Report) Created() int {
	n := 0
	for _, res := range r.Results {
		if res.Err == nil {
			n++
		}
	}
	return n
}

// Failed counts failed writes.
func (r Report) Failed() int {
	return len(r.Results) - r.Created()
}

// Decision is the kind of answer a reply carried.
type Decision int

const (
	// NotAReply means the text was not a yes/no answer.
	NotAReply Decision = iota
	// Confirmed means the user answered "yes".
	Confirmed
	// Cancelled means the user answered "no".
	Cancelled
)

// ReplyResult is the outcome of Reply.
type ReplyResult struct {
	Decision Decision
	Report   Report
	// Discarded is the number of staged events dropped by a "no".
	Discarded int
}

// Failure is an event a bulk delete could not remove.
type Failure struct {
	Event calendar.Event
	Err   error
}

// ClearReport is the outcome of a bulk delete.
type ClearReport struct {
	Day     time.Time
	Deleted []calendar.Event
	Failed  []Failure
}

// Manager implements the conversation protocol on top of a calendar. Callers
// must hold Lock(chatID) for the whole turn.
type Manager struct {
	cal      calendar.Calendar
	detector *calendar.Detector
	store    *Store
	locks    *locker
	now      func() time.Time
	log      *slog.Logger
}

// NewManager creates a manager.
func NewManager(cal calendar.Calendar, store *Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		cal:      cal,
		detector: calendar.NewDetector(cal, logger),
		store:    store,
		locks:    newLocker(),
		now:      time.Now,
		log:      logger.With("component", "session"),
	}
}

// SetNow replaces the clock used to timestamp pending batches.
func (m *Manager) SetNow(now func() time.Time) {
	m.now = now
}

// Store returns the underlying state store.
func (m *Manager) Store() *Store {
	return m.store
}

// Lock serializes turns of one chat and returns the unlock function.
// Different chats never contend.
func (m *Manager) Lock(chatID int64) func() {
	return m.locks.lock(chatID)
}

// Submit handles a freshly parsed batch. Any pending batch of the chat is
// superseded. Without conflicts every event is written best-effort; otherwise
// the batch is staged and the conflicts returned without writing.
func (m *Manager) Submit(ctx context.Context, chatID int64, events []schedule.ResolvedEvent, attr calendar.Attribution) (Report, error) {
	m.store.ClearPending(chatID)

	if len(events) == 0 {
		return Report{}, nil
	}

	spans := make([]calendar.Span, 0, len(events))
	for _, e := range events {
		spans = append(spans, calendar.Span{Start: e.Start, End: e.End})
	}

	conflicts, err := m.detector.CheckBatch(ctx, spans)
	if err != nil {
		return Report{}, fmt.Errorf("check conflicts: %w", err)
	}

	if len(conflicts) > 0 {
		m.store.SetPending(chatID, Pending{
			Events:      events,
			Conflicts:   conflicts,
			Attribution: attr,
			CreatedAt:   m.now(),
		})
		m.log.InfoContext(ctx, "Batch staged for confirmation", "chat_id", chatID, "events", len(events), "conflicts", len(conflicts))
		return Report{Conflicts: conflicts, Staged: true}, nil
	}

	return m.commit(ctx, chatID, events, attr), nil
}

// Reply interprets text as an answer to the chat's pending batch. "yes" and
// "no" are matched case-insensitively after trimming spaces; any other text
// yields NotAReply and leaves the pending batch untouched.
func (m *Manager) Reply(ctx context.Context, chatID int64, text string) (ReplyResult, error) {
	var d Decision
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "yes":
		d = Confirmed
	case "no":
		d = Cancelled
	default:
		return ReplyResult{}, nil
	}

	p, ok := m.store.Pending(chatID)
	if !ok {
		return ReplyResult{Decision: d}, ErrNothingToConfirm
	}
	m.store.ClearPending(chatID)

	if d == Cancelled {
		m.log.InfoContext(ctx, "Pending batch discarded", "chat_id", chatID, "events", len(p.Events))
		return ReplyResult{Decision: d, Discarded: len(p.Events)}, nil
	}

	return ReplyResult{Decision: d, Report: m.commit(ctx, chatID, p.Events, p.Attribution)}, nil
}

// HasPending reports whether the chat has a live pending batch.
func (m *Manager) HasPending(chatID int64) bool {
	_, ok := m.store.Pending(chatID)
	return ok
}

func (m *Manager) commit(ctx context.Context, chatID int64, events []schedule.ResolvedEvent, attr calendar.Attribution) Report {
	desc := attr.Description()
	report := Report{Results: make([]Result, 0, len(events))}

	for _, e := range events {
		ev := calendar.NewEvent{
			Title:       e.Title,
			Description: desc,
			Location:    e.Location,
			Start:       e.Start,
			End:         e.End,
		}
		err := m.cal.InsertEvent(ctx, ev)
		if err != nil {
			m.log.ErrorContext(ctx, "Failed to create event", "chat_id", chatID, "title", ev.Title, "error", err)
		}
		report.Results = append(report.Results, Result{Event: ev, Err: err})
	}

	m.log.InfoContext(ctx, "Batch committed", "chat_id", chatID, "created", report.Created(), "failed", report.Failed())
	return report
}

// PreviewDay lists the owned events of day and records the preview so that a
// following ConfirmClear of the same day is allowed.
func (m *Manager) PreviewDay(ctx context.Context, chatID int64, day time.Time) ([]calendar.Event, error) {
	events, err := m.cal.ListEvents(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	m.store.SetPreview(chatID, day)
	return events, nil
}

// ConfirmClear deletes the events of day if the chat previewed that same day.
// The preview is consumed either way.
func (m *Manager) ConfirmClear(ctx context.Context, chatID int64, day time.Time) (ClearReport, error) {
	previewed, ok := m.store.TakePreview(chatID)
	if !ok || !sameDay(previewed, day) {
		return ClearReport{Day: day}, ErrPreviewRequired
	}
	return m.ClearDay(ctx, chatID, day)
}

// ClearDay deletes the owned events of day best-effort. The undo buffer is
// overwritten with the events actually deleted, even when there are none. A
// read failure leaves the buffer untouched.
func (m *Manager) ClearDay(ctx context.Context, chatID int64, day time.Time) (ClearReport, error) {
	report := ClearReport{Day: day}

	events, err := m.cal.ListEvents(ctx, day)
	if err != nil {
		return report, fmt.Errorf("list events: %w", err)
	}

	for _, e := range events {
		if err := m.cal.DeleteEvent(ctx, e.ID); err != nil {
			m.log.ErrorContext(ctx, "Failed to delete event", "chat_id", chatID, "event_id", e.ID, "error", err)
			report.Failed = append(report.Failed, Failure{Event: e, Err: err})
			continue
		}
		report.Deleted = append(report.Deleted, e)
	}

	m.store.SetUndo(chatID, report.Deleted)
	m.log.InfoContext(ctx, "Day cleared", "chat_id", chatID, "day", day.Format(time.DateOnly),
		"deleted", len(report.Deleted), "failed", len(report.Failed))
	return report, nil
}

// Undo recreates the last deleted batch of the chat best-effort. The buffer is
// cleared whatever the outcome, so an undo can run only once.
func (m *Manager) Undo(ctx context.Context, chatID int64, attr calendar.Attribution) (Report, error) {
	events, ok := m.store.TakeUndo(chatID)
	if !ok {
		return Report{}, ErrNothingToUndo
	}

	desc := attr.Description()
	report := Report{Results: make([]Result, 0, len(events))}
	for _, e := range events {
		ev := e.Recreate(desc)
		err := m.cal.InsertEvent(ctx, ev)
		if err != nil {
			m.log.ErrorContext(ctx, "Failed to restore event", "chat_id", chatID, "title", ev.Title, "error", err)
		}
		report.Results = append(report.Results, Result{Event: ev, Err: err})
	}

	m.log.InfoContext(ctx, "Undo completed", "chat_id", chatID, "restored", report.Created(), "failed", report.Failed())
	return report, nil
}

func sameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
