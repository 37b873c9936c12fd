package session_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/edgard/calbot/internal/calendar"
	"github.com/edgard/calbot/internal/calendar/calendartest"
	"github.com/edgard/calbot/internal/schedule"
	"github.com/edgard/calbot/internal/session"
)

var ict = time.FixedZone("ICT", 7*60*60)

func at(day, hour, minute int) time.Time {
	return time.Date(2026, time.October, day, hour, minute, 0, 0, ict)
}

func resolved(title string, day, from, to int) schedule.ResolvedEvent {
	return schedule.ResolvedEvent{Title: title, RawTitle: title, Start: at(day, from, 0), End: at(day, to, 0)}
}

var attr = calendar.Attribution{Handle: "mimi", SenderID: 1, ChatID: 42}

func newManager(t *testing.T) (*session.Manager, *calendartest.Fake) {
	t.Helper()
	fake := calendartest.New()
	return session.NewManager(fake, session.NewStore(0, 0), nil), fake
}

func TestSubmitWithoutConflictsCommits(t *testing.T) {
	t.Parallel()
	m, fake := newManager(t)

	report, err := m.Submit(context.Background(), 42, []schedule.ResolvedEvent{
		resolved("🏸 Sport · Badminton", 13, 16, 18),
		resolved("🧠 Personal · Nap", 13, 13, 14),
	}, attr)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if report.Staged || report.Created() != 2 || report.Failed() != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}

	events := fake.Events()
	if len(events) != 2 {
		t.Fatalf("calendar has %d events, want 2", len(events))
	}
	if events[1].Description != attr.Description() {
		t.Errorf("description = %q, want attribution", events[1].Description)
	}
	if m.HasPending(42) {
		t.Error("commit left a pending batch")
	}
}

func TestSubmitPartialFailureContinues(t *testing.T) {
	t.Parallel()
	m, fake := newManager(t)
	fake.InsertErr = func(ev calendar.NewEvent) error {
		if ev.Title == "broken" {
			return errors.New("quota exceeded")
		}
		return nil
	}

	report, err := m.Submit(context.Background(), 42, []schedule.ResolvedEvent{
		resolved("first", 13, 8, 9),
		resolved("broken", 13, 9, 10),
		resolved("third", 13, 10, 11),
	}, attr)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if report.Created() != 2 || report.Failed() != 1 {
		t.Errorf("created=%d failed=%d, want 2 and 1", report.Created(), report.Failed())
	}
	if report.Results[1].Err == nil {
		t.Error("failure not attributed to the second event")
	}
}

func TestConflictStagesThenYesCommits(t *testing.T) {
	t.Parallel()
	m, fake := newManager(t)
	fake.Seed(calendar.Event{Title: "Existing", Start: at(13, 17, 0), End: at(13, 19, 0)})
	ctx := context.Background()

	report, err := m.Submit(ctx, 42, []schedule.ResolvedEvent{resolved("Badminton", 13, 16, 18)}, attr)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !report.Staged || len(report.Conflicts) != 1 || report.Conflicts[0].Title != "Existing" {
		t.Fatalf("unexpected report: %+v", report)
	}
	if fake.InsertCount() != 0 {
		t.Fatalf("staging wrote %d events", fake.InsertCount())
	}

	res, err := m.Reply(ctx, 42, "  YES ")
	if err != nil {
		t.Fatalf("Reply: %v", err)
	}
	if res.Decision != session.Confirmed || res.Report.Created() != 1 {
		t.Errorf("unexpected reply result: %+v", res)
	}
	if fake.InsertCount() != 1 || m.HasPending(42) {
		t.Errorf("inserts=%d pending=%v after yes", fake.InsertCount(), m.HasPending(42))
	}
}

func TestNoDiscardsWithoutWriting(t *testing.T) {
	t.Parallel()
	m, fake := newManager(t)
	fake.Seed(calendar.Event{Title: "Existing", Start: at(13, 17, 0), End: at(13, 19, 0)})
	ctx := context.Background()

	if _, err := m.Submit(ctx, 42, []schedule.ResolvedEvent{resolved("Badminton", 13, 16, 18)}, attr); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	res, err := m.Reply(ctx, 42, "no")
	if err != nil {
		t.Fatalf("Reply: %v", err)
	}
	if res.Decision != session.Cancelled || res.Discarded != 1 {
		t.Errorf("unexpected reply result: %+v", res)
	}
	if fake.InsertCount() != 0 {
		t.Errorf("no wrote %d events", fake.InsertCount())
	}
	if m.HasPending(42) {
		t.Error("pending batch survived a no")
	}

	if _, err := m.Reply(ctx, 42, "yes"); !errors.Is(err, session.ErrNothingToConfirm) {
		t.Errorf("yes after no = %v, want ErrNothingToConfirm", err)
	}
}

func TestReplyIgnoresOtherText(t *testing.T) {
	t.Parallel()
	m, fake := newManager(t)
	fake.Seed(calendar.Event{Title: "Existing", Start: at(13, 17, 0), End: at(13, 19, 0)})
	ctx := context.Background()

	if _, err := m.Submit(ctx, 42, []schedule.ResolvedEvent{resolved("Badminton", 13, 16, 18)}, attr); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	for _, text := range []string{"yes please", "nope", "y", ""} {
		res, err := m.Reply(ctx, 42, text)
		if err != nil || res.Decision != session.NotAReply {
			t.Errorf("Reply(%q) = %+v, %v, want NotAReply", text, res, err)
		}
	}
	if !m.HasPending(42) {
		t.Error("non-answer text cleared the pending batch")
	}
}

func TestReplyWithoutPending(t *testing.T) {
	t.Parallel()
	m, _ := newManager(t)

	res, err := m.Reply(context.Background(), 42, "No")
	if !errors.Is(err, session.ErrNothingToConfirm) || res.Decision != session.Cancelled {
		t.Errorf("Reply = %+v, %v", res, err)
	}
}

func TestNewBatchSupersedesPending(t *testing.T) {
	t.Parallel()
	m, fake := newManager(t)
	fake.Seed(calendar.Event{Title: "Existing", Start: at(13, 17, 0), End: at(13, 19, 0)})
	ctx := context.Background()

	if _, err := m.Submit(ctx, 42, []schedule.ResolvedEvent{resolved("Badminton", 13, 16, 18)}, attr); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	report, err := m.Submit(ctx, 42, []schedule.ResolvedEvent{resolved("Breakfast", 13, 7, 8)}, attr)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if report.Staged || report.Created() != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if m.HasPending(42) {
		t.Error("superseded batch is still pending")
	}
	if _, err := m.Reply(ctx, 42, "yes"); !errors.Is(err, session.ErrNothingToConfirm) {
		t.Errorf("yes after supersession = %v, want ErrNothingToConfirm", err)
	}
}

func TestPendingIsPerChat(t *testing.T) {
	t.Parallel()
	m, fake := newManager(t)
	fake.Seed(calendar.Event{Title: "Existing", Start: at(13, 17, 0), End: at(13, 19, 0)})
	ctx := context.Background()

	if _, err := m.Submit(ctx, 1, []schedule.ResolvedEvent{resolved("Badminton", 13, 16, 18)}, attr); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := m.Reply(ctx, 2, "yes"); !errors.Is(err, session.ErrNothingToConfirm) {
		t.Errorf("other chat reply = %v, want ErrNothingToConfirm", err)
	}
	if !m.HasPending(1) {
		t.Error("other chat's answer consumed the pending batch")
	}
}

func TestSubmitReadFailure(t *testing.T) {
	t.Parallel()
	m, fake := newManager(t)
	fake.ListErr = errors.New("backend down")

	_, err := m.Submit(context.Background(), 42, []schedule.ResolvedEvent{resolved("Badminton", 13, 16, 18)}, attr)
	if !errors.Is(err, fake.ListErr) {
		t.Errorf("Submit error = %v, want backend error", err)
	}
	if fake.InsertCount() != 0 {
		t.Errorf("read failure still wrote %d events", fake.InsertCount())
	}
}

func TestClearDayAndUndo(t *testing.T) {
	t.Parallel()
	m, fake := newManager(t)
	fake.Seed(
		calendar.Event{Title: "A", Location: "Gym", Start: at(13, 8, 0), End: at(13, 9, 0)},
		calendar.Event{Title: "B", Start: at(13, 10, 0), End: at(13, 11, 0)},
		calendar.Event{Title: "Other day", Start: at(14, 10, 0), End: at(14, 11, 0)},
	)
	ctx := context.Background()

	report, err := m.ClearDay(ctx, 42, at(13, 0, 0))
	if err != nil {
		t.Fatalf("ClearDay: %v", err)
	}
	if len(report.Deleted) != 2 || len(report.Failed) != 0 {
		t.Fatalf("unexpected clear report: %+v", report)
	}
	if got := len(fake.Events()); got != 1 {
		t.Fatalf("calendar has %d events after clear, want 1", got)
	}

	undo, err := m.Undo(ctx, 42, attr)
	if err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if undo.Created() != 2 {
		t.Errorf("restored %d events, want 2", undo.Created())
	}
	restored := fake.Events()
	if len(restored) != 3 || restored[0].Title != "A" || restored[0].Location != "Gym" {
		t.Errorf("unexpected calendar after undo: %+v", restored)
	}

	if _, err := m.Undo(ctx, 42, attr); !errors.Is(err, session.ErrNothingToUndo) {
		t.Errorf("second Undo = %v, want ErrNothingToUndo", err)
	}
}

func TestUndoClearsBufferEvenOnFailure(t *testing.T) {
	t.Parallel()
	m, fake := newManager(t)
	fake.Seed(calendar.Event{Title: "A", Start: at(13, 8, 0), End: at(13, 9, 0)})
	ctx := context.Background()

	if _, err := m.ClearDay(ctx, 42, at(13, 0, 0)); err != nil {
		t.Fatalf("ClearDay: %v", err)
	}
	fake.InsertErr = func(calendar.NewEvent) error { return errors.New("down") }

	report, err := m.Undo(ctx, 42, attr)
	if err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if report.Failed() != 1 {
		t.Errorf("failed = %d, want 1", report.Failed())
	}
	if _, err := m.Undo(ctx, 42, attr); !errors.Is(err, session.ErrNothingToUndo) {
		t.Errorf("second Undo = %v, want ErrNothingToUndo", err)
	}
}

func TestClearDayBuffersOnlyDeletedEvents(t *testing.T) {
	t.Parallel()
	m, fake := newManager(t)
	fake.Seed(
		calendar.Event{ID: "keep", Title: "Stuck", Start: at(13, 8, 0), End: at(13, 9, 0)},
		calendar.Event{ID: "gone", Title: "Gone", Start: at(13, 10, 0), End: at(13, 11, 0)},
	)
	fake.DeleteErr = func(id string) error {
		if id == "keep" {
			return errors.New("forbidden")
		}
		return nil
	}
	ctx := context.Background()

	report, err := m.ClearDay(ctx, 42, at(13, 0, 0))
	if err != nil {
		t.Fatalf("ClearDay: %v", err)
	}
	if len(report.Deleted) != 1 || len(report.Failed) != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}

	fake.DeleteErr = nil
	undo, err := m.Undo(ctx, 42, attr)
	if err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if len(undo.Results) != 1 || undo.Results[0].Event.Title != "Gone" {
		t.Errorf("undo restored %+v, want only Gone", undo.Results)
	}
}

func TestEmptyClearOverwritesUndoBuffer(t *testing.T) {
	t.Parallel()
	m, fake := newManager(t)
	fake.Seed(calendar.Event{Title: "A", Start: at(13, 8, 0), End: at(13, 9, 0)})
	ctx := context.Background()

	if _, err := m.ClearDay(ctx, 42, at(13, 0, 0)); err != nil {
		t.Fatalf("ClearDay: %v", err)
	}
	if _, err := m.ClearDay(ctx, 42, at(15, 0, 0)); err != nil {
		t.Fatalf("ClearDay: %v", err)
	}
	if _, err := m.Undo(ctx, 42, attr); !errors.Is(err, session.ErrNothingToUndo) {
		t.Errorf("Undo after empty clear = %v, want ErrNothingToUndo", err)
	}
}

func TestConfirmClearRequiresPreview(t *testing.T) {
	t.Parallel()
	m, fake := newManager(t)
	fake.Seed(calendar.Event{Title: "A", Start: at(13, 8, 0), End: at(13, 9, 0)})
	ctx := context.Background()

	if _, err := m.ConfirmClear(ctx, 42, at(13, 0, 0)); !errors.Is(err, session.ErrPreviewRequired) {
		t.Fatalf("ConfirmClear without preview = %v, want ErrPreviewRequired", err)
	}

	preview, err := m.PreviewDay(ctx, 42, at(14, 0, 0))
	if err != nil {
		t.Fatalf("PreviewDay: %v", err)
	}
	if len(preview) != 0 {
		t.Errorf("preview of empty day = %+v", preview)
	}
	if _, err := m.ConfirmClear(ctx, 42, at(13, 0, 0)); !errors.Is(err, session.ErrPreviewRequired) {
		t.Fatalf("ConfirmClear of another day = %v, want ErrPreviewRequired", err)
	}

	if _, err := m.PreviewDay(ctx, 42, at(13, 0, 0)); err != nil {
		t.Fatalf("PreviewDay: %v", err)
	}
	report, err := m.ConfirmClear(ctx, 42, at(13, 12, 0))
	if err != nil {
		t.Fatalf("ConfirmClear: %v", err)
	}
	if len(report.Deleted) != 1 {
		t.Errorf("deleted %d events, want 1", len(report.Deleted))
	}
	if fake.DeleteCount() != 1 {
		t.Errorf("DeleteCount = %d, want 1", fake.DeleteCount())
	}
}

func TestLockSerializesChat(t *testing.T) {
	t.Parallel()
	m, _ := newManager(t)

	var active, maxActive int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := m.Lock(42)
			defer unlock()
			n := atomic.AddInt32(&active, 1)
			for {
				old := atomic.LoadInt32(&maxActive)
				if n <= old || atomic.CompareAndSwapInt32(&maxActive, old, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&active, -1)
		}()
	}
	wg.Wait()

	if maxActive != 1 {
		t.Errorf("max concurrent turns = %d, want 1", maxActive)
	}
}

func TestLockDifferentChatsDoNotContend(t *testing.T) {
	t.Parallel()
	m, _ := newManager(t)

	unlock := m.Lock(1)
	defer unlock()

	done := make(chan struct{})
	go func() {
		u := m.Lock(2)
		u()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock of another chat blocked")
	}
}
