// Package assistant runs one conversational turn: it parses chat text,
// resolves and titles events, and drives the session protocol. It knows
// nothing about the chat transport; replies are plain text.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/edgard/calbot/internal/calendar"
	"github.com/edgard/calbot/internal/schedule"
	"github.com/edgard/calbot/internal/session"
	"github.com/edgard/calbot/internal/title"
)

// ErrBackend wraps calendar read failures. Callers answer with a generic error
// message; no partial result is shown.
var ErrBackend = errors.New("calendar backend failure")

// Message is an inbound chat message.
type Message struct {
	ChatID       int64
	SenderID     int64
	SenderHandle string
	MessageID    int
	Text         string
}

// Options tunes the assistant.
type Options struct {
	// OwnerTag is written into created events and selects owned events.
	OwnerTag string
	// RequestTimeout bounds the calendar calls of a single turn. Zero means no bound.
	RequestTimeout time.Duration
}

// Export is an iCalendar document of one day.
type Export struct {
	Filename string
	Data     []byte
	Count    int
}

// Assistant handles chat turns.
type Assistant struct {
	cal       calendar.Reader
	sessions  *session.Manager
	resolver  *schedule.Resolver
	formatter *title.Formatter
	opts      Options
	log       *slog.Logger
}

// New creates an assistant.
func New(cal calendar.Reader, sessions *session.Manager, resolver *schedule.Resolver, formatter *title.Formatter, opts Options, logger *slog.Logger) *Assistant {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.OwnerTag == "" {
		opts.OwnerTag = calendar.DefaultOwnerTag
	}
	return &Assistant{
		cal:       cal,
		sessions:  sessions,
		resolver:  resolver,
		formatter: formatter,
		opts:      opts,
		log:       logger.With("component", "assistant"),
	}
}

func (a *Assistant) attribution(msg Message) calendar.Attribution {
	return calendar.Attribution{
		Handle:    msg.SenderHandle,
		SenderID:  msg.SenderID,
		ChatID:    msg.ChatID,
		MessageID: msg.MessageID,
		Tag:       a.opts.OwnerTag,
	}
}

func (a *Assistant) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.opts.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.opts.RequestTimeout)
}

// HandleText processes free text: a yes/no answer to a pending batch, or a
// new batch of events.
func (a *Assistant) HandleText(ctx context.Context, msg Message) (string, error) {
	unlock := a.sessions.Lock(msg.ChatID)
	defer unlock()

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	reply, err := a.sessions.Reply(ctx, msg.ChatID, msg.Text)
	switch {
	case errors.Is(err, session.ErrNothingToConfirm):
		return replyNothingToConfirm, nil
	case err != nil:
		return "", err
	case reply.Decision == session.Confirmed:
		return formatBatch(reply.Report, 0), nil
	case reply.Decision == session.Cancelled:
		return fmt.Sprintf(replyCancelledFmt, reply.Discarded), nil
	}

	drafts, skipped := a.parse(msg.Text)
	if len(drafts) == 0 {
		a.log.DebugContext(ctx, "No events parsed", "chat_id", msg.ChatID, "skipped", len(skipped))
		return replyInvalidFormat, nil
	}

	events := a.resolver.Build(drafts, a.formatter.Format)
	report, err := a.sessions.Submit(ctx, msg.ChatID, events, a.attribution(msg))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrBackend, err)
	}

	if report.Staged {
		return formatConflicts(report.Conflicts, len(events), len(skipped)), nil
	}
	return formatBatch(report, len(skipped)), nil
}

func (a *Assistant) parse(text string) ([]schedule.Draft, []schedule.SkippedLine) {
	if schedule.IsGrouped(text) {
		res := schedule.ParseGrouped(text)
		return res.Drafts, res.Skipped
	}
	return schedule.ParseMessage(text)
}

// Clear previews the owned events of a day, or deletes them when args end
// with "confirm" and the same day was previewed before.
func (a *Assistant) Clear(ctx context.Context, msg Message, args string) (string, error) {
	unlock := a.sessions.Lock(msg.ChatID)
	defer unlock()

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	fields := strings.Fields(args)
	confirm := len(fields) > 0 && strings.EqualFold(fields[len(fields)-1], "confirm")
	if confirm {
		fields = fields[:len(fields)-1]
	}
	dayArg := strings.Join(fields, " ")

	day, err := a.resolver.Day(dayArg)
	if err != nil {
		return fmt.Sprintf(replyUnknownDateFmt, dayArg), nil
	}

	if !confirm {
		events, err := a.sessions.PreviewDay(ctx, msg.ChatID, day)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrBackend, err)
		}
		return formatClearPreview(day, events), nil
	}

	report, err := a.sessions.ConfirmClear(ctx, msg.ChatID, day)
	switch {
	case errors.Is(err, session.ErrPreviewRequired):
		return fmt.Sprintf(replyPreviewFirstFmt, day.Format(time.DateOnly)), nil
	case err != nil:
		return "", fmt.Errorf("%w: %w", ErrBackend, err)
	}
	return formatCleared(report), nil
}

// Undo restores the events removed by the chat's last clear.
func (a *Assistant) Undo(ctx context.Context, msg Message) (string, error) {
	unlock := a.sessions.Lock(msg.ChatID)
	defer unlock()

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	report, err := a.sessions.Undo(ctx, msg.ChatID, a.attribution(msg))
	if errors.Is(err, session.ErrNothingToUndo) {
		return replyNothingToUndo, nil
	}
	if err != nil {
		return "", err
	}
	return formatUndo(report), nil
}

// List shows the owned events of a day.
func (a *Assistant) List(ctx context.Context, msg Message, args string) (string, error) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	day, err := a.resolver.Day(args)
	if err != nil {
		return fmt.Sprintf(replyUnknownDateFmt, strings.TrimSpace(args)), nil
	}

	events, err := a.cal.ListEvents(ctx, day)
	if err != nil {
		a.log.ErrorContext(ctx, "Failed to list events", "chat_id", msg.ChatID, "error", err)
		return "", fmt.Errorf("%w: %w", ErrBackend, err)
	}
	return formatList(day, events), nil
}

// Export renders the owned events of a day as an iCalendar document. An
// unknown date yields a non-empty reply text and no document.
func (a *Assistant) Export(ctx context.Context, msg Message, args string) (Export, string, error) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	day, err := a.resolver.Day(args)
	if err != nil {
		return Export{}, fmt.Sprintf(replyUnknownDateFmt, strings.TrimSpace(args)), nil
	}

	events, err := a.cal.ListEvents(ctx, day)
	if err != nil {
		a.log.ErrorContext(ctx, "Failed to list events for export", "chat_id", msg.ChatID, "error", err)
		return Export{}, "", fmt.Errorf("%w: %w", ErrBackend, err)
	}
	if len(events) == 0 {
		return Export{}, fmt.Sprintf(replyNoEventsFmt, formatDay(day)), nil
	}

	return Export{
		Filename: "events-" + day.Format(time.DateOnly) + ".ics",
		Data:     calendar.EncodeICS(events, a.resolver.Now()),
		Count:    len(events),
	}, "", nil
}
