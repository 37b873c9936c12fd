package assistant

import (
	"fmt"
	"strings"
	"time"

	"github.com/edgard/calbot/internal/calendar"
	"github.com/edgard/calbot/internal/session"
)

const (
	replyInvalidFormat    = "❌ Invalid format. Example: 16-18h: badminton @Gym"
	replyNothingToConfirm = "ℹ️ Nothing to confirm."
	replyNothingToUndo    = "ℹ️ Nothing to undo."
	replyCancelledFmt     = "🚫 Cancelled. %d event(s) discarded."
	replyUnknownDateFmt   = "❌ Unknown date %q. Use today, tomorrow, T2..T7, CN, YYYY-MM-DD or DD/MM."
	replyPreviewFirstFmt  = "ℹ️ Preview first: send /clear %s and check the list before confirming."
	replyNoEventsFmt      = "📅 No events on %s."
	countsFmt             = "Created: %d · Failed: %d · Skipped: %d"
	dayLayout             = "Mon 02/01"
	clockLayout           = "15:04"
)

func formatDay(t time.Time) string {
	return t.Format(dayLayout)
}

func formatRange(start, end time.Time) string {
	return start.Format(clockLayout) + "–" + end.Format(clockLayout)
}

func formatEventLine(title, location string, start, end time.Time) string {
	line := fmt.Sprintf("%s %s %s", formatDay(start), formatRange(start, end), title)
	if location != "" {
		line += " @ " + location
	}
	return line
}

func formatBatch(r session.Report, skipped int) string {
	var b strings.Builder
	created, failed := r.Created(), r.Failed()

	if created == 1 && failed == 0 {
		ev := r.Results[0].Event
		b.WriteString("✅ Event created\n")
		fmt.Fprintf(&b, "🕒 %s %s\n", formatDay(ev.Start), formatRange(ev.Start, ev.End))
		fmt.Fprintf(&b, "📌 %s\n", ev.Title)
		if ev.Location != "" {
			fmt.Fprintf(&b, "📍 %s\n", ev.Location)
		}
	} else {
		switch {
		case failed == 0:
			fmt.Fprintf(&b, "✅ %d events created\n", created)
		case created == 0:
			b.WriteString("❌ No events created\n")
		default:
			fmt.Fprintf(&b, "⚠️ %d of %d events created\n", created, len(r.Results))
		}
		for _, res := range r.Results {
			mark := "•"
			if res.Err != nil {
				mark = "❌"
			}
			fmt.Fprintf(&b, "%s %s\n", mark, formatEventLine(res.Event.Title, res.Event.Location, res.Event.Start, res.Event.End))
		}
	}

	fmt.Fprintf(&b, countsFmt, created, failed, skipped)
	return b.String()
}

func formatConflicts(conflicts []calendar.Event, staged, skipped int) string {
	var b strings.Builder
	b.WriteString("⚠️ Conflicts with existing events:\n")
	for _, c := range conflicts {
		fmt.Fprintf(&b, "• %s\n", formatEventLine(c.Title, c.Location, c.Start, c.End))
	}
	fmt.Fprintf(&b, "Reply \"yes\" to create %d event(s) anyway or \"no\" to cancel.", staged)
	if skipped > 0 {
		fmt.Fprintf(&b, "\nSkipped: %d", skipped)
	}
	return b.String()
}

func formatList(day time.Time, events []calendar.Event) string {
	if len(events) == 0 {
		return fmt.Sprintf(replyNoEventsFmt, formatDay(day))
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📅 %s\n", formatDay(day))
	for i, e := range events {
		if i > 0 {
			b.WriteByte('\n')
		}
		line := formatRange(e.Start, e.End) + " " + e.Title
		if e.Location != "" {
			line += " @ " + e.Location
		}
		b.WriteString("• " + line)
	}
	return b.String()
}

func formatClearPreview(day time.Time, events []calendar.Event) string {
	if len(events) == 0 {
		return fmt.Sprintf(replyNoEventsFmt, formatDay(day))
	}
	return fmt.Sprintf("🗑️ %s\nSend /clear %s confirm to delete %d event(s).",
		formatList(day, events), day.Format(time.DateOnly), len(events))
}

func formatCleared(r session.ClearReport) string {
	msg := fmt.Sprintf("🗑️ Deleted %d event(s) on %s.", len(r.Deleted), formatDay(r.Day))
	if len(r.Failed) > 0 {
		msg += fmt.Sprintf(" Failed: %d.", len(r.Failed))
	}
	if len(r.Deleted) > 0 {
		msg += " Use /undo to restore them."
	}
	return msg
}

func formatUndo(r session.Report) string {
	msg := fmt.Sprintf("↩️ Restored %d event(s).", r.Created())
	if f := r.Failed(); f > 0 {
		msg += fmt.Sprintf(" Failed: %d.", f)
	}
	return msg
}
