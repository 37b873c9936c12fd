// Package google implements the calendar backend on top of the Google
// Calendar v3 API.
package google

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/edgard/calbot/internal/calendar"
)

// Config configures the Google Calendar backend.
type Config struct {
	CalendarID    string
	OwnerTag      string
	Location      *time.Location
	InsertRetries uint64
	RetryBase     time.Duration
}

// Calendar is a calendar.Calendar backed by a Google calendar.
type Calendar struct {
	svc *gcal.Service
	cfg Config
	log *slog.Logger
}

var _ calendar.Calendar = (*Calendar)(nil)

// NewService builds a Calendar API client authenticated with service account
// credentials. Extra options are appended after the credentials.
func NewService(ctx context.Context, credentials []byte, opts ...option.ClientOption) (*gcal.Service, error) {
	all := append([]option.ClientOption{
		option.WithCredentialsJSON(credentials),
		option.WithScopes(gcal.CalendarScope),
	}, opts...)

	svc, err := gcal.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	return svc, nil
}

// DecodeCredentials accepts service account JSON either raw or base64-encoded.
func DecodeCredentials(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("empty credentials")
	}
	if strings.HasPrefix(s, "{") {
		return []byte(s), nil
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode base64 credentials: %w", err)
	}
	return data, nil
}

// New wraps svc. Zero config values fall back to defaults.
func New(svc *gcal.Service, cfg Config, logger *slog.Logger) *Calendar {
	if cfg.OwnerTag == "" {
		cfg.OwnerTag = calendar.DefaultOwnerTag
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Calendar{svc: svc, cfg: cfg, log: logger.With("component", "google_calendar")}
}

// ListEvents implements calendar.Reader.
func (c *Calendar) ListEvents(ctx context.Context, day time.Time) ([]calendar.Event, error) {
	from, to := calendar.DayBounds(day.In(c.cfg.Location))

	res, err := c.svc.Events.List(c.cfg.CalendarID).
		Context(ctx).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Do()
	if err != nil {
		return nil, fmt.Errorf("list google events: %w", err)
	}

	events := make([]calendar.Event, 0, len(res.Items))
	for _, item := range res.Items {
		if !calendar.Owned(item.Description, c.cfg.OwnerTag) {
			continue
		}
		ev, err := c.fromAPI(item)
		if err != nil {
			c.log.WarnContext(ctx, "Skipping event with unreadable times", "event_id", item.Id, "error", err)
			continue
		}
		events = append(events, ev)
		if len(events) == calendar.MaxEventsPerDay {
			break
		}
	}
	return events, nil
}

// InsertEvent implements calendar.Writer. A 409 response is retried with
// exponential backoff up to InsertRetries times after the first attempt.
func (c *Calendar) InsertEvent(ctx context.Context, ev calendar.NewEvent) error {
	body := &gcal.Event{
		Summary:     ev.Title,
		Location:    ev.Location,
		Description: ev.Description,
		Start:       c.toAPI(ev.Start),
		End:         c.toAPI(ev.End),
	}

	attempt := 0
	backoff := retry.WithMaxRetries(c.cfg.InsertRetries, retry.NewExponential(c.cfg.RetryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		_, err := c.svc.Events.Insert(c.cfg.CalendarID, body).Context(ctx).Do()
		if isConflict(err) {
			if uint64(attempt) > c.cfg.InsertRetries {
				c.log.WarnContext(ctx, "Insert conflicted, giving up", "attempts", attempt, "title", ev.Title)
				return err
			}
			c.log.WarnContext(ctx, "Insert conflicted, retrying", "attempt", attempt, "title", ev.Title)
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("insert google event: %w", err)
	}
	return nil
}

// DeleteEvent implements calendar.Writer.
func (c *Calendar) DeleteEvent(ctx context.Context, id string) error {
	if err := c.svc.Events.Delete(c.cfg.CalendarID, id).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete google event %s: %w", id, err)
	}
	return nil
}

func (c *Calendar) toAPI(t time.Time) *gcal.EventDateTime {
	return &gcal.EventDateTime{
		DateTime: t.In(c.cfg.Location).Format(time.RFC3339),
		TimeZone: c.cfg.Location.String(),
	}
}

func (c *Calendar) fromAPI(item *gcal.Event) (calendar.Event, error) {
	start, err := c.parseTime(item.Start)
	if err != nil {
		return calendar.Event{}, fmt.Errorf("start: %w", err)
	}
	end, err := c.parseTime(item.End)
	if err != nil {
		return calendar.Event{}, fmt.Errorf("end: %w", err)
	}
	return calendar.Event{
		ID:          item.Id,
		Title:       item.Summary,
		Description: item.Description,
		Location:    item.Location,
		Start:       start,
		End:         end,
	}, nil
}

// parseTime handles timed events and all-day events, which carry only a date.
func (c *Calendar) parseTime(dt *gcal.EventDateTime) (time.Time, error) {
	if dt == nil {
		return time.Time{}, errors.New("missing time")
	}
	if dt.DateTime != "" {
		t, err := time.Parse(time.RFC3339, dt.DateTime)
		if err != nil {
			return time.Time{}, err
		}
		return t.In(c.cfg.Location), nil
	}
	return time.ParseInLocation(time.DateOnly, dt.Date, c.cfg.Location)
}

func isConflict(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusConflict
}
