package bot_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path"
	"slices"
	"sync"
	"testing"
	"time"

	tgbot "github.com/go-telegram/bot"

	"github.com/edgard/calbot/internal/bot"
	"github.com/edgard/calbot/internal/bot/tasks"
	"github.com/edgard/calbot/internal/config"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type telegramAPI struct {
	mu      sync.Mutex
	methods []string
}

func (s *telegramAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	method := path.Base(r.URL.Path)
	s.mu.Lock()
	s.methods = append(s.methods, method)
	s.mu.Unlock()

	if method == "getUpdates" {
		time.Sleep(20 * time.Millisecond)
		_, _ = io.WriteString(w, `{"ok":true,"result":[]}`)
		return
	}
	_, _ = io.WriteString(w, `{"ok":true,"result":true}`)
}

func (s *telegramAPI) called(method string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Contains(s.methods, method)
}

func TestSchedulerSchedulesEnabledRegisteredTasks(t *testing.T) {
	t.Parallel()

	noop := func(context.Context) error { return nil }
	cfg := &config.SchedulerConfig{Tasks: map[string]config.TaskConfig{
		"session_report":  {Enabled: true, Schedule: "0 0 * * * *"},
		"sql_maintenance": {Enabled: false, Schedule: "0 0 4 * * 0"},
		"unknown":         {Enabled: true, Schedule: "0 0 * * * *"},
		"bad_schedule":    {Enabled: true, Schedule: "not a cron"},
	}}
	registry := map[string]tasks.ScheduledTaskFunc{
		"session_report":  noop,
		"sql_maintenance": noop,
		"bad_schedule":    noop,
	}

	s, err := bot.NewScheduler(discard(), cfg, registry, time.UTC)
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { _ = s.Stop() })

	if got := s.Jobs(); !slices.Equal(got, []string{"session_report"}) {
		t.Errorf("jobs = %v, want [session_report]", got)
	}
	if err := s.Start(); err == nil {
		t.Error("second Start succeeded")
	}
}

func TestSchedulerRunsTask(t *testing.T) {
	t.Parallel()

	ran := make(chan struct{}, 1)
	cfg := &config.SchedulerConfig{Tasks: map[string]config.TaskConfig{
		"tick": {Enabled: true, Schedule: "* * * * * *"},
	}}
	registry := map[string]tasks.ScheduledTaskFunc{
		"tick": func(context.Context) error {
			select {
			case ran <- struct{}{}:
			default:
			}
			return errors.New("logged, not fatal")
		},
	}

	s, err := bot.NewScheduler(discard(), cfg, registry, nil)
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer func() { _ = s.Stop() }()

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("task did not run")
	}
}

func TestRunPollingStopsOnCancel(t *testing.T) {
	t.Parallel()

	api := &telegramAPI{}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	tg, err := tgbot.New("123456:TEST", tgbot.WithServerURL(srv.URL), tgbot.WithSkipGetMe())
	if err != nil {
		t.Fatalf("bot.New: %v", err)
	}
	s, err := bot.NewScheduler(discard(), &config.SchedulerConfig{}, nil, nil)
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}

	app := bot.NewBot(discard(), config.TelegramConfig{Mode: "polling"}, tg, s)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	if err := app.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !api.called("deleteWebhook") {
		t.Error("polling did not clear the webhook")
	}
	if !api.called("getUpdates") {
		t.Error("polling never asked for updates")
	}
}
