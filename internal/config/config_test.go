package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/edgard/calbot/internal/config"
	"github.com/edgard/calbot/internal/schedule"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: "123:abc"
  allowed_user_ids: [111, 222]
`)

	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Calendar.Backend != "sqlite" {
		t.Errorf("backend = %q, want sqlite", cfg.Calendar.Backend)
	}
	if cfg.Location == nil || cfg.Location.String() != config.DefaultCalendarTimezone {
		t.Errorf("location = %v", cfg.Location)
	}
	if cfg.Session.PendingTTL != 30*time.Minute {
		t.Errorf("pending ttl = %v", cfg.Session.PendingTTL)
	}
	if cfg.Calendar.OwnerTag != config.DefaultCalendarOwnerTag {
		t.Errorf("owner tag = %q", cfg.Calendar.OwnerTag)
	}
	if cfg.Messages.NotAuthorized != config.DefaultMessages.NotAuthorized {
		t.Errorf("not authorized message = %q", cfg.Messages.NotAuthorized)
	}
	if task, ok := cfg.Scheduler.Tasks["sql_maintenance"]; !ok || !task.Enabled || task.Schedule == "" {
		t.Errorf("sql_maintenance task = %+v, %v", task, ok)
	}
	if len(cfg.Telegram.AllowedUserIDs) != 2 {
		t.Errorf("allowed ids = %v", cfg.Telegram.AllowedUserIDs)
	}
}

func TestLoadConfigEnvironmentOverrides(t *testing.T) {
	t.Setenv("BOT_TELEGRAM_TOKEN", "env-token")
	t.Setenv("BOT_SESSION_PENDING_TTL", "0s")
	t.Setenv("BOT_CALENDAR_TIMEZONE", "Europe/Paris")

	cfg, err := config.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Telegram.Token != "env-token" {
		t.Errorf("token = %q", cfg.Telegram.Token)
	}
	if cfg.Session.PendingTTL != 0 {
		t.Errorf("pending ttl = %v, want 0", cfg.Session.PendingTTL)
	}
	if cfg.Location.String() != "Europe/Paris" {
		t.Errorf("location = %v", cfg.Location)
	}
}

func TestLoadConfigRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing token", "log:\n  level: info\n"},
		{"bad log level", "telegram:\n  token: x\nlog:\n  level: loud\n"},
		{"bad timezone", "telegram:\n  token: x\ncalendar:\n  timezone: Mars/Olympus\n"},
		{"google without calendar id", "telegram:\n  token: x\ncalendar:\n  backend: google\n  credentials: '{}'\n"},
		{"google without credentials", "telegram:\n  token: x\ncalendar:\n  backend: google\n  calendar_id: primary\n"},
		{"webhook without url", "telegram:\n  token: x\n  mode: webhook\n  webhook_listen: ':8080'\n"},
		{"unknown backend", "telegram:\n  token: x\ncalendar:\n  backend: outlook\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.LoadConfig(writeConfig(t, tt.body))
			if !errors.Is(err, config.ErrConfiguration) {
				t.Errorf("LoadConfig error = %v, want ErrConfiguration", err)
			}
		})
	}
}

func TestIsUserAllowed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		allowed []int64
		sender  int64
		want    bool
	}{
		{"listed", []int64{1, 2}, 2, true},
		{"not listed", []int64{1, 2}, 3, false},
		{"empty list denies", nil, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := &config.Config{Telegram: config.TelegramConfig{AllowedUserIDs: tt.allowed}}
			if got := cfg.IsUserAllowed(tt.sender); got != tt.want {
				t.Errorf("IsUserAllowed(%d) = %v, want %v", tt.sender, got, tt.want)
			}
		})
	}
}

func TestCredentialsJSON(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "sa.json")
	if err := os.WriteFile(file, []byte(`{"type":"service_account"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	c := config.CalendarConfig{Credentials: "inline", CredentialsFile: file}
	got, err := c.CredentialsJSON()
	if err != nil || string(got) != `{"type":"service_account"}` {
		t.Errorf("file credentials = %q, %v", got, err)
	}

	c = config.CalendarConfig{Credentials: "inline"}
	if got, err := c.CredentialsJSON(); err != nil || string(got) != "inline" {
		t.Errorf("inline credentials = %q, %v", got, err)
	}

	c = config.CalendarConfig{}
	if _, err := c.CredentialsJSON(); err == nil {
		t.Error("expected an error without credentials")
	}
}

func TestHelpExamplesParse(t *testing.T) {
	t.Parallel()

	const prefix = "• One event per line: "
	var examples []string
	for _, line := range strings.Split(config.DefaultMessages.Help, "\n") {
		if rest, ok := strings.CutPrefix(line, prefix); ok {
			examples = strings.Split(rest, ", ")
		}
	}

	tests := []struct {
		line     string
		date     schedule.DateToken
		title    string
		location string
	}{
		{"16-18h: badminton @Gym", schedule.DateToken{}, "badminton", "Gym"},
		{"T3 9:30-10am: call with Minh", schedule.DateToken{Kind: schedule.DateWeekday, Weekday: time.Tuesday}, "call with Minh", ""},
	}
	if len(examples) != len(tests) {
		t.Fatalf("help lists %d examples %q, want %d", len(examples), examples, len(tests))
	}

	for i, tt := range tests {
		if examples[i] != tt.line {
			t.Errorf("example %d = %q, want %q", i, examples[i], tt.line)
			continue
		}
		draft, err := schedule.ParseLine(examples[i])
		if err != nil {
			t.Errorf("ParseLine(%q): %v", examples[i], err)
			continue
		}
		if draft.Date != tt.date {
			t.Errorf("ParseLine(%q) date = %+v, want %+v", examples[i], draft.Date, tt.date)
		}
		if draft.RawTitle != tt.title || draft.Location != tt.location {
			t.Errorf("ParseLine(%q) = %q @ %q, want %q @ %q", examples[i], draft.RawTitle, draft.Location, tt.title, tt.location)
		}
	}
}
