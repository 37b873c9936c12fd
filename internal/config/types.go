// Package config manages application configuration from environment variables,
// an optional .env file, a YAML config file, and default values.
package config

import (
	"errors"
	"time"
)

// ErrConfiguration is wrapped by every loading or validation failure.
var ErrConfiguration = errors.New("configuration error")

// Config defines the application configuration. Values can be set via
// environment variables prefixed with BOT_ (e.g., BOT_TELEGRAM_TOKEN) or
// through config.yaml.
type Config struct {
	Log            LogConfig       `mapstructure:"log"`
	Telegram       TelegramConfig  `mapstructure:"telegram"`
	Calendar       CalendarConfig  `mapstructure:"calendar"`
	Database       DatabaseConfig  `mapstructure:"database"`
	Session        SessionConfig   `mapstructure:"session"`
	Scheduler      SchedulerConfig `mapstructure:"scheduler"`
	Messages       Messages        `mapstructure:"messages"`
	CategoriesFile string          `mapstructure:"categories_file"`

	// Location is the parsed Calendar.Timezone, set by Load.
	Location *time.Location `mapstructure:"-"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds the chat transport settings.
type TelegramConfig struct {
	Token string `mapstructure:"token" validate:"required"`
	// AllowedUserIDs lists the senders allowed to use the bot. An empty list
	// denies everyone.
	AllowedUserIDs []int64 `mapstructure:"allowed_user_ids" validate:"dive,gt=0"`

	Mode        string        `mapstructure:"mode"         validate:"required,oneof=polling webhook"`
	PollTimeout time.Duration `mapstructure:"poll_timeout" validate:"min=1s,max=5m"`

	WebhookURL    string `mapstructure:"webhook_url"    validate:"required_if=Mode webhook"`
	WebhookListen string `mapstructure:"webhook_listen" validate:"required_if=Mode webhook"`
	WebhookSecret string `mapstructure:"webhook_secret"`
}

// CalendarConfig selects and configures the calendar backend.
type CalendarConfig struct {
	Backend  string `mapstructure:"backend"  validate:"required,oneof=google sqlite"`
	Timezone string `mapstructure:"timezone" validate:"required,timezone"`
	OwnerTag string `mapstructure:"owner_tag" validate:"required"`

	CalendarID      string `mapstructure:"calendar_id"      validate:"required_if=Backend google"`
	Credentials     string `mapstructure:"credentials"`
	CredentialsFile string `mapstructure:"credentials_file"`

	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"min=1s,max=5m"`
	InsertRetries  uint64        `mapstructure:"insert_retries"  validate:"max=10"`
	RetryBase      time.Duration `mapstructure:"retry_base"      validate:"min=0"`
}

// DatabaseConfig holds the SQLite calendar settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// SessionConfig tunes the in-memory conversation state.
type SessionConfig struct {
	// PendingTTL is how long a staged batch waits for yes/no. Zero keeps it
	// until it is answered or superseded.
	PendingTTL      time.Duration `mapstructure:"pending_ttl"      validate:"min=0"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval" validate:"min=0"`
}

// SchedulerConfig lists the scheduled tasks by name.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks" validate:"dive"`
}

// TaskConfig configures one scheduled task.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule" validate:"required_if=Enabled true"`
}

// Messages are the fixed replies of the bot.
type Messages struct {
	Welcome       string `mapstructure:"welcome"        validate:"required"`
	Help          string `mapstructure:"help"           validate:"required"`
	NotAuthorized string `mapstructure:"not_authorized" validate:"required"`
	GeneralError  string `mapstructure:"general_error"  validate:"required"`
	Timeout       string `mapstructure:"timeout"        validate:"required"`
}
