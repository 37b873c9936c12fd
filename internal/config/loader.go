package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// LoadConfig loads and validates configuration from, in increasing priority:
//  1. Default values
//  2. The YAML file at path (optional; a missing file is not an error)
//  3. A .env file in the working directory (optional)
//  4. BOT_* environment variables
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: failed to load .env file: %v", ErrConfiguration, err)
	}

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: failed to read config file: %v", ErrConfiguration, err)
		}
		slog.Debug("Config file not found, using defaults and environment", "path", path)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrConfiguration, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setDefaults registers every key so that BOT_* variables can override keys
// absent from the config file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.json", DefaultLogJSON)

	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.allowed_user_ids", []int64{})
	v.SetDefault("telegram.mode", DefaultTelegramMode)
	v.SetDefault("telegram.poll_timeout", DefaultTelegramPollTimeout)
	v.SetDefault("telegram.webhook_url", "")
	v.SetDefault("telegram.webhook_listen", "")
	v.SetDefault("telegram.webhook_secret", "")

	v.SetDefault("calendar.backend", DefaultCalendarBackend)
	v.SetDefault("calendar.timezone", DefaultCalendarTimezone)
	v.SetDefault("calendar.owner_tag", DefaultCalendarOwnerTag)
	v.SetDefault("calendar.calendar_id", "")
	v.SetDefault("calendar.credentials", "")
	v.SetDefault("calendar.credentials_file", "")
	v.SetDefault("calendar.request_timeout", DefaultCalendarRequestTimeout)
	v.SetDefault("calendar.insert_retries", DefaultCalendarInsertRetries)
	v.SetDefault("calendar.retry_base", DefaultCalendarRetryBase)

	v.SetDefault("database.path", DefaultDatabasePath)

	v.SetDefault("session.pending_ttl", DefaultSessionPendingTTL)
	v.SetDefault("session.cleanup_interval", DefaultSessionCleanupInterval)

	v.SetDefault("categories_file", "")

	for name, task := range DefaultTasks {
		v.SetDefault("scheduler.tasks."+name+".enabled", task.Enabled)
		v.SetDefault("scheduler.tasks."+name+".schedule", task.Schedule)
	}

	v.SetDefault("messages.welcome", DefaultMessages.Welcome)
	v.SetDefault("messages.help", DefaultMessages.Help)
	v.SetDefault("messages.not_authorized", DefaultMessages.NotAuthorized)
	v.SetDefault("messages.general_error", DefaultMessages.GeneralError)
	v.SetDefault("messages.timeout", DefaultMessages.Timeout)
}

// CredentialsJSON returns the Google service account key, read from
// CredentialsFile when set, else taken from Credentials (raw JSON or base64).
func (c *CalendarConfig) CredentialsJSON() ([]byte, error) {
	if c.CredentialsFile != "" {
		data, err := os.ReadFile(c.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read credentials file: %w", err)
		}
		return data, nil
	}
	if c.Credentials == "" {
		return nil, errors.New("no credentials configured")
	}
	return []byte(c.Credentials), nil
}

func loadLocation(name string) (*time.Location, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", name, err)
	}
	return loc, nil
}
