package config

import (
	"fmt"
	"slices"

	"github.com/go-playground/validator/v10"
)

// Validate checks the struct tags and the rules the tags cannot express,
// then resolves Calendar.Timezone into Location.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	if c.Calendar.Backend == "google" && c.Calendar.Credentials == "" && c.Calendar.CredentialsFile == "" {
		return fmt.Errorf("%w: calendar.credentials or calendar.credentials_file is required for the google backend", ErrConfiguration)
	}

	loc, err := loadLocation(c.Calendar.Timezone)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	c.Location = loc

	return nil
}

// IsUserAllowed reports whether senderID may use the bot. Only listed ids
// are allowed; an empty list allows nobody.
func (c *Config) IsUserAllowed(senderID int64) bool {
	return slices.Contains(c.Telegram.AllowedUserIDs, senderID)
}
