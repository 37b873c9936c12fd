// Package tasks implements the scheduled background tasks of the bot.
package tasks

import (
	"context"
	"log/slog"

	"github.com/edgard/calbot/internal/database"
	"github.com/edgard/calbot/internal/session"
)

// Maintainer is a store that supports periodic maintenance.
type Maintainer interface {
	RunSQLMaintenance(ctx context.Context) (database.MaintenanceReport, error)
}

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger *slog.Logger
	// Store is nil when the calendar does not live in the local database.
	Store    Maintainer
	Sessions *session.Store
}
