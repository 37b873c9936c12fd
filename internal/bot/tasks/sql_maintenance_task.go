package tasks

import (
	"context"
	"fmt"
	"time"
)

// newSQLMaintenanceTask compacts the local events database on schedule.
func newSQLMaintenanceTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "sql_maintenance")

	return func(ctx context.Context) error {
		started := time.Now()
		report, err := deps.Store.RunSQLMaintenance(ctx)
		if err != nil {
			log.ErrorContext(ctx, "Events database maintenance failed", "error", err, "duration", time.Since(started))
			return fmt.Errorf("sql maintenance failed: %w", err)
		}

		log.InfoContext(ctx, "Events database maintenance finished",
			"events", report.Events,
			"reclaimed_bytes", report.Reclaimed(),
			"duration", time.Since(started))
		return nil
	}
}
