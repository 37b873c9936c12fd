package tasks

import (
	"context"
)

// ScheduledTaskFunc defines the standard signature for all scheduled tasks.
// The context provided by the scheduler should be respected for cancellation.
type ScheduledTaskFunc func(ctx context.Context) error

// RegisterAllTasks initializes and returns the scheduled tasks keyed by the
// name used in the scheduler.tasks config section. Tasks whose dependencies
// are missing are not registered.
func RegisterAllTasks(deps TaskDeps) map[string]ScheduledTaskFunc {
	tasks := make(map[string]ScheduledTaskFunc)

	if deps.Store != nil {
		tasks["sql_maintenance"] = newSQLMaintenanceTask(deps)
	}
	if deps.Sessions != nil {
		tasks["session_report"] = newSessionReportTask(deps)
	}

	deps.Logger.Info("Initialized scheduled tasks", "count", len(tasks))
	return tasks
}
