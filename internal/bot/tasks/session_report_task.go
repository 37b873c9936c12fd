package tasks

import (
	"context"
)

// newSessionReportTask drops expired session entries and logs how many chats
// still hold conversation state.
func newSessionReportTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "session_report")

	return func(ctx context.Context) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		deps.Sessions.DeleteExpired()
		stats := deps.Sessions.Stats()
		log.InfoContext(ctx, "Session state",
			"chats", stats.Chats,
			"pending", stats.Pending,
			"undo", stats.Undo,
			"preview", stats.Preview)
		return nil
	}
}
