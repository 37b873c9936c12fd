package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/edgard/calbot/internal/bot/tasks"
	"github.com/edgard/calbot/internal/config"
)

// Scheduler manages scheduled tasks using the gocron library.
type Scheduler struct {
	scheduler gocron.Scheduler
	logger    *slog.Logger
	cfg       *config.SchedulerConfig
	taskMap   map[string]tasks.ScheduledTaskFunc
	mu        sync.Mutex
	running   bool
}

// NewScheduler creates a scheduler whose cron expressions are evaluated in loc.
func NewScheduler(logger *slog.Logger, cfg *config.SchedulerConfig, taskMap map[string]tasks.ScheduledTaskFunc, loc *time.Location) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.Local
	}

	s, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	return &Scheduler{
		scheduler: s,
		logger:    logger.With("component", "scheduler"),
		cfg:       cfg,
		taskMap:   taskMap,
	}, nil
}

// Start schedules every enabled task that has a registered implementation and
// starts the scheduler. A task that cannot be scheduled is logged and skipped.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("scheduler is already running")
	}

	scheduledCount := 0
	if s.cfg != nil {
		for taskName, taskConfig := range s.cfg.Tasks {
			if !taskConfig.Enabled {
				s.logger.Info("Skipping disabled task", "task_name", taskName)
				continue
			}

			taskFunc, exists := s.taskMap[taskName]
			if !exists {
				s.logger.Warn("Scheduled task configured but not registered, skipping", "task_name", taskName)
				continue
			}

			_, err := s.scheduler.NewJob(
				gocron.CronJob(taskConfig.Schedule, true),
				gocron.NewTask(s.run, context.Background(), taskName, taskFunc),
				gocron.WithName(taskName),
				gocron.WithSingletonMode(gocron.LimitModeReschedule),
			)
			if err != nil {
				s.logger.Error("Failed to schedule task", "task_name", taskName, "schedule", taskConfig.Schedule, "error", err)
				continue
			}

			s.logger.Info("Scheduled task", "task_name", taskName, "schedule", taskConfig.Schedule)
			scheduledCount++
		}
	}

	if scheduledCount == 0 {
		s.logger.Warn("No scheduler tasks configured.")
	}

	s.scheduler.Start()
	s.running = true
	s.logger.Info("Scheduler started", "tasks_scheduled", scheduledCount)
	return nil
}

// run wraps a task with logging.
func (s *Scheduler) run(ctx context.Context, name string, task tasks.ScheduledTaskFunc) {
	s.logger.InfoContext(ctx, "Running scheduled task", "task_name", name)
	startTime := time.Now()
	if err := task(ctx); err != nil {
		s.logger.ErrorContext(ctx, "Scheduled task failed", "task_name", name, "error", err)
	}
	s.logger.InfoContext(ctx, "Finished scheduled task", "task_name", name, "duration", time.Since(startTime))
}

// Jobs returns the names of the scheduled jobs, sorted.
func (s *Scheduler) Jobs() []string {
	var names []string
	for _, j := range s.scheduler.Jobs() {
		names = append(names, j.Name())
	}
	slices.Sort(names)
	return names
}

// Stop gracefully stops the scheduler, waiting for running jobs to complete.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	err := s.scheduler.Shutdown()
	if err != nil {
		s.logger.Error("Error during scheduler shutdown", "error", err)
	} else {
		s.logger.Info("Scheduler stopped gracefully.")
	}

	s.running = false
	return err
}
