// Package main contains the entrypoint for the Telegram calendar bot.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/jmoiron/sqlx"

	"github.com/edgard/calbot/internal/assistant"
	"github.com/edgard/calbot/internal/bot"
	"github.com/edgard/calbot/internal/bot/handlers"
	"github.com/edgard/calbot/internal/bot/tasks"
	"github.com/edgard/calbot/internal/calendar"
	"github.com/edgard/calbot/internal/calendar/google"
	"github.com/edgard/calbot/internal/category"
	"github.com/edgard/calbot/internal/config"
	"github.com/edgard/calbot/internal/database"
	"github.com/edgard/calbot/internal/logger"
	"github.com/edgard/calbot/internal/schedule"
	"github.com/edgard/calbot/internal/session"
	"github.com/edgard/calbot/internal/telegram"
	"github.com/edgard/calbot/internal/title"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// backend is the selected calendar plus, for the sqlite backend, its
// database handle and store.
type backend struct {
	cal   calendar.Calendar
	db    *sqlx.DB
	store database.Store
}

func openBackend(ctx context.Context, cfg *config.Config, log *slog.Logger) (*backend, error) {
	switch cfg.Calendar.Backend {
	case "google":
		raw, err := cfg.Calendar.CredentialsJSON()
		if err != nil {
			return nil, err
		}
		creds, err := google.DecodeCredentials(string(raw))
		if err != nil {
			return nil, err
		}
		svc, err := google.NewService(ctx, creds)
		if err != nil {
			return nil, err
		}
		cal := google.New(svc, google.Config{
			CalendarID:    cfg.Calendar.CalendarID,
			OwnerTag:      cfg.Calendar.OwnerTag,
			Location:      cfg.Location,
			InsertRetries: cfg.Calendar.InsertRetries,
			RetryBase:     cfg.Calendar.RetryBase,
		}, log)
		return &backend{cal: cal}, nil

	case "sqlite":
		db, err := database.NewDB(cfg.Database.Path)
		if err != nil {
			return nil, err
		}
		store := database.NewStore(db, database.StoreOptions{
			Location: cfg.Location,
			OwnerTag: cfg.Calendar.OwnerTag,
		}, log)
		return &backend{cal: store, db: db, store: store}, nil

	default:
		return nil, fmt.Errorf("unknown calendar backend %q", cfg.Calendar.Backend)
	}
}

// run initializes and starts all application components, handles graceful
// shutdown, and returns an exit code (0 for success, 1 for failure).
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Log.Level, cfg.Log.JSON)
	log.Info("Logger initialized", "level", cfg.Log.Level, "json", cfg.Log.JSON)

	categories, err := category.LoadFile(cfg.CategoriesFile)
	if err != nil {
		log.Error("Failed to load categories", "path", cfg.CategoriesFile, "error", err)
		return 1
	}

	be, err := openBackend(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to open calendar backend", "backend", cfg.Calendar.Backend, "error", err)
		return 1
	}
	if be.db != nil {
		defer database.CloseDB(be.db)
	}
	log.Info("Calendar backend ready", "backend", cfg.Calendar.Backend, "timezone", cfg.Location.String())

	sessionStore := session.NewStore(cfg.Session.PendingTTL, cfg.Session.CleanupInterval)
	sessions := session.NewManager(be.cal, sessionStore, log)
	resolver := schedule.NewResolver(cfg.Location)
	asst := assistant.New(be.cal, sessions, resolver, title.NewFormatter(categories), assistant.Options{
		OwnerTag:       cfg.Calendar.OwnerTag,
		RequestTimeout: cfg.Calendar.RequestTimeout,
	}, log)

	hDeps := handlers.HandlerDeps{
		Logger:    log,
		Config:    cfg,
		Assistant: asst,
	}
	tDeps := tasks.TaskDeps{
		Logger:   log,
		Sessions: sessionStore,
	}
	if be.store != nil {
		tDeps.Store = be.store
	}

	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(log), handlers.AllowedOnly(hDeps)),
		tgbot.WithDefaultHandler(handlers.NewTextHandler(hDeps)),
		tgbot.WithHTTPClient(cfg.Telegram.PollTimeout, &http.Client{Timeout: cfg.Telegram.PollTimeout}),
	}
	if cfg.Telegram.WebhookSecret != "" {
		botOpts = append(botOpts, tgbot.WithWebhookSecretToken(cfg.Telegram.WebhookSecret))
	}
	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	cmdHandlers := handlers.RegisterAllCommands(hDeps)
	if err := telegram.RegisterHandlers(tg, log, cmdHandlers); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}
	if err := telegram.PublishCommands(ctx, tg, cmdHandlers); err != nil {
		log.Warn("Failed to publish bot commands", "error", err)
	}

	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps), cfg.Location)
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}
	app := bot.NewBot(log, cfg.Telegram, tg, sched)

	log.Info("Starting bot...")
	runErr := app.Run(ctx)

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	return 0
}
