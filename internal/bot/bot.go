// Package bot manages the lifecycle of the running bot: the Telegram update
// listener (long polling or webhook) and the task scheduler.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	tgbot "github.com/go-telegram/bot"
	"golang.org/x/sync/errgroup"

	"github.com/edgard/calbot/internal/config"
)

const webhookShutdownTimeout = 5 * time.Second

// Bot represents the running application and manages its components' lifecycle.
type Bot struct {
	logger    *slog.Logger
	cfg       config.TelegramConfig
	tgBot     *tgbot.Bot
	scheduler *Scheduler
}

// NewBot creates a new instance of the bot.
func NewBot(logger *slog.Logger, cfg config.TelegramConfig, tgBot *tgbot.Bot, scheduler *Scheduler) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		logger:    logger.With("component", "bot_orchestrator"),
		cfg:       cfg,
		tgBot:     tgBot,
		scheduler: scheduler,
	}
}

// Run starts the update listener and the scheduler and blocks until ctx is
// cancelled or a component fails.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("Starting bot orchestrator...", "mode", b.cfg.Mode)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		if b.cfg.Mode == "webhook" {
			err = b.runWebhook(gCtx)
		} else {
			err = b.runPolling(gCtx)
		}
		if err != nil {
			return err
		}

		if gCtx.Err() == nil {
			b.logger.Warn("Telegram listener stopped unexpectedly without context cancellation.")
			return errors.New("telegram listener stopped unexpectedly")
		}
		return nil
	})

	if b.scheduler != nil {
		g.Go(func() error {
			if err := b.scheduler.Start(); err != nil {
				return fmt.Errorf("failed to start scheduler: %w", err)
			}

			<-gCtx.Done()
			b.logger.Info("Shutdown signal received, stopping scheduler...")
			if err := b.scheduler.Stop(); err != nil {
				b.logger.Error("Error stopping scheduler", "error", err)
			}
			return nil
		})
	}

	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("Bot orchestrator stopped due to error", "error", err)
		return err
	}

	b.logger.Info("Bot orchestrator stopped gracefully.")
	return nil
}

func (b *Bot) runPolling(ctx context.Context) error {
	// A webhook left over from a previous deployment blocks getUpdates.
	if _, err := b.tgBot.DeleteWebhook(ctx, &tgbot.DeleteWebhookParams{}); err != nil {
		b.logger.Warn("Failed to delete webhook before polling", "error", err)
	}

	b.logger.Info("Starting Telegram long polling...")
	b.tgBot.Start(ctx)
	b.logger.Info("Telegram long polling stopped.")
	return nil
}

func (b *Bot) runWebhook(ctx context.Context) error {
	_, err := b.tgBot.SetWebhook(ctx, &tgbot.SetWebhookParams{
		URL:         b.cfg.WebhookURL,
		SecretToken: b.cfg.WebhookSecret,
	})
	if err != nil {
		return fmt.Errorf("failed to set webhook: %w", err)
	}

	srv := &http.Server{
		Addr:              b.cfg.WebhookListen,
		Handler:           b.tgBot.WebhookHandler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		b.tgBot.StartWebhook(gCtx)
		return nil
	})
	g.Go(func() error {
		b.logger.Info("Starting webhook server", "listen", b.cfg.WebhookListen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("webhook server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), webhookShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
