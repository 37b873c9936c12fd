// Package logger provides structured logging for the bot. It uses Go's slog
// package with configurable levels and formats.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewLogger creates a new slog Logger with the specified level and format.
// If jsonOutput is true, logs will be formatted as JSON, otherwise as text.
func NewLogger(levelStr string, jsonOutput bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(levelStr)}

	var handler slog.Handler
	if jsonOutput {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// ParseLevel maps a level name to a slog level. Unknown names yield info.
func ParseLevel(levelStr string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// UpdateAttrs returns the log attributes describing an update. Message text
// is never logged, only its length.
func UpdateAttrs(update *models.Update) []any {
	attrs := []any{"update_id", update.ID}

	msg := update.Message
	if msg == nil {
		return append(attrs, "update_type", "other")
	}

	attrs = append(attrs,
		"update_type", "message",
		"message_id", msg.ID,
		"chat_id", msg.Chat.ID,
		"text_len", len(msg.Text),
	)
	if msg.From != nil {
		attrs = append(attrs, "user_id", msg.From.ID)
	}
	return attrs
}

// Middleware creates a logging middleware for the Telegram bot. It logs each
// update before and after it is handled.
func Middleware(log *slog.Logger) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			startTime := time.Now()
			logEntry := log.With(UpdateAttrs(update)...)

			logEntry.InfoContext(ctx, "Processing update")

			next(ctx, b, update)

			logEntry.InfoContext(ctx, "Finished processing update", "duration", time.Since(startTime))
		}
	}
}
