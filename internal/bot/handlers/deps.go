package handlers

import (
	"log/slog"

	"github.com/edgard/calbot/internal/assistant"
	"github.com/edgard/calbot/internal/config"
)

// HandlerDeps provides dependencies for Telegram command handlers.
type HandlerDeps struct {
	Logger    *slog.Logger
	Config    *config.Config
	Assistant *assistant.Assistant
}
