package handlers

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

type textHandler struct {
	deps HandlerDeps
}

// NewTextHandler creates the default handler. It treats every plain text
// message as either a yes/no answer to a pending batch or a new batch of
// events. Unknown commands get the help message.
func NewTextHandler(deps HandlerDeps) bot.HandlerFunc {
	return textHandler{deps}.Handle
}

func (h textHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "text")

	msg := update.Message
	if msg == nil || msg.From == nil || strings.TrimSpace(msg.Text) == "" {
		log.DebugContext(ctx, "Ignoring update without text", "update_id", update.ID)
		return
	}

	chatID := msg.Chat.ID
	if strings.HasPrefix(msg.Text, "/") {
		log.DebugContext(ctx, "Unknown command", "chat_id", chatID)
		send(ctx, b, log, chatID, h.deps.Config.Messages.Help)
		return
	}

	reply, err := h.deps.Assistant.HandleText(ctx, toMessage(msg))
	if err != nil {
		replyError(ctx, b, h.deps, log, chatID, err)
		return
	}
	send(ctx, b, log, chatID, reply)
}
