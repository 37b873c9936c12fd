package handlers

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/calbot/internal/assistant"
)

// toMessage converts a Telegram message into an assistant message.
func toMessage(msg *models.Message) assistant.Message {
	m := assistant.Message{
		ChatID:    msg.Chat.ID,
		MessageID: msg.ID,
		Text:      msg.Text,
	}
	if msg.From != nil {
		m.SenderID = msg.From.ID
		m.SenderHandle = msg.From.Username
	}
	return m
}

// commandArgs returns the text following the leading command word.
func commandArgs(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.IndexAny(text, " \n\t"); i >= 0 {
		return strings.TrimSpace(text[i+1:])
	}
	return ""
}

func send(ctx context.Context, b *bot.Bot, log *slog.Logger, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send message", "error", err, "chat_id", chatID)
	}
}

// replyError logs a failed turn and answers with the timeout or generic error message.
func replyError(ctx context.Context, b *bot.Bot, deps HandlerDeps, log *slog.Logger, chatID int64, err error) {
	text := deps.Config.Messages.GeneralError
	if errors.Is(err, context.DeadlineExceeded) {
		text = deps.Config.Messages.Timeout
		log.WarnContext(ctx, "Calendar request timed out", "chat_id", chatID, "error", err)
	} else {
		log.ErrorContext(ctx, "Failed to handle message", "chat_id", chatID, "error", err)
	}
	send(ctx, b, log, chatID, text)
}
