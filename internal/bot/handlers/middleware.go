// Package handlers contains Telegram bot command and message handlers,
// along with their registration logic and middleware.
package handlers

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// AllowedOnly creates a middleware that lets through only messages from
// senders listed in telegram.allowed_user_ids. Anyone else gets the fixed
// rejection message and the update stops here. Updates without a message or
// sender are dropped.
func AllowedOnly(deps HandlerDeps) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
			if update.Message == nil || update.Message.From == nil {
				return
			}

			userID := update.Message.From.ID
			if deps.Config.IsUserAllowed(userID) {
				next(ctx, bot, update)
				return
			}

			chatID := update.Message.Chat.ID
			log := deps.Logger.With("middleware", "AllowedOnly")
			log.WarnContext(ctx, "Unauthorized access attempt", "user_id", userID, "chat_id", chatID)

			_, err := bot.SendMessage(ctx, &tgbot.SendMessageParams{
				ChatID: chatID,
				Text:   deps.Config.Messages.NotAuthorized,
			})
			if err != nil {
				log.ErrorContext(ctx, "Failed to send unauthorized message", "error", err, "chat_id", chatID)
			}
		}
	}
}
