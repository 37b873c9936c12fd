package handlers

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewListHandler returns a handler for /list [date].
func NewListHandler(deps HandlerDeps) bot.HandlerFunc {
	return listHandler{deps}.Handle
}

type listHandler struct {
	deps HandlerDeps
}

func (h listHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "list")
	if update.Message == nil {
		return
	}
	msg := update.Message

	log.InfoContext(ctx, "Handling /list command", "chat_id", msg.Chat.ID)
	reply, err := h.deps.Assistant.List(ctx, toMessage(msg), commandArgs(msg.Text))
	if err != nil {
		replyError(ctx, b, h.deps, log, msg.Chat.ID, err)
		return
	}
	send(ctx, b, log, msg.Chat.ID, reply)
}

// NewClearHandler returns a handler for /clear [date] [confirm].
func NewClearHandler(deps HandlerDeps) bot.HandlerFunc {
	return clearHandler{deps}.Handle
}

type clearHandler struct {
	deps HandlerDeps
}

func (h clearHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "clear")
	if update.Message == nil {
		return
	}
	msg := update.Message

	log.InfoContext(ctx, "Handling /clear command", "chat_id", msg.Chat.ID)
	reply, err := h.deps.Assistant.Clear(ctx, toMessage(msg), commandArgs(msg.Text))
	if err != nil {
		replyError(ctx, b, h.deps, log, msg.Chat.ID, err)
		return
	}
	send(ctx, b, log, msg.Chat.ID, reply)
}

// NewUndoHandler returns a handler for /undo.
func NewUndoHandler(deps HandlerDeps) bot.HandlerFunc {
	return undoHandler{deps}.Handle
}

type undoHandler struct {
	deps HandlerDeps
}

func (h undoHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "undo")
	if update.Message == nil {
		return
	}
	msg := update.Message

	log.InfoContext(ctx, "Handling /undo command", "chat_id", msg.Chat.ID)
	reply, err := h.deps.Assistant.Undo(ctx, toMessage(msg))
	if err != nil {
		replyError(ctx, b, h.deps, log, msg.Chat.ID, err)
		return
	}
	send(ctx, b, log, msg.Chat.ID, reply)
}

// NewExportHandler returns a handler for /export [date]. The day is sent as
// an .ics document.
func NewExportHandler(deps HandlerDeps) bot.HandlerFunc {
	return exportHandler{deps}.Handle
}

type exportHandler struct {
	deps HandlerDeps
}

func (h exportHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "export")
	if update.Message == nil {
		return
	}
	msg := update.Message
	chatID := msg.Chat.ID

	log.InfoContext(ctx, "Handling /export command", "chat_id", chatID)
	doc, reply, err := h.deps.Assistant.Export(ctx, toMessage(msg), commandArgs(msg.Text))
	if err != nil {
		replyError(ctx, b, h.deps, log, chatID, err)
		return
	}
	if doc.Data == nil {
		send(ctx, b, log, chatID, reply)
		return
	}

	_, err = b.SendDocument(ctx, &bot.SendDocumentParams{
		ChatID: chatID,
		Document: &models.InputFileUpload{
			Filename: doc.Filename,
			Data:     bytes.NewReader(doc.Data),
		},
		Caption: fmt.Sprintf("📅 %d event(s)", doc.Count),
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send export document", "error", err, "chat_id", chatID)
	}
}
