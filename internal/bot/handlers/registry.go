package handlers

import (
	"slices"
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// RegisteredHandler represents a command handler with its description and middleware.
// It encapsulates all information needed to register and document a command.
type RegisteredHandler struct {
	HandlerType tgbot.HandlerType
	Pattern     string
	Handler     tgbot.HandlerFunc
	Middleware  []tgbot.Middleware
	MatchType   tgbot.MatchType
	Description string
}

// RegisterAllCommands initializes and returns a map of all available bot commands.
// Free text is not a command; it goes to NewTextHandler, installed as the
// bot's default handler.
func RegisterAllCommands(deps HandlerDeps) map[string]RegisteredHandler {
	command := func(name, description string, h tgbot.HandlerFunc) RegisteredHandler {
		return RegisteredHandler{
			HandlerType: tgbot.HandlerTypeMessageText,
			Pattern:     name,
			Handler:     h,
			MatchType:   tgbot.MatchTypeCommandStartOnly,
			Description: description,
		}
	}

	return map[string]RegisteredHandler{
		"/start":  command("start", "Show the welcome message", NewStartHandler(deps)),
		"/help":   command("help", "Show the input formats", NewHelpHandler(deps)),
		"/list":   command("list", "List the events of a day", NewListHandler(deps)),
		"/clear":  command("clear", "Preview or delete the events of a day", NewClearHandler(deps)),
		"/undo":   command("undo", "Restore the last cleared day", NewUndoHandler(deps)),
		"/export": command("export", "Send the events of a day as .ics", NewExportHandler(deps)),
	}
}

// BotCommands lists the registered commands for SetMyCommands, sorted by name.
func BotCommands(registered map[string]RegisteredHandler) []models.BotCommand {
	cmds := make([]models.BotCommand, 0, len(registered))
	for _, h := range registered {
		if h.Description == "" {
			continue
		}
		cmds = append(cmds, models.BotCommand{Command: h.Pattern, Description: h.Description})
	}
	slices.SortFunc(cmds, func(a, b models.BotCommand) int { return strings.Compare(a.Command, b.Command) })
	return cmds
}
