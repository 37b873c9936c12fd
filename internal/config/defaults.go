package config

import "time"

// Default values for configuration
const (
	DefaultLogLevel = "info"
	DefaultLogJSON  = true

	DefaultTelegramMode        = "polling"
	DefaultTelegramPollTimeout = time.Minute

	DefaultCalendarBackend        = "sqlite"
	DefaultCalendarTimezone       = "Asia/Ho_Chi_Minh"
	DefaultCalendarOwnerTag       = "[bot=calbot]"
	DefaultCalendarRequestTimeout = 30 * time.Second
	DefaultCalendarInsertRetries  = 2
	DefaultCalendarRetryBase      = time.Second

	DefaultDatabasePath = "calbot.db"

	DefaultSessionPendingTTL      = 30 * time.Minute
	DefaultSessionCleanupInterval = 5 * time.Minute
)

// DefaultMessages are the replies used when config.yaml does not override them.
var DefaultMessages = Messages{
	Welcome: "👋 Hi! Send me your plan and I'll put it in the calendar.\n" +
		"Example: 16-18h: badminton @Gym\nUse /help for more.",
	Help: "📖 How to use:\n" +
		"• One event per line: 16-18h: badminton @Gym, T3 9:30-10am: call with Minh\n" +
		"• Dates: mai (tomorrow), T2..T7, CN\n" +
		"• Weekly template: a title line followed by bullets like \"- T3, 18:00 - 19:00\"\n" +
		"• /list [date] shows a day\n" +
		"• /clear [date] previews a day, /clear [date] confirm deletes it\n" +
		"• /undo restores the last cleared day\n" +
		"• /export [date] sends the day as .ics",
	NotAuthorized: "❌ You are not allowed to use this bot.",
	GeneralError:  "❌ Something went wrong while talking to the calendar. Please try again later.",
	Timeout:       "⏱️ The calendar took too long to answer. Please try again.",
}

// DefaultTasks are the scheduled tasks enabled out of the box.
var DefaultTasks = map[string]TaskConfig{
	"sql_maintenance": {Enabled: true, Schedule: "0 0 4 * * 0"},
	"session_report":  {Enabled: true, Schedule: "0 0 * * * *"},
}
