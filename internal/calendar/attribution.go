package calendar

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultOwnerTag marks events created by the bot.
const DefaultOwnerTag = "[bot=calbot]"

// Attribution describes who asked for an event. It is written into the event
// description and carries the owner tag that ListEvents filters on.
type Attribution struct {
	Handle    string
	SenderID  int64
	ChatID    int64
	MessageID int
	Tag       string
}

// Creator returns "@handle", falling back to "@<sender id>".
func (a Attribution) Creator() string {
	if a.Handle != "" {
		return "@" + strings.TrimPrefix(a.Handle, "@")
	}
	return "@" + strconv.FormatInt(a.SenderID, 10)
}

// Description renders the attribution block:
//
//	Created by @handle
//	[bot=calbot]
//	[source=telegram]
//	[chatId=42]
func (a Attribution) Description() string {
	tag := a.Tag
	if tag == "" {
		tag = DefaultOwnerTag
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Created by %s\n%s\n[source=telegram]\n[chatId=%d]", a.Creator(), tag, a.ChatID)
	if a.MessageID != 0 {
		fmt.Fprintf(&b, "\n[messageId=%d]", a.MessageID)
	}
	return b.String()
}

// Owned reports whether description carries the owner tag.
func Owned(description, tag string) bool {
	if tag == "" {
		tag = DefaultOwnerTag
	}
	return strings.Contains(description, tag)
}
