package delivery

import (
	"fmt"

	"github.com/ykvlv/calendar-bot/internal/domain"
)

const (
	labelAtStart   = "以下の予定が開催されます"
	labelBeforeFmt = "%d%sに以下の予定が開催されます"
	fieldWhen      = "日時"
)

// Notification is one reminder in both renderings.
type Notification struct {
	Message Message
	Text    string
}

// Label is the headline of a reminder. User offsets read as elapsed time,
// e.g. 30分後 for a stored 30分前.
func Label(n domain.NotificationOffset) string {
	if n.IsSentinel() {
		return labelAtStart
	}
	return fmt.Sprintf(labelBeforeFmt, n.Amount, n.Unit.AfterLabel())
}

// Compose renders the reminder n of event e.
func Compose(e domain.Event, n domain.NotificationOffset) Notification {
	start, end := e.Anchors()
	label := Label(n)
	when := domain.FormatRange(start, end, e.IsAllDay)

	return Notification{
		Message: Message{
			Author:      label,
			Title:       e.Name,
			Description: e.Description,
			Color:       e.ColorValue(),
			Fields:      []Field{{Name: fieldWhen, Value: when}},
		},
		Text: fmt.Sprintf("**🔔** %s\n\n**%s**\n%s\n\n**%s**: %s",
			label, e.Name, e.Description, fieldWhen, when),
	}
}
