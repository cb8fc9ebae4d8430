package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/ykvlv/calendar-bot/internal/delivery"
	"github.com/ykvlv/calendar-bot/internal/domain"
)

const (
	listColor = 0x0000ff
	helpColor = 0x0000dd
)

// formatBounds renders an event's start and end the way users entered them.
func formatBounds(e domain.Event) (string, string) {
	start, end := e.Anchors()
	if e.IsAllDay {
		return domain.FormatDate(start), domain.FormatDate(end)
	}
	return domain.FormatDateTime(start), domain.FormatDateTime(end)
}

func formatNotifications(ns []domain.NotificationOffset) string {
	parts := make([]string, 0, len(ns))
	for _, n := range ns {
		parts = append(parts, n.String())
	}
	return strings.Join(parts, ", ")
}

// eventMessage is the embed shown after creating an event.
func eventMessage(e domain.Event, now time.Time) delivery.Message {
	start, end := formatBounds(e)
	fields := []delivery.Field{
		{Name: fieldStart, Value: start, Inline: true},
		{Name: fieldEnd, Value: end, Inline: true},
	}
	if len(e.Notifications) > 0 {
		fields = append(fields, delivery.Field{Name: fieldNotify, Value: formatNotifications(e.Notifications), Inline: true})
	}
	return delivery.Message{
		Title:       e.Name,
		Description: e.Description,
		Color:       e.ColorValue(),
		Fields:      fields,
		Timestamp:   now,
	}
}

// listMessage renders one page (1-based) of events.
func listMessage(page []domain.Event, n, total int) delivery.Message {
	fields := make([]delivery.Field, 0, len(page))
	for _, e := range page {
		start, end := formatBounds(e)
		notify := formatNotifications(e.Notifications)
		if notify == "" {
			notify = noneText
		}
		fields = append(fields, delivery.Field{
			Name:  e.Name,
			Value: fmt.Sprintf(listFieldFmt, start, end, notify),
		})
	}
	return delivery.Message{
		Title:  listTitle,
		Color:  listColor,
		Fields: fields,
		Footer: fmt.Sprintf(listFooterFmt, n, total),
	}
}
