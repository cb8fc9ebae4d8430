package commands

import (
	"context"
	"fmt"

	"github.com/ykvlv/calendar-bot/internal/delivery"
)

func (h *Handlers) help(_ context.Context, _ Request) (Reply, error) {
	desc := helpText
	if h.invitationURL != "" {
		desc += fmt.Sprintf(helpInviteFmt, h.invitationURL)
	}
	return Reply{
		Embed: &delivery.Message{
			Title:       helpTitle,
			Description: desc,
			Color:       helpColor,
			Timestamp:   h.now(),
		},
		Ephemeral: true,
	}, nil
}

func (h *Handlers) invite(_ context.Context, _ Request) (Reply, error) {
	if h.invitationURL == "" {
		return ephemeral(textNoInvitation), nil
	}
	return Reply{Content: h.invitationURL}, nil
}
