package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ykvlv/calendar-bot/internal/delivery"
)

// ResolveChannel checks that the chat exists and the bot can see it.
func (b *Bot) ResolveChannel(ctx context.Context, channelID string) (delivery.Channel, error) {
	if err := ctx.Err(); err != nil {
		return delivery.Channel{}, err
	}
	id, err := strconv.ParseInt(channelID, 10, 64)
	if err != nil {
		return delivery.Channel{}, fmt.Errorf("%w: %q", delivery.ErrChannelNotFound, channelID)
	}
	chat, err := b.api.GetChat(tgbotapi.ChatInfoConfig{ChatConfig: tgbotapi.ChatConfig{ChatID: id}})
	if err != nil {
		if apiCode(err) == http.StatusBadRequest || apiCode(err) == http.StatusForbidden {
			return delivery.Channel{}, fmt.Errorf("%w: %s", delivery.ErrChannelNotFound, channelID)
		}
		return delivery.Channel{}, fmt.Errorf("get chat %s: %w", channelID, err)
	}
	return delivery.Channel{ID: channelID, GuildID: channelID, Name: chat.Title}, nil
}

// SendMessage posts msg as HTML.
func (b *Bot) SendMessage(ctx context.Context, ch delivery.Channel, msg delivery.Message) error {
	out, err := newMessage(ch, renderHTML(msg))
	if err != nil {
		return err
	}
	out.ParseMode = tgbotapi.ModeHTML
	return b.send(ctx, out)
}

// SendText posts plain text.
func (b *Bot) SendText(ctx context.Context, ch delivery.Channel, text string) error {
	out, err := newMessage(ch, text)
	if err != nil {
		return err
	}
	return b.send(ctx, out)
}

func newMessage(ch delivery.Channel, text string) (tgbotapi.MessageConfig, error) {
	id, err := strconv.ParseInt(ch.ID, 10, 64)
	if err != nil {
		return tgbotapi.MessageConfig{}, fmt.Errorf("%w: %q", delivery.ErrChannelNotFound, ch.ID)
	}
	out := tgbotapi.NewMessage(id, text)
	out.DisableWebPagePreview = true
	return out, nil
}

// send is not cancellable once started; the Bot API client has no context support.
func (b *Bot) send(ctx context.Context, c tgbotapi.Chattable) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := b.api.Send(c)
	return classify(err)
}

// classify maps a permission failure to delivery.ErrForbidden.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if apiCode(err) == http.StatusForbidden {
		return fmt.Errorf("%w: %v", delivery.ErrForbidden, err)
	}
	return err
}

// apiCode returns the Bot API error code, or 0 for transport errors.
func apiCode(err error) int {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}
