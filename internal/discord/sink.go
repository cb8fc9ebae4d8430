package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/ykvlv/calendar-bot/internal/delivery"
)

// ResolveChannel looks the channel up in the gateway cache, then over REST.
func (b *Bot) ResolveChannel(ctx context.Context, channelID string) (delivery.Channel, error) {
	ch, err := b.session.State.Channel(channelID)
	if err != nil {
		ch, err = b.session.Channel(channelID, discordgo.WithContext(ctx))
	}
	if err != nil {
		if isStatus(err, http.StatusNotFound, http.StatusForbidden) {
			return delivery.Channel{}, fmt.Errorf("%w: %s", delivery.ErrChannelNotFound, channelID)
		}
		return delivery.Channel{}, fmt.Errorf("resolve channel %s: %w", channelID, err)
	}
	if !postable(ch.Type) {
		return delivery.Channel{}, fmt.Errorf("%w: %s is not a text channel", delivery.ErrChannelNotFound, channelID)
	}
	return delivery.Channel{ID: ch.ID, GuildID: ch.GuildID, Name: ch.Name}, nil
}

// SendMessage posts msg as an embed.
func (b *Bot) SendMessage(ctx context.Context, ch delivery.Channel, msg delivery.Message) error {
	_, err := b.session.ChannelMessageSendEmbed(ch.ID, toEmbed(msg), discordgo.WithContext(ctx))
	return classify(err)
}

// SendText posts plain text.
func (b *Bot) SendText(ctx context.Context, ch delivery.Channel, text string) error {
	_, err := b.session.ChannelMessageSend(ch.ID, text, discordgo.WithContext(ctx))
	return classify(err)
}

func postable(t discordgo.ChannelType) bool {
	switch t {
	case discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildNews,
		discordgo.ChannelTypeGuildPublicThread, discordgo.ChannelTypeGuildPrivateThread:
		return true
	}
	return false
}

// classify maps a permission failure to delivery.ErrForbidden.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if isStatus(err, http.StatusForbidden) {
		return fmt.Errorf("%w: %v", delivery.ErrForbidden, err)
	}
	return err
}

func isStatus(err error, codes ...int) bool {
	var rest *discordgo.RESTError
	if !errors.As(err, &rest) || rest.Response == nil {
		return false
	}
	for _, c := range codes {
		if rest.Response.StatusCode == c {
			return true
		}
	}
	return false
}

func toEmbed(m delivery.Message) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{
		Title:       m.Title,
		Description: m.Description,
		Color:       m.Color,
	}
	if m.Author != "" {
		e.Author = &discordgo.MessageEmbedAuthor{Name: m.Author}
	}
	for _, f := range m.Fields {
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}
	if m.Footer != "" {
		e.Footer = &discordgo.MessageEmbedFooter{Text: m.Footer}
	}
	if m.Thumbnail != "" {
		e.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: m.Thumbnail}
	}
	if !m.Timestamp.IsZero() {
		e.Timestamp = m.Timestamp.UTC().Format(time.RFC3339)
	}
	return e
}
