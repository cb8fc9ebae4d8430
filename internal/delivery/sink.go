// Package delivery defines how messages reach a chat channel and how event
// reminders are rendered and sent.
package delivery

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrForbidden means the bot lacks permission to post in the channel.
	ErrForbidden = errors.New("forbidden")
	// ErrChannelNotFound means the channel was deleted or is not accessible.
	ErrChannelNotFound = errors.New("channel not found")
)

// Channel is a resolved, postable destination.
type Channel struct {
	ID      string
	GuildID string
	Name    string
}

// Field is a titled block of a rich message.
type Field struct {
	Name   string
	Value  string
	Inline bool
}

// Message is a rich, embed-style message.
type Message struct {
	Author      string
	Title       string
	Description string
	Color       int
	Fields      []Field
	Footer      string
	Thumbnail   string
	Timestamp   time.Time
}

// Sink posts to channels of a chat platform. Implementations translate
// permission failures to ErrForbidden and unknown channels to ErrChannelNotFound;
// any other error is treated as transient.
type Sink interface {
	ResolveChannel(ctx context.Context, channelID string) (Channel, error)
	SendMessage(ctx context.Context, ch Channel, msg Message) error
	SendText(ctx context.Context, ch Channel, text string) error
}
