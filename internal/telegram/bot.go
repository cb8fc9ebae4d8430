// Package telegram connects the bot to the Telegram Bot API. Group chats
// play the role of guilds and commands take key=value arguments.
package telegram

import (
	"context"
	"fmt"
	"sort"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ykvlv/calendar-bot/internal/commands"
)

// Bot polls Telegram for updates and routes them to a commands.Registry.
// It also implements delivery.Sink.
type Bot struct {
	api    *tgbotapi.BotAPI
	log    *zap.Logger
	router *Router

	ready     chan struct{}
	readyOnce sync.Once
}

// New authenticates with the Bot API.
func New(token string, registry *commands.Registry, log *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot api: %w", err)
	}
	api.Debug = false

	log = log.Named("telegram")
	return &Bot{
		api:    api,
		log:    log,
		router: NewRouter(api, log, registry),
		ready:  make(chan struct{}),
	}, nil
}

// Ready is closed once update polling has started.
func (b *Bot) Ready() <-chan struct{} {
	return b.ready
}

// Run publishes the command menu and processes updates until ctx is canceled.
func (b *Bot) Run(ctx context.Context) error {
	if _, err := b.api.Request(tgbotapi.NewSetMyCommands(botCommands()...)); err != nil {
		b.log.Warn("SetMyCommands failed", zap.Error(err))
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updCh := b.api.GetUpdatesChan(u)
	b.log.Info("polling updates", zap.String("user", b.api.Self.UserName))
	b.readyOnce.Do(func() { close(b.ready) })

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case upd, ok := <-updCh:
			if !ok {
				return nil
			}
			b.router.HandleUpdate(ctx, upd)
		}
	}
}

func botCommands() []tgbotapi.BotCommand {
	names := make([]string, 0, len(commands.Descriptions))
	for name := range commands.Descriptions {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]tgbotapi.BotCommand, 0, len(names))
	for _, name := range names {
		out = append(out, tgbotapi.BotCommand{Command: name, Description: commands.Descriptions[name]})
	}
	return out
}
