// Package discord connects the bot to the Discord gateway and REST API.
package discord

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/ykvlv/calendar-bot/internal/commands"
	"github.com/ykvlv/calendar-bot/internal/domain"
)

// handlerTimeout bounds the work done for one gateway event.
const handlerTimeout = 10 * time.Second

// Bot is a Discord gateway session routing interactions and guild events
// to a commands.Registry. It also implements delivery.Sink.
type Bot struct {
	session  *discordgo.Session
	log      *zap.Logger
	registry *commands.Registry
	appID    string

	ready     chan struct{}
	readyOnce sync.Once
}

// New creates a Bot. The gateway is not opened until Open.
func New(token, appID string, registry *commands.Registry, log *zap.Logger) (*Bot, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	b := &Bot{
		session:  s,
		log:      log.Named("discord"),
		registry: registry,
		appID:    appID,
		ready:    make(chan struct{}),
	}
	s.AddHandler(b.onReady)
	s.AddHandler(b.onInteraction)
	s.AddHandler(b.onGuildCreate)
	s.AddHandler(b.onGuildUpdate)
	s.AddHandler(b.onGuildDelete)
	return b, nil
}

// Ready is closed once the gateway reports the session ready.
func (b *Bot) Ready() <-chan struct{} {
	return b.ready
}

// Open connects to the gateway and registers the slash commands.
func (b *Bot) Open(ctx context.Context) error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open gateway: %w", err)
	}

	appID := b.appID
	if appID == "" && b.session.State.User != nil {
		appID = b.session.State.User.ID
	}
	if _, err := b.session.ApplicationCommandBulkOverwrite(appID, "", Definitions(), discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("register commands: %w", err)
	}
	b.log.Info("slash commands registered", zap.Int("count", len(Definitions())))
	return nil
}

// Run opens the session and closes it once ctx is canceled.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.Open(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	b.log.Info("closing gateway")
	return b.Close()
}

// Close disconnects from the gateway.
func (b *Bot) Close() error {
	return b.session.Close()
}

func (b *Bot) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	b.log.Info("gateway ready", zap.String("user", r.User.Username), zap.Int("guilds", len(r.Guilds)))
	b.readyOnce.Do(func() { close(b.ready) })
}

func (b *Bot) onGuildCreate(_ *discordgo.Session, g *discordgo.GuildCreate) {
	if g.Guild == nil || g.Unavailable {
		return
	}
	b.emit(commands.GuildEvent{Kind: commands.EventGuildCreate, Guild: toGuild(g.Guild)})
}

func (b *Bot) onGuildUpdate(_ *discordgo.Session, g *discordgo.GuildUpdate) {
	if g.Guild == nil {
		return
	}
	b.emit(commands.GuildEvent{Kind: commands.EventGuildUpdate, Guild: toGuild(g.Guild)})
}

func (b *Bot) onGuildDelete(_ *discordgo.Session, g *discordgo.GuildDelete) {
	if g.Guild == nil {
		return
	}
	b.emit(commands.GuildEvent{
		Kind:        commands.EventGuildDelete,
		Guild:       domain.Guild{GuildID: g.ID, Name: g.Name},
		Unavailable: g.Unavailable,
	})
}

func (b *Bot) emit(ev commands.GuildEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	if err := b.registry.Emit(ctx, ev); err != nil {
		b.log.Error("guild event failed", zap.String("kind", ev.Kind), zap.String("guildID", ev.Guild.GuildID), zap.Error(err))
	}
}

func toGuild(g *discordgo.Guild) domain.Guild {
	var avatar string
	if g.Icon != "" {
		avatar = g.IconURL("")
	}
	return domain.Guild{GuildID: g.ID, Name: g.Name, AvatarURL: avatar}
}
