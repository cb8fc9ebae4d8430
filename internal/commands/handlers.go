package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ykvlv/calendar-bot/internal/store"
)

// Store is the persistence the handlers need.
type Store interface {
	store.EventRepo
	store.SettingsRepo
	store.GuildRepo
}

// Handlers implements every command and guild event.
type Handlers struct {
	repo          Store
	log           *zap.Logger
	validate      *validator.Validate
	invitationURL string
	mention       func(channelID string) string
	now           func() time.Time
}

// Option customizes Handlers.
type Option func(*Handlers)

// WithInvitationURL sets the URL returned by invite and linked from help.
func WithInvitationURL(url string) Option {
	return func(h *Handlers) { h.invitationURL = url }
}

// WithChannelMention sets how channels are referenced in replies.
func WithChannelMention(f func(channelID string) string) Option {
	return func(h *Handlers) { h.mention = f }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(h *Handlers) { h.now = now }
}

// New creates the handler set.
func New(repo Store, log *zap.Logger, opts ...Option) *Handlers {
	h := &Handlers{
		repo:     repo,
		log:      log,
		validate: validator.New(),
		mention:  func(id string) string { return "<#" + id + ">" },
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register adds all commands and guild events to r.
func (h *Handlers) Register(r *Registry) {
	r.Handle(CmdCreate, h.create)
	r.Handle(CmdInit, h.setup)
	r.Handle(CmdList, h.list)
	r.Handle(CmdRestrict, h.restrict)
	r.Handle(CmdHelp, h.help)
	r.Handle(CmdInvite, h.invite)

	r.On(EventGuildCreate, h.guildCreate)
	r.On(EventGuildDelete, h.guildDelete)
	r.On(EventGuildUpdate, h.guildUpdate)
}

// NewRegistry is a shortcut for a registry with all handlers of h.
func (h *Handlers) NewRegistry() *Registry {
	r := NewRegistry()
	h.Register(r)
	return r
}

func ephemeral(format string, args ...any) Reply {
	return Reply{Content: fmt.Sprintf(format, args...), Ephemeral: true}
}

// restricted reports whether guild commands require manage permission.
func (h *Handlers) restricted(ctx context.Context, guildID string) (bool, error) {
	cfg, err := h.repo.GetGuildConfig(ctx, guildID)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get guild config: %w", err)
	}
	return cfg.Restricted, nil
}
