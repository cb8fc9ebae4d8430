package commands

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ykvlv/calendar-bot/internal/domain"
	"github.com/ykvlv/calendar-bot/internal/store"
)

func (h *Handlers) guildCreate(ctx context.Context, ev GuildEvent) error {
	g := ev.Guild
	h.log.Info("joined guild", zap.String("guildID", g.GuildID), zap.String("name", g.Name))

	_, err := h.repo.GetGuild(ctx, g.GuildID)
	if err == nil {
		h.log.Debug("guild already exists", zap.String("guildID", g.GuildID))
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("get guild: %w", err)
	}

	if g.Locale == "" {
		g.Locale = domain.DefaultLocale
	}
	if _, err := h.repo.CreateGuild(ctx, g); err != nil {
		return fmt.Errorf("create guild: %w", err)
	}
	return nil
}

func (h *Handlers) guildDelete(ctx context.Context, ev GuildEvent) error {
	if ev.Unavailable {
		h.log.Warn("guild unavailable, keeping record", zap.String("guildID", ev.Guild.GuildID))
		return nil
	}
	h.log.Info("left guild", zap.String("guildID", ev.Guild.GuildID))

	if err := h.repo.DeleteGuild(ctx, ev.Guild.GuildID); err != nil {
		return fmt.Errorf("delete guild: %w", err)
	}
	return nil
}

// guildUpdate stores name and avatar changes; other changes are ignored.
func (h *Handlers) guildUpdate(ctx context.Context, ev GuildEvent) error {
	g := ev.Guild
	stored, err := h.repo.GetGuild(ctx, g.GuildID)
	if errors.Is(err, store.ErrNotFound) {
		return h.guildCreate(ctx, GuildEvent{Kind: EventGuildCreate, Guild: g})
	}
	if err != nil {
		return fmt.Errorf("get guild: %w", err)
	}
	if stored.Name == g.Name && stored.AvatarURL == g.AvatarURL {
		return nil
	}

	h.log.Info("guild updated", zap.String("guildID", g.GuildID),
		zap.String("oldName", stored.Name), zap.String("newName", g.Name))

	stored.Name = g.Name
	stored.AvatarURL = g.AvatarURL
	if _, err := h.repo.UpdateGuild(ctx, stored); err != nil {
		return fmt.Errorf("update guild: %w", err)
	}
	return nil
}
