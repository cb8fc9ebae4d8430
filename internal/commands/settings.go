package commands

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ykvlv/calendar-bot/internal/domain"
	"github.com/ykvlv/calendar-bot/internal/store"
)

// setup sets the guild's notification channel (the init command).
func (h *Handlers) setup(ctx context.Context, req Request) (Reply, error) {
	if req.GuildID == "" {
		return ephemeral(textGuildOnly), nil
	}
	if !req.CanManage {
		return ephemeral(textNeedManage), nil
	}

	channelID := req.String(OptChannel)
	if channelID == "" {
		channelID = req.ChannelID
	}
	if channelID == "" {
		return ephemeral(textNeedChannel), nil
	}

	existing, err := h.repo.GetGuildSettings(ctx, req.GuildID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		if _, err := h.repo.CreateGuildSettings(ctx, req.GuildID, channelID); err != nil {
			return Reply{}, fmt.Errorf("create settings: %w", err)
		}
		h.log.Info("notification channel set", zap.String("guildID", req.GuildID), zap.String("channelID", channelID))
		return Reply{Content: fmt.Sprintf(textSettingsCreated, h.mention(channelID))}, nil
	case err != nil:
		return Reply{}, fmt.Errorf("get settings: %w", err)
	}

	if _, err := h.repo.UpdateGuildSettings(ctx, req.GuildID, channelID); err != nil {
		return Reply{}, fmt.Errorf("update settings: %w", err)
	}
	h.log.Info("notification channel changed", zap.String("guildID", req.GuildID),
		zap.String("from", existing.ChannelID), zap.String("to", channelID))
	return Reply{Content: fmt.Sprintf(textSettingsUpdated, h.mention(existing.ChannelID), h.mention(channelID))}, nil
}

// restrict toggles whether create requires manage permission.
func (h *Handlers) restrict(ctx context.Context, req Request) (Reply, error) {
	if req.GuildID == "" {
		return ephemeral(textGuildOnly), nil
	}
	if !req.CanManage {
		return ephemeral(textNeedManage), nil
	}

	current, err := h.restricted(ctx, req.GuildID)
	if err != nil {
		return Reply{}, err
	}
	cfg, err := h.repo.UpsertGuildConfig(ctx, domain.GuildConfig{GuildID: req.GuildID, Restricted: !current})
	if err != nil {
		return Reply{}, fmt.Errorf("upsert guild config: %w", err)
	}
	h.log.Info("guild restriction changed", zap.String("guildID", req.GuildID), zap.Bool("restricted", cfg.Restricted))

	if cfg.Restricted {
		return Reply{Content: textRestrictOn}, nil
	}
	return Reply{Content: textRestrictOff}, nil
}
