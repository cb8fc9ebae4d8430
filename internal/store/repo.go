package store

import (
	"context"
	"errors"
	"time"

	"github.com/ykvlv/calendar-bot/internal/domain"
)

// ErrNotFound is returned when a looked-up row does not exist.
var ErrNotFound = errors.New("not found")

// EventRepo stores calendar events.
type EventRepo interface {
	CreateEvent(ctx context.Context, in domain.EventCreate) (domain.Event, error)
	// ListGuildEvents returns a guild's events filtered by r relative to now, ordered by start.
	ListGuildEvents(ctx context.Context, guildID string, r domain.Range, now time.Time) ([]domain.Event, error)
	// ListFutureEvents returns events of all guilds with start_at >= from, ordered by start.
	ListFutureEvents(ctx context.Context, from time.Time) ([]domain.Event, error)
}

// SettingsRepo stores the per-guild notification channel.
type SettingsRepo interface {
	GetGuildSettings(ctx context.Context, guildID string) (domain.GuildSettings, error)
	CreateGuildSettings(ctx context.Context, guildID, channelID string) (domain.GuildSettings, error)
	UpdateGuildSettings(ctx context.Context, guildID, channelID string) (domain.GuildSettings, error)
}

// GuildRepo stores guild bookkeeping and command restrictions.
type GuildRepo interface {
	GetGuild(ctx context.Context, guildID string) (domain.Guild, error)
	CreateGuild(ctx context.Context, g domain.Guild) (domain.Guild, error)
	UpdateGuild(ctx context.Context, g domain.Guild) (domain.Guild, error)
	DeleteGuild(ctx context.Context, guildID string) error
	GetGuildConfig(ctx context.Context, guildID string) (domain.GuildConfig, error)
	UpsertGuildConfig(ctx context.Context, c domain.GuildConfig) (domain.GuildConfig, error)
}

// Repo is the full persistence gateway.
type Repo interface {
	EventRepo
	SettingsRepo
	GuildRepo
	Close() error
}
