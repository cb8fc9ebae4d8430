package commands

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/ykvlv/calendar-bot/internal/domain"
	"github.com/ykvlv/calendar-bot/internal/store"
)

// memStore is an in-memory Store.
type memStore struct {
	events   []domain.Event
	settings map[string]domain.GuildSettings
	guilds   map[string]domain.Guild
	configs  map[string]domain.GuildConfig
	err      error
	updates  int
}

func newMemStore() *memStore {
	return &memStore{
		settings: make(map[string]domain.GuildSettings),
		guilds:   make(map[string]domain.Guild),
		configs:  make(map[string]domain.GuildConfig),
	}
}

func (m *memStore) CreateEvent(_ context.Context, in domain.EventCreate) (domain.Event, error) {
	if m.err != nil {
		return domain.Event{}, m.err
	}
	e := domain.Event{
		ID:            "evt-" + strconv.Itoa(len(m.events)+1),
		GuildID:       in.GuildID,
		Name:          in.Name,
		Description:   in.Description,
		Color:         in.Color,
		IsAllDay:      in.IsAllDay,
		StartAt:       in.StartAt,
		EndAt:         in.EndAt,
		ChannelID:     in.ChannelID,
		Notifications: in.Notifications,
	}
	m.events = append(m.events, e)
	return e, nil
}

func (m *memStore) ListGuildEvents(_ context.Context, guildID string, r domain.Range, now time.Time) ([]domain.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.Event
	for _, e := range m.events {
		if e.GuildID != guildID {
			continue
		}
		switch r {
		case domain.RangePast:
			if e.StartAt.Before(now) {
				out = append(out, e)
			}
		case domain.RangeFuture:
			if !e.StartAt.Before(now) {
				out = append(out, e)
			}
		default:
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartAt.Before(out[j].StartAt) })
	return out, nil
}

func (m *memStore) ListFutureEvents(ctx context.Context, from time.Time) ([]domain.Event, error) {
	var out []domain.Event
	for _, e := range m.events {
		if !e.StartAt.Before(from) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memStore) GetGuildSettings(_ context.Context, guildID string) (domain.GuildSettings, error) {
	s, ok := m.settings[guildID]
	if !ok {
		return domain.GuildSettings{}, store.ErrNotFound
	}
	return s, nil
}

func (m *memStore) CreateGuildSettings(_ context.Context, guildID, channelID string) (domain.GuildSettings, error) {
	s := domain.GuildSettings{ID: int64(len(m.settings) + 1), GuildID: guildID, ChannelID: channelID}
	m.settings[guildID] = s
	return s, nil
}

func (m *memStore) UpdateGuildSettings(_ context.Context, guildID, channelID string) (domain.GuildSettings, error) {
	s, ok := m.settings[guildID]
	if !ok {
		return domain.GuildSettings{}, store.ErrNotFound
	}
	s.ChannelID = channelID
	m.settings[guildID] = s
	return s, nil
}

func (m *memStore) GetGuild(_ context.Context, guildID string) (domain.Guild, error) {
	g, ok := m.guilds[guildID]
	if !ok {
		return domain.Guild{}, store.ErrNotFound
	}
	return g, nil
}

func (m *memStore) CreateGuild(_ context.Context, g domain.Guild) (domain.Guild, error) {
	g.ID = int64(len(m.guilds) + 1)
	m.guilds[g.GuildID] = g
	return g, nil
}

func (m *memStore) UpdateGuild(_ context.Context, g domain.Guild) (domain.Guild, error) {
	m.updates++
	m.guilds[g.GuildID] = g
	return g, nil
}

func (m *memStore) DeleteGuild(_ context.Context, guildID string) error {
	delete(m.guilds, guildID)
	return nil
}

func (m *memStore) GetGuildConfig(_ context.Context, guildID string) (domain.GuildConfig, error) {
	c, ok := m.configs[guildID]
	if !ok {
		return domain.GuildConfig{}, store.ErrNotFound
	}
	return c, nil
}

func (m *memStore) UpsertGuildConfig(_ context.Context, c domain.GuildConfig) (domain.GuildConfig, error) {
	m.configs[c.GuildID] = c
	return c, nil
}
