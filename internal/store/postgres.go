package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/ykvlv/calendar-bot/internal/domain"
)

type eventModel struct {
	ID            string `gorm:"primaryKey"`
	GuildID       string `gorm:"not null;index:idx_events_guild_start,priority:1"`
	Name          string `gorm:"not null"`
	Description   *string
	Color         string    `gorm:"not null;default:'#3B82F6'"`
	IsAllDay      bool      `gorm:"not null;default:false"`
	StartAt       time.Time `gorm:"not null;index;index:idx_events_guild_start,priority:2"`
	EndAt         time.Time `gorm:"not null"`
	Location      *string
	ChannelID     *string
	ChannelName   *string
	Notifications datatypes.JSON
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (eventModel) TableName() string { return "events" }

type settingsModel struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	GuildID   string `gorm:"not null;uniqueIndex"`
	ChannelID string `gorm:"not null"`
}

func (settingsModel) TableName() string { return "event_settings" }

type guildModel struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	GuildID   string `gorm:"not null;uniqueIndex"`
	Name      string `gorm:"not null"`
	AvatarURL *string
	Locale    string `gorm:"not null;default:'ja'"`
}

func (guildModel) TableName() string { return "guilds" }

type guildConfigModel struct {
	GuildID    string `gorm:"primaryKey"`
	Restricted bool   `gorm:"not null;default:false"`
}

func (guildConfigModel) TableName() string { return "guild_config" }

// PostgresRepo implements Repo on PostgreSQL through gorm.
type PostgresRepo struct {
	db *gorm.DB
}

// OpenPostgres connects to dsn and migrates the schema.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresRepo, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.WithContext(ctx).AutoMigrate(
		&eventModel{}, &settingsModel{}, &guildModel{}, &guildConfigModel{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &PostgresRepo{db: db}, nil
}

// Close releases the connection pool.
func (r *PostgresRepo) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (m eventModel) toDomain() (domain.Event, error) {
	ns, err := decodeNotifications(m.Notifications)
	if err != nil {
		return domain.Event{}, fmt.Errorf("event %s: decode notifications: %w", m.ID, err)
	}
	return domain.Event{
		ID:            m.ID,
		GuildID:       m.GuildID,
		Name:          m.Name,
		Description:   deref(m.Description),
		Color:         m.Color,
		IsAllDay:      m.IsAllDay,
		StartAt:       m.StartAt.UTC(),
		EndAt:         m.EndAt.UTC(),
		Location:      deref(m.Location),
		ChannelID:     deref(m.ChannelID),
		ChannelName:   deref(m.ChannelName),
		Notifications: ns,
		CreatedAt:     m.CreatedAt.UTC(),
		UpdatedAt:     m.UpdatedAt.UTC(),
	}, nil
}

func toDomainEvents(ms []eventModel) ([]domain.Event, error) {
	out := make([]domain.Event, 0, len(ms))
	for _, m := range ms {
		e, err := m.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// CreateEvent inserts a new event with a generated id.
func (r *PostgresRepo) CreateEvent(ctx context.Context, in domain.EventCreate) (domain.Event, error) {
	raw, err := encodeNotifications(in.Notifications)
	if err != nil {
		return domain.Event{}, fmt.Errorf("encode notifications: %w", err)
	}
	color := in.Color
	if color == "" {
		color = domain.DefaultColor
	}
	m := eventModel{
		ID:            uuid.NewString(),
		GuildID:       in.GuildID,
		Name:          in.Name,
		Description:   optional(in.Description),
		Color:         color,
		IsAllDay:      in.IsAllDay,
		StartAt:       in.StartAt.UTC(),
		EndAt:         in.EndAt.UTC(),
		Location:      optional(in.Location),
		ChannelID:     optional(in.ChannelID),
		ChannelName:   optional(in.ChannelName),
		Notifications: datatypes.JSON(raw),
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return domain.Event{}, err
	}
	return m.toDomain()
}

// ListGuildEvents returns a guild's events filtered by range, ordered by start_at ascending.
func (r *PostgresRepo) ListGuildEvents(ctx context.Context, guildID string, rng domain.Range, now time.Time) ([]domain.Event, error) {
	q := r.db.WithContext(ctx).Where("guild_id = ?", guildID)
	if op, ok := rangeBounds(rng); ok {
		q = q.Where("start_at "+op+" ?", now.UTC())
	}
	var ms []eventModel
	if err := q.Order("start_at ASC").Find(&ms).Error; err != nil {
		return nil, err
	}
	return toDomainEvents(ms)
}

// ListFutureEvents returns every event whose start_at is at or after from.
func (r *PostgresRepo) ListFutureEvents(ctx context.Context, from time.Time) ([]domain.Event, error) {
	var ms []eventModel
	err := r.db.WithContext(ctx).
		Where("start_at >= ?", from.UTC()).
		Order("start_at ASC").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	return toDomainEvents(ms)
}

func (r *PostgresRepo) GetGuildSettings(ctx context.Context, guildID string) (domain.GuildSettings, error) {
	var m settingsModel
	if err := r.db.WithContext(ctx).Where("guild_id = ?", guildID).First(&m).Error; err != nil {
		return domain.GuildSettings{}, notFound(err)
	}
	return domain.GuildSettings{ID: m.ID, GuildID: m.GuildID, ChannelID: m.ChannelID}, nil
}

func (r *PostgresRepo) CreateGuildSettings(ctx context.Context, guildID, channelID string) (domain.GuildSettings, error) {
	m := settingsModel{GuildID: guildID, ChannelID: channelID}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return domain.GuildSettings{}, err
	}
	return domain.GuildSettings{ID: m.ID, GuildID: m.GuildID, ChannelID: m.ChannelID}, nil
}

func (r *PostgresRepo) UpdateGuildSettings(ctx context.Context, guildID, channelID string) (domain.GuildSettings, error) {
	res := r.db.WithContext(ctx).Model(&settingsModel{}).
		Where("guild_id = ?", guildID).
		Update("channel_id", channelID)
	if res.Error != nil {
		return domain.GuildSettings{}, res.Error
	}
	if res.RowsAffected == 0 {
		return domain.GuildSettings{}, ErrNotFound
	}
	return r.GetGuildSettings(ctx, guildID)
}

func (r *PostgresRepo) GetGuild(ctx context.Context, guildID string) (domain.Guild, error) {
	var m guildModel
	if err := r.db.WithContext(ctx).Where("guild_id = ?", guildID).First(&m).Error; err != nil {
		return domain.Guild{}, notFound(err)
	}
	return domain.Guild{ID: m.ID, GuildID: m.GuildID, Name: m.Name, AvatarURL: deref(m.AvatarURL), Locale: m.Locale}, nil
}

func (r *PostgresRepo) CreateGuild(ctx context.Context, g domain.Guild) (domain.Guild, error) {
	if g.Locale == "" {
		g.Locale = domain.DefaultLocale
	}
	m := guildModel{GuildID: g.GuildID, Name: g.Name, AvatarURL: optional(g.AvatarURL), Locale: g.Locale}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return domain.Guild{}, err
	}
	g.ID = m.ID
	return g, nil
}

func (r *PostgresRepo) UpdateGuild(ctx context.Context, g domain.Guild) (domain.Guild, error) {
	if g.Locale == "" {
		g.Locale = domain.DefaultLocale
	}
	res := r.db.WithContext(ctx).Model(&guildModel{}).
		Where("guild_id = ?", g.GuildID).
		Updates(map[string]any{
			"name":       g.Name,
			"avatar_url": optional(g.AvatarURL),
			"locale":     g.Locale,
		})
	if res.Error != nil {
		return domain.Guild{}, res.Error
	}
	if res.RowsAffected == 0 {
		return domain.Guild{}, ErrNotFound
	}
	return r.GetGuild(ctx, g.GuildID)
}

func (r *PostgresRepo) DeleteGuild(ctx context.Context, guildID string) error {
	return r.db.WithContext(ctx).Where("guild_id = ?", guildID).Delete(&guildModel{}).Error
}

func (r *PostgresRepo) GetGuildConfig(ctx context.Context, guildID string) (domain.GuildConfig, error) {
	var m guildConfigModel
	if err := r.db.WithContext(ctx).Where("guild_id = ?", guildID).First(&m).Error; err != nil {
		return domain.GuildConfig{}, notFound(err)
	}
	return domain.GuildConfig{GuildID: m.GuildID, Restricted: m.Restricted}, nil
}

func (r *PostgresRepo) UpsertGuildConfig(ctx context.Context, c domain.GuildConfig) (domain.GuildConfig, error) {
	m := guildConfigModel{GuildID: c.GuildID, Restricted: c.Restricted}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "guild_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"restricted"}),
	}).Create(&m).Error
	if err != nil {
		return domain.GuildConfig{}, err
	}
	return c, nil
}
