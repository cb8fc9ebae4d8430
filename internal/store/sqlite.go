package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	// Registers the "sqlite" driver (pure Go).
	_ "modernc.org/sqlite"

	"github.com/ykvlv/calendar-bot/internal/domain"
)

// SQLiteRepo implements Repo using an embedded SQLite database.
type SQLiteRepo struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (or creates) the SQLite database at the given path,
// applies recommended PRAGMAs, runs SQL migrations, and returns a repository.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Reasonable pooling for SQLite; it's a single-writer engine.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &SQLiteRepo{db: db, now: time.Now}, nil
}

// applyPragmas configures the SQLite connection for durability and concurrency.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying database resources.
func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

const eventColumns = `id, guild_id, name, description, color, is_all_day,
	start_at, end_at, location, channel_id, channel_name, notifications,
	created_at, updated_at`

// CreateEvent inserts a new event with a generated id.
func (r *SQLiteRepo) CreateEvent(ctx context.Context, in domain.EventCreate) (domain.Event, error) {
	notifications, err := encodeNotifications(in.Notifications)
	if err != nil {
		return domain.Event{}, fmt.Errorf("encode notifications: %w", err)
	}
	color := in.Color
	if color == "" {
		color = domain.DefaultColor
	}
	now := r.now().UTC().Truncate(time.Second)

	e := domain.Event{
		ID:            uuid.NewString(),
		GuildID:       in.GuildID,
		Name:          in.Name,
		Description:   in.Description,
		Color:         color,
		IsAllDay:      in.IsAllDay,
		StartAt:       in.StartAt.UTC().Truncate(time.Second),
		EndAt:         in.EndAt.UTC().Truncate(time.Second),
		Location:      in.Location,
		ChannelID:     in.ChannelID,
		ChannelName:   in.ChannelName,
		Notifications: in.Notifications,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO events (`+eventColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.GuildID, e.Name, toNullString(e.Description), e.Color, boolToInt(e.IsAllDay),
		e.StartAt.Unix(), e.EndAt.Unix(), toNullString(e.Location),
		toNullString(e.ChannelID), toNullString(e.ChannelName), notifications,
		now.Unix(), now.Unix(),
	)
	if err != nil {
		return domain.Event{}, err
	}
	return e, nil
}

// ListGuildEvents returns a guild's events filtered by range, ordered by start_at ascending.
func (r *SQLiteRepo) ListGuildEvents(ctx context.Context, guildID string, rng domain.Range, now time.Time) ([]domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE guild_id = ?`
	args := []any{guildID}
	if op, ok := rangeBounds(rng); ok {
		query += ` AND start_at ` + op + ` ?`
		args = append(args, now.UTC().Unix())
	}
	query += ` ORDER BY start_at ASC`

	return r.queryEvents(ctx, query, args...)
}

// ListFutureEvents returns every event whose start_at is at or after from.
// Results are ordered by start_at ascending.
func (r *SQLiteRepo) ListFutureEvents(ctx context.Context, from time.Time) ([]domain.Event, error) {
	return r.queryEvents(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE start_at >= ?
		ORDER BY start_at ASC`,
		from.UTC().Unix(),
	)
}

func (r *SQLiteRepo) queryEvents(ctx context.Context, query string, args ...any) ([]domain.Event, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Event
	for rows.Next() {
		var (
			e             domain.Event
			description   sql.NullString
			location      sql.NullString
			channelID     sql.NullString
			channelName   sql.NullString
			allDay        int
			startAt       int64
			endAt         int64
			notifications []byte
			createdAt     int64
			updatedAt     int64
		)
		if err := rows.Scan(
			&e.ID, &e.GuildID, &e.Name, &description, &e.Color, &allDay,
			&startAt, &endAt, &location, &channelID, &channelName, &notifications,
			&createdAt, &updatedAt,
		); err != nil {
			return nil, err
		}

		ns, err := decodeNotifications(notifications)
		if err != nil {
			return nil, fmt.Errorf("event %s: decode notifications: %w", e.ID, err)
		}
		e.Description = description.String
		e.Location = location.String
		e.ChannelID = channelID.String
		e.ChannelName = channelName.String
		e.IsAllDay = allDay != 0
		e.StartAt = fromUnix(startAt)
		e.EndAt = fromUnix(endAt)
		e.Notifications = ns
		e.CreatedAt = fromUnix(createdAt)
		e.UpdatedAt = fromUnix(updatedAt)
		res = append(res, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// GetGuildSettings returns the notification channel of a guild or ErrNotFound.
func (r *SQLiteRepo) GetGuildSettings(ctx context.Context, guildID string) (domain.GuildSettings, error) {
	var s domain.GuildSettings
	err := r.db.QueryRowContext(ctx, `
		SELECT id, guild_id, channel_id
		FROM event_settings
		WHERE guild_id = ?`,
		guildID,
	).Scan(&s.ID, &s.GuildID, &s.ChannelID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.GuildSettings{}, ErrNotFound
	}
	return s, err
}

// CreateGuildSettings inserts the settings row for a guild.
func (r *SQLiteRepo) CreateGuildSettings(ctx context.Context, guildID, channelID string) (domain.GuildSettings, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO event_settings (guild_id, channel_id) VALUES (?, ?)`,
		guildID, channelID,
	)
	if err != nil {
		return domain.GuildSettings{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.GuildSettings{}, err
	}
	return domain.GuildSettings{ID: id, GuildID: guildID, ChannelID: channelID}, nil
}

// UpdateGuildSettings changes the channel of an existing settings row.
func (r *SQLiteRepo) UpdateGuildSettings(ctx context.Context, guildID, channelID string) (domain.GuildSettings, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE event_settings
		SET channel_id = ?
		WHERE guild_id = ?`,
		channelID, guildID,
	)
	if err != nil {
		return domain.GuildSettings{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.GuildSettings{}, ErrNotFound
	}
	return r.GetGuildSettings(ctx, guildID)
}

// GetGuild returns the bookkeeping row of a guild or ErrNotFound.
func (r *SQLiteRepo) GetGuild(ctx context.Context, guildID string) (domain.Guild, error) {
	var (
		g      domain.Guild
		avatar sql.NullString
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, guild_id, name, avatar_url, locale
		FROM guilds
		WHERE guild_id = ?`,
		guildID,
	).Scan(&g.ID, &g.GuildID, &g.Name, &avatar, &g.Locale)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Guild{}, ErrNotFound
	}
	g.AvatarURL = avatar.String
	return g, err
}

// CreateGuild inserts a guild row.
func (r *SQLiteRepo) CreateGuild(ctx context.Context, g domain.Guild) (domain.Guild, error) {
	if g.Locale == "" {
		g.Locale = domain.DefaultLocale
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO guilds (guild_id, name, avatar_url, locale) VALUES (?, ?, ?, ?)`,
		g.GuildID, g.Name, toNullString(g.AvatarURL), g.Locale,
	)
	if err != nil {
		return domain.Guild{}, err
	}
	if g.ID, err = res.LastInsertId(); err != nil {
		return domain.Guild{}, err
	}
	return g, nil
}

// UpdateGuild updates name, avatar and locale of an existing guild row.
func (r *SQLiteRepo) UpdateGuild(ctx context.Context, g domain.Guild) (domain.Guild, error) {
	if g.Locale == "" {
		g.Locale = domain.DefaultLocale
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE guilds
		SET name = ?, avatar_url = ?, locale = ?
		WHERE guild_id = ?`,
		g.Name, toNullString(g.AvatarURL), g.Locale, g.GuildID,
	)
	if err != nil {
		return domain.Guild{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.Guild{}, ErrNotFound
	}
	return r.GetGuild(ctx, g.GuildID)
}

// DeleteGuild removes a guild row. Deleting a missing guild is not an error.
func (r *SQLiteRepo) DeleteGuild(ctx context.Context, guildID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM guilds WHERE guild_id = ?`, guildID)
	return err
}

// GetGuildConfig returns the command restrictions of a guild or ErrNotFound.
func (r *SQLiteRepo) GetGuildConfig(ctx context.Context, guildID string) (domain.GuildConfig, error) {
	var (
		c          domain.GuildConfig
		restricted int
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT guild_id, restricted FROM guild_config WHERE guild_id = ?`,
		guildID,
	).Scan(&c.GuildID, &restricted)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.GuildConfig{}, ErrNotFound
	}
	c.Restricted = restricted != 0
	return c, err
}

// UpsertGuildConfig inserts or updates the command restrictions of a guild.
func (r *SQLiteRepo) UpsertGuildConfig(ctx context.Context, c domain.GuildConfig) (domain.GuildConfig, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO guild_config (guild_id, restricted) VALUES (?, ?)
		ON CONFLICT(guild_id) DO UPDATE SET
			restricted = excluded.restricted`,
		c.GuildID, boolToInt(c.Restricted),
	)
	if err != nil {
		return domain.GuildConfig{}, err
	}
	return c, nil
}
