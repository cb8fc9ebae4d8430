package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisMarker records which (event, offset, instant) reminders were already
// dispatched, so a restart or clock step inside a firing window cannot
// deliver the same reminder twice.
type RedisMarker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisMarker connects to addr. ttl bounds how long a marker is kept.
func NewRedisMarker(addr, password string, db int, ttl time.Duration) *RedisMarker {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisMarker{client: client, ttl: ttl}
}

// Ping verifies connectivity.
func (m *RedisMarker) Ping(ctx context.Context) error {
	const op = "store.RedisMarker.Ping"

	if err := m.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Mark sets the marker and reports whether it was absent before.
func (m *RedisMarker) Mark(ctx context.Context, eventID string, key int, at time.Time) (bool, error) {
	const op = "store.RedisMarker.Mark"

	ok, err := m.client.SetNX(ctx, markerKey(eventID, key, at), 1, m.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return ok, nil
}

// Close closes the client.
func (m *RedisMarker) Close() error {
	return m.client.Close()
}

func markerKey(eventID string, key int, at time.Time) string {
	return fmt.Sprintf("notified:%s:%d:%d", eventID, key, at.Unix())
}
