package store

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/ykvlv/calendar-bot/internal/domain"
)

func toNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func fromUnix(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

func encodeNotifications(ns []domain.NotificationOffset) (string, error) {
	if ns == nil {
		ns = []domain.NotificationOffset{}
	}
	b, err := json.Marshal(ns)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeNotifications(raw []byte) ([]domain.NotificationOffset, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var ns []domain.NotificationOffset
	if err := json.Unmarshal(raw, &ns); err != nil {
		return nil, err
	}
	return ns, nil
}

// rangeBounds translates a Range into an optional start_at predicate.
func rangeBounds(r domain.Range) (op string, ok bool) {
	switch r {
	case domain.RangePast:
		return "<", true
	case domain.RangeFuture:
		return ">=", true
	default:
		return "", false
	}
}

// boolToInt converts a boolean to 1/0 for SQLite.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
