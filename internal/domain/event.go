package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"
)

// DefaultColor is used when an event carries no color.
const DefaultColor = "#3B82F6"

// MaxNotifications is the number of user reminder slots per event.
const MaxNotifications = 4

// SentinelKey marks the synthesized "at start time" offset.
const SentinelKey = -1

// Unit is the time unit of a reminder offset.
type Unit string

const (
	UnitMinutes Unit = "minutes"
	UnitHours   Unit = "hours"
	UnitDays    Unit = "days"
	// UnitWeeks converts correctly but no creation path produces it.
	UnitWeeks Unit = "weeks"
)

var unitLabels = map[Unit]struct {
	minutes int
	before  string
	after   string
}{
	UnitMinutes: {1, "分前", "分後"},
	UnitHours:   {60, "時間前", "時間後"},
	UnitDays:    {24 * 60, "日前", "日後"},
	UnitWeeks:   {7 * 24 * 60, "週間前", "週間後"},
}

// Minutes returns how many minutes one unit spans. Unknown units count as minutes.
func (u Unit) Minutes() int {
	if l, ok := unitLabels[u]; ok {
		return l.minutes
	}
	return 1
}

// BeforeLabel is the persisted "until" wording, e.g. 分前.
func (u Unit) BeforeLabel() string {
	if l, ok := unitLabels[u]; ok {
		return l.before
	}
	return unitLabels[UnitMinutes].before
}

// AfterLabel is the "elapsed" wording used only in notification messages.
func (u Unit) AfterLabel() string {
	if l, ok := unitLabels[u]; ok {
		return l.after
	}
	return unitLabels[UnitMinutes].after
}

// UnitFromLabel maps a persisted label back to a Unit. Unknown or empty
// labels are minutes.
func UnitFromLabel(label string) Unit {
	for u, l := range unitLabels {
		if l.before == label {
			return u
		}
	}
	return UnitMinutes
}

// NotificationOffset is one reminder relative to an event's start.
type NotificationOffset struct {
	Key    int
	Amount int
	Unit   Unit
}

// AtStart returns the synthesized offset that fires at the start instant.
func AtStart() NotificationOffset {
	return NotificationOffset{Key: SentinelKey, Amount: 0, Unit: UnitMinutes}
}

// IsSentinel reports whether n is the synthesized at-start offset.
func (n NotificationOffset) IsSentinel() bool {
	return n.Key == SentinelKey
}

// ToMinutes converts the offset to a minute count.
func (n NotificationOffset) ToMinutes() int {
	return n.Amount * n.Unit.Minutes()
}

// Duration is ToMinutes as a time.Duration.
func (n NotificationOffset) Duration() time.Duration {
	return time.Duration(n.ToMinutes()) * time.Minute
}

func (n NotificationOffset) String() string {
	return strconv.Itoa(n.Amount) + n.Unit.BeforeLabel()
}

type offsetJSON struct {
	Key  int    `json:"key"`
	Num  int    `json:"num"`
	Type string `json:"type,omitempty"`
}

// MarshalJSON keeps the stored shape {"key":0,"num":30,"type":"分前"}.
func (n NotificationOffset) MarshalJSON() ([]byte, error) {
	return json.Marshal(offsetJSON{Key: n.Key, Num: n.Amount, Type: n.Unit.BeforeLabel()})
}

func (n *NotificationOffset) UnmarshalJSON(b []byte) error {
	var raw offsetJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	n.Key = raw.Key
	n.Amount = raw.Num
	n.Unit = UnitFromLabel(raw.Type)
	return nil
}

// Event is a calendar entry owned by a guild. StartAt and EndAt are stored in UTC.
type Event struct {
	ID            string
	GuildID       string
	Name          string
	Description   string
	Color         string
	IsAllDay      bool
	StartAt       time.Time
	EndAt         time.Time
	Location      string
	ChannelID     string
	ChannelName   string
	Notifications []NotificationOffset
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// EffectiveOffsets returns the persisted offsets plus the at-start sentinel,
// ordered by key. The event itself is not modified.
func (e Event) EffectiveOffsets() []NotificationOffset {
	out := make([]NotificationOffset, 0, len(e.Notifications)+1)
	out = append(out, e.Notifications...)
	out = append(out, AtStart())
	sort.SliceStable(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Anchors returns the instants reminders are measured against, in DisplayZone.
// All-day events anchor to display-zone midnight of their stored dates.
func (e Event) Anchors() (start, end time.Time) {
	if e.IsAllDay {
		return MidnightOf(e.StartAt), MidnightOf(e.EndAt)
	}
	return ToDisplayZone(e.StartAt), ToDisplayZone(e.EndAt)
}

// ColorValue parses Color (#RRGGBB) into an RGB integer, falling back to DefaultColor.
func (e Event) ColorValue() int {
	v, err := ParseColor(e.Color)
	if err != nil {
		v, _ = ParseColor(DefaultColor)
	}
	return v
}

// ParseColor parses a 6-hex-digit color with an optional leading '#'.
func ParseColor(s string) (int, error) {
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}
	if len(s) != 6 {
		return 0, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return int(v), nil
}

// EventCreate is the input of the creation interface.
type EventCreate struct {
	GuildID       string
	Name          string
	Description   string
	Color         string
	IsAllDay      bool
	StartAt       time.Time
	EndAt         time.Time
	Location      string
	ChannelID     string
	ChannelName   string
	Notifications []NotificationOffset
}

// Range filters a guild's events relative to now.
type Range string

const (
	RangePast   Range = "past"
	RangeFuture Range = "future"
	RangeAll    Range = "all"
)

// ParseRange defaults to RangeFuture for empty or unknown input.
func ParseRange(s string) Range {
	switch Range(s) {
	case RangePast, RangeAll:
		return Range(s)
	default:
		return RangeFuture
	}
}
