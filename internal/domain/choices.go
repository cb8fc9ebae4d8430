package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrEmptyReminder   = errors.New("empty reminder")
	ErrInvalidReminder = errors.New("invalid reminder")
	ErrUnknownColor    = errors.New("unknown color")
)

// ReminderPresets are the offsets offered by the creation interface, in menu order.
// Weeks are intentionally absent.
var ReminderPresets = []string{
	"5m", "10m", "15m", "30m",
	"1h", "2h", "3h", "6h", "12h",
	"1d", "2d", "3d", "7d",
}

var reminderRe = regexp.MustCompile(`^(\d+)\s*([mhd])$`)

// ParseReminder parses a preset like "30m", "2h" or "1d" into an offset for slot key.
// Only values listed in ReminderPresets are accepted.
func ParseReminder(key int, s string) (NotificationOffset, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return NotificationOffset{}, ErrEmptyReminder
	}
	if !isPreset(s) {
		return NotificationOffset{}, fmt.Errorf("%w: %s", ErrInvalidReminder, s)
	}
	m := reminderRe.FindStringSubmatch(s)
	if len(m) != 3 {
		return NotificationOffset{}, fmt.Errorf("%w: %s", ErrInvalidReminder, s)
	}
	num, _ := strconv.Atoi(m[1])

	unit := UnitMinutes
	switch m[2] {
	case "h":
		unit = UnitHours
	case "d":
		unit = UnitDays
	}
	return NotificationOffset{Key: key, Amount: num, Unit: unit}, nil
}

func isPreset(s string) bool {
	for _, p := range ReminderPresets {
		if p == s {
			return true
		}
	}
	return false
}

// ReminderLabel renders a preset for menus, e.g. "30m" -> "30分前".
func ReminderLabel(preset string) string {
	n, err := ParseReminder(0, preset)
	if err != nil {
		return preset
	}
	return n.String()
}

// Color is a named event color offered by the creation interface.
type Color struct {
	Value string // option value, e.g. "red"
	Label string // display name
	Hex   string // #rrggbb
}

// Colors are listed in menu order.
var Colors = []Color{
	{"white", "白", "#ffffff"},
	{"black", "黒", "#000000"},
	{"red", "赤", "#fd4028"},
	{"blue", "青", "#3e44f7"},
	{"green", "緑", "#33f54b"},
	{"yellow", "黄", "#eaff33"},
	{"purple", "紫", "#a31ce0"},
	{"gray", "灰", "#808080"},
	{"brown", "茶", "#a54f4f"},
	{"aqua", "水色", "#44f3f3"},
}

// DefaultColorName is used when the caller picks no color.
const DefaultColorName = "blue"

// ColorHex resolves a color option value. Empty input yields DefaultColorName.
func ColorHex(name string) (string, error) {
	if name == "" {
		name = DefaultColorName
	}
	for _, c := range Colors {
		if c.Value == name {
			return c.Hex, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownColor, name)
}
