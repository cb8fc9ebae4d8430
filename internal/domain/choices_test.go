package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReminder(t *testing.T) {
	n, err := ParseReminder(2, "30m")
	require.NoError(t, err)
	assert.Equal(t, NotificationOffset{Key: 2, Amount: 30, Unit: UnitMinutes}, n)

	n, err = ParseReminder(0, " 12H ")
	require.NoError(t, err)
	assert.Equal(t, NotificationOffset{Key: 0, Amount: 12, Unit: UnitHours}, n)

	n, err = ParseReminder(3, "7d")
	require.NoError(t, err)
	assert.Equal(t, 7*24*60, n.ToMinutes())

	_, err = ParseReminder(0, "")
	assert.ErrorIs(t, err, ErrEmptyReminder)

	for _, bad := range []string{"4m", "2w", "1h30m", "abc"} {
		_, err = ParseReminder(0, bad)
		assert.ErrorIs(t, err, ErrInvalidReminder, bad)
	}
}

func TestReminderLabel(t *testing.T) {
	assert.Equal(t, "5分前", ReminderLabel("5m"))
	assert.Equal(t, "1日前", ReminderLabel("1d"))
	assert.Equal(t, "bogus", ReminderLabel("bogus"))
}

func TestColorHex(t *testing.T) {
	hex, err := ColorHex("")
	require.NoError(t, err)
	assert.Equal(t, "#3e44f7", hex)

	hex, err = ColorHex("aqua")
	require.NoError(t, err)
	assert.Equal(t, "#44f3f3", hex)

	_, err = ColorHex("pink")
	assert.ErrorIs(t, err, ErrUnknownColor)
}
