package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateCalendarFields(t *testing.T) {
	cases := []struct {
		name            string
		y, mo, d, h, mi int
		want            bool
	}{
		{"leap day on leap year", 2024, 2, 29, 0, 0, true},
		{"leap day on common year", 2023, 2, 29, 0, 0, false},
		{"leap day on 400th year", 2000, 2, 29, 0, 0, true},
		{"february 30", 2024, 2, 30, 0, 0, false},
		{"april 31", 2024, 4, 31, 0, 0, false},
		{"june 30", 2024, 6, 30, 0, 0, true},
		{"november 31", 2024, 11, 31, 0, 0, false},
		{"december 31", 2024, 12, 31, 23, 59, true},
		{"year too small", 1969, 1, 1, 0, 0, false},
		{"year too large", 2100, 1, 1, 0, 0, false},
		{"month zero", 2024, 0, 1, 0, 0, false},
		{"month thirteen", 2024, 13, 1, 0, 0, false},
		{"day zero", 2024, 1, 0, 0, 0, false},
		{"hour 24", 2024, 1, 1, 24, 0, false},
		{"minute 60", 2024, 1, 1, 0, 60, false},
		{"negative minute", 2024, 1, 1, 0, -1, false},
		{"epoch start", 1970, 1, 1, 0, 0, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, ValidateCalendarFields(c.y, c.mo, c.d, c.h, c.mi))
		})
	}
}

func TestFormatDateTime(t *testing.T) {
	in := time.Date(2024, time.January, 15, 14, 30, 0, 0, time.UTC)
	assert.Equal(t, "2024/01/15 23:30", FormatDateTime(in))
	assert.Equal(t, "2024/01/15", FormatDate(in))

	crossing := time.Date(2024, time.January, 15, 16, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024/01/16 01:00", FormatDateTime(crossing))
	assert.Equal(t, "2024/01/16", FormatDate(crossing))
}

func TestTruncateMinute(t *testing.T) {
	in := time.Date(2024, time.January, 15, 14, 30, 59, 999, time.UTC)
	got := TruncateMinute(in)

	assert.Equal(t, DisplayZone, got.Location())
	assert.Equal(t, 0, got.Second())
	assert.Equal(t, 0, got.Nanosecond())
	assert.True(t, got.Equal(time.Date(2024, time.January, 15, 14, 30, 0, 0, time.UTC)))
}

func TestMidnightOf_ReinterpretsDate(t *testing.T) {
	stored := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	got := MidnightOf(stored)

	assert.Equal(t, "2024/01/15 00:00", FormatDateTime(got))
	assert.True(t, got.Equal(time.Date(2024, time.January, 14, 15, 0, 0, 0, time.UTC)))
}

func TestFormatRange(t *testing.T) {
	day := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "2024/01/15", FormatRange(MidnightOf(day), MidnightOf(day), true))
	assert.Equal(t, "2024/01/15 - 2024/01/17",
		FormatRange(MidnightOf(day), MidnightOf(day.AddDate(0, 0, 2)), true))

	start := time.Date(2024, time.January, 15, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024/01/15 10:00 - 12:30",
		FormatRange(start, start.Add(150*time.Minute), false))
	assert.Equal(t, "2024/01/15 10:00 - 2024/01/16 10:00",
		FormatRange(start, start.Add(24*time.Hour), false))
}
