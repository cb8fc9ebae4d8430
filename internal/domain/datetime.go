package domain

import "time"

// DisplayZone is the fixed UTC+9 zone used for every user-facing time and
// for reinterpreting all-day dates.
var DisplayZone = time.FixedZone("JST", 9*60*60)

const (
	dateTimeLayout = "2006/01/02 15:04"
	dateLayout     = "2006/01/02"
	clockLayout    = "15:04"
)

// ToDisplayZone returns the same instant expressed in DisplayZone.
func ToDisplayZone(t time.Time) time.Time {
	return t.In(DisplayZone)
}

// TruncateMinute zeroes seconds and sub-second components in DisplayZone.
func TruncateMinute(t time.Time) time.Time {
	lt := ToDisplayZone(t)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), lt.Hour(), lt.Minute(), 0, 0, DisplayZone)
}

// MidnightOf reinterprets the calendar date of t (as stored, in UTC) as
// midnight in DisplayZone. It is not a timezone conversion.
func MidnightOf(t time.Time) time.Time {
	ut := t.UTC()
	return time.Date(ut.Year(), ut.Month(), ut.Day(), 0, 0, 0, 0, DisplayZone)
}

// FormatDateTime formats t as YYYY/MM/DD HH:MM in DisplayZone.
func FormatDateTime(t time.Time) string {
	return ToDisplayZone(t).Format(dateTimeLayout)
}

// FormatDate formats t as YYYY/MM/DD in DisplayZone.
func FormatDate(t time.Time) string {
	return ToDisplayZone(t).Format(dateLayout)
}

// FormatRange renders an event span for messages.
// All-day spans collapse to one date when both ends share a calendar date.
// Timed spans on one date omit the repeated date on the end time.
func FormatRange(start, end time.Time, allDay bool) string {
	if allDay {
		s, e := FormatDate(start), FormatDate(end)
		if s == e {
			return s
		}
		return s + " - " + e
	}
	if FormatDate(start) == FormatDate(end) {
		return FormatDateTime(start) + " - " + ToDisplayZone(end).Format(clockLayout)
	}
	return FormatDateTime(start) + " - " + FormatDateTime(end)
}

// IsLeapYear applies the Gregorian rule.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// ValidateCalendarFields range-checks date components and rejects days that
// do not exist in the given month. It never panics.
func ValidateCalendarFields(year, month, day, hour, minute int) bool {
	switch {
	case year < 1970 || year > 2099:
		return false
	case month < 1 || month > 12:
		return false
	case day < 1 || day > 31:
		return false
	case hour < 0 || hour > 23:
		return false
	case minute < 0 || minute > 59:
		return false
	}

	switch month {
	case 4, 6, 9, 11:
		if day == 31 {
			return false
		}
	case 2:
		if day > 29 {
			return false
		}
		if day == 29 && !IsLeapYear(year) {
			return false
		}
	}
	return true
}
