// Package timeutil provides utility functions and types for working with
// time-related operations.
package timeutil

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/markusmobius/go-dateparser"
)

const (
	secondsInAMinute = 60
	secondsInAnHour  = 3600
)

const (
	// DateLayout is the layout of the date keys used by the history maps.
	DateLayout = "2006-01-02"
	// HourLayout is the layout of the hour keys used by the hourly map.
	HourLayout = "15"
	// ClockLayout is the layout of rule schedule boundaries.
	ClockLayout = "15:04"
)

// Weekdays lists the weekday abbreviations accepted by rule schedules,
// starting on Sunday to match time.Weekday.
var Weekdays = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// Round rounds a time value in seconds, minutes, or hours to the nearest integer.
func Round(t float64) int64 {
	return int64(math.Round(t))
}

// RoundToStart resets the given time to the start of the day.
func RoundToStart(t time.Time) time.Time {
	return time.Date(
		t.Year(),
		t.Month(),
		t.Day(),
		0,
		0,
		0,
		0,
		t.Location(),
	)
}

// DateKey returns the local calendar date of t in YYYY-MM-DD form.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// HourKey returns the zero-padded local hour of t ("00".."23").
func HourKey(t time.Time) string {
	return t.Format(HourLayout)
}

// Clock returns the zero-padded HH:MM wall clock of t.
func Clock(t time.Time) string {
	return t.Format(ClockLayout)
}

// DayAbbrev returns the three letter weekday abbreviation of t.
func DayAbbrev(t time.Time) string {
	return Weekdays[t.Weekday()]
}

// ParseDateKey parses a YYYY-MM-DD key in loc.
func ParseDateKey(key string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, key, loc)
}

// Cutoff returns the date key of the oldest day kept when history is
// retained for the given number of days before now.
func Cutoff(now time.Time, days int) string {
	return DateKey(RoundToStart(now).AddDate(0, 0, -days))
}

// ValidClock reports whether s is a zero-padded 24h HH:MM value.
func ValidClock(s string) bool {
	if len(s) != len(ClockLayout) {
		return false
	}

	_, err := time.Parse(ClockLayout, s)

	return err == nil
}

// NormalizeDay returns the canonical abbreviation for a weekday name
// ("mon", "Monday" and "MON" all yield "Mon") and whether it was recognised.
func NormalizeDay(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 3 {
		return "", false
	}

	for i, d := range Weekdays {
		full := time.Weekday(i).String()
		if strings.EqualFold(s, d) || strings.EqualFold(s, full) {
			return d, true
		}
	}

	return "", false
}

// FormatSeconds renders a number of seconds as "2h 05m", "12m 30s" or "45s".
func FormatSeconds(secs int64) string {
	if secs < 0 {
		secs = 0
	}

	hrs := secs / secondsInAnHour
	mins := (secs % secondsInAnHour) / secondsInAMinute
	s := secs % secondsInAMinute

	switch {
	case hrs > 0:
		return fmt.Sprintf("%dh %02dm", hrs, mins)
	case mins > 0:
		return fmt.Sprintf("%dm %02ds", mins, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

// FormatClockSeconds renders a number of seconds as MM:SS, used for the
// pomodoro countdown.
func FormatClockSeconds(secs int) string {
	if secs < 0 {
		secs = 0
	}

	return fmt.Sprintf("%02d:%02d", secs/secondsInAMinute, secs%secondsInAMinute)
}

// ParseDate resolves a user supplied date such as "today", "yesterday",
// "3 days ago" or "2024-01-15" to its date key, relative to now.
func ParseDate(s string, now time.Time) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "today") {
		return DateKey(now), nil
	}

	if t, err := ParseDateKey(s, now.Location()); err == nil {
		return DateKey(t), nil
	}

	dt, err := dateparser.Parse(&dateparser.Configuration{
		CurrentTime:         now,
		DefaultTimezone:     now.Location(),
		PreferredDateSource: dateparser.Past,
	}, s)
	if err != nil {
		return "", fmt.Errorf("unable to parse date %q: %w", s, err)
	}

	return DateKey(dt.Time), nil
}
