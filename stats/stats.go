// Package stats reports webfocus browsing statistics
package stats

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/maruel/natural"

	"github.com/ayoisaiah/webfocus/internal/models"
	"github.com/ayoisaiah/webfocus/internal/timeutil"
)

// topDomains is how many domains the report lists.
const topDomains = 15

// Entry is a name with the seconds credited to it.
type Entry struct {
	Name    string `json:"name"`
	Seconds int64  `json:"seconds"`
}

// Report summarises tracked time for one day or for all time.
type Report struct {
	Date         string             `json:"date,omitempty"`
	Domains      []Entry            `json:"domains"`
	Categories   []Entry            `json:"categories"`
	Hourly       []Entry            `json:"hourly,omitempty"`
	Pomodoro     models.PomodoroDay `json:"pomodoro"`
	TotalSeconds int64              `json:"totalSeconds"`
	// Productivity is the share of rated time spent in productive
	// categories, from 0 to 100. It is -1 when no rated time was tracked.
	Productivity int `json:"productivity"`
}

// ForDay builds the report of date from snap.
func ForDay(snap models.Snapshot, date string) Report {
	r := Report{
		Date:       date,
		Domains:    Sorted(snap.DailyDomain[date]),
		Categories: Sorted(snap.DailyCategory[date]),
		Pomodoro:   snap.PomodoroStats.Daily[date],
	}

	r.Hourly = hours(snap.Hourly[date])
	r.finish(snap.DailyCategory[date], snap.Ratings)

	return r
}

// AllTime builds the report of every tracked day.
func AllTime(snap models.Snapshot) Report {
	r := Report{
		Domains:    Sorted(snap.TrackedTime),
		Categories: Sorted(snap.CategoryTime),
		Pomodoro:   snap.PomodoroStats.AllTime,
	}

	r.finish(snap.CategoryTime, snap.Ratings)

	return r
}

func (r *Report) finish(categories models.Seconds, ratings map[string]int) {
	for _, secs := range categories {
		r.TotalSeconds += secs
	}

	r.Productivity = Productivity(categories, ratings)
}

// JSON encodes the report.
func (r Report) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// Sorted orders m by descending time. Ties are broken by natural name order
// so that "site2.com" sorts before "site10.com".
func Sorted(m models.Seconds) []Entry {
	entries := make([]Entry, 0, len(m))

	for name, secs := range m {
		if secs <= 0 {
			continue
		}

		entries = append(entries, Entry{Name: name, Seconds: secs})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Seconds != entries[j].Seconds {
			return entries[i].Seconds > entries[j].Seconds
		}

		return natural.Less(entries[i].Name, entries[j].Name)
	})

	return entries
}

// Productivity returns the percentage of rated time spent in categories
// rated productive. Neutral categories do not count either way.
func Productivity(categories models.Seconds, ratings map[string]int) int {
	var productive, rated int64

	for category, secs := range categories {
		switch ratings[category] {
		case 1:
			productive += secs
			rated += secs
		case -1:
			rated += secs
		}
	}

	if rated == 0 {
		return -1
	}

	return int(timeutil.Round(float64(productive) * 100 / float64(rated)))
}

// hours lists all 24 hours of a day in order.
func hours(m models.Seconds) []Entry {
	if len(m) == 0 {
		return nil
	}

	entries := make([]Entry, 24)

	for h := range entries {
		key := fmt.Sprintf("%02d", h)
		entries[h] = Entry{Name: key, Seconds: m[key]}
	}

	return entries
}
