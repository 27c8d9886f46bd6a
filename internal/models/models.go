// Package models defines the tracked data, configuration and session types
// shared by every component
package models

import (
	"encoding/json"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"
)

// RuleType identifies the kind of a blocking or limiting rule.
type RuleType string

const (
	BlockURL      RuleType = "block-url"
	BlockCategory RuleType = "block-category"
	LimitURL      RuleType = "limit-url"
	LimitCategory RuleType = "limit-category"
)

// RuleTypes lists every supported rule kind.
var RuleTypes = []RuleType{BlockURL, BlockCategory, LimitURL, LimitCategory}

// Valid reports whether t is a known rule kind.
func (t RuleType) Valid() bool {
	return slices.Contains(RuleTypes, t)
}

// IsLimit reports whether t is a daily time limit.
func (t RuleType) IsLimit() bool {
	return t == LimitURL || t == LimitCategory
}

// IsCategory reports whether t targets a category rather than a URL.
func (t RuleType) IsCategory() bool {
	return t == BlockCategory || t == LimitCategory
}

// Rule is a block or daily limit directive for a URL pattern or category.
type Rule struct {
	Type         RuleType `json:"type"`
	Value        string   `json:"value"`
	StartTime    string   `json:"startTime,omitempty"`
	EndTime      string   `json:"endTime,omitempty"`
	Days         []string `json:"days,omitempty"`
	LimitSeconds int64    `json:"limitSeconds,omitempty"`
}

// HasSchedule reports whether the rule is restricted to certain days or a
// time-of-day window.
func (r Rule) HasSchedule() bool {
	return r.StartTime != "" || r.EndTime != "" || (len(r.Days) > 0 && len(r.Days) < 7)
}

// SameTarget reports whether two rules share the same kind and value.
func (r Rule) SameTarget(o Rule) bool {
	return r.Type == o.Type && strings.EqualFold(r.Value, o.Value)
}

// Marker records that tracking of Domain has been running since Since.
type Marker struct {
	Since  time.Time `json:"timestamp"`
	Domain string    `json:"domain"`
}

// Seconds maps a domain, category or hour to a number of seconds.
type Seconds map[string]int64

// Daily maps a YYYY-MM-DD date key to that day's totals.
type Daily map[string]Seconds

// Add increments key by secs.
func (s Seconds) Add(key string, secs int64) {
	s[key] += secs
}

// Day returns the totals for date, creating them if needed.
func (d Daily) Day(date string) Seconds {
	day, ok := d[date]
	if !ok || day == nil {
		day = make(Seconds)
		d[date] = day
	}

	return day
}

// Retention is the number of days of history kept. Forever disables pruning.
type Retention int

// Forever keeps history indefinitely.
const Forever Retention = -1

// DefaultRetention is the retention applied on first install.
const DefaultRetention Retention = 90

// Keeps reports whether pruning is disabled.
func (r Retention) Keeps() bool {
	return r < 0
}

// MarshalJSON encodes Forever as "forever".
func (r Retention) MarshalJSON() ([]byte, error) {
	if r.Keeps() {
		return json.Marshal("forever")
	}

	return json.Marshal(int(r))
}

// UnmarshalJSON accepts a number, a numeric string or "forever". Anything
// that is not numeric disables pruning.
func (r *Retention) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	*r = ParseRetention(v)

	return nil
}

// ParseRetention converts a stored or user supplied retention value.
func ParseRetention(v any) Retention {
	switch val := v.(type) {
	case float64:
		if val < 0 {
			return Forever
		}

		return Retention(val)
	case int:
		if val < 0 {
			return Forever
		}

		return Retention(val)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil || n < 0 {
			return Forever
		}

		return Retention(n)
	default:
		return Forever
	}
}

// BlockPage holds the customisable text of the page shown on redirects.
type BlockPage struct {
	Heading       string   `json:"heading"`
	Message       string   `json:"message"`
	ButtonText    string   `json:"buttonText"`
	Quotes        []string `json:"quotes"`
	ShowURL       bool     `json:"showUrl"`
	ShowReason    bool     `json:"showReason"`
	ShowRule      bool     `json:"showRule"`
	ShowLimit     bool     `json:"showLimit"`
	ShowSchedule  bool     `json:"showSchedule"`
	ShowButton    bool     `json:"showButton"`
	QuotesEnabled bool     `json:"quotesEnabled"`
}

// PomodoroSettings configures phase lengths and notifications.
type PomodoroSettings struct {
	WorkSeconds             int  `json:"workSeconds"`
	ShortBreakSeconds       int  `json:"shortBreakSeconds"`
	LongBreakSeconds        int  `json:"longBreakSeconds"`
	SessionsBeforeLongBreak int  `json:"sessionsBeforeLongBreak"`
	NotificationsEnabled    bool `json:"notificationsEnabled"`
}

// PomodoroDay aggregates completed work sessions.
type PomodoroDay struct {
	CompletedSessions int   `json:"completedSessions"`
	WorkSeconds       int64 `json:"workSeconds"`
}

// PomodoroStats holds per-day and all-time pomodoro totals.
type PomodoroStats struct {
	Daily   map[string]PomodoroDay `json:"daily"`
	AllTime PomodoroDay            `json:"allTime"`
}

// Phase is a pomodoro timer phase.
type Phase string

const (
	Work       Phase = "work"
	ShortBreak Phase = "shortBreak"
	LongBreak  Phase = "longBreak"
)

// Valid reports whether p is a known phase.
func (p Phase) Valid() bool {
	return p == Work || p == ShortBreak || p == LongBreak
}

// RunState reports whether the pomodoro countdown is progressing.
type RunState string

const (
	Stopped RunState = "stopped"
	Running RunState = "running"
	Paused  RunState = "paused"
)

// PomodoroState is the persisted position of the pomodoro timer.
type PomodoroState struct {
	Phase     Phase    `json:"phase"`
	RunState  RunState `json:"runState"`
	Remaining int      `json:"remainingSeconds"`
	WorkCycle int      `json:"workCycle"`
}

// Snapshot is every persisted configuration and history value. Its JSON form
// is also the export document.
type Snapshot struct {
	Categories    []string          `json:"categories"`
	Assignments   map[string]string `json:"categoryAssignments"`
	Rules         []Rule            `json:"rules"`
	Ratings       map[string]int    `json:"categoryProductivityRatings"`
	TrackedTime   Seconds           `json:"trackedTime"`
	CategoryTime  Seconds           `json:"categoryTime"`
	DailyDomain   Daily             `json:"dailyDomainData"`
	DailyCategory Daily             `json:"dailyCategoryData"`
	Hourly        Daily             `json:"hourlyData"`
	PomodoroStats PomodoroStats     `json:"pomodoroStats"`
	BlockPage     BlockPage         `json:"blockPageSettings"`
	Pomodoro      PomodoroSettings  `json:"pomodoroSettings"`
	IdleThreshold int               `json:"idleThreshold"`
	RetentionDays Retention         `json:"dataRetentionDays"`
}

// EnsureMaps replaces nil maps with empty ones.
func (s *Snapshot) EnsureMaps() {
	if s.Assignments == nil {
		s.Assignments = make(map[string]string)
	}

	if s.Ratings == nil {
		s.Ratings = make(map[string]int)
	}

	if s.TrackedTime == nil {
		s.TrackedTime = make(Seconds)
	}

	if s.CategoryTime == nil {
		s.CategoryTime = make(Seconds)
	}

	if s.DailyDomain == nil {
		s.DailyDomain = make(Daily)
	}

	if s.DailyCategory == nil {
		s.DailyCategory = make(Daily)
	}

	if s.Hourly == nil {
		s.Hourly = make(Daily)
	}

	if s.PomodoroStats.Daily == nil {
		s.PomodoroStats.Daily = make(map[string]PomodoroDay)
	}

	if s.Rules == nil {
		s.Rules = []Rule{}
	}

	if s.Categories == nil {
		s.Categories = []string{}
	}
}

// Clone returns a deep copy of s.
func (s *Snapshot) Clone() Snapshot {
	c := *s

	c.Categories = slices.Clone(s.Categories)
	c.Assignments = maps.Clone(s.Assignments)
	c.Ratings = maps.Clone(s.Ratings)
	c.TrackedTime = maps.Clone(s.TrackedTime)
	c.CategoryTime = maps.Clone(s.CategoryTime)
	c.DailyDomain = cloneDaily(s.DailyDomain)
	c.DailyCategory = cloneDaily(s.DailyCategory)
	c.Hourly = cloneDaily(s.Hourly)
	c.PomodoroStats.Daily = maps.Clone(s.PomodoroStats.Daily)
	c.BlockPage.Quotes = slices.Clone(s.BlockPage.Quotes)

	c.Rules = make([]Rule, len(s.Rules))
	for i, r := range s.Rules {
		r.Days = slices.Clone(r.Days)
		c.Rules[i] = r
	}

	c.EnsureMaps()

	return c
}

func cloneDaily(d Daily) Daily {
	if d == nil {
		return nil
	}

	c := make(Daily, len(d))
	for k, v := range d {
		c[k] = maps.Clone(v)
	}

	return c
}
