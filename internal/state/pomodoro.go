package state

import (
	"time"

	"github.com/ayoisaiah/webfocus/internal/models"
	"github.com/ayoisaiah/webfocus/internal/timeutil"
)

// PomodoroSettings returns the configured phase lengths.
func (s *State) PomodoroSettings() models.PomodoroSettings {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.data.Pomodoro
}

// SetPomodoroSettings validates and stores new phase lengths.
func (s *State) SetPomodoroSettings(ps models.PomodoroSettings) error {
	for name, v := range map[string]int{
		"work duration":              ps.WorkSeconds,
		"short break duration":       ps.ShortBreakSeconds,
		"long break duration":        ps.LongBreakSeconds,
		"sessions before long break": ps.SessionsBeforeLongBreak,
	} {
		if v <= 0 {
			return errInvalidPomodoro.Fmt(name)
		}
	}

	s.mu.Lock()
	s.data.Pomodoro = ps
	s.mu.Unlock()

	return s.commit(SettingsChanged)
}

// SetPomodoroNotifications toggles pomodoro desktop notifications.
func (s *State) SetPomodoroNotifications(enabled bool) error {
	s.mu.Lock()
	s.data.Pomodoro.NotificationsEnabled = enabled
	s.mu.Unlock()

	return s.commit(SettingsChanged)
}

// PomodoroState returns the persisted timer position, if any.
func (s *State) PomodoroState() (models.PomodoroState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pomodoro == nil {
		return models.PomodoroState{}, false
	}

	return *s.pomodoro, true
}

// SetPomodoroState records the timer position and schedules a batched save.
func (s *State) SetPomodoroState(ps models.PomodoroState) {
	s.mu.Lock()
	s.pomodoro = &ps
	s.mu.Unlock()

	s.SaveBatched()
}

// RecordPomodoro credits a completed work session of workSecs to the day of
// at and to the all-time totals.
func (s *State) RecordPomodoro(at time.Time, workSecs int64) {
	date := timeutil.DateKey(at)

	s.mu.Lock()
	day := s.data.PomodoroStats.Daily[date]
	day.CompletedSessions++
	day.WorkSeconds += workSecs
	s.data.PomodoroStats.Daily[date] = day

	s.data.PomodoroStats.AllTime.CompletedSessions++
	s.data.PomodoroStats.AllTime.WorkSeconds += workSecs
	s.mu.Unlock()

	s.opts.Metrics.PomodoroCompleted()
	s.SaveBatched()
}

// PomodoroStats returns the totals for date and for all time.
func (s *State) PomodoroStats(date string) (day, allTime models.PomodoroDay) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.data.PomodoroStats.Daily[date], s.data.PomodoroStats.AllTime
}
