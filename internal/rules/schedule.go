package rules

import (
	"slices"
	"time"

	"github.com/ayoisaiah/webfocus/internal/apperr"
	"github.com/ayoisaiah/webfocus/internal/models"
	"github.com/ayoisaiah/webfocus/internal/timeutil"
)

var errBadSchedule = &apperr.Error{
	Message: "rule %s %q has an invalid schedule",
}

// ScheduleActive reports whether r applies at the given time. A rule without
// a schedule is always active. Days restrict the weekday of at; the window
// includes startTime and excludes endTime, and a window whose end precedes
// its start runs overnight.
func ScheduleActive(r models.Rule, at time.Time) (bool, error) {
	if len(r.Days) > 0 && len(r.Days) < len(timeutil.Weekdays) {
		today := timeutil.DayAbbrev(at)

		if !slices.ContainsFunc(r.Days, func(d string) bool {
			day, ok := timeutil.NormalizeDay(d)
			return ok && day == today
		}) {
			return false, nil
		}
	}

	if r.StartTime == "" && r.EndTime == "" {
		return true, nil
	}

	if !timeutil.ValidClock(r.StartTime) || !timeutil.ValidClock(r.EndTime) {
		return false, errBadSchedule.Fmt(r.Type, r.Value)
	}

	now := timeutil.Clock(at)

	if r.StartTime <= r.EndTime {
		return now >= r.StartTime && now < r.EndTime, nil
	}

	return now >= r.StartTime || now < r.EndTime, nil
}
