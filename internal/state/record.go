package state

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/ayoisaiah/webfocus/internal/models"
	"github.com/ayoisaiah/webfocus/internal/site"
	"github.com/ayoisaiah/webfocus/internal/timeutil"
)

// RecordTime attributes secs of activity on domain to the day and hour of at
// and schedules a batched save. It returns the category the time was
// credited to.
func (s *State) RecordTime(domain string, secs int64, at time.Time) string {
	if domain == "" || secs <= 0 {
		return ""
	}

	date := timeutil.DateKey(at)
	hour := timeutil.HourKey(at)

	s.mu.Lock()
	category := site.ResolveCategory(domain, s.data.Assignments, site.Fallback)

	s.data.TrackedTime.Add(domain, secs)
	s.data.CategoryTime.Add(category, secs)
	s.data.DailyDomain.Day(date).Add(domain, secs)
	s.data.DailyCategory.Day(date).Add(category, secs)
	s.data.Hourly.Day(date).Add(hour, secs)
	s.mu.Unlock()

	s.opts.Metrics.Tracked(category, secs)
	s.SaveBatched()

	return category
}

// Marker returns the open tracking marker, or nil if none is stored.
func (s *State) Marker() (*models.Marker, error) {
	raw, err := s.session.Get(keyTrackingSession)
	if err != nil {
		return nil, errMarkerRead.Wrap(err)
	}

	b, ok := raw[keyTrackingSession]
	if !ok {
		return nil, nil
	}

	var m models.Marker
	if err := json.Unmarshal(b, &m); err != nil {
		s.logger.Warn("ignoring malformed tracking marker", slog.Any("error", err))
		return nil, nil
	}

	if m.Domain == "" || m.Since.IsZero() {
		return nil, nil
	}

	return &m, nil
}

// SetMarker stores the open tracking marker immediately.
func (s *State) SetMarker(m models.Marker) error {
	b, err := json.Marshal(m)
	if err != nil {
		return errMarkerWrite.Wrap(err)
	}

	if err := s.session.Set(map[string][]byte{keyTrackingSession: b}); err != nil {
		return errMarkerWrite.Wrap(err)
	}

	return nil
}

// ClearMarker removes the tracking marker immediately.
func (s *State) ClearMarker() error {
	if err := s.session.Remove(keyTrackingSession); err != nil {
		return errMarkerWrite.Wrap(err)
	}

	return nil
}

// PruneOldData deletes daily and hourly entries dated before the start of
// today minus retention days. It saves only if something was removed and
// returns the number of date entries deleted.
func (s *State) PruneOldData(retention models.Retention) (int, error) {
	if retention.Keeps() {
		return 0, nil
	}

	now := s.opts.Now()
	cutoff := timeutil.Cutoff(now, int(retention))

	s.mu.Lock()

	removed := 0

	for _, daily := range []models.Daily{
		s.data.DailyDomain,
		s.data.DailyCategory,
		s.data.Hourly,
	} {
		for date := range daily {
			if _, err := timeutil.ParseDateKey(date, now.Location()); err != nil {
				continue
			}

			if date < cutoff {
				delete(daily, date)
				removed++
			}
		}
	}

	s.mu.Unlock()

	if removed == 0 {
		return 0, nil
	}

	s.logger.Info(
		"pruned old history",
		slog.String("cutoff", cutoff),
		slog.Int("entries", removed),
	)

	return removed, s.saveBlocking()
}

// Prune applies the configured retention.
func (s *State) Prune() (int, error) {
	return s.PruneOldData(s.Retention())
}

// Today returns the current date key.
func (s *State) Today() string {
	return timeutil.DateKey(s.opts.Now())
}

// DomainsOn returns a copy of the per-domain totals for date.
func (s *State) DomainsOn(date string) models.Seconds {
	s.mu.Lock()
	defer s.mu.Unlock()

	return cloneSeconds(s.data.DailyDomain[date])
}

// CategoriesOn returns a copy of the per-category totals for date.
func (s *State) CategoriesOn(date string) models.Seconds {
	s.mu.Lock()
	defer s.mu.Unlock()

	return cloneSeconds(s.data.DailyCategory[date])
}

func cloneSeconds(src models.Seconds) models.Seconds {
	dst := make(models.Seconds, len(src))
	for k, v := range src {
		dst[k] = v
	}

	return dst
}
