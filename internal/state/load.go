package state

import (
	"encoding/json"
	"log/slog"
	"reflect"
	"slices"
	"strings"

	"github.com/ayoisaiah/webfocus/internal/models"
	"github.com/ayoisaiah/webfocus/internal/site"
)

func storedKeys() []string {
	keys := []string{keyTimeFormat, keyPomodoroState}

	for key := range fields(&models.Snapshot{}) {
		keys = append(keys, key)
	}

	return keys
}

// Load replaces the in-memory state with what is persisted. Any tracking
// marker left by a previous run is discarded. Malformed values are replaced
// with defaults, an empty category configuration is populated from the
// defaults, and the result is written back if anything had to be repaired.
// Load never fails: if the store cannot be read the state starts empty.
func (s *State) Load() {
	markerCleared := true

	if err := s.session.Remove(keyTrackingSession); err != nil {
		markerCleared = false

		s.logger.Warn("clearing stale tracking marker failed", slog.Any("error", err))
	}

	raw, err := s.local.Get(storedKeys()...)
	if err != nil {
		s.logger.Error("reading stored state failed, starting empty", slog.Any("error", err))

		snap := s.seed()
		s.repair(&snap)

		s.mu.Lock()
		s.data = snap
		s.pomodoro = nil
		s.mu.Unlock()

		if !markerCleared {
			if err := s.session.Remove(keyTrackingSession); err != nil {
				s.logger.Warn("clearing stale tracking marker failed", slog.Any("error", err))
			}
		}

		return
	}

	snap, changed := s.decode(raw)

	if s.mergeDefaults(&snap) {
		changed = true
	}

	if s.repair(&snap) {
		changed = true
	}

	var timeFmt string

	if b, ok := raw[keyTimeFormat]; ok {
		if err := json.Unmarshal(b, &timeFmt); err != nil {
			s.logger.Warn("discarding malformed time format", slog.Any("error", err))
		}
	}

	var pomodoro *models.PomodoroState

	if b, ok := raw[keyPomodoroState]; ok {
		var ps models.PomodoroState
		if err := json.Unmarshal(b, &ps); err != nil || !ps.Phase.Valid() {
			s.logger.Warn("discarding malformed pomodoro state")
		} else {
			pomodoro = &ps
		}
	}

	s.mu.Lock()
	s.data = snap
	s.timeFmt = timeFmt
	s.pomodoro = pomodoro
	s.mu.Unlock()

	s.logger.Info(
		"state loaded",
		slog.Int("categories", len(snap.Categories)),
		slog.Int("rules", len(snap.Rules)),
		slog.Int("domains", len(snap.TrackedTime)),
	)

	if changed {
		if err := s.saveBlocking(); err != nil {
			s.logger.Error("persisting repaired state failed", slog.Any("error", err))
		}
	}
}

// decode reads every known key into a seeded snapshot. A value that fails to
// decode is reset to its default and reported as a change.
func (s *State) decode(raw map[string][]byte) (models.Snapshot, bool) {
	snap := s.seed()
	changed := false

	for key, ptr := range fields(&snap) {
		b, ok := raw[key]
		if !ok {
			continue
		}

		if err := json.Unmarshal(b, ptr); err != nil {
			s.logger.Warn(
				"discarding malformed stored value",
				slog.String("key", key),
				slog.Any("error", err),
			)

			fresh := s.seed()
			reflect.ValueOf(ptr).Elem().Set(reflect.ValueOf(fields(&fresh)[key]).Elem())

			changed = true
		}
	}

	return snap, changed
}

// mergeDefaults fills in the default categories and assignments when either
// is empty. Existing entries are never overwritten.
func (s *State) mergeDefaults(snap *models.Snapshot) bool {
	if len(snap.Categories) > 0 && len(snap.Assignments) > 0 {
		return false
	}

	defaults, err := s.opts.Defaults()
	if err != nil {
		s.logger.Warn("loading default categories failed", slog.Any("error", err))
		return false
	}

	changed := false

	for _, c := range defaults.Categories {
		if findCategory(snap.Categories, c) < 0 {
			snap.Categories = append(snap.Categories, c)
			changed = true
		}
	}

	if snap.Assignments == nil {
		snap.Assignments = make(map[string]string)
	}

	for pattern, c := range defaults.Assignments {
		if _, ok := snap.Assignments[pattern]; !ok {
			snap.Assignments[pattern] = c
			changed = true
		}
	}

	return changed
}

// repair restores the structural guarantees of a snapshot: the fallback
// category exists, every category referenced by an assignment or rule is
// defined, and unusable rules are dropped.
func (s *State) repair(snap *models.Snapshot) bool {
	snap.EnsureMaps()

	changed := false

	rules := snap.Rules[:0]

	for _, r := range snap.Rules {
		if !r.Type.Valid() || strings.TrimSpace(r.Value) == "" {
			s.logger.Warn(
				"dropping invalid rule",
				slog.String("type", string(r.Type)),
				slog.String("value", r.Value),
			)

			changed = true

			continue
		}

		rules = append(rules, r)
	}

	snap.Rules = rules

	if i := findCategory(snap.Categories, site.Fallback); i < 0 {
		snap.Categories = append(snap.Categories, site.Fallback)
		changed = true
	} else if snap.Categories[i] != site.Fallback {
		snap.Categories[i] = site.Fallback
		changed = true
	}

	referenced := make([]string, 0, len(snap.Assignments))

	for _, c := range snap.Assignments {
		referenced = append(referenced, c)
	}

	for _, r := range snap.Rules {
		if r.Type.IsCategory() {
			referenced = append(referenced, r.Value)
		}
	}

	slices.Sort(referenced)

	for _, c := range slices.Compact(referenced) {
		if strings.TrimSpace(c) == "" {
			continue
		}

		if findCategory(snap.Categories, c) < 0 {
			snap.Categories = append(snap.Categories, c)
			changed = true
		}
	}

	return changed
}

// findCategory returns the index of name in categories, ignoring case.
func findCategory(categories []string, name string) int {
	return slices.IndexFunc(categories, func(c string) bool {
		return strings.EqualFold(c, name)
	})
}
