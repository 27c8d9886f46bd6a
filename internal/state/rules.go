package state

import (
	"slices"
	"strings"

	"github.com/ayoisaiah/webfocus/internal/models"
	"github.com/ayoisaiah/webfocus/internal/site"
	"github.com/ayoisaiah/webfocus/internal/timeutil"
)

// Rules returns a copy of the rule list in evaluation order.
func (s *State) Rules() []models.Rule {
	s.mu.Lock()
	defer s.mu.Unlock()

	return cloneRules(s.data.Rules)
}

// AddRule validates r and appends it to the rule list.
func (s *State) AddRule(r models.Rule) error {
	s.mu.Lock()

	r, err := s.normalizeRuleLocked(r)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	if slices.ContainsFunc(s.data.Rules, r.SameTarget) {
		s.mu.Unlock()
		return errDuplicateRule.Fmt(r.Type, r.Value)
	}

	s.data.Rules = append(s.data.Rules, r)
	s.mu.Unlock()

	return s.commit(RulesChanged)
}

// UpdateRule replaces the rule targeting the same type and value as old.
func (s *State) UpdateRule(old, updated models.Rule) error {
	s.mu.Lock()

	i := slices.IndexFunc(s.data.Rules, old.SameTarget)
	if i < 0 {
		s.mu.Unlock()
		return errRuleNotFound.Fmt(old.Type, old.Value)
	}

	updated, err := s.normalizeRuleLocked(updated)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	for j, r := range s.data.Rules {
		if j != i && r.SameTarget(updated) {
			s.mu.Unlock()
			return errDuplicateRule.Fmt(updated.Type, updated.Value)
		}
	}

	s.data.Rules[i] = updated
	s.mu.Unlock()

	return s.commit(RulesChanged)
}

// RemoveRule deletes the rule of the given type and value.
func (s *State) RemoveRule(ruleType models.RuleType, value string) error {
	target := models.Rule{Type: ruleType, Value: value}
	if !ruleType.IsCategory() {
		target.Value = site.Normalize(value)
	}

	s.mu.Lock()

	i := slices.IndexFunc(s.data.Rules, target.SameTarget)
	if i < 0 {
		s.mu.Unlock()
		return errRuleNotFound.Fmt(ruleType, value)
	}

	s.data.Rules = slices.Delete(s.data.Rules, i, i+1)
	s.mu.Unlock()

	return s.commit(RulesChanged)
}

// normalizeRuleLocked validates r and returns it in canonical form: URL
// patterns normalised, category names matched to their defined spelling and
// schedule days deduplicated.
func (s *State) normalizeRuleLocked(r models.Rule) (models.Rule, error) {
	if !r.Type.Valid() {
		return r, errInvalidRuleType.Fmt(r.Type)
	}

	r.Value = strings.TrimSpace(r.Value)
	if r.Value == "" {
		return r, errEmptyRuleValue
	}

	if r.Type.IsCategory() {
		i := findCategory(s.data.Categories, r.Value)
		if i < 0 {
			return r, errCategoryNotFound.Fmt(r.Value)
		}

		r.Value = s.data.Categories[i]
	} else {
		if !site.ValidPattern(r.Value) {
			return r, errInvalidPattern.Fmt(r.Value)
		}

		r.Value = site.Normalize(r.Value)
	}

	if r.Type.IsLimit() {
		if r.LimitSeconds <= 0 {
			return r, errInvalidLimit.Fmt(r.LimitSeconds)
		}
	} else {
		r.LimitSeconds = 0
	}

	if (r.StartTime == "") != (r.EndTime == "") {
		return r, errIncompleteSchedule
	}

	if r.StartTime != "" && !timeutil.ValidClock(r.StartTime) {
		return r, errInvalidClock.Fmt("start", r.StartTime)
	}

	if r.EndTime != "" && !timeutil.ValidClock(r.EndTime) {
		return r, errInvalidClock.Fmt("end", r.EndTime)
	}

	days := make([]string, 0, len(r.Days))

	for _, d := range r.Days {
		day, ok := timeutil.NormalizeDay(d)
		if !ok {
			return r, errInvalidDay.Fmt(d)
		}

		if !slices.Contains(days, day) {
			days = append(days, day)
		}
	}

	slices.SortFunc(days, func(a, b string) int {
		return slices.Index(timeutil.Weekdays, a) - slices.Index(timeutil.Weekdays, b)
	})

	if len(days) == 0 || len(days) == len(timeutil.Weekdays) {
		days = nil
	}

	r.Days = days

	return r, nil
}

func cloneRules(rules []models.Rule) []models.Rule {
	out := make([]models.Rule, len(rules))

	for i, r := range rules {
		r.Days = slices.Clone(r.Days)
		out[i] = r
	}

	return out
}
