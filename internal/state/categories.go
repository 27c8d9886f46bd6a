package state

import (
	"maps"
	"slices"
	"strings"

	"github.com/ayoisaiah/webfocus/internal/models"
	"github.com/ayoisaiah/webfocus/internal/site"
)

// Categories returns the defined category names.
func (s *State) Categories() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.data.Categories)
}

// Assignments returns a copy of the pattern to category map.
func (s *State) Assignments() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return maps.Clone(s.data.Assignments)
}

// CategoryOf resolves the category of domain with the current assignments.
func (s *State) CategoryOf(domain string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return site.ResolveCategory(domain, s.data.Assignments, site.Fallback)
}

// AddCategory defines a new category.
func (s *State) AddCategory(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errEmptyCategory
	}

	s.mu.Lock()

	if i := findCategory(s.data.Categories, name); i >= 0 {
		s.mu.Unlock()
		return errCategoryExists.Fmt(s.data.Categories[i])
	}

	s.data.Categories = append(s.data.Categories, name)
	s.mu.Unlock()

	return s.commit(CategoriesChanged)
}

// RenameCategory renames a category and every assignment, rule and rating
// that refers to it.
func (s *State) RenameCategory(from, to string) error {
	to = strings.TrimSpace(to)
	if to == "" {
		return errEmptyCategory
	}

	s.mu.Lock()

	i := findCategory(s.data.Categories, from)
	if i < 0 {
		s.mu.Unlock()
		return errCategoryNotFound.Fmt(from)
	}

	old := s.data.Categories[i]
	if old == site.Fallback {
		s.mu.Unlock()
		return errFallbackProtected.Fmt(site.Fallback)
	}

	if j := findCategory(s.data.Categories, to); j >= 0 && j != i {
		s.mu.Unlock()
		return errCategoryExists.Fmt(s.data.Categories[j])
	}

	s.data.Categories[i] = to

	for pattern, c := range s.data.Assignments {
		if strings.EqualFold(c, old) {
			s.data.Assignments[pattern] = to
		}
	}

	for k := range s.data.Rules {
		r := &s.data.Rules[k]
		if r.Type.IsCategory() && strings.EqualFold(r.Value, old) {
			r.Value = to
		}
	}

	if rating, ok := s.data.Ratings[old]; ok {
		delete(s.data.Ratings, old)
		s.data.Ratings[to] = rating
	}

	s.recomputeLocked()
	s.mu.Unlock()

	return s.commit(CategoriesChanged)
}

// DeleteCategory removes a category. Its assignments move to the fallback
// category and rules targeting it are removed.
func (s *State) DeleteCategory(name string) error {
	s.mu.Lock()

	i := findCategory(s.data.Categories, name)
	if i < 0 {
		s.mu.Unlock()
		return errCategoryNotFound.Fmt(name)
	}

	old := s.data.Categories[i]
	if old == site.Fallback {
		s.mu.Unlock()
		return errFallbackProtected.Fmt(site.Fallback)
	}

	s.data.Categories = slices.Delete(s.data.Categories, i, i+1)

	for pattern, c := range s.data.Assignments {
		if strings.EqualFold(c, old) {
			s.data.Assignments[pattern] = site.Fallback
		}
	}

	s.data.Rules = slices.DeleteFunc(s.data.Rules, func(r models.Rule) bool {
		return r.Type.IsCategory() && strings.EqualFold(r.Value, old)
	})

	delete(s.data.Ratings, old)

	s.recomputeLocked()
	s.mu.Unlock()

	return s.commit(CategoriesChanged)
}

// Assign maps a domain or "*.domain" pattern to an existing category.
func (s *State) Assign(pattern, category string) error {
	if !site.ValidPattern(pattern) {
		return errInvalidPattern.Fmt(pattern)
	}

	pattern = site.Normalize(pattern)

	s.mu.Lock()

	i := findCategory(s.data.Categories, category)
	if i < 0 {
		s.mu.Unlock()
		return errCategoryNotFound.Fmt(category)
	}

	s.data.Assignments[pattern] = s.data.Categories[i]

	s.recomputeLocked()
	s.mu.Unlock()

	return s.commit(CategoriesChanged)
}

// Unassign removes the category assignment of pattern.
func (s *State) Unassign(pattern string) error {
	pattern = site.Normalize(pattern)

	s.mu.Lock()

	if _, ok := s.data.Assignments[pattern]; !ok {
		s.mu.Unlock()
		return errAssignmentNotFound.Fmt(pattern)
	}

	delete(s.data.Assignments, pattern)

	s.recomputeLocked()
	s.mu.Unlock()

	return s.commit(CategoriesChanged)
}

// Ratings returns the productivity rating of each rated category.
func (s *State) Ratings() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return maps.Clone(s.data.Ratings)
}

// SetRating rates a category as unproductive (-1), neutral (0) or
// productive (1).
func (s *State) SetRating(category string, rating int) error {
	if rating < -1 || rating > 1 {
		return errInvalidRating.Fmt(rating)
	}

	s.mu.Lock()

	i := findCategory(s.data.Categories, category)
	if i < 0 {
		s.mu.Unlock()
		return errCategoryNotFound.Fmt(category)
	}

	s.data.Ratings[s.data.Categories[i]] = rating
	s.mu.Unlock()

	return s.commit(SettingsChanged)
}

// RecomputeCategoryTime rebuilds the all-time and daily category totals from
// the per-domain totals using the current assignments.
func (s *State) RecomputeCategoryTime() {
	s.mu.Lock()
	s.recomputeLocked()
	s.mu.Unlock()

	s.SaveBatched()
}

func (s *State) recomputeLocked() {
	resolve := func(domain string) string {
		return site.ResolveCategory(domain, s.data.Assignments, site.Fallback)
	}

	s.data.CategoryTime = regroup(s.data.TrackedTime, resolve)

	daily := make(models.Daily, len(s.data.DailyDomain))
	for date, domains := range s.data.DailyDomain {
		daily[date] = regroup(domains, resolve)
	}

	s.data.DailyCategory = daily
}

func regroup(domains models.Seconds, resolve func(string) string) models.Seconds {
	out := make(models.Seconds)

	for domain, secs := range domains {
		out.Add(resolve(domain), secs)
	}

	return out
}
