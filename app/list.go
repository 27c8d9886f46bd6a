package app

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/maruel/natural"

	"github.com/ayoisaiah/webfocus/internal/models"
	"github.com/ayoisaiah/webfocus/internal/timeutil"
	"github.com/ayoisaiah/webfocus/internal/ui"
)

const (
	noRulesMsg       = "No rules have been added"
	noAssignmentsMsg = "No domains have been assigned to a category"
)

var ratingNames = map[int]string{
	-1: "unproductive",
	0:  "neutral",
	1:  "productive",
}

// printRulesTable prints the rules in the order they are evaluated.
func printRulesTable(w io.Writer, rules []models.Rule) {
	body := make([][]string, 0, len(rules)+1)
	body = append(body, []string{"#", "TYPE", "VALUE", "LIMIT", "SCHEDULE"})

	for i, r := range rules {
		limit := ""
		if r.Type.IsLimit() {
			limit = timeutil.FormatSeconds(r.LimitSeconds)
		}

		body = append(body, []string{
			fmt.Sprintf("%d", i+1),
			string(r.Type),
			r.Value,
			limit,
			schedule(r),
		})
	}

	ui.PrintTable(body, w)
}

func schedule(r models.Rule) string {
	if !r.HasSchedule() {
		return ""
	}

	var parts []string

	if r.StartTime != "" || r.EndTime != "" {
		parts = append(parts, r.StartTime+"-"+r.EndTime)
	}

	if len(r.Days) > 0 {
		parts = append(parts, strings.Join(r.Days, ","))
	}

	return strings.Join(parts, " ")
}

// printCategoriesTable prints each category with its rating and the number
// of domains assigned to it.
func printCategoriesTable(
	w io.Writer,
	categories []string,
	ratings map[string]int,
	assignments map[string]string,
) {
	counts := make(map[string]int)
	for _, c := range assignments {
		counts[c]++
	}

	body := [][]string{{"CATEGORY", "RATING", "DOMAINS"}}

	for _, c := range categories {
		rating := ui.Rating(ratings[c], ratingNames[ratings[c]])
		body = append(body, []string{c, rating, fmt.Sprintf("%d", counts[c])})
	}

	ui.PrintTable(body, w)
}

// printAssignmentsTable prints the domain assignments sorted by pattern.
func printAssignmentsTable(w io.Writer, assignments map[string]string) {
	patterns := make([]string, 0, len(assignments))
	for p := range assignments {
		patterns = append(patterns, p)
	}

	sort.Sort(natural.StringSlice(patterns))

	body := [][]string{{"DOMAIN", "CATEGORY"}}
	for _, p := range patterns {
		body = append(body, []string{p, ui.Cyan(assignments[p])})
	}

	ui.PrintTable(body, w)
}
