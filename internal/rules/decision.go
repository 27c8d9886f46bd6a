package rules

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/ayoisaiah/webfocus/internal/models"
)

// Reason explains why a page was redirected.
type Reason string

const (
	ReasonBlock Reason = "block"
	ReasonLimit Reason = "limit"
)

// Decision is the outcome of a rule match.
type Decision struct {
	URL    string
	Reason Reason
	Rule   models.Rule
	Spent  int64
}

// RedirectURL returns the block page address carrying the details of d as
// query parameters.
func (d Decision) RedirectURL(blockPage string) string {
	q := url.Values{}
	q.Set("url", d.URL)
	q.Set("reason", string(d.Reason))
	q.Set("type", string(d.Rule.Type))
	q.Set("value", d.Rule.Value)

	switch {
	case d.Reason == ReasonLimit:
		q.Set("limit", strconv.FormatInt(d.Rule.LimitSeconds, 10))
		q.Set("spent", strconv.FormatInt(d.Spent, 10))
	case d.Rule.HasSchedule():
		q.Set("schedule_start", d.Rule.StartTime)
		q.Set("schedule_end", d.Rule.EndTime)
		q.Set("schedule_days", strings.Join(d.Rule.Days, ","))
	}

	sep := "?"
	if strings.Contains(blockPage, "?") {
		sep = "&"
	}

	return blockPage + sep + q.Encode()
}
