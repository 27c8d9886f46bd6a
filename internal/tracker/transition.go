// Package tracker decides when the user is actively browsing and credits the
// elapsed time to the domain being viewed.
package tracker

import (
	"time"

	"github.com/ayoisaiah/webfocus/internal/models"
	"github.com/ayoisaiah/webfocus/internal/timeutil"
)

// Sample is the activity observed at one instant. Domain, URL and TabID are
// only set when Active is true.
type Sample struct {
	Domain string
	URL    string
	TabID  int
	Active bool
}

// Interval is time to be credited to a domain.
type Interval struct {
	Domain  string
	Seconds int64
}

// Action names a tracking transition.
type Action string

const (
	ActionNone     Action = "none"
	ActionStart    Action = "start"
	ActionContinue Action = "continue"
	ActionStop     Action = "stop"
)

// Transition computes the marker that follows prev given sample at now, and
// the interval that closes. Time always goes to the previous marker's
// domain, and an active sample always restarts the marker at now.
func Transition(
	sample Sample,
	prev *models.Marker,
	now time.Time,
) (*models.Marker, Interval) {
	var closed Interval

	if prev != nil {
		elapsed := timeutil.Round(float64(now.Sub(prev.Since).Milliseconds()) / 1000)
		if elapsed > 0 {
			closed = Interval{Domain: prev.Domain, Seconds: elapsed}
		}
	}

	if !sample.Active || sample.Domain == "" {
		return nil, closed
	}

	return &models.Marker{Since: now, Domain: sample.Domain}, closed
}

// Classify names the transition from prev to next.
func Classify(prev, next *models.Marker) Action {
	switch {
	case prev == nil && next == nil:
		return ActionNone
	case prev == nil:
		return ActionStart
	case next == nil:
		return ActionStop
	default:
		return ActionContinue
	}
}
