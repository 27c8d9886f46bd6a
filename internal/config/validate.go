package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/ayoisaiah/webfocus/internal/models"
)

var (
	minSessionDuration = 1 * time.Minute
	maxSessionDuration = 720 * time.Minute // 12 hours

	minLongBreakInterval = 1
	maxLongBreakInterval = 10

	// browsers reject idle thresholds below 15 seconds
	minIdleThreshold = 15

	minInterval = 100 * time.Millisecond
)

// Validate performs validation checks on the Config struct and its fields.
func (c *Config) Validate() error {
	if err := c.validateTracking(); err != nil {
		return err
	}

	if err := c.validateStorage(); err != nil {
		return err
	}

	if err := c.validatePomodoro(); err != nil {
		return err
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return errInvalidLogLevel.Fmt(c.Log.Level)
	}

	return nil
}

func (c *Config) validateTracking() error {
	t := c.Tracking
	if t.IdleThreshold != -1 && t.IdleThreshold < minIdleThreshold {
		return errInvalidIdleThreshold.Fmt(minIdleThreshold, t.IdleThreshold)
	}

	if err := validateInterval("tracking check", t.CheckInterval); err != nil {
		return err
	}

	if err := validateInterval("limit check", c.Limits.CheckInterval); err != nil {
		return err
	}

	return validateInterval("host timeout", c.Host.Timeout)
}

func (c *Config) validateStorage() error {
	s := c.Storage

	if _, ok := retentionValue(s.RetentionDays); !ok {
		return errInvalidRetention.Fmt(s.RetentionDays)
	}

	if err := validateInterval("save", s.SaveDelay); err != nil {
		return err
	}

	return validateInterval("prune", s.PruneInterval)
}

func (c *Config) validatePomodoro() error {
	p := c.Pomodoro

	durations := []struct {
		name string
		d    time.Duration
	}{
		{"work", p.Work},
		{"short break", p.ShortBreak},
		{"long break", p.LongBreak},
	}

	for _, v := range durations {
		if v.d < minSessionDuration || v.d > maxSessionDuration {
			return errInvalidDuration.Fmt(
				v.name,
				minSessionDuration,
				maxSessionDuration,
			)
		}
	}

	if p.ShortBreak >= p.Work {
		return errShortBreakTooLong.Fmt(p.ShortBreak, p.Work)
	}

	if p.LongBreak < p.ShortBreak {
		return errLongBreakTooShort.Fmt(p.LongBreak, p.ShortBreak)
	}

	if p.LongBreakInterval < minLongBreakInterval ||
		p.LongBreakInterval > maxLongBreakInterval {
		return errInvalidLongBreakInterval.Fmt(
			minLongBreakInterval,
			maxLongBreakInterval,
		)
	}

	return nil
}

func validateInterval(name string, d time.Duration) error {
	if d < minInterval {
		return errIntervalTooShort.Fmt(name, minInterval)
	}

	return nil
}

// retentionValue reports whether s is an accepted retention_days value.
func retentionValue(s string) (models.Retention, bool) {
	if strings.EqualFold(strings.TrimSpace(s), "forever") {
		return models.Forever, true
	}

	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, false
	}

	return models.Retention(n), true
}
