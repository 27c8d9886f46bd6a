package config

import (
	"time"

	"github.com/urfave/cli/v2"
)

// CLIOptions represents command-line configuration options.
type CLIOptions struct {
	Work              string
	ShortBreak        string
	LongBreak         string
	SessionCmd        string
	Retention         string
	LogLevel          string
	MetricsAddr       string
	IdleThreshold     int
	LongBreakInterval uint
	DisableNotify     bool
}

// WithCLIConfig returns an Option that loads configuration from CLI flags.
// Flags that were not set leave the file configuration untouched.
func WithCLIConfig(ctx *cli.Context) Option {
	return func(c *Config) error {
		opts := CLIOptions{
			Work:              ctx.String("work"),
			ShortBreak:        ctx.String("short-break"),
			LongBreak:         ctx.String("long-break"),
			LongBreakInterval: ctx.Uint("long-break-interval"),
			SessionCmd:        ctx.String("session-cmd"),
			Retention:         ctx.String("retention"),
			LogLevel:          ctx.String("log-level"),
			MetricsAddr:       ctx.String("metrics-addr"),
			DisableNotify:     ctx.Bool("disable-notification"),
		}

		if ctx.IsSet("idle-threshold") {
			opts.IdleThreshold = ctx.Int("idle-threshold")
		}

		return applyCLIOptions(c, opts)
	}
}

// applyCLIOptions applies CLI options to the config.
func applyCLIOptions(c *Config, opts CLIOptions) error {
	if err := applyCLIDurations(c, opts); err != nil {
		return err
	}

	if opts.DisableNotify {
		c.Pomodoro.Notifications = false
	}

	if opts.SessionCmd != "" {
		c.Pomodoro.SessionCmd = opts.SessionCmd
	}

	if opts.Retention != "" {
		c.Storage.RetentionDays = opts.Retention
	}

	if opts.LogLevel != "" {
		c.Log.Level = opts.LogLevel
	}

	if opts.MetricsAddr != "" {
		c.Metrics.Addr = opts.MetricsAddr
	}

	if opts.IdleThreshold != 0 {
		c.Tracking.IdleThreshold = opts.IdleThreshold
	}

	return nil
}

// applyCLIDurations handles parsing and applying duration settings from CLI.
func applyCLIDurations(c *Config, opts CLIOptions) error {
	durations := []struct {
		dst   *time.Duration
		name  string
		value string
	}{
		{&c.Pomodoro.Work, "work", opts.Work},
		{&c.Pomodoro.ShortBreak, "short break", opts.ShortBreak},
		{&c.Pomodoro.LongBreak, "long break", opts.LongBreak},
	}

	for _, d := range durations {
		if d.value == "" {
			continue
		}

		dur, err := parseDuration(d.value)
		if err != nil {
			return errInvalidCLIDuration.Fmt(d.name, err)
		}

		*d.dst = dur
	}

	if opts.LongBreakInterval > 0 {
		c.Pomodoro.LongBreakInterval = int(opts.LongBreakInterval)
	}

	return nil
}
