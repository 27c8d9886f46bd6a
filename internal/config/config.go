// Package config loads the webfocus settings from the config file and the
// command line
package config

import (
	"fmt"
	"time"

	"github.com/ayoisaiah/webfocus/internal/models"
)

type (
	// Config holds all configuration settings
	Config struct {
		Tracking  TrackingConfig  `mapstructure:"tracking"`
		Storage   StorageConfig   `mapstructure:"storage"`
		Limits    LimitsConfig    `mapstructure:"limits"`
		Pomodoro  PomodoroConfig  `mapstructure:"pomodoro"`
		BlockPage BlockPageConfig `mapstructure:"block_page"`
		Host      HostConfig      `mapstructure:"host"`
		Log       LogConfig       `mapstructure:"log"`
		Metrics   MetricsConfig   `mapstructure:"metrics"`
		System    SystemConfig    `mapstructure:"-"`
	}

	// TrackingConfig holds activity sampling settings
	TrackingConfig struct {
		IdleThreshold int           `mapstructure:"idle_threshold"`
		CheckInterval time.Duration `mapstructure:"check_interval"`
		Debounce      time.Duration `mapstructure:"debounce"`
	}

	// StorageConfig holds persistence and retention settings
	StorageConfig struct {
		RetentionDays string        `mapstructure:"retention_days"`
		SaveDelay     time.Duration `mapstructure:"save_delay"`
		PruneDelay    time.Duration `mapstructure:"prune_delay"`
		PruneInterval time.Duration `mapstructure:"prune_interval"`
	}

	// LimitsConfig holds daily limit enforcement settings
	LimitsConfig struct {
		CheckInterval time.Duration `mapstructure:"check_interval"`
	}

	// PomodoroConfig holds the default pomodoro settings
	PomodoroConfig struct {
		SessionCmd        string        `mapstructure:"session_cmd"`
		Work              time.Duration `mapstructure:"work"`
		ShortBreak        time.Duration `mapstructure:"short_break"`
		LongBreak         time.Duration `mapstructure:"long_break"`
		LongBreakInterval int           `mapstructure:"long_break_interval"`
		Notifications     bool          `mapstructure:"notifications"`
		AutoStartBreak    bool          `mapstructure:"auto_start_break"`
		AutoStartWork     bool          `mapstructure:"auto_start_work"`
	}

	// BlockPageConfig holds the location of the block page
	BlockPageConfig struct {
		URL string `mapstructure:"url"`
	}

	// HostConfig holds browser connection settings
	HostConfig struct {
		Timeout time.Duration `mapstructure:"timeout"`
	}

	// LogConfig holds log file settings
	LogConfig struct {
		Level      string `mapstructure:"level"`
		MaxSizeMB  int    `mapstructure:"max_size_mb"`
		MaxBackups int    `mapstructure:"max_backups"`
	}

	// MetricsConfig holds the metrics listener settings
	MetricsConfig struct {
		Addr string `mapstructure:"addr"`
	}

	// SystemConfig holds file locations
	SystemConfig struct {
		ConfigPath string
		DBPath     string
		LogPath    string
	}

	// Option is a function that modifies Config
	Option func(*Config) error
)

const Version = "v0.3.0"

// New creates a new Config and applies options
func New(opts ...Option) (*Config, error) {
	cfg := &Config{}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, errConfigOption.Wrap(err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", errConfigValidation, err)
	}

	return cfg, nil
}

// WithPaths returns an Option that records the file locations.
func WithPaths(configPath, dbPath, logPath string) Option {
	return func(c *Config) error {
		c.System = SystemConfig{
			ConfigPath: configPath,
			DBPath:     dbPath,
			LogPath:    logPath,
		}

		return nil
	}
}

// Retention returns the configured retention.
func (c *Config) Retention() models.Retention {
	r, _ := retentionValue(c.Storage.RetentionDays)

	return r
}

// StateOptions returns the settings that seed a fresh state. The idle
// threshold and retention are always set so that zero is kept.
func (c *Config) StateOptions() (idle *int, retention *models.Retention) {
	i := c.Tracking.IdleThreshold
	r := c.Retention()

	return &i, &r
}

// PomodoroSettings converts the pomodoro config to stored settings.
func (c *Config) PomodoroSettings() models.PomodoroSettings {
	return models.PomodoroSettings{
		WorkSeconds:             int(c.Pomodoro.Work.Seconds()),
		ShortBreakSeconds:       int(c.Pomodoro.ShortBreak.Seconds()),
		LongBreakSeconds:        int(c.Pomodoro.LongBreak.Seconds()),
		SessionsBeforeLongBreak: c.Pomodoro.LongBreakInterval,
		NotificationsEnabled:    c.Pomodoro.Notifications,
	}
}
