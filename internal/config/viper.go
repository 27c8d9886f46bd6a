package config

import (
	"errors"
	"os"
	"time"

	"github.com/spf13/viper"
)

const (
	keyIdleThreshold      = "tracking.idle_threshold"
	keyCheckInterval      = "tracking.check_interval"
	keyDebounce           = "tracking.debounce"
	keySaveDelay          = "storage.save_delay"
	keyRetentionDays      = "storage.retention_days"
	keyPruneDelay         = "storage.prune_delay"
	keyPruneInterval      = "storage.prune_interval"
	keyLimitCheckInterval = "limits.check_interval"
	keyWorkDuration       = "pomodoro.work"
	keyShortBreakDuration = "pomodoro.short_break"
	keyLongBreakDuration  = "pomodoro.long_break"
	keyLongBreakInterval  = "pomodoro.long_break_interval"
	keyNotifications      = "pomodoro.notifications"
	keyAutoStartBreak     = "pomodoro.auto_start_break"
	keyAutoStartWork      = "pomodoro.auto_start_work"
	keySessionCmd         = "pomodoro.session_cmd"
	keyBlockPageURL       = "block_page.url"
	keyHostTimeout        = "host.timeout"
	keyLogLevel           = "log.level"
	keyLogMaxSize         = "log.max_size_mb"
	keyLogMaxBackups      = "log.max_backups"
	keyMetricsAddr        = "metrics.addr"
)

// DefaultBlockPageURL is the extension page that explains a redirect.
const DefaultBlockPageURL = "chrome-extension://webfocus/blocked.html"

// WithViperConfig returns an Option that loads configuration from the YAML
// file at configPath, writing the defaults there when it does not exist yet.
func WithViperConfig(configPath string) Option {
	return func(c *Config) error {
		v := viper.New()

		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")

		setupViper(v)

		err := v.ReadInConfig()
		if err == nil {
			return loadViperConfig(v, c)
		}

		if !errors.Is(err, os.ErrNotExist) {
			return errReadConfig.Wrap(err)
		}

		if err := v.WriteConfig(); err != nil {
			return errWriteConfig.Wrap(err)
		}

		return loadViperConfig(v, c)
	}
}

// setupViper registers the default value of every key.
func setupViper(v *viper.Viper) {
	v.SetDefault(keyIdleThreshold, 1800)
	v.SetDefault(keyCheckInterval, "15s")
	v.SetDefault(keyDebounce, "500ms")
	v.SetDefault(keySaveDelay, "3s")
	v.SetDefault(keyRetentionDays, "90")
	v.SetDefault(keyPruneDelay, "5m")
	v.SetDefault(keyPruneInterval, "24h")
	v.SetDefault(keyLimitCheckInterval, "5s")
	v.SetDefault(keyWorkDuration, "25m")
	v.SetDefault(keyShortBreakDuration, "5m")
	v.SetDefault(keyLongBreakDuration, "15m")
	v.SetDefault(keyLongBreakInterval, 4)
	v.SetDefault(keyNotifications, true)
	v.SetDefault(keyAutoStartBreak, false)
	v.SetDefault(keyAutoStartWork, false)
	v.SetDefault(keySessionCmd, "")
	v.SetDefault(keyBlockPageURL, DefaultBlockPageURL)
	v.SetDefault(keyHostTimeout, "5s")
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyLogMaxSize, 10)
	v.SetDefault(keyLogMaxBackups, 3)
	v.SetDefault(keyMetricsAddr, "")
}

// loadViperConfig loads configuration from Viper into the Config struct.
func loadViperConfig(v *viper.Viper, c *Config) error {
	if err := v.Unmarshal(c); err != nil {
		return errReadConfig.Wrap(err)
	}

	return nil
}

// parseDuration accepts a duration string or a bare number of minutes.
func parseDuration(s string) (time.Duration, error) {
	dur, err := time.ParseDuration(s)
	if err == nil {
		return dur, nil
	}

	return time.ParseDuration(s + "m")
}
