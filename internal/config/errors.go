package config

import "github.com/ayoisaiah/webfocus/internal/apperr"

var (
	errConfigOption = &apperr.Error{
		Message: "config option error",
	}

	errConfigValidation = &apperr.Error{
		Message: "config validation error",
	}

	errReadConfig = &apperr.Error{
		Message: "reading config file failed",
	}

	errWriteConfig = &apperr.Error{
		Message: "writing default config failed",
	}

	errShortBreakTooLong = &apperr.Error{
		Message: "short break duration (%v) must be less than work duration (%v)",
	}

	errLongBreakTooShort = &apperr.Error{
		Message: "long break duration (%v) must be greater than short break duration (%v)",
	}

	errInvalidDuration = &apperr.Error{
		Message: "%s duration must be between %v and %v",
	}

	errIntervalTooShort = &apperr.Error{
		Message: "%s interval must be at least %v",
	}

	errInvalidLongBreakInterval = &apperr.Error{
		Message: "long break interval must be between %d and %d sessions",
	}

	errInvalidLogLevel = &apperr.Error{
		Message: "unknown log level: %q",
	}

	errInvalidRetention = &apperr.Error{
		Message: "retention_days must be a number of days or \"forever\", got %q",
	}

	errInvalidIdleThreshold = &apperr.Error{
		Message: "idle threshold must be -1 or at least %d seconds, got %d",
	}

	errInvalidCLIDuration = &apperr.Error{
		Message: "invalid %s duration: %v",
	}
)
