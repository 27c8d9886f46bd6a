package timer

import "github.com/ayoisaiah/webfocus/internal/apperr"

var (
	errInvalidPhase = &apperr.Error{
		Message: "unknown pomodoro phase: %q",
	}

	errSessionCmd = &apperr.Error{
		Message: "unable to parse session_cmd option",
	}

	errNotificationsDenied = &apperr.Error{
		Message: "notification permission has not been granted",
	}
)
