package app

import "github.com/ayoisaiah/webfocus/internal/apperr"

var (
	errMissingArgs = &apperr.Error{
		Message: "expected %s",
	}

	errInvalidLimit = &apperr.Error{
		Message: "invalid limit %q: use a duration such as '45m' or '1h30m'",
	}

	errInvalidRating = &apperr.Error{
		Message: "invalid rating %q: use productive, neutral or unproductive",
	}

	errImportCancelled = &apperr.Error{
		Message: "import cancelled",
	}
)
