package state

import "github.com/ayoisaiah/webfocus/internal/apperr"

var (
	errSaveFailed = &apperr.Error{
		Message: "saving state failed",
	}

	errMarkerRead = &apperr.Error{
		Message: "reading tracking marker failed",
	}

	errMarkerWrite = &apperr.Error{
		Message: "writing tracking marker failed",
	}

	errEmptyCategory = &apperr.Error{
		Message: "category name cannot be empty",
	}

	errCategoryExists = &apperr.Error{
		Message: "category %q already exists",
	}

	errCategoryNotFound = &apperr.Error{
		Message: "category %q does not exist",
	}

	errFallbackProtected = &apperr.Error{
		Message: "the %q category cannot be renamed or deleted",
	}

	errInvalidPattern = &apperr.Error{
		Message: "invalid domain pattern: %q",
	}

	errAssignmentNotFound = &apperr.Error{
		Message: "no category is assigned to %q",
	}

	errInvalidRating = &apperr.Error{
		Message: "productivity rating must be -1, 0 or 1, got %d",
	}

	errInvalidRuleType = &apperr.Error{
		Message: "unknown rule type: %q",
	}

	errEmptyRuleValue = &apperr.Error{
		Message: "rule value cannot be empty",
	}

	errInvalidLimit = &apperr.Error{
		Message: "daily limit must be a positive number of seconds, got %d",
	}

	errInvalidClock = &apperr.Error{
		Message: "invalid %s time %q (expected HH:MM)",
	}

	errIncompleteSchedule = &apperr.Error{
		Message: "a schedule needs both a start and an end time",
	}

	errInvalidDay = &apperr.Error{
		Message: "invalid schedule day: %q",
	}

	errDuplicateRule = &apperr.Error{
		Message: "a %s rule for %q already exists",
	}

	errRuleNotFound = &apperr.Error{
		Message: "no %s rule for %q",
	}

	errInvalidPomodoro = &apperr.Error{
		Message: "%s must be a positive number",
	}

	errImportDecode = &apperr.Error{
		Message: "import file is not a valid JSON object",
	}

	errImportMissingKey = &apperr.Error{
		Message: "import file is missing the %q key",
	}

	errImportKeyType = &apperr.Error{
		Message: "import key %q must be an %s",
	}
)
