package app

import (
	"github.com/charmbracelet/huh"
)

// confirm asks the user to approve a destructive operation. It returns true
// without prompting if skip is set.
func confirm(title, description string, skip bool) (bool, error) {
	if skip {
		return true, nil
	}

	var ok bool

	err := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()

	return ok, err
}
