package ui

import (
	"errors"

	"github.com/charmbracelet/huh"
)

// Confirm asks a yes/no question on the terminal. Aborting the prompt
// (ctrl-c) counts as no.
func Confirm(question string) (bool, error) {
	ok := false
	err := huh.NewConfirm().
		Title(question).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return ok, err
}
