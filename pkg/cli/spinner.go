package cli

import (
	"github.com/charmbracelet/huh/spinner"
)

// RunSpinner runs an action with a spinner and returns its error. In JSON
// mode the spinner is skipped so output stays machine-readable.
func RunSpinner(title string, fn func() error) error {
	if outputJSON {
		return fn()
	}

	var actionErr error
	err := spinner.New().
		Title("  " + title).
		Action(func() {
			actionErr = fn()
		}).
		Run()
	if err != nil {
		return err
	}
	return actionErr
}
