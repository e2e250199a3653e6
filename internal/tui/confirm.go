// SPDX-License-Identifier: MPL-2.0

package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
)

var (
	// ErrCancelled is returned when the user aborts a prompt.
	ErrCancelled = errors.New("prompt cancelled")
	// ErrNotInteractive is returned when stdin is not a terminal.
	ErrNotInteractive = errors.New("stdin is not a terminal")
)

// ConfirmOptions configures the Confirm component.
type ConfirmOptions struct {
	// Title is the question/prompt to display.
	Title string
	// Description provides additional context below the title.
	Description string
	// Affirmative is the text for the affirmative option (default: "Yes").
	Affirmative string
	// Negative is the text for the negative option (default: "No").
	Negative string
	// Default is the preselected answer.
	Default bool
	// Config holds common TUI configuration.
	Config Config
}

// Confirm asks a yes/no question. It returns ErrNotInteractive without
// prompting when stdin is not a terminal, and ErrCancelled when the user
// aborts.
func Confirm(opts ConfirmOptions) (bool, error) {
	if !inputIsTerminal() && opts.Config.Input == nil {
		return false, ErrNotInteractive
	}

	form, answer := newConfirmForm(opts)
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, ErrCancelled
		}
		return false, fmt.Errorf("confirm prompt: %w", err)
	}
	return *answer, nil
}

// newConfirmForm builds the form and returns the variable the answer is
// written to.
func newConfirmForm(opts ConfirmOptions) (*huh.Form, *bool) {
	affirmative, negative := opts.Affirmative, opts.Negative
	if affirmative == "" {
		affirmative = "Yes"
	}
	if negative == "" {
		negative = "No"
	}

	value := opts.Default
	field := huh.NewConfirm().
		Title(opts.Title).
		Description(opts.Description).
		Affirmative(affirmative).
		Negative(negative).
		Value(&value)

	form := huh.NewForm(huh.NewGroup(field)).
		WithTheme(getHuhTheme(opts.Config.Theme)).
		WithAccessible(opts.Config.Accessible).
		WithShowHelp(true)
	if opts.Config.Output != nil {
		form = form.WithOutput(opts.Config.Output)
	}
	if opts.Config.Input != nil {
		form = form.WithInput(opts.Config.Input)
	}
	return form, &value
}
