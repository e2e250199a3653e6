// SPDX-License-Identifier: MPL-2.0

package tui

import (
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

const (
	// ThemeDefault uses the default huh theme.
	ThemeDefault Theme = "default"
	// ThemeCharm uses the Charm theme.
	ThemeCharm Theme = "charm"
	// ThemeDracula uses the Dracula theme.
	ThemeDracula Theme = "dracula"
	// ThemeCatppuccin uses the Catppuccin theme.
	ThemeCatppuccin Theme = "catppuccin"
	// ThemeBase16 uses the Base16 theme.
	ThemeBase16 Theme = "base16"
)

type (
	// Theme represents the visual theme for TUI components.
	Theme string

	// Config holds common configuration for TUI components.
	Config struct {
		// Theme specifies the visual theme to use.
		Theme Theme
		// Accessible enables accessible mode for screen readers.
		Accessible bool
		// Output specifies where to write the prompt.
		Output io.Writer
		// Input specifies where answers are read from. Nil means stdin.
		Input io.Reader
	}
)

// inputIsTerminal reports whether stdin is a terminal. Tests replace it.
var inputIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// DefaultConfig returns the default configuration for TUI components.
// Prompts go to stderr so they never mix with a launched program's stdout;
// accessible mode is enabled when the ACCESSIBLE environment variable is set.
func DefaultConfig() Config {
	return Config{
		Theme:      ThemeDefault,
		Accessible: os.Getenv("ACCESSIBLE") != "",
		Output:     os.Stderr,
	}
}

// getHuhTheme converts a Theme to a huh.Theme.
func getHuhTheme(t Theme) *huh.Theme {
	switch t {
	case ThemeCharm:
		return huh.ThemeCharm()
	case ThemeDracula:
		return huh.ThemeDracula()
	case ThemeCatppuccin:
		return huh.ThemeCatppuccin()
	case ThemeBase16:
		return huh.ThemeBase16()
	default:
		return huh.ThemeBase()
	}
}
