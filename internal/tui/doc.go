// SPDX-License-Identifier: MPL-2.0

// Package tui wraps charmbracelet/huh for the few interactive prompts a launch
// may need. Prompts only run when stdin is a terminal; otherwise they report
// ErrNotInteractive so callers can fall back to a non-interactive default.
package tui
