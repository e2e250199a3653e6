// SPDX-License-Identifier: MPL-2.0

// Package settings persists per-command launch preferences.
//
// A Configuration is stored under its CommandKey (the first word of the
// command line). Records are written whole: the first launch of a command
// creates one, an explicit reset replaces it, and nothing ever deletes a
// single field. Two durable backends are available, a BoltDB file (default)
// and a SQLite database; both encode records as schema-versioned JSON.
package settings
