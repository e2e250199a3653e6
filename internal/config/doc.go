// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from $XDG_CONFIG_HOME/pysolate/config.cue (defaulting to
// ~/.config/pysolate/config.cue), validated against the embedded CUE schema
// (config_schema.cue), and overridden by PYSOLATE_* environment variables. It covers
// container engine selection, the application image, the settings store backend,
// and the host and container paths of a launch.
package config
