// SPDX-License-Identifier: MPL-2.0

package config

import "context"

type (
	// LoadOptions defines explicit configuration loading inputs.
	LoadOptions struct {
		// ConfigFilePath forces loading from a specific config file (--config).
		ConfigFilePath string
		// ConfigDirPath replaces ConfigDir() as the place config.cue is looked up.
		ConfigDirPath string
	}

	// Loaded is a loaded configuration together with where it came from.
	Loaded struct {
		*Config
		// Source is the file the configuration was read from, or "" when
		// only defaults and environment overrides apply.
		Source string
	}

	// Provider loads configuration from explicit options.
	Provider interface {
		Load(ctx context.Context, opts LoadOptions) (Loaded, error)
	}

	fileProvider struct{}
)

// NewProvider creates a configuration provider reading CUE files.
func NewProvider() Provider {
	return fileProvider{}
}

// Load reads configuration from the requested source.
func (fileProvider) Load(ctx context.Context, opts LoadOptions) (Loaded, error) {
	cfg, source, err := loadWithOptions(ctx, opts)
	if err != nil {
		return Loaded{}, err
	}
	return Loaded{Config: cfg, Source: source}, nil
}
