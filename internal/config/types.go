// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// ContainerEngineAuto probes docker, then podman.
	ContainerEngineAuto ContainerEngine = ""
	// ContainerEngineDocker prefers Docker.
	ContainerEngineDocker ContainerEngine = "docker"
	// ContainerEnginePodman prefers Podman.
	ContainerEnginePodman ContainerEngine = "podman"

	// StoreBackendBolt keeps settings in a BoltDB file.
	StoreBackendBolt StoreBackend = "bolt"
	// StoreBackendSQLite keeps settings in a SQLite database.
	StoreBackendSQLite StoreBackend = "sqlite"

	// DefaultImageName is the image applications run in.
	DefaultImageName = "contain"
	// DefaultImageMaxAge is the age after which a rebuild is offered.
	DefaultImageMaxAge = 14 * 24 * time.Hour
	// DefaultDockerfile is the Dockerfile looked up in the build context.
	DefaultDockerfile = "Dockerfile"
	// DefaultTempRoot is the parent of the shared temp folders.
	DefaultTempRoot = "/tmp"
	// DefaultContainerHome is where the persistent home is mounted.
	DefaultContainerHome = "/home/user"
	// DefaultSoundDevice is the host sound device passed through.
	DefaultSoundDevice = "/dev/snd"
)

var (
	// ErrInvalidContainerEngine is returned when a ContainerEngine value is not recognized.
	ErrInvalidContainerEngine = errors.New("invalid container engine")
	// ErrInvalidStoreBackend is returned when a StoreBackend value is not recognized.
	ErrInvalidStoreBackend = errors.New("invalid store backend")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ContainerEngine specifies which container engine is probed first.
	ContainerEngine string

	// InvalidContainerEngineError is returned when a ContainerEngine value is not recognized.
	// It wraps ErrInvalidContainerEngine for errors.Is() compatibility.
	InvalidContainerEngineError struct {
		Value ContainerEngine
	}

	// StoreBackend selects the settings store implementation.
	StoreBackend string

	// InvalidStoreBackendError is returned when a StoreBackend value is not recognized.
	// It wraps ErrInvalidStoreBackend for errors.Is() compatibility.
	InvalidStoreBackendError struct {
		Value StoreBackend
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// Engine configures container engine selection
		Engine EngineConfig `json:"engine" mapstructure:"engine"`
		// Image configures the application image
		Image ImageConfig `json:"image" mapstructure:"image"`
		// Store configures the settings store
		Store StoreConfig `json:"store" mapstructure:"store"`
		// Paths configures host directories
		Paths PathsConfig `json:"paths" mapstructure:"paths"`
		// Container configures paths inside the container
		Container ContainerConfig `json:"container" mapstructure:"container"`
	}

	// EngineConfig configures container engine selection.
	EngineConfig struct {
		// Preferred is probed before the default order
		Preferred ContainerEngine `json:"preferred" mapstructure:"preferred"`
		// Elevate runs rootful engines through sudo
		Elevate bool `json:"elevate" mapstructure:"elevate"`
	}

	// ImageConfig configures the application image.
	ImageConfig struct {
		Name string `json:"name" mapstructure:"name"`
		// MaxAge is the age after which a rebuild is offered; zero disables it
		MaxAge time.Duration `json:"max_age" mapstructure:"max_age"`
		// BuildContext is the `build` context directory; empty disables rebuilds
		BuildContext string `json:"build_context" mapstructure:"build_context"`
		Dockerfile   string `json:"dockerfile" mapstructure:"dockerfile"`
	}

	// StoreConfig configures the settings store.
	StoreConfig struct {
		Backend StoreBackend `json:"backend" mapstructure:"backend"`
	}

	// PathsConfig configures host directories.
	PathsConfig struct {
		// ConfigRoot overrides the configuration root; empty means ConfigDir()
		ConfigRoot string `json:"config_root" mapstructure:"config_root"`
		TempRoot   string `json:"temp_root" mapstructure:"temp_root"`
	}

	// ContainerConfig configures paths inside the container.
	ContainerConfig struct {
		Home        string `json:"home" mapstructure:"home"`
		SoundDevice string `json:"sound_device" mapstructure:"sound_device"`
	}
)

// Error implements the error interface for InvalidContainerEngineError.
func (e *InvalidContainerEngineError) Error() string {
	return fmt.Sprintf("invalid container engine %q (valid: docker, podman, or empty)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidContainerEngineError) Unwrap() error { return ErrInvalidContainerEngine }

// String returns the string representation of the ContainerEngine.
func (ce ContainerEngine) String() string { return string(ce) }

// Validate returns an error if the ContainerEngine is not one of the defined engines.
func (ce ContainerEngine) Validate() error {
	switch ce {
	case ContainerEngineAuto, ContainerEngineDocker, ContainerEnginePodman:
		return nil
	default:
		return &InvalidContainerEngineError{Value: ce}
	}
}

// Error implements the error interface for InvalidStoreBackendError.
func (e *InvalidStoreBackendError) Error() string {
	return fmt.Sprintf("invalid store backend %q (valid: bolt, sqlite)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidStoreBackendError) Unwrap() error { return ErrInvalidStoreBackend }

// String returns the string representation of the StoreBackend.
func (b StoreBackend) String() string { return string(b) }

// Validate returns an error if the StoreBackend is not one of the defined backends.
func (b StoreBackend) Validate() error {
	switch b {
	case StoreBackendBolt, StoreBackendSQLite:
		return nil
	default:
		return &InvalidStoreBackendError{Value: b}
	}
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig and every field error for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// Validate checks constraints that hold regardless of where a value came
// from. Environment overrides bypass the CUE schema, so they are caught here.
func (c *Config) Validate() error {
	var errs []error
	if err := c.Engine.Preferred.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Store.Backend.Validate(); err != nil {
		errs = append(errs, err)
	}
	if strings.TrimSpace(c.Image.Name) == "" {
		errs = append(errs, errors.New("image.name must not be empty"))
	}
	if c.Image.MaxAge < 0 {
		errs = append(errs, fmt.Errorf("image.max_age must not be negative, got %s", c.Image.MaxAge))
	}
	if !strings.HasPrefix(c.Container.Home, "/") {
		errs = append(errs, fmt.Errorf("container.home must be absolute, got %q", c.Container.Home))
	}
	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}

// ResolvedConfigRoot returns Paths.ConfigRoot, or ConfigDir() when unset.
func (c *Config) ResolvedConfigRoot() (string, error) {
	if c.Paths.ConfigRoot != "" {
		return c.Paths.ConfigRoot, nil
	}
	return ConfigDir()
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			Preferred: ContainerEngineAuto,
			Elevate:   true,
		},
		Image: ImageConfig{
			Name:         DefaultImageName,
			MaxAge:       DefaultImageMaxAge,
			BuildContext: "",
			Dockerfile:   DefaultDockerfile,
		},
		Store: StoreConfig{
			Backend: StoreBackendBolt,
		},
		Paths: PathsConfig{
			ConfigRoot: "", // ConfigDir() when empty
			TempRoot:   DefaultTempRoot,
		},
		Container: ContainerConfig{
			Home:        DefaultContainerHome,
			SoundDevice: DefaultSoundDevice,
		},
	}
}
