// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"slices"
	"strings"
	"time"
)

const (
	// EngineTypeDocker is the rootful Docker engine.
	EngineTypeDocker EngineType = "docker"
	// EngineTypePodman is the rootless Podman engine.
	EngineTypePodman EngineType = "podman"

	// elevationBinary is prepended to commands of rootful engines.
	elevationBinary = "sudo"
)

var (
	// ErrNoEngineFound is the sentinel error wrapped by NoEngineFoundError.
	ErrNoEngineFound = errors.New("no container engine found")

	// ErrInvalidEngineType is the sentinel error wrapped by InvalidEngineTypeError.
	ErrInvalidEngineType = errors.New("invalid container engine type")

	// defaultOrder is the fixed probing order when no engine is preferred.
	defaultOrder = []EngineType{EngineTypeDocker, EngineTypePodman}
)

type (
	// Engine defines the container engine operations used by a launch.
	Engine interface {
		// Name returns the engine name (docker or podman).
		Name() string
		// BinaryPath returns the resolved engine executable.
		BinaryPath() string
		// ElevationPrefix returns the argv prepended before the engine binary.
		ElevationPrefix() []string
		// Rootless reports whether the engine runs without elevation.
		Rootless() bool
		// RunArgs builds the arguments of a `run` command, starting with "run".
		RunArgs(opts RunOptions) []string
		// CommandLine returns the full argv for args: elevation, binary, args.
		CommandLine(args []string) []string
		// ImageCreated returns the creation time of image. The boolean is
		// false when the image is not present.
		ImageCreated(ctx context.Context, image ImageTag) (time.Time, bool, error)
		// Build builds an image from a Dockerfile.
		Build(ctx context.Context, opts BuildOptions) error
	}

	// EngineType identifies the container engine type.
	EngineType string

	// InvalidEngineTypeError is returned when an EngineType is not recognized.
	InvalidEngineTypeError struct {
		Value EngineType
	}

	// NoEngineFoundError is returned when none of the probed engines is usable.
	NoEngineFoundError struct {
		// Reasons maps each probed engine to why it was rejected, in probe order.
		Reasons []string
	}

	// LookPathFunc resolves an executable name to a path.
	LookPathFunc func(file string) (string, error)

	// PickerOption configures a Picker.
	PickerOption func(*Picker)

	// Picker detects the container engine to use for a launch.
	Picker struct {
		preferred  EngineType
		elevate    bool
		lookPath   LookPathFunc
		geteuid    func() int
		engineOpts []BaseCLIEngineOption
	}
)

// Error implements the error interface.
func (e *InvalidEngineTypeError) Error() string {
	return fmt.Sprintf("invalid container engine %q (valid: docker, podman)", e.Value)
}

// Unwrap returns ErrInvalidEngineType for errors.Is() compatibility.
func (e *InvalidEngineTypeError) Unwrap() error { return ErrInvalidEngineType }

// Validate returns an error if the EngineType is not one of the defined types.
// The zero value ("") is valid and means "no preference".
func (t EngineType) Validate() error {
	switch t {
	case EngineTypeDocker, EngineTypePodman, "":
		return nil
	default:
		return &InvalidEngineTypeError{Value: t}
	}
}

// String returns the string representation of the EngineType.
func (t EngineType) String() string { return string(t) }

// Error implements the error interface.
func (e *NoEngineFoundError) Error() string {
	if len(e.Reasons) == 0 {
		return ErrNoEngineFound.Error()
	}
	return ErrNoEngineFound.Error() + ": " + strings.Join(e.Reasons, "; ")
}

// Unwrap returns ErrNoEngineFound for errors.Is() compatibility.
func (e *NoEngineFoundError) Unwrap() error { return ErrNoEngineFound }

// PreferEngine makes the picker probe t before the default order.
func PreferEngine(t EngineType) PickerOption {
	return func(p *Picker) {
		p.preferred = t
	}
}

// ElevateRootful controls whether rootful engines are invoked through sudo.
func ElevateRootful(elevate bool) PickerOption {
	return func(p *Picker) {
		p.elevate = elevate
	}
}

// WithLookPath sets a custom executable lookup for testing.
func WithLookPath(fn LookPathFunc) PickerOption {
	return func(p *Picker) {
		p.lookPath = fn
	}
}

// WithGeteuid sets a custom effective-uid source for testing.
func WithGeteuid(fn func() int) PickerOption {
	return func(p *Picker) {
		p.geteuid = fn
	}
}

// WithEngineOptions passes options to every engine the picker constructs.
func WithEngineOptions(opts ...BaseCLIEngineOption) PickerOption {
	return func(p *Picker) {
		p.engineOpts = append(p.engineOpts, opts...)
	}
}

// NewPicker creates a Picker. Rootful engines are elevated by default.
func NewPicker(opts ...PickerOption) *Picker {
	p := &Picker{
		elevate:  true,
		lookPath: exec.LookPath,
		geteuid:  os.Geteuid,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Order returns the engines in the order Detect probes them.
func (p *Picker) Order() []EngineType {
	order := make([]EngineType, 0, len(defaultOrder)+1)
	if p.preferred != "" {
		order = append(order, p.preferred)
	}
	for _, t := range defaultOrder {
		if !slices.Contains(order, t) {
			order = append(order, t)
		}
	}
	return order
}

// Detect returns the first usable engine in Order. It is meant to be called
// once per process; the result is passed explicitly to whoever needs it.
func (p *Picker) Detect() (Engine, error) {
	if err := p.preferred.Validate(); err != nil {
		return nil, err
	}

	var reasons []string
	for _, t := range p.Order() {
		engine, reason := p.probe(t)
		if engine != nil {
			return engine, nil
		}
		reasons = append(reasons, fmt.Sprintf("%s: %s", t, reason))
	}

	return nil, &NoEngineFoundError{Reasons: reasons}
}

// probe returns the engine of type t, or the reason it cannot be used.
func (p *Picker) probe(t EngineType) (Engine, string) {
	switch t {
	case EngineTypeDocker:
		path, err := p.lookPath(string(EngineTypeDocker))
		if err != nil {
			return nil, "docker is not installed or not on PATH"
		}
		opts := slices.Clone(p.engineOpts)
		if p.elevate && p.geteuid() != 0 {
			sudo, err := p.lookPath(elevationBinary)
			if err != nil {
				return nil, "docker requires sudo, which is not installed or not on PATH"
			}
			opts = append(opts, WithElevation(sudo))
		}
		return NewDockerEngine(HostFilesystemPath(path), opts...), ""

	case EngineTypePodman:
		path := findPodmanBinary(p.lookPath)
		if path == "" {
			return nil, "podman is not installed or not on PATH"
		}
		return NewPodmanEngine(HostFilesystemPath(path), p.engineOpts...), ""

	default:
		return nil, "unknown engine type"
	}
}
