// SPDX-License-Identifier: MPL-2.0

package invocation

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"pysolate/internal/container"
	"pysolate/internal/resolve"
	"pysolate/internal/workspace"

	"golang.org/x/term"
	"mvdan.cc/sh/v3/shell"
	"mvdan.cc/sh/v3/syntax"
)

const (
	// DisplayEnvVar is the host variable forwarded to the container.
	DisplayEnvVar = "DISPLAY"

	// DefaultImage is the image every application runs in.
	DefaultImage container.ImageTag = "contain"
	// DefaultContainerHome is where the persistent home is mounted.
	DefaultContainerHome = "/home/user"
	// DefaultSoundDevice is the host sound device passed through.
	DefaultSoundDevice = "/dev/snd"

	appsMountPoint   = "/apps"
	cwdMountPoint    = "/cwd"
	sharedMountPoint = "/shared"
	privilegedNet    = "host"
)

var (
	// ErrMissingDisplay is the sentinel error wrapped by MissingDisplayError.
	ErrMissingDisplay = errors.New("DISPLAY is not set")

	// ErrInvalidCommandLine is returned when the command line cannot be split
	// into words.
	ErrInvalidCommandLine = errors.New("invalid command line")
)

type (
	// Invocation is a fully assembled engine command line.
	Invocation struct {
		// Argv is the complete argv: elevation prefix, engine binary, run arguments.
		Argv []string
		// Interactive runs the command attached to the caller's terminal.
		Interactive bool
	}

	// MissingDisplayError is returned when the host has no X11 display to forward.
	MissingDisplayError struct {
		Variable string
	}

	// BuilderOption configures a Builder.
	BuilderOption func(*Builder)

	// Builder assembles Invocations. Host lookups are injectable for tests.
	Builder struct {
		image         container.ImageTag
		containerHome string
		soundDevice   string
		getenv        func(string) string
		getwd         func() (string, error)
		isTerminal    func() bool
	}
)

// Error implements the error interface.
func (e *MissingDisplayError) Error() string {
	return fmt.Sprintf("%s is not set: no X11 display to forward", e.Variable)
}

// Unwrap returns ErrMissingDisplay for errors.Is() compatibility.
func (e *MissingDisplayError) Unwrap() error { return ErrMissingDisplay }

// WithImage sets the image to run.
func WithImage(image container.ImageTag) BuilderOption {
	return func(b *Builder) {
		if image != "" {
			b.image = image
		}
	}
}

// WithContainerHome sets where the persistent home is mounted.
func WithContainerHome(path string) BuilderOption {
	return func(b *Builder) {
		if path != "" {
			b.containerHome = path
		}
	}
}

// WithSoundDevice sets the host sound device passed through.
func WithSoundDevice(device string) BuilderOption {
	return func(b *Builder) {
		if device != "" {
			b.soundDevice = device
		}
	}
}

// WithGetenv sets the environment lookup.
func WithGetenv(fn func(string) string) BuilderOption {
	return func(b *Builder) {
		b.getenv = fn
	}
}

// WithGetwd sets the working-directory lookup.
func WithGetwd(fn func() (string, error)) BuilderOption {
	return func(b *Builder) {
		b.getwd = fn
	}
}

// WithTerminalCheck sets the check deciding whether stdin is a terminal.
func WithTerminalCheck(fn func() bool) BuilderOption {
	return func(b *Builder) {
		b.isTerminal = fn
	}
}

// NewBuilder creates a Builder reading the real process environment.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		image:         DefaultImage,
		containerHome: DefaultContainerHome,
		soundDevice:   DefaultSoundDevice,
		getenv:        os.Getenv,
		getwd:         os.Getwd,
		isTerminal:    StdinIsTerminal,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// StdinIsTerminal reports whether the process's stdin is a terminal.
func StdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// Image returns the image the builder runs.
func (b *Builder) Image() container.ImageTag {
	return b.image
}

// Display returns the host display, or a MissingDisplayError when it is
// unset or empty.
func (b *Builder) Display() (string, error) {
	display := b.getenv(DisplayEnvVar)
	if display == "" {
		return "", &MissingDisplayError{Variable: DisplayEnvVar}
	}
	return display, nil
}

// Build assembles the engine invocation for cfg. Paths must come from the
// same command key as cfg; directories are expected to exist already.
func (b *Builder) Build(engine container.Engine, cfg resolve.EffectiveConfig, paths workspace.Paths) (Invocation, error) {
	display, err := b.Display()
	if err != nil {
		return Invocation{}, err
	}

	command, err := SplitCommandLine(cfg.FullCommand, b.getenv)
	if err != nil {
		return Invocation{}, err
	}

	volumes := []container.VolumeMount{
		{HostPath: container.HostFilesystemPath(paths.X11SocketDir), ContainerPath: container.MountTargetPath(paths.X11SocketDir)},
		{HostPath: container.HostFilesystemPath(paths.AppsDir), ContainerPath: appsMountPoint, Relabel: true},
	}
	if cfg.PassDir {
		cwd, err := b.getwd()
		if err != nil {
			return Invocation{}, fmt.Errorf("failed to get working directory: %w", err)
		}
		volumes = append(volumes, container.VolumeMount{HostPath: container.HostFilesystemPath(cwd), ContainerPath: cwdMountPoint})
	}
	if cfg.PassTmp {
		volumes = append(volumes, container.VolumeMount{HostPath: container.HostFilesystemPath(paths.SharedTemp), ContainerPath: sharedMountPoint, Relabel: true})
	}
	if cfg.Persist {
		volumes = append(volumes, container.VolumeMount{
			HostPath:      container.HostFilesystemPath(paths.CommandHome),
			ContainerPath: container.MountTargetPath(b.containerHome),
			Relabel:       true,
		})
	}
	for _, v := range volumes {
		if err := v.Validate(); err != nil {
			return Invocation{}, err
		}
	}

	opts := container.RunOptions{
		Image:       b.image,
		Command:     command,
		Env:         []string{DisplayEnvVar + "=unix" + display},
		Volumes:     volumes,
		Devices:     []string{b.soundDevice},
		User:        strconv.Itoa(cfg.UID),
		Remove:      true,
		Detach:      !cfg.Interactive,
		Interactive: cfg.Interactive,
		TTY:         cfg.Interactive && b.isTerminal(),
		Privileged:  cfg.Privileged,
	}
	if cfg.Privileged {
		opts.Network = privilegedNet
	}

	return Invocation{
		Argv:        engine.CommandLine(engine.RunArgs(opts)),
		Interactive: cfg.Interactive,
	}, nil
}

// SplitCommandLine splits a command line into words with POSIX shell rules,
// expanding variables through getenv. An empty line yields nil.
func SplitCommandLine(line string, getenv func(string) string) ([]string, error) {
	if strings.TrimSpace(line) == "" {
		return nil, nil
	}
	words, err := shell.Fields(line, getenv)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidCommandLine, line, err)
	}
	return words, nil
}

// JoinCommandLine joins args into one command line, quoting each argument
// so that SplitCommandLine returns args unchanged.
func JoinCommandLine(args []string) (string, error) {
	quoted := make([]string, len(args))
	for i, arg := range args {
		q, err := syntax.Quote(arg, syntax.LangBash)
		if err != nil {
			return "", fmt.Errorf("%w: cannot quote %q: %w", ErrInvalidCommandLine, arg, err)
		}
		quoted[i] = q
	}
	return strings.Join(quoted, " "), nil
}
