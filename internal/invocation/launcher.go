// SPDX-License-Identifier: MPL-2.0

package invocation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"pysolate/internal/container"
)

// ErrEngineInvocationFailed is the sentinel error wrapped by EngineInvocationFailedError.
var ErrEngineInvocationFailed = errors.New("container engine invocation failed")

type (
	// EngineInvocationFailedError is returned when the engine process cannot
	// be started, or when a detached launch is refused by the engine client.
	// An attached container exiting non-zero is not an invocation failure.
	EngineInvocationFailedError struct {
		Binary string
		// ExitCode is the client's exit status when it ran but refused the
		// launch, and 0 when it never started.
		ExitCode int
		Cause    error
	}

	// LauncherOption configures a Launcher.
	LauncherOption func(*Launcher)

	// Launcher executes Invocations.
	Launcher struct {
		execCommand container.ExecCommandFunc
		stdin       io.Reader
		stdout      io.Writer
		stderr      io.Writer
	}
)

// Error implements the error interface.
func (e *EngineInvocationFailedError) Error() string {
	if e.ExitCode != 0 {
		return fmt.Sprintf("%s refused the launch (exit status %d)", e.Binary, e.ExitCode)
	}
	return fmt.Sprintf("failed to start %s: %v", e.Binary, e.Cause)
}

// Unwrap returns ErrEngineInvocationFailed and the cause for errors.Is() compatibility.
func (e *EngineInvocationFailedError) Unwrap() []error {
	return []error{ErrEngineInvocationFailed, e.Cause}
}

// WithLauncherExecCommand sets a custom exec command function for testing.
func WithLauncherExecCommand(fn container.ExecCommandFunc) LauncherOption {
	return func(l *Launcher) {
		l.execCommand = fn
	}
}

// WithStdio sets the caller's streams. Detached invocations only use stdin
// and stderr.
func WithStdio(stdin io.Reader, stdout, stderr io.Writer) LauncherOption {
	return func(l *Launcher) {
		l.stdin = stdin
		l.stdout = stdout
		l.stderr = stderr
	}
}

// NewLauncher creates a Launcher bound to the process's standard streams.
func NewLauncher(opts ...LauncherOption) *Launcher {
	l := &Launcher{
		execCommand: exec.CommandContext,
		stdin:       os.Stdin,
		stdout:      os.Stdout,
		stderr:      os.Stderr,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Launch runs inv. Attached invocations block and return the container's
// exit code. Detached invocations block only until the engine client has
// handed the container off, and return 0 once it exits cleanly.
func (l *Launcher) Launch(ctx context.Context, inv Invocation) (int, error) {
	if len(inv.Argv) == 0 {
		return 0, &EngineInvocationFailedError{Cause: errors.New("empty command line")}
	}
	if inv.Interactive {
		return l.attached(ctx, inv.Argv)
	}
	if err := l.detached(ctx, inv.Argv); err != nil {
		return 1, err
	}
	return 0, nil
}

func (l *Launcher) attached(ctx context.Context, argv []string) (int, error) {
	cmd := l.execCommand(ctx, argv[0], argv[1:]...)
	cmd.Stdin = l.stdin
	cmd.Stdout = l.stdout
	cmd.Stderr = l.stderr

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		if code < 0 {
			// Terminated by a signal.
			code = 1
		}
		return code, nil
	}
	return 1, &EngineInvocationFailedError{Binary: argv[0], Cause: err}
}

// detached runs the engine client for a "run -d" command line until it exits.
// The client keeps the caller's stdin and stderr so an elevation prompt and
// the engine's own diagnostics reach the user. The container ID printed on
// stdout is discarded.
func (l *Launcher) detached(ctx context.Context, argv []string) error {
	cmd := l.execCommand(ctx, argv[0], argv[1:]...)
	cmd.Stdin = l.stdin
	cmd.Stdout = io.Discard
	cmd.Stderr = l.stderr

	err := cmd.Run()
	if err == nil {
		return nil
	}

	failed := &EngineInvocationFailedError{Binary: argv[0], Cause: err}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		failed.ExitCode = exitErr.ExitCode()
		if failed.ExitCode < 0 {
			failed.ExitCode = 1
		}
	}
	return failed
}
