// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"pysolate/internal/app/launch"
	"pysolate/internal/config"
	"pysolate/internal/settings"

	"github.com/charmbracelet/log"
)

type (
	// App wires CLI services and shared dependencies. The root command handler
	// delegates all work through it.
	App struct {
		Config     config.Provider
		NewService ServiceFactory
		stdout     io.Writer
		stderr     io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil fields are
	// replaced with production defaults by NewApp.
	Dependencies struct {
		Config     config.Provider
		NewService ServiceFactory
		Stdout     io.Writer
		Stderr     io.Writer
	}

	// LaunchService performs launches and lists stored configurations.
	LaunchService interface {
		Launch(ctx context.Context, req launch.Request) (int, error)
		List(ctx context.Context) ([]settings.Configuration, error)
	}

	// ServiceFactory builds the LaunchService for a loaded configuration.
	ServiceFactory func(cfg *config.Config, logger *log.Logger) (LaunchService, error)
)

// NewApp creates an App, filling unset dependencies with production defaults.
func NewApp(deps Dependencies) *App {
	app := &App{
		Config:     deps.Config,
		NewService: deps.NewService,
		stdout:     deps.Stdout,
		stderr:     deps.Stderr,
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.NewService == nil {
		app.NewService = newLaunchService
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	return app
}

func newLaunchService(cfg *config.Config, logger *log.Logger) (LaunchService, error) {
	return launch.NewService(cfg, launch.WithLogger(logger))
}

// newLogger returns the logger used for one run: debug output with --verbose,
// warnings and errors otherwise.
func newLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.WarnLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Prefix: "contain",
		Level:  level,
	})
}

// run executes the root command. Every failure is rendered here and returned
// as an *ExitError.
func (a *App) run(ctx context.Context, opts *rootOptions, args []string) error {
	logger := newLogger(a.stderr, opts.verbose)

	if err := opts.validate(); err != nil {
		return a.fail(err, opts.verbose)
	}

	loaded, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: opts.configPath})
	if err != nil {
		return a.fail(err, opts.verbose)
	}
	if loaded.Source != "" {
		logger.Debug("configuration loaded", "source", loaded.Source)
	}

	svc, err := a.NewService(loaded.Config, logger)
	if err != nil {
		return a.fail(err, opts.verbose)
	}

	if opts.list {
		return a.list(ctx, svc, opts.verbose)
	}

	code, err := svc.Launch(ctx, opts.request(args))
	if err != nil {
		return a.fail(err, opts.verbose)
	}
	if code != 0 {
		logger.Debug("container exited", "code", code)
		return &ExitError{Code: code}
	}
	return nil
}

func (a *App) list(ctx context.Context, svc LaunchService, verbose bool) error {
	configs, err := svc.List(ctx)
	if err != nil {
		return a.fail(err, verbose)
	}
	if len(configs) == 0 {
		fmt.Fprintln(a.stdout, SubtitleStyle.Render("No stored configurations."))
		return nil
	}
	for _, c := range configs {
		fmt.Fprintf(a.stdout, "%s  %s\n", CmdStyle.Render(c.CommandKey().String()), VerboseStyle.Render(describe(c)))
	}
	return nil
}

// describe summarizes the capabilities of a stored configuration.
func describe(c settings.Configuration) string {
	s := fmt.Sprintf("uid=%d", c.UID())
	for _, capability := range []struct {
		name string
		on   bool
	}{
		{"pass-dir", c.PassDir()},
		{"pass-tmp", c.PassTmp()},
		{"persist", c.Persist()},
		{"interactive", c.Interactive()},
		{"privileged", c.Privileged()},
	} {
		if capability.on {
			s += " " + capability.name
		}
	}
	return s
}

func (a *App) fail(err error, verbose bool) error {
	svcErr := serviceErrorFor(err, verbose)
	renderServiceError(a.stderr, svcErr)
	return &ExitError{Code: 1, Err: svcErr}
}
