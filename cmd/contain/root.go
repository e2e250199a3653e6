// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"pysolate/internal/app/launch"
	"pysolate/internal/resolve"
	"pysolate/internal/settings"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// rootOptions holds the parsed root command flags.
type rootOptions struct {
	reset           bool
	passDir         bool
	interactive     bool
	noPassTmp       bool
	uid             int
	update          bool
	noCache         bool
	skipUpdateCheck bool
	noPersist       bool
	verbose         bool
	privileged      bool
	list            bool
	configPath      string
}

// validate rejects flag values no launch can use.
func (o *rootOptions) validate() error {
	return resolve.Flags{UID: o.uid}.Validate()
}

// request converts the flags and positional arguments into a launch request.
func (o *rootOptions) request(args []string) launch.Request {
	return launch.Request{
		Args: args,
		Flags: resolve.Flags{
			PassDir:     o.passDir,
			PassTmp:     !o.noPassTmp,
			UID:         o.uid,
			Persist:     !o.noPersist,
			Interactive: o.interactive,
			Privileged:  o.privileged,
		},
		Reset:           o.reset,
		Update:          o.update,
		NoCache:         o.noCache,
		SkipUpdateCheck: o.skipUpdateCheck,
		Verbose:         o.verbose,
	}
}

// newRootCommand builds the contain command bound to app.
func newRootCommand(app *App) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "contain [flags] [command...]",
		Short: "Run applications in isolated containers",
		Long: TitleStyle.Render("contain") + SubtitleStyle.Render(" - Run applications in isolated containers") + `

contain starts a command inside a Docker or Podman container with the X11
display and the sound device forwarded. The capabilities granted to a command
(working directory, shared temp folder, persistent home, uid, privileges) are
remembered per command and reused on the next launch.

contain's own flags go before the command. Everything after the command name
is passed to the command: "contain firefox -d" gives -d to firefox.

` + SubtitleStyle.Render("Examples:") + `
  contain firefox               Run firefox, detached
  contain -i                    Open an interactive bash
  contain -d gimp photo.png     Run gimp with the current directory at /cwd
  contain -r -p vlc             Forget vlc's settings, run without a persistent home
  contain --update --no-cache   Rebuild the image from scratch, then open bash
  contain --list                Show stored configurations`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.run(cmd.Context(), opts, args)
		},
	}
	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	flags := rootCmd.Flags()
	// Everything after the command name belongs to the command.
	flags.SetInterspersed(false)
	flags.BoolVarP(&opts.reset, "reset", "r", false, "rebuild the stored configuration from the current flags")
	flags.BoolVarP(&opts.passDir, "pass-dir", "d", false, "mount the current directory at /cwd")
	flags.BoolVarP(&opts.interactive, "interactive", "i", false, "attach the container to this terminal")
	flags.BoolVarP(&opts.noPassTmp, "no-pass-tmp", "t", false, "do not share a temp folder (new configurations only)")
	flags.IntVarP(&opts.uid, "uid", "u", settings.DefaultUID, "uid to run the command as (0 for root)")
	flags.BoolVar(&opts.update, "update", false, "rebuild the image before running")
	flags.BoolVar(&opts.noCache, "no-cache", false, "build the image without the engine's build cache")
	flags.BoolVar(&opts.skipUpdateCheck, "skip-update-check", false, "do not offer to rebuild a stale image")
	flags.BoolVarP(&opts.noPersist, "no-persist", "p", false, "do not keep a persistent home (new configurations only)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "print the resolved configuration and engine command")
	flags.BoolVar(&opts.privileged, "privileged", false, "run privileged with host networking")
	flags.BoolVarP(&opts.list, "list", "l", false, "list stored configurations and exit")
	flags.StringVar(&opts.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/pysolate/config.cue)")

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version != "dev" {
		return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev (built from source)"
}

// handleError prints errors that were not already rendered by the App.
func handleError(w io.Writer, styles fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return
	}
	fang.DefaultErrorHandler(w, styles, err)
}

// Execute runs the root command and exits with its status.
// This is called by main.main().
func Execute() {
	rootCmd := newRootCommand(NewApp(Dependencies{}))

	// fang overrides rootCmd.Version, so the version goes through WithVersion.
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(handleError),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
