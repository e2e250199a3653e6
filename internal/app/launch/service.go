// SPDX-License-Identifier: MPL-2.0

package launch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"pysolate/internal/config"
	"pysolate/internal/container"
	"pysolate/internal/invocation"
	"pysolate/internal/issue"
	"pysolate/internal/resolve"
	"pysolate/internal/settings"
	"pysolate/internal/tui"
	"pysolate/internal/workspace"

	"github.com/charmbracelet/log"
)

type (
	// EngineDetector selects the container engine for a launch.
	EngineDetector interface {
		Detect() (container.Engine, error)
	}

	// InvocationLauncher executes an assembled invocation.
	InvocationLauncher interface {
		Launch(ctx context.Context, inv invocation.Invocation) (int, error)
	}

	// StoreOpener opens the settings store at path.
	StoreOpener func(ctx context.Context, backend settings.Backend, path string) (settings.Store, error)

	// ConfirmFunc asks the user a yes/no question.
	ConfirmFunc func(opts tui.ConfirmOptions) (bool, error)

	// Request is everything the CLI collected for one launch.
	Request struct {
		// Args are the positional arguments: the command and its arguments.
		Args  []string
		Flags resolve.Flags
		// Reset rebuilds the stored configuration from Flags.
		Reset bool
		// Update forces an image rebuild before running.
		Update bool
		// NoCache rebuilds the image without the engine's build cache.
		NoCache bool
		// SkipUpdateCheck suppresses the stale-image prompt.
		SkipUpdateCheck bool
		// Verbose reports the resolved configuration and argv before running.
		Verbose bool
	}

	// Option configures a Service.
	Option func(*Service)

	// Service orchestrates launches.
	Service struct {
		cfg         *config.Config
		logger      *log.Logger
		detector    EngineDetector
		openStore   StoreOpener
		provisioner *workspace.Provisioner
		builder     *invocation.Builder
		launcher    InvocationLauncher
		confirm     ConfirmFunc
		now         func() time.Time
		stderr      io.Writer
	}
)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *log.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithDetector sets the engine detector.
func WithDetector(d EngineDetector) Option {
	return func(s *Service) {
		s.detector = d
	}
}

// WithStoreOpener sets how the settings store is opened.
func WithStoreOpener(fn StoreOpener) Option {
	return func(s *Service) {
		s.openStore = fn
	}
}

// WithProvisioner sets the workspace provisioner.
func WithProvisioner(p *workspace.Provisioner) Option {
	return func(s *Service) {
		s.provisioner = p
	}
}

// WithBuilder sets the invocation builder.
func WithBuilder(b *invocation.Builder) Option {
	return func(s *Service) {
		s.builder = b
	}
}

// WithLauncher sets the invocation launcher.
func WithLauncher(l InvocationLauncher) Option {
	return func(s *Service) {
		s.launcher = l
	}
}

// WithConfirm sets the stale-image prompt.
func WithConfirm(fn ConfirmFunc) Option {
	return func(s *Service) {
		s.confirm = fn
	}
}

// WithClock sets the time source used for image age checks.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithStderr sets where verbose reports and build output go.
func WithStderr(w io.Writer) Option {
	return func(s *Service) {
		s.stderr = w
	}
}

// NewService creates a Service for cfg. A nil cfg means config.DefaultConfig().
func NewService(cfg *config.Config, opts ...Option) (*Service, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	s := &Service{
		cfg:       cfg,
		logger:    log.New(io.Discard),
		openStore: settings.Open,
		confirm:   tui.Confirm,
		now:       time.Now,
		stderr:    os.Stderr,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.detector == nil {
		s.detector = container.NewPicker(
			container.PreferEngine(container.EngineType(cfg.Engine.Preferred)),
			container.ElevateRootful(cfg.Engine.Elevate),
		)
	}
	if s.provisioner == nil {
		root, err := cfg.ResolvedConfigRoot()
		if err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("locate configuration root").
				WithIssue(issue.WorkspaceProvisioningFailedId).
				WithSuggestion("Set paths.config_root in the config file or PYSOLATE_PATHS_CONFIG_ROOT").
				Wrap(err).
				BuildError()
		}
		s.provisioner = workspace.NewProvisioner(workspace.Layout{ConfigRoot: root, TempRoot: cfg.Paths.TempRoot})
	}
	if s.builder == nil {
		s.builder = invocation.NewBuilder(
			invocation.WithImage(container.ImageTag(cfg.Image.Name)),
			invocation.WithContainerHome(cfg.Container.Home),
			invocation.WithSoundDevice(cfg.Container.SoundDevice),
		)
	}
	if s.launcher == nil {
		s.launcher = invocation.NewLauncher()
	}
	return s, nil
}

// FullCommand turns positional arguments into the command line run in the
// container. A single argument is taken as a command line of its own; several
// arguments are quoted so they reach the container unchanged.
func FullCommand(args []string) (string, error) {
	switch len(args) {
	case 0:
		return settings.DefaultCommand, nil
	case 1:
		return args[0], nil
	default:
		return invocation.JoinCommandLine(args)
	}
}

// CommandKey returns the key explicitly named by the positional arguments.
// With several arguments the first one is the program, whatever it contains;
// otherwise the key is parsed from the command line and "" is returned.
func CommandKey(args []string) settings.CommandKey {
	if len(args) < 2 {
		return ""
	}
	return settings.CommandKey(args[0])
}

// Launch performs one launch and returns the exit code the process should
// exit with.
func (s *Service) Launch(ctx context.Context, req Request) (int, error) {
	if err := req.Flags.Validate(); err != nil {
		return 1, issue.NewErrorContext().
			WithOperation("validate flags").
			WithSuggestion("Pass a uid of 0 or greater with --uid").
			Wrap(err).
			BuildError()
	}

	fullCommand, err := FullCommand(req.Args)
	if err != nil {
		return 1, err
	}

	engine, err := s.detector.Detect()
	if err != nil {
		return 1, issue.NewErrorContext().
			WithOperation("detect container engine").
			WithIssue(issue.ContainerEngineNotFoundId).
			WithSuggestion("Install docker or podman and make sure it is on PATH").
			Wrap(err).
			BuildError()
	}
	s.logger.Debug("engine selected", "engine", engine.Name(), "binary", engine.BinaryPath(), "elevation", engine.ElevationPrefix())

	// Nothing may be created or persisted without a display to forward.
	if _, err := s.builder.Display(); err != nil {
		return 1, issue.NewErrorContext().
			WithOperation("forward X11 display").
			WithResource(invocation.DisplayEnvVar).
			WithIssue(issue.DisplayNotSetId).
			WithSuggestion("Run contain from a graphical session, or export DISPLAY").
			Wrap(err).
			BuildError()
	}

	if err := s.provisioner.Ensure(); err != nil {
		return 1, provisioningError(err)
	}

	eff, err := s.resolve(ctx, s.provisioner.Layout().StorePath(), resolve.Request{
		FullCommand: fullCommand,
		CommandKey:  CommandKey(req.Args),
		Flags:       req.Flags,
		Reset:       req.Reset,
	})
	if err != nil {
		return 1, err
	}
	s.logger.Debug("configuration resolved", "key", eff.CommandKey, "created", eff.Created, "reset", req.Reset)

	if err := s.refreshImage(ctx, engine, req); err != nil {
		return 1, err
	}

	paths := s.provisioner.Layout().Paths(eff.CommandKey)
	if eff.Persist {
		if _, err := s.provisioner.EnsureCommandHome(eff.CommandKey); err != nil {
			return 1, provisioningError(err)
		}
	}
	if eff.PassTmp {
		if _, err := s.provisioner.EnsureSharedTemp(eff.CommandKey); err != nil {
			return 1, provisioningError(err)
		}
	}

	inv, err := s.builder.Build(engine, eff, paths)
	if err != nil {
		return 1, issue.NewErrorContext().
			WithOperation("assemble container invocation").
			WithResource(fullCommand).
			Wrap(err).
			BuildError()
	}

	if req.Verbose {
		if err := invocation.Report(s.stderr, inv, eff); err != nil {
			s.logger.Warn("failed to write invocation report", "error", err)
		}
	}

	s.logger.Debug("launching", "interactive", inv.Interactive)
	code, err := s.launcher.Launch(ctx, inv)
	if err != nil {
		return 1, issue.NewErrorContext().
			WithOperation("start container engine").
			WithResource(engine.BinaryPath()).
			WithIssue(issue.EngineInvocationFailedId).
			WithSuggestion("Run with --verbose and try the printed command by hand").
			Wrap(err).
			BuildError()
	}
	return code, nil
}

// List returns every stored configuration in key order. Nothing is created
// when no launch has happened yet.
func (s *Service) List(ctx context.Context) ([]settings.Configuration, error) {
	storePath := s.provisioner.Layout().StorePath()
	if _, err := os.Stat(storePath); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	store, err := s.openStore(ctx, settings.Backend(s.cfg.Store.Backend), storePath)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("open settings store").
			WithResource(storePath).
			WithIssue(issue.SettingsStoreUnavailableId).
			Wrap(err).
			BuildError()
	}
	defer store.Close()

	keys, err := store.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	configs := make([]settings.Configuration, 0, len(keys))
	for _, key := range keys {
		cfg, found, err := store.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("load settings for %q: %w", key, err)
		}
		if found {
			configs = append(configs, cfg)
		}
	}
	return configs, nil
}

// resolve opens the store only for the duration of the resolution, so a
// long attached run does not hold the store's file lock.
func (s *Service) resolve(ctx context.Context, storePath string, req resolve.Request) (resolve.EffectiveConfig, error) {
	store, err := s.openStore(ctx, settings.Backend(s.cfg.Store.Backend), storePath)
	if err != nil {
		return resolve.EffectiveConfig{}, issue.NewErrorContext().
			WithOperation("open settings store").
			WithResource(storePath).
			WithIssue(issue.SettingsStoreUnavailableId).
			WithSuggestion("Check that no other contain process is holding the store").
			Wrap(err).
			BuildError()
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			s.logger.Warn("failed to close settings store", "path", storePath, "error", cerr)
		}
	}()

	eff, err := resolve.NewResolver(store).Resolve(ctx, req)
	if err != nil {
		return resolve.EffectiveConfig{}, issue.NewErrorContext().
			WithOperation("resolve settings").
			WithResource(storePath).
			WithIssue(issue.SettingsStoreUnavailableId).
			Wrap(err).
			BuildError()
	}
	return eff, nil
}

// refreshImage rebuilds the image when forced, missing, or stale and the user
// agrees. Without a build context a missing or stale image is left to the
// engine.
func (s *Service) refreshImage(ctx context.Context, engine container.Engine, req Request) error {
	image := s.builder.Image()
	created, present, err := engine.ImageCreated(ctx, image)
	if err != nil {
		return issue.NewErrorContext().
			WithOperation("inspect image").
			WithResource(string(image)).
			WithIssue(issue.EngineInvocationFailedId).
			Wrap(err).
			BuildError()
	}

	switch {
	case req.Update:
		if s.cfg.Image.BuildContext == "" {
			return issue.NewErrorContext().
				WithOperation("rebuild image").
				WithResource(string(image)).
				WithIssue(issue.ImageBuildFailedId).
				WithSuggestion("Set image.build_context to the directory holding the Dockerfile").
				Wrap(errors.New("no build context configured")).
				BuildError()
		}
		return s.buildImage(ctx, engine, image, req.NoCache)

	case !present:
		if s.cfg.Image.BuildContext == "" {
			s.logger.Warn("image not present and no build context configured", "image", image)
			return nil
		}
		return s.buildImage(ctx, engine, image, req.NoCache)

	case req.SkipUpdateCheck:
		return nil
	}

	staleness := container.ImageStaleness{MaxAge: s.cfg.Image.MaxAge}
	now := s.now()
	if !staleness.Stale(created, now) {
		return nil
	}

	age := container.Age(created, now)
	if s.cfg.Image.BuildContext == "" {
		s.logger.Warn("image is stale and no build context configured", "image", image, "age", age.Round(time.Hour))
		return nil
	}

	rebuild, err := s.confirm(tui.ConfirmOptions{
		Title:       fmt.Sprintf("Image %s is %d days old. Rebuild it now?", image, int(age.Hours()/24)),
		Description: "Rebuilding pulls the latest packages into the image.",
		Config:      tui.DefaultConfig(),
	})
	if err != nil {
		s.logger.Debug("skipping image update", "reason", err)
		return nil
	}
	if !rebuild {
		return nil
	}
	return s.buildImage(ctx, engine, image, req.NoCache)
}

func (s *Service) buildImage(ctx context.Context, engine container.Engine, image container.ImageTag, noCache bool) error {
	s.logger.Info("building image", "image", image, "context", s.cfg.Image.BuildContext, "no_cache", noCache)
	err := engine.Build(ctx, container.BuildOptions{
		ContextDir: container.HostFilesystemPath(s.cfg.Image.BuildContext),
		Dockerfile: s.cfg.Image.Dockerfile,
		Tag:        image,
		NoCache:    noCache,
		Stdout:     s.stderr,
		Stderr:     s.stderr,
	})
	if err != nil {
		return issue.NewErrorContext().
			WithOperation("build image").
			WithResource(s.cfg.Image.BuildContext).
			WithIssue(issue.ImageBuildFailedId).
			WithSuggestion("Check the build output above").
			Wrap(err).
			BuildError()
	}
	return nil
}

func provisioningError(err error) error {
	resource := ""
	var pfe *workspace.ProvisioningFailedError
	if errors.As(err, &pfe) {
		resource = pfe.Path
	}
	return issue.NewErrorContext().
		WithOperation("create workspace directory").
		WithResource(resource).
		WithIssue(issue.WorkspaceProvisioningFailedId).
		WithSuggestion("Check the permissions of the configuration and temp directories").
		Wrap(err).
		BuildError()
}
