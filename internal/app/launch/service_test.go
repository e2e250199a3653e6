// SPDX-License-Identifier: MPL-2.0

package launch

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"pysolate/internal/config"
	"pysolate/internal/container"
	"pysolate/internal/invocation"
	"pysolate/internal/issue"
	"pysolate/internal/resolve"
	"pysolate/internal/settings"
	"pysolate/internal/tui"
	"pysolate/internal/workspace"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type (
	// fakeEngine is a docker engine whose image queries and builds are canned.
	fakeEngine struct {
		*container.DockerEngine
		created  time.Time
		present  bool
		inspect  error
		buildErr error
		builds   []container.BuildOptions
	}

	fakeDetector struct {
		engine container.Engine
		err    error
	}

	fakeLauncher struct {
		code  int
		err   error
		calls []invocation.Invocation
	}

	// harness wires a Service to temp directories and fakes.
	harness struct {
		cfg        *config.Config
		configRoot string
		tempRoot   string
		cwd        string
		env        map[string]string
		engine     *fakeEngine
		detector   *fakeDetector
		launcher   *fakeLauncher
		confirms   int
		answer     bool
		confirmErr error
		stderr     bytes.Buffer
	}
)

func (e *fakeEngine) ImageCreated(context.Context, container.ImageTag) (time.Time, bool, error) {
	return e.created, e.present, e.inspect
}

func (e *fakeEngine) Build(_ context.Context, opts container.BuildOptions) error {
	e.builds = append(e.builds, opts)
	return e.buildErr
}

func (d *fakeDetector) Detect() (container.Engine, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.engine, nil
}

func (l *fakeLauncher) Launch(_ context.Context, inv invocation.Invocation) (int, error) {
	l.calls = append(l.calls, inv)
	return l.code, l.err
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	engine := &fakeEngine{
		DockerEngine: container.NewDockerEngine("/usr/bin/docker", container.WithElevation("/usr/bin/sudo")),
		created:      testNow.Add(-time.Hour),
		present:      true,
	}
	return &harness{
		cfg:        config.DefaultConfig(),
		configRoot: filepath.Join(dir, "config", "pysolate"),
		tempRoot:   filepath.Join(dir, "tmp"),
		cwd:        filepath.Join(dir, "project"),
		env:        map[string]string{"DISPLAY": ":0", "HOME": "/home/alice"},
		engine:     engine,
		detector:   &fakeDetector{engine: engine},
		launcher:   &fakeLauncher{},
	}
}

func (h *harness) service(t *testing.T) *Service {
	t.Helper()
	if err := os.MkdirAll(h.tempRoot, 0o755); err != nil {
		t.Fatal(err)
	}
	svc, err := NewService(h.cfg,
		WithDetector(h.detector),
		WithProvisioner(workspace.NewProvisioner(workspace.Layout{ConfigRoot: h.configRoot, TempRoot: h.tempRoot})),
		WithBuilder(invocation.NewBuilder(
			invocation.WithGetenv(func(k string) string { return h.env[k] }),
			invocation.WithGetwd(func() (string, error) { return h.cwd, nil }),
			invocation.WithTerminalCheck(func() bool { return false }),
		)),
		WithLauncher(h.launcher),
		WithConfirm(func(tui.ConfirmOptions) (bool, error) {
			h.confirms++
			return h.answer, h.confirmErr
		}),
		WithClock(func() time.Time { return testNow }),
		WithStderr(&h.stderr),
	)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return svc
}

func (h *harness) stored(t *testing.T, key settings.CommandKey) (settings.Configuration, bool) {
	t.Helper()
	store, err := settings.Open(t.Context(), settings.BackendBolt, filepath.Join(h.configRoot, workspace.StoreFileName))
	if err != nil {
		t.Fatalf("settings.Open() error = %v", err)
	}
	defer store.Close()
	cfg, found, err := store.Get(t.Context(), key)
	if err != nil {
		t.Fatalf("Get(%q) error = %v", key, err)
	}
	return cfg, found
}

func flags(mod func(*resolve.Flags)) resolve.Flags {
	f := resolve.DefaultFlags()
	if mod != nil {
		mod(&f)
	}
	return f
}

func issueID(t *testing.T, err error) issue.Id {
	t.Helper()
	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("error %v is not an ActionableError", err)
	}
	return ae.IssueID
}

func TestLaunch_FirstRunPersistsAndLaunches(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	svc := h.service(t)

	code, err := svc.Launch(t.Context(), Request{
		Args: []string{"myapp"},
		Flags: flags(func(f *resolve.Flags) {
			f.PassDir = true
			f.UID = 1001
		}),
	})
	if err != nil {
		t.Fatalf("Launch() error = %v", err)
	}
	if code != 0 {
		t.Errorf("Launch() code = %d, want 0", code)
	}

	stored, found := h.stored(t, "myapp")
	if !found {
		t.Fatal("configuration for myapp was not persisted")
	}
	if !stored.PassDir() || !stored.PassTmp() || !stored.Persist() || stored.UID() != 1001 {
		t.Errorf("stored = %v", stored)
	}

	home := filepath.Join(h.configRoot, workspace.StorageDirName, "myapp")
	shared := filepath.Join(h.tempRoot, workspace.SharedTempPrefix+"myapp")
	for _, dir := range []string{filepath.Join(h.configRoot, workspace.AppsDirName), home, shared} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Errorf("expected directory %s: %v", dir, err)
		}
	}

	if len(h.launcher.calls) != 1 {
		t.Fatalf("launcher called %d times, want 1", len(h.launcher.calls))
	}
	inv := h.launcher.calls[0]
	if inv.Interactive {
		t.Error("invocation should be detached")
	}
	want := []string{
		"/usr/bin/sudo", "/usr/bin/docker", "run", "--rm", "-d",
		"-e", "DISPLAY=unix:0",
		"-v", "/tmp/.X11-unix:/tmp/.X11-unix",
		"-v", filepath.Join(h.configRoot, workspace.AppsDirName) + ":/apps",
		"-v", h.cwd + ":/cwd",
		"-v", shared + ":/shared",
		"-v", home + ":/home/user",
		"--device", "/dev/snd",
		"-u", "1001",
		"contain", "myapp",
	}
	if !slices.Equal(inv.Argv, want) {
		t.Errorf("argv =\n  %q\nwant\n  %q", inv.Argv, want)
	}
}

func TestLaunch_StoredCapabilitiesStick(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	svc := h.service(t)

	if _, err := svc.Launch(t.Context(), Request{
		Args:  []string{"myapp"},
		Flags: flags(func(f *resolve.Flags) { f.PassDir = true }),
	}); err != nil {
		t.Fatalf("first Launch() error = %v", err)
	}
	if _, err := svc.Launch(t.Context(), Request{
		Args:  []string{"myapp", "--help"},
		Flags: flags(func(f *resolve.Flags) { f.UID = 2000 }),
	}); err != nil {
		t.Fatalf("second Launch() error = %v", err)
	}

	argv := h.launcher.calls[1].Argv
	if !slices.Contains(argv, h.cwd+":/cwd") {
		t.Errorf("pass-dir from the stored configuration was not applied: %q", argv)
	}
	if i := slices.Index(argv, "-u"); i < 0 || argv[i+1] != "2000" {
		t.Errorf("uid flag was not applied: %q", argv)
	}
	if got := argv[len(argv)-2:]; !slices.Equal(got, []string{"myapp", "--help"}) {
		t.Errorf("command words = %q", got)
	}

	stored, _ := h.stored(t, "myapp")
	if stored.UID() != settings.DefaultUID {
		t.Errorf("stored uid = %d, a non-reset launch must not rewrite the record", stored.UID())
	}
}

func TestLaunch_RootUID(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	svc := h.service(t)

	if _, err := svc.Launch(t.Context(), Request{
		Args:  []string{"htop"},
		Flags: flags(func(f *resolve.Flags) { f.UID = 0 }),
	}); err != nil {
		t.Fatalf("Launch() error = %v", err)
	}

	argv := h.launcher.calls[0].Argv
	if i := slices.Index(argv, "-u"); i < 0 || argv[i+1] != "0" {
		t.Errorf("argv = %q, want -u 0", argv)
	}
	if stored, _ := h.stored(t, "htop"); stored.UID() != 0 {
		t.Errorf("stored uid = %d, want 0", stored.UID())
	}
}

func TestLaunch_NegativeUIDRejected(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	svc := h.service(t)

	_, err := svc.Launch(t.Context(), Request{
		Args:  []string{"htop"},
		Flags: flags(func(f *resolve.Flags) { f.UID = -1 }),
	})
	if !errors.Is(err, resolve.ErrInvalidUID) {
		t.Fatalf("Launch() error = %v, want ErrInvalidUID", err)
	}
	if len(h.launcher.calls) != 0 {
		t.Error("launcher must not be called")
	}
	if _, err := os.Stat(h.configRoot); !os.IsNotExist(err) {
		t.Errorf("config root must not be created, stat error = %v", err)
	}
}

func TestLaunch_ProgramWithSpacesIsItsOwnKey(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	svc := h.service(t)

	if _, err := svc.Launch(t.Context(), Request{
		Args:  []string{"my tool", "x"},
		Flags: flags(nil),
	}); err != nil {
		t.Fatalf("Launch() error = %v", err)
	}

	stored, found := h.stored(t, "my tool")
	if !found {
		t.Fatal(`configuration for "my tool" was not persisted`)
	}
	if stored.FullCommand() != "'my tool' x" {
		t.Errorf("FullCommand() = %q", stored.FullCommand())
	}
	home := filepath.Join(h.configRoot, workspace.StorageDirName, "my tool")
	if info, err := os.Stat(home); err != nil || !info.IsDir() {
		t.Errorf("expected directory %s: %v", home, err)
	}
	argv := h.launcher.calls[0].Argv
	if got := argv[len(argv)-2:]; !slices.Equal(got, []string{"my tool", "x"}) {
		t.Errorf("command words = %q", got)
	}
}

func TestLaunch_ResetRebuildsFromFlags(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	svc := h.service(t)

	if _, err := svc.Launch(t.Context(), Request{
		Args:  []string{"myapp"},
		Flags: flags(func(f *resolve.Flags) { f.PassDir = true }),
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Launch(t.Context(), Request{
		Args:  []string{"myapp"},
		Flags: flags(func(f *resolve.Flags) {
			f.Persist = false
			f.Interactive = true
		}),
		Reset: true,
	}); err != nil {
		t.Fatal(err)
	}

	stored, _ := h.stored(t, "myapp")
	if stored.PassDir() || stored.Persist() || !stored.Interactive() {
		t.Errorf("stored after reset = %v", stored)
	}
	inv := h.launcher.calls[1]
	if !inv.Interactive || !slices.Contains(inv.Argv, "-i") {
		t.Errorf("reset invocation = %+v, want interactive", inv)
	}
	for _, arg := range inv.Argv {
		if strings.HasSuffix(arg, ":/home/user") || strings.HasSuffix(arg, ":/cwd") {
			t.Errorf("unexpected mount %q after reset", arg)
		}
	}
}

func TestLaunch_NoPersistSkipsCommandHome(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	svc := h.service(t)

	if _, err := svc.Launch(t.Context(), Request{
		Args: []string{"vim"},
		Flags: flags(func(f *resolve.Flags) {
			f.Persist = false
			f.PassTmp = false
		}),
	}); err != nil {
		t.Fatal(err)
	}

	for _, dir := range []string{
		filepath.Join(h.configRoot, workspace.StorageDirName, "vim"),
		filepath.Join(h.tempRoot, workspace.SharedTempPrefix+"vim"),
	} {
		if _, err := os.Stat(dir); !os.IsNotExist(err) {
			t.Errorf("%s should not exist, stat error = %v", dir, err)
		}
	}
}

func TestLaunch_MissingDisplayCreatesNothing(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	delete(h.env, "DISPLAY")
	svc := h.service(t)

	_, err := svc.Launch(t.Context(), Request{Args: []string{"myapp"}, Flags: flags(nil)})
	if !errors.Is(err, invocation.ErrMissingDisplay) {
		t.Fatalf("Launch() error = %v, want ErrMissingDisplay", err)
	}
	if got := issueID(t, err); got != issue.DisplayNotSetId {
		t.Errorf("issue id = %v, want %v", got, issue.DisplayNotSetId)
	}
	if _, err := os.Stat(h.configRoot); !os.IsNotExist(err) {
		t.Errorf("config root should not exist, stat error = %v", err)
	}
	entries, err := os.ReadDir(h.tempRoot)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("temp root has %d entries, want 0", len(entries))
	}
	if len(h.launcher.calls) != 0 {
		t.Error("launcher must not be called")
	}
}

func TestLaunch_NoEngine(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.detector.err = &container.NoEngineFoundError{Reasons: []string{"docker: not installed"}}
	svc := h.service(t)

	_, err := svc.Launch(t.Context(), Request{Flags: flags(nil)})
	if !errors.Is(err, container.ErrNoEngineFound) {
		t.Fatalf("Launch() error = %v, want ErrNoEngineFound", err)
	}
	if got := issueID(t, err); got != issue.ContainerEngineNotFoundId {
		t.Errorf("issue id = %v", got)
	}
	if _, err := os.Stat(h.configRoot); !os.IsNotExist(err) {
		t.Errorf("config root should not exist, stat error = %v", err)
	}
}

func TestLaunch_StoreUnavailable(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	svc := h.service(t)
	svc.openStore = func(context.Context, settings.Backend, string) (settings.Store, error) {
		return nil, &settings.StoreUnavailableError{Path: "data.db", Cause: errors.New("locked")}
	}

	_, err := svc.Launch(t.Context(), Request{Flags: flags(nil)})
	if !errors.Is(err, settings.ErrStoreUnavailable) {
		t.Fatalf("Launch() error = %v, want ErrStoreUnavailable", err)
	}
	if got := issueID(t, err); got != issue.SettingsStoreUnavailableId {
		t.Errorf("issue id = %v", got)
	}
}

func TestLaunch_ProvisioningFailed(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	if err := os.MkdirAll(filepath.Dir(h.configRoot), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(h.configRoot, []byte("not a dir"), 0o600); err != nil {
		t.Fatal(err)
	}
	svc := h.service(t)

	_, err := svc.Launch(t.Context(), Request{Flags: flags(nil)})
	if !errors.Is(err, workspace.ErrProvisioningFailed) {
		t.Fatalf("Launch() error = %v, want ErrProvisioningFailed", err)
	}
	if got := issueID(t, err); got != issue.WorkspaceProvisioningFailedId {
		t.Errorf("issue id = %v", got)
	}
}

func TestLaunch_ExitCodes(t *testing.T) {
	t.Parallel()

	t.Run("child exit code is returned", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		h.launcher.code = 42
		svc := h.service(t)

		code, err := svc.Launch(t.Context(), Request{Flags: flags(func(f *resolve.Flags) { f.Interactive = true })})
		if err != nil {
			t.Fatal(err)
		}
		if code != 42 {
			t.Errorf("code = %d, want 42", code)
		}
	})

	t.Run("start failure is an invocation error", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		h.launcher.err = &invocation.EngineInvocationFailedError{Binary: "sudo", Cause: errors.New("exec format error")}
		svc := h.service(t)

		code, err := svc.Launch(t.Context(), Request{Flags: flags(nil)})
		if !errors.Is(err, invocation.ErrEngineInvocationFailed) {
			t.Fatalf("Launch() error = %v", err)
		}
		if code == 0 {
			t.Error("code should be non-zero")
		}
		if got := issueID(t, err); got != issue.EngineInvocationFailedId {
			t.Errorf("issue id = %v", got)
		}
	})
}

func TestLaunch_DefaultCommandIsBash(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	svc := h.service(t)

	if _, err := svc.Launch(t.Context(), Request{Flags: flags(nil)}); err != nil {
		t.Fatal(err)
	}
	argv := h.launcher.calls[0].Argv
	if argv[len(argv)-1] != "bash" {
		t.Errorf("last argv word = %q, want bash", argv[len(argv)-1])
	}
	if _, found := h.stored(t, "bash"); !found {
		t.Error("configuration for bash was not persisted")
	}
}

func TestLaunch_VerboseReport(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	svc := h.service(t)

	if _, err := svc.Launch(t.Context(), Request{Args: []string{"myapp"}, Flags: flags(nil), Verbose: true}); err != nil {
		t.Fatal(err)
	}
	out := h.stderr.String()
	for _, want := range []string{"stored_created = true", "$ /usr/bin/sudo /usr/bin/docker run --rm"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestLaunch_ImageFreshness(t *testing.T) {
	t.Parallel()

	stale := testNow.Add(-30 * 24 * time.Hour)

	tests := []struct {
		name         string
		update       bool
		noCache      bool
		skipCheck    bool
		present      bool
		created      time.Time
		buildContext string
		answer       bool
		confirmErr   error
		wantBuilds   int
		wantConfirms int
		wantIssue    issue.Id
	}{
		{name: "fresh image", present: true, created: testNow.Add(-time.Hour), buildContext: "/src"},
		{name: "forced update", update: true, present: true, created: testNow, buildContext: "/src", wantBuilds: 1},
		{name: "forced update without cache", update: true, noCache: true, present: true, created: testNow, buildContext: "/src", wantBuilds: 1},
		{name: "forced update without context", update: true, present: true, created: testNow, wantIssue: issue.ImageBuildFailedId},
		{name: "missing image is built", buildContext: "/src", wantBuilds: 1},
		{name: "missing image without context", wantBuilds: 0},
		{name: "stale accepted", present: true, created: stale, buildContext: "/src", answer: true, wantBuilds: 1, wantConfirms: 1},
		{name: "stale declined", present: true, created: stale, buildContext: "/src", wantConfirms: 1},
		{name: "stale not interactive", present: true, created: stale, buildContext: "/src", confirmErr: tui.ErrNotInteractive, wantConfirms: 1},
		{name: "stale cancelled", present: true, created: stale, buildContext: "/src", answer: true, confirmErr: tui.ErrCancelled, wantConfirms: 1},
		{name: "stale skipped", skipCheck: true, present: true, created: stale, buildContext: "/src"},
		{name: "stale without context", present: true, created: stale},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t)
			h.engine.present = tt.present
			h.engine.created = tt.created
			h.cfg.Image.BuildContext = tt.buildContext
			h.answer = tt.answer
			h.confirmErr = tt.confirmErr
			svc := h.service(t)

			_, err := svc.Launch(t.Context(), Request{
				Args:            []string{"myapp"},
				Flags:           flags(nil),
				Update:          tt.update,
				NoCache:         tt.noCache,
				SkipUpdateCheck: tt.skipCheck,
			})
			if tt.wantIssue != 0 {
				if err == nil {
					t.Fatal("Launch() expected error")
				}
				if got := issueID(t, err); got != tt.wantIssue {
					t.Errorf("issue id = %v, want %v", got, tt.wantIssue)
				}
				if len(h.launcher.calls) != 0 {
					t.Error("launcher must not be called")
				}
				return
			}
			if err != nil {
				t.Fatalf("Launch() error = %v", err)
			}
			if len(h.engine.builds) != tt.wantBuilds {
				t.Errorf("builds = %d, want %d", len(h.engine.builds), tt.wantBuilds)
			}
			if h.confirms != tt.wantConfirms {
				t.Errorf("confirms = %d, want %d", h.confirms, tt.wantConfirms)
			}
			if len(h.launcher.calls) != 1 {
				t.Errorf("launcher calls = %d, want 1", len(h.launcher.calls))
			}
			for _, b := range h.engine.builds {
				if b.Tag != "contain" || b.ContextDir != container.HostFilesystemPath(tt.buildContext) || b.Dockerfile != "Dockerfile" || b.NoCache != tt.noCache {
					t.Errorf("build options = %+v", b)
				}
			}
		})
	}
}

func TestLaunch_BuildFailure(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.cfg.Image.BuildContext = "/src"
	h.engine.buildErr = &container.BuildFailedError{Engine: "docker", Tag: "contain", Cause: errors.New("exit status 1")}
	svc := h.service(t)

	_, err := svc.Launch(t.Context(), Request{Flags: flags(nil), Update: true})
	if !errors.Is(err, container.ErrBuildFailed) {
		t.Fatalf("Launch() error = %v, want ErrBuildFailed", err)
	}
	if got := issueID(t, err); got != issue.ImageBuildFailedId {
		t.Errorf("issue id = %v", got)
	}
}

func TestFullCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "no args", want: "bash"},
		{name: "single arg is a command line", args: []string{"vim notes.txt"}, want: "vim notes.txt"},
		{name: "several args are quoted", args: []string{"vim", "my notes.txt"}, want: "vim 'my notes.txt'"},
		{name: "plain words stay bare", args: []string{"ls", "-la"}, want: "ls -la"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := FullCommand(tt.args)
			if err != nil {
				t.Fatalf("FullCommand() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("FullCommand() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCommandKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want settings.CommandKey
	}{
		{name: "no args", want: ""},
		{name: "single arg is parsed later", args: []string{"vim notes.txt"}, want: ""},
		{name: "first of several args", args: []string{"my tool", "x"}, want: "my tool"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := CommandKey(tt.args); got != tt.want {
				t.Errorf("CommandKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestList(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	svc := h.service(t)

	configs, err := svc.List(t.Context())
	if err != nil {
		t.Fatalf("List() before any launch error = %v", err)
	}
	if len(configs) != 0 {
		t.Errorf("List() = %v, want empty", configs)
	}
	if _, err := os.Stat(h.configRoot); !os.IsNotExist(err) {
		t.Errorf("List() must not create the config root, stat error = %v", err)
	}

	for _, args := range [][]string{{"vim", "notes.txt"}, {"myapp"}} {
		if _, err := svc.Launch(t.Context(), Request{Args: args, Flags: flags(nil)}); err != nil {
			t.Fatal(err)
		}
	}

	configs, err = svc.List(t.Context())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	var keys []settings.CommandKey
	for _, c := range configs {
		keys = append(keys, c.CommandKey())
	}
	if want := []settings.CommandKey{"myapp", "vim"}; !slices.Equal(keys, want) {
		t.Errorf("List() keys = %v, want %v", keys, want)
	}
}
