// SPDX-License-Identifier: MPL-2.0

package container

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"testing"
)

func TestBaseCLIEngine_RunArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts RunOptions
		want []string
	}{
		{
			name: "minimal",
			opts: RunOptions{Image: "contain"},
			want: []string{"run", "contain"},
		},
		{
			name: "full",
			opts: RunOptions{
				Image:       "contain",
				Command:     []string{"vim", "notes.txt"},
				Env:         []string{"DISPLAY=unix:0"},
				Volumes:     []VolumeMount{{HostPath: "/tmp/.X11-unix", ContainerPath: "/tmp/.X11-unix"}, {HostPath: "/cfg/apps", ContainerPath: "/apps"}},
				Devices:     []string{"/dev/snd"},
				User:        "1000",
				Network:     "host",
				Remove:      true,
				Interactive: true,
				TTY:         true,
				Privileged:  true,
			},
			want: []string{
				"run", "--rm", "-i", "-t",
				"-e", "DISPLAY=unix:0",
				"-v", "/tmp/.X11-unix:/tmp/.X11-unix",
				"-v", "/cfg/apps:/apps",
				"--device", "/dev/snd",
				"-u", "1000",
				"--privileged",
				"--network", "host",
				"contain", "vim", "notes.txt",
			},
		},
		{
			name: "labeled volume",
			opts: RunOptions{Image: "img", Volumes: []VolumeMount{{HostPath: "/a", ContainerPath: "/b", SELinux: SELinuxLabelShared}}},
			want: []string{"run", "-v", "/a:/b:z", "img"},
		},
		{
			name: "detached",
			opts: RunOptions{Image: "img", Command: []string{"firefox"}, Remove: true, Detach: true, User: "1000"},
			want: []string{"run", "--rm", "-d", "-u", "1000", "img", "firefox"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			engine := NewBaseCLIEngine("/usr/bin/docker")
			if got := engine.RunArgs(tt.opts); !slices.Equal(got, tt.want) {
				t.Errorf("RunArgs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBaseCLIEngine_RunArgsTransformer(t *testing.T) {
	t.Parallel()

	var seen []string
	engine := NewBaseCLIEngine("/usr/bin/docker", WithRunArgsTransformer(func(args []string) []string {
		seen = slices.Clone(args)
		return append(args, "--marker")
	}))
	got := engine.RunArgs(RunOptions{Image: "img", Command: []string{"tool", "--marker-arg"}})
	want := []string{"run", "--marker", "img", "tool", "--marker-arg"}
	if !slices.Equal(got, want) {
		t.Errorf("RunArgs() = %v, want %v", got, want)
	}
	if !slices.Equal(seen, []string{"run"}) {
		t.Errorf("transformer saw %v, want only the run options", seen)
	}
}

func TestBaseCLIEngine_BuildArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts BuildOptions
		want []string
	}{
		{
			name: "context only",
			opts: BuildOptions{ContextDir: "/ctx", Tag: "contain"},
			want: []string{"build", "-t", "contain", "/ctx"},
		},
		{
			name: "relative dockerfile joins context",
			opts: BuildOptions{ContextDir: "/ctx", Dockerfile: "Dockerfile.gui", Tag: "contain", NoCache: true},
			want: []string{"build", "-f", "/ctx/Dockerfile.gui", "-t", "contain", "--no-cache", "/ctx"},
		},
		{
			name: "absolute dockerfile kept",
			opts: BuildOptions{ContextDir: "/ctx", Dockerfile: "/other/Dockerfile", Tag: "contain"},
			want: []string{"build", "-f", "/other/Dockerfile", "-t", "contain", "/ctx"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			engine := NewBaseCLIEngine("/usr/bin/docker")
			if got := engine.BuildArgs(tt.opts); !slices.Equal(got, tt.want) {
				t.Errorf("BuildArgs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBaseCLIEngine_CommandLine(t *testing.T) {
	t.Parallel()

	plain := NewBaseCLIEngine("/usr/bin/podman")
	if got, want := plain.CommandLine([]string{"run", "img"}), []string{"/usr/bin/podman", "run", "img"}; !slices.Equal(got, want) {
		t.Errorf("CommandLine() = %v, want %v", got, want)
	}

	elevated := NewBaseCLIEngine("/usr/bin/docker", WithElevation("/usr/bin/sudo"))
	if got, want := elevated.CommandLine([]string{"run", "img"}), []string{"/usr/bin/sudo", "/usr/bin/docker", "run", "img"}; !slices.Equal(got, want) {
		t.Errorf("CommandLine() = %v, want %v", got, want)
	}

	prefix := elevated.ElevationPrefix()
	prefix[0] = "mutated"
	if elevated.ElevationPrefix()[0] != "/usr/bin/sudo" {
		t.Error("ElevationPrefix() must return a copy")
	}
}

func TestBaseCLIEngine_CreateCommandUsesElevation(t *testing.T) {
	t.Parallel()

	recorder := NewMockCommandRecorder()
	engine := NewBaseCLIEngine("/usr/bin/docker",
		WithElevation("/usr/bin/sudo"),
		WithExecCommand(recorder.ContextCommandFunc(t)))

	if _, err := engine.RunCommandWithOutput(context.Background(), "version"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	inv := recorder.LastInvocation()
	if inv == nil {
		t.Fatal("expected one invocation")
	}
	if inv.Name != "/usr/bin/sudo" {
		t.Errorf("command name = %q, want /usr/bin/sudo", inv.Name)
	}
	if want := []string{"/usr/bin/docker", "version"}; !slices.Equal(inv.Args, want) {
		t.Errorf("args = %v, want %v", inv.Args, want)
	}
}

func TestBaseCLIEngine_Build(t *testing.T) {
	t.Parallel()

	t.Run("success streams output", func(t *testing.T) {
		t.Parallel()
		recorder := NewMockCommandRecorder()
		recorder.Stdout = "Successfully built"
		engine := NewBaseCLIEngine("/usr/bin/docker", WithName("docker"), WithExecCommand(recorder.ContextCommandFunc(t)))

		var out bytes.Buffer
		err := engine.Build(context.Background(), BuildOptions{ContextDir: "/ctx", Tag: "contain", Stdout: &out})
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		if out.String() != "Successfully built" {
			t.Errorf("stdout = %q", out.String())
		}
		if inv := recorder.LastInvocation(); inv == nil || inv.Args[0] != "build" {
			t.Errorf("expected build invocation, got %+v", inv)
		}
	})

	t.Run("failure is BuildFailedError", func(t *testing.T) {
		t.Parallel()
		recorder := NewMockCommandRecorder()
		recorder.ExitCode = 1
		engine := NewBaseCLIEngine("/usr/bin/docker", WithName("docker"), WithExecCommand(recorder.ContextCommandFunc(t)))

		err := engine.Build(context.Background(), BuildOptions{ContextDir: "/ctx", Tag: "contain"})
		if !errors.Is(err, ErrBuildFailed) {
			t.Fatalf("Build() error = %v, want ErrBuildFailed", err)
		}
		var buildErr *BuildFailedError
		if !errors.As(err, &buildErr) || buildErr.Engine != "docker" || buildErr.Tag != "contain" {
			t.Errorf("unexpected BuildFailedError: %+v", buildErr)
		}
	})

	t.Run("invalid options never run the engine", func(t *testing.T) {
		t.Parallel()
		recorder := NewMockCommandRecorder()
		engine := NewBaseCLIEngine("/usr/bin/docker", WithExecCommand(recorder.ContextCommandFunc(t)))

		err := engine.Build(context.Background(), BuildOptions{Tag: "contain"})
		if !errors.Is(err, ErrInvalidBuildOptions) {
			t.Fatalf("Build() error = %v, want ErrInvalidBuildOptions", err)
		}
		if len(recorder.Invocations) != 0 {
			t.Errorf("expected no invocations, got %d", len(recorder.Invocations))
		}
	})
}

func TestVolumeMount_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mount   VolumeMount
		wantErr bool
	}{
		{"valid", VolumeMount{HostPath: "/a", ContainerPath: "/b"}, false},
		{"valid label", VolumeMount{HostPath: "/a", ContainerPath: "/b", SELinux: SELinuxLabelShared}, false},
		{"private label", VolumeMount{HostPath: "/a", ContainerPath: "/b", SELinux: "Z"}, true},
		{"empty host", VolumeMount{HostPath: " ", ContainerPath: "/b"}, true},
		{"empty container", VolumeMount{HostPath: "/a"}, true},
		{"bad label", VolumeMount{HostPath: "/a", ContainerPath: "/b", SELinux: "q"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.mount.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidVolumeMount) {
				t.Errorf("error should wrap ErrInvalidVolumeMount, got %v", err)
			}
		})
	}
}

func TestVolumeMount_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		mount VolumeMount
		want  string
	}{
		{VolumeMount{HostPath: "/a", ContainerPath: "/b"}, "/a:/b"},
		{VolumeMount{HostPath: "/a", ContainerPath: "/b", SELinux: SELinuxLabelShared}, "/a:/b:z"},
	}

	for _, tt := range tests {
		if got := tt.mount.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
