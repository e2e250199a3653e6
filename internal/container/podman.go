// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"os"
	"strings"
	"time"
)

const usernsKeepID = "--userns=keep-id"

// podmanBinaryNames lists the executables probed for Podman, in order.
// podman-remote is the client shipped on immutable distributions.
var podmanBinaryNames = []string{"podman", "podman-remote"}

type (
	// PodmanEngine implements the Engine interface using the Podman CLI.
	// It embeds BaseCLIEngine for common CLI operations.
	PodmanEngine struct {
		*BaseCLIEngine
	}

	// SELinuxCheckFunc is a function that checks if SELinux is enforcing.
	// This allows injection of mock implementations for testing.
	SELinuxCheckFunc func() bool
)

// NewPodmanEngine creates a new Podman engine for the binary at path.
// The user namespace is kept so files written to bind mounts stay owned by
// the caller, and tool-owned mounts are relabeled when SELinux is enforcing.
func NewPodmanEngine(path HostFilesystemPath, opts ...BaseCLIEngineOption) *PodmanEngine {
	allOpts := append([]BaseCLIEngineOption{
		WithName(string(EngineTypePodman)),
		WithVolumeFormatter(makeSELinuxLabelAdder(isSELinuxEnforcing)),
		WithRunArgsTransformer(addUsernsKeepID),
	}, opts...)

	return &PodmanEngine{
		BaseCLIEngine: NewBaseCLIEngine(path, allOpts...),
	}
}

// Name returns the engine name.
func (e *PodmanEngine) Name() string {
	return string(EngineTypePodman)
}

// Rootless reports true: Podman runs containers as the calling user.
func (e *PodmanEngine) Rootless() bool {
	return true
}

// ImageCreated returns the creation time of image.
func (e *PodmanEngine) ImageCreated(ctx context.Context, image ImageTag) (time.Time, bool, error) {
	return e.inspectCreated(ctx, image)
}

// findPodmanBinary returns the first Podman executable found by lookPath,
// or "" when none is installed.
func findPodmanBinary(lookPath LookPathFunc) string {
	for _, name := range podmanBinaryNames {
		if path, err := lookPath(name); err == nil {
			return path
		}
	}
	return ""
}

// addUsernsKeepID inserts --userns=keep-id after the leading run flags
// (run, --rm, -d, -i, -t). Options that already carry --userns are returned
// unchanged. args never include the image or the container command.
func addUsernsKeepID(args []string) []string {
	if len(args) == 0 || args[0] != "run" {
		return args
	}
	for _, arg := range args {
		if strings.HasPrefix(arg, "--userns") {
			return args
		}
	}

	pos := 1
	for pos < len(args) {
		switch args[pos] {
		case "--rm", "-d", "-i", "-t":
			pos++
			continue
		}
		break
	}

	out := make([]string, 0, len(args)+1)
	out = append(out, args[:pos]...)
	out = append(out, usernsKeepID)
	out = append(out, args[pos:]...)
	return out
}

// isSELinuxEnforcing checks /sys/fs/selinux/enforce for SELinux status.
func isSELinuxEnforcing() bool {
	data, err := os.ReadFile("/sys/fs/selinux/enforce")
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(data)) == "1"
}

// makeSELinuxLabelAdder returns a volume formatter that adds the shared :z
// label to mounts marked Relabel while SELinux is enforcing. Mounts that
// already carry a label are left alone.
func makeSELinuxLabelAdder(enforcing SELinuxCheckFunc) VolumeFormatFunc {
	return func(v VolumeMount) string {
		if v.Relabel && v.SELinux == SELinuxLabelNone && enforcing() {
			v.SELinux = SELinuxLabelShared
		}
		return v.String()
	}
}
