// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"time"
)

// DockerEngine implements the Engine interface using the Docker CLI.
// It embeds BaseCLIEngine for common CLI operations.
type DockerEngine struct {
	*BaseCLIEngine
}

// NewDockerEngine creates a new Docker engine for the binary at path.
// Docker is rootful: the picker adds WithElevation unless the caller is root.
func NewDockerEngine(path HostFilesystemPath, opts ...BaseCLIEngineOption) *DockerEngine {
	allOpts := append([]BaseCLIEngineOption{WithName(string(EngineTypeDocker))}, opts...)
	return &DockerEngine{
		BaseCLIEngine: NewBaseCLIEngine(path, allOpts...),
	}
}

// Name returns the engine name.
func (e *DockerEngine) Name() string {
	return string(EngineTypeDocker)
}

// Rootless reports false: the Docker daemon runs as root.
func (e *DockerEngine) Rootless() bool {
	return false
}

// ImageCreated returns the creation time of image.
func (e *DockerEngine) ImageCreated(ctx context.Context, image ImageTag) (time.Time, bool, error) {
	return e.inspectCreated(ctx, image)
}
