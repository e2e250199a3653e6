// SPDX-License-Identifier: MPL-2.0

// Package container provides a unified abstraction layer for container engines (Docker/Podman).
//
// The Engine interface covers what a single launch needs: building the `run`
// argument vector, prefixing it with the engine binary and any privilege
// elevation, inspecting the age of an image and rebuilding it. DockerEngine
// and PodmanEngine both embed BaseCLIEngine for shared argument construction
// and command execution.
//
// Engine selection uses a Picker, which probes a fixed preference order
// (docker, then podman, optionally led by a configured preference). Docker is
// treated as rootful and is invoked through sudo unless the caller is already
// root; Podman is rootless and runs with --userns=keep-id.
package container
