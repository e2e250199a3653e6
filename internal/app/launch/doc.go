// SPDX-License-Identifier: MPL-2.0

// Package launch runs one `contain` invocation end to end: engine detection,
// display check, workspace provisioning, settings resolution, image
// freshness, invocation assembly and execution.
//
// Service is the only entry point. Its collaborators are injected through
// options so each stage can be replaced in tests; the defaults are built from
// the loaded application configuration.
package launch
