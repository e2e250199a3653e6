// SPDX-License-Identifier: MPL-2.0

// Package invocation turns an effective configuration into the exact
// container-engine argument vector and runs it, either attached to the
// caller's terminal or detached with "run -d".
package invocation
