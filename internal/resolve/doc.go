// SPDX-License-Identifier: MPL-2.0

// Package resolve merges a command's stored Configuration with the flags of
// the current launch.
//
// Boolean capabilities are sticky-on: once stored, a capability stays enabled
// on every later launch, and a flag can always enable it for one launch. The
// "no-" flags therefore only shape a fresh Configuration (first launch or an
// explicit reset). The container uid is never inherited; it always comes from
// the current flags.
package resolve
