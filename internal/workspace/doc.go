// SPDX-License-Identifier: MPL-2.0

// Package workspace computes and materializes the host-side directories a
// launch depends on: the configuration root with its apps and storage
// subdirectories, the per-command persistent home, and the per-command shared
// temp folder. Every Ensure operation is idempotent.
package workspace
