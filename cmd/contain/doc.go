// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the contain command line.
package cmd
