// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for luapack.
//
// This package implements the Cobra command hierarchy: build writes a
// bundle, graph reports the module table of a program, and config manages
// the luapack.cue configuration file.
package cmd
