// SPDX-License-Identifier: MPL-2.0

// Package resolve maps a require specifier, as seen from a requiring
// script, onto the script it names.
//
// Strategies are tried in order and the first existing file wins:
//
//  1. Relative: the requiring script's own directory.
//  2. Package: the entry directory of the requiring script's package.
//  3. Entry: the directory of the bundle's entry script, only for scripts
//     that do not belong to a package.
//  4. Installed: lua_modules/<name> in the requiring directory or any
//     ancestor, where <name> is the whole specifier, or else its first
//     segment with the remaining segments resolved inside that package.
//
// Resolution is a pure function of its inputs and the filesystem; a
// Resolver keeps no per-call state.
package resolve
