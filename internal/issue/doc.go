// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries the failed operation, the resource involved and
// suggestions for the user. Issue cards are Markdown explanations of the
// bundle failures (missing modules, dynamic requires, cycles and so on),
// rendered for the terminal with glamour.
package issue
