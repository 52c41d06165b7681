// SPDX-License-Identifier: MPL-2.0

// Package luaprint renders a gopher-lua syntax tree back into Lua source.
//
// The parser drops grouping parentheses, so the printer re-inserts them
// from operator precedence and associativity; parentheses that change
// meaning (truncating a call's results to one value) are carried by the
// tree's AdjustRet flag and kept. Two layouts are available: a readable one
// with one statement per line and indented blocks, and a compact one that
// keeps only the whitespace the lexer needs. Both produce programs that
// behave identically.
package luaprint
