// SPDX-License-Identifier: MPL-2.0

// Package bundle combines a Lua entry script and every module it reaches
// through require calls into one self-contained Lua program.
//
// A build walks the require graph depth-first from the entry. Each module
// file gets a positive integer id the first time it is reached; the entry
// itself is id 0 and runs as the program's top level. Inside every parsed
// chunk, require("a.b") becomes __luapack_load(<id>) and
// module.exports = x becomes a write into the bundle's module cache.
//
// The emitted program looks like:
//
//	local __luapack_load
//	local __luapack_modules = {}
//	local __luapack_cache = {}
//	__luapack_modules[1] = function(...) <module 1> end
//	...
//	__luapack_load = function(id) ... end
//	<entry statements>
//
// The loader runs each module body at most once, on first use, and hands
// every later caller the cached value.
//
// Any failure (an unresolvable specifier, a dynamic require argument, a
// require cycle, an export in the entry script, a syntax error) aborts the
// whole build.
package bundle
