// SPDX-License-Identifier: MPL-2.0

// Package manifest locates luapack packages on disk.
//
// A directory is a package when it holds a manifest whose luaMain field
// names the package's entry .lua file. Manifests are read from the first
// file that exists, in this order:
//
//   - package.cue  (CUE, validated against #Manifest)
//   - package.json (JSON, compiled through CUE against the same schema)
//   - package.toml (TOML)
//
// Only name and luaMain are read; every other key is ignored. Installed
// dependencies live under lua_modules/<name>/ in the requiring directory or
// any of its ancestors.
package manifest
