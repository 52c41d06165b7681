// SPDX-License-Identifier: MPL-2.0

// Package types holds the small typed primitives shared across luapack:
// filesystem paths, require specifiers, bundle module ids and process exit
// codes. Each type validates itself and reports failures through an
// Invalid*Error struct that unwraps to a package-level sentinel, so callers
// can match either the concrete error or the sentinel with errors.As/Is.
package types
