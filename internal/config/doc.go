// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Values are layered, later layers winning: built-in defaults, then a
// luapack.cue file, then LUAPACK_* environment variables, then command-line
// flags (applied by the CLI). The file is taken from an explicit path when
// one is given, otherwise from the user config directory
// (~/.config/luapack/luapack.cue on Linux, the platform equivalent
// elsewhere), otherwise from the working directory.
//
// Config files are validated against the #Config schema in config_schema.cue
// before they reach Viper.
package config
