// SPDX-License-Identifier: MPL-2.0

// Command luapack bundles a Lua program into a single script.
package main

import cmd "github.com/luapack/luapack/cmd/luapack"

func main() {
	cmd.Execute()
}
