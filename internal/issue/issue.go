// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
)

type Id int

const (
	EntryNotFoundId Id = iota + 1
	ModuleNotFoundId
	InvalidRequireArgumentId
	CircularDependencyId
	InvalidExportPositionId
	SyntaxErrorId
	InvalidManifestId
	ConfigLoadFailedId
	OutputWriteFailedId
	PermissionDeniedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Markdown returns the message followed by a "See also" list of links.
func (i *Issue) Markdown() string {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range i.extLinks {
			md.WriteString("\n- <" + string(link) + ">")
		}
	}
	return md.String()
}

// Render renders the issue with the glamour style at stylePath (a
// standard style name such as "dark", "light" or "notty" also works).
func (i *Issue) Render(stylePath string) (string, error) {
	return render(i.Markdown(), stylePath)
}

const requireManual HttpLink = "https://www.lua.org/manual/5.1/manual.html#pdf-require"

var (
	render = glamour.Render

	entryNotFoundIssue = &Issue{
		id: EntryNotFoundId,
		mdMsg: `
# Entry script not found!

The path given to luapack does not name an existing Lua file.

## Things you can try:
- Check the path for typos; it is resolved against the current directory
- Point luapack at a file, not a directory:
~~~
$ luapack build src/main.lua
~~~`,
	}

	moduleNotFoundIssue = &Issue{
		id: ModuleNotFoundId,
		mdMsg: `
# Module not found!

A require call names a module that none of the lookup rules could find.

## Lookup order:
1. Next to the requiring script (` + "`require(\"a.b\")`" + ` looks for ` + "`a/b.lua`" + `)
2. Inside the entry directory of the requiring script's package
3. Next to the entry script, for scripts outside any package
4. In ` + "`lua_modules/<name>`" + ` of the requiring directory or any parent

## Things you can try:
- Check the specifier for typos; segments are separated by dots, not slashes
- Make sure installed packages declare ` + "`luaMain`" + ` in their manifest:
~~~json
{ "name": "json", "luaMain": "src/init.lua" }
~~~
- Run with ` + "`--debug`" + ` to see every candidate path that was tried`,
		extLinks: []HttpLink{requireManual},
	}

	invalidRequireArgumentIssue = &Issue{
		id: InvalidRequireArgumentId,
		mdMsg: `
# Dynamic require!

luapack resolves every module at build time, so each require call must
take exactly one string literal.

## Things you can try:
- Replace ` + "`require(name)`" + ` with one call per module:
~~~lua
local handlers = {
  json = require("handlers.json"),
  xml = require("handlers.xml"),
}
local h = handlers[name]
~~~`,
		extLinks: []HttpLink{requireManual},
	}

	circularDependencyIssue = &Issue{
		id: CircularDependencyId,
		mdMsg: `
# Circular dependency!

A module requires, directly or through other modules, a module that is
still being loaded.

## Things you can try:
- Move the shared code into a third module both can require
- Require the module lazily inside the function that needs it
- Assign ` + "`module.exports`" + ` before the require call; from that point
  the module may be required back`,
	}

	invalidExportPositionIssue = &Issue{
		id: InvalidExportPositionId,
		mdMsg: `
# Export in the entry script!

The entry script runs as the bundle's top level and is never required by
anything, so it cannot assign ` + "`module.exports`" + `.

## Things you can try:
- Move the exported value into its own module and require it from the entry
- Bundle the module itself instead of the script that uses it`,
	}

	syntaxErrorIssue = &Issue{
		id: SyntaxErrorId,
		mdMsg: `
# Lua syntax error!

One of the bundled scripts is not valid Lua 5.1.

## Things you can try:
- Check the reported line for typos
- luapack accepts Lua 5.1 syntax; ` + "`goto`" + `, integer division and
  bitwise operators are not supported`,
	}

	invalidManifestIssue = &Issue{
		id: InvalidManifestId,
		mdMsg: `
# Invalid package manifest!

A ` + "`package.cue`" + `, ` + "`package.json`" + ` or ` + "`package.toml`" + ` file could not be read.

## Things you can try:
- Check the file's syntax
- ` + "`luaMain`" + ` must be a non-empty string naming a ` + "`.lua`" + ` file`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The luapack configuration file could not be loaded.

## Things you can try:
- Check the CUE syntax of your config file
- Print the effective configuration:
~~~
$ luapack config show
~~~
- Write a fresh default file:
~~~
$ luapack config init
~~~`,
	}

	outputWriteFailedIssue = &Issue{
		id: OutputWriteFailedId,
		mdMsg: `
# Failed to write the bundle!

The bundle was built but could not be written to its output path.

## Things you can try:
- Make sure the output directory exists
- Write to standard output and redirect it instead:
~~~
$ luapack build main.lua > bundle.lua
~~~`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

You don't have permission to perform this operation.

## Things you can try:
- Check file/directory permissions of the scripts being bundled
- Check that the output directory is writable`,
	}

	issues = map[Id]*Issue{
		entryNotFoundIssue.Id():          entryNotFoundIssue,
		moduleNotFoundIssue.Id():         moduleNotFoundIssue,
		invalidRequireArgumentIssue.Id(): invalidRequireArgumentIssue,
		circularDependencyIssue.Id():     circularDependencyIssue,
		invalidExportPositionIssue.Id():  invalidExportPositionIssue,
		syntaxErrorIssue.Id():            syntaxErrorIssue,
		invalidManifestIssue.Id():        invalidManifestIssue,
		configLoadFailedIssue.Id():       configLoadFailedIssue,
		outputWriteFailedIssue.Id():      outputWriteFailedIssue,
		permissionDeniedIssue.Id():       permissionDeniedIssue,
	}
)

// Values returns every issue, ordered by id.
func Values() []*Issue {
	out := slices.Collect(maps.Values(issues))
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
