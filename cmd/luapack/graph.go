// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/luapack/luapack/internal/dag"
	"github.com/luapack/luapack/pkg/bundle"
	"github.com/luapack/luapack/pkg/manifest"
	"github.com/luapack/luapack/pkg/types"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

func newGraphCommand(app *App) *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "graph <entry>",
		Short: "Show the module table of a program",
		Long: `Show the module table of a program.

Every script the entry reaches is listed with the id it gets in the bundle,
the package it belongs to and the scripts it requires, followed by an order
in which the scripts could be loaded. Paths are relative to the entry's
directory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd)
			if err != nil {
				return app.fail(cmd, "load configuration", app.flags.configPath, err)
			}

			entry := args[0]
			res, err := app.bundler(cfg).Build(cmd.Context(), types.FilesystemPath(entry))
			if err != nil {
				return app.fail(cmd, "bundle", entry, err)
			}

			md := graphMarkdown(res.Graph)
			if plain {
				fmt.Fprint(app.stdout, md)
				return nil
			}
			out, err := glamour.Render(md, issueStyle)
			if err != nil {
				return app.fail(cmd, "render graph", entry, err)
			}
			fmt.Fprint(app.stdout, out)
			return nil
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "print the markdown source instead of rendering it")

	return cmd
}

// graphMarkdown renders g as a markdown report.
func graphMarkdown(g *bundle.Graph) string {
	base := g.Entry.Dir()
	rel := func(p types.FilesystemPath) string {
		if r, err := filepath.Rel(string(base), string(p)); err == nil {
			return filepath.ToSlash(r)
		}
		return string(p)
	}
	requires := func(p types.FilesystemPath) string {
		deps := g.Requires(p)
		names := make([]string, len(deps))
		for i, d := range deps {
			names[i] = "`" + rel(d) + "`"
		}
		return strings.Join(names, ", ")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", rel(g.Entry.Path()))
	sb.WriteString("| ID | Script | Package | Requires |\n")
	sb.WriteString("|---:|--------|---------|----------|\n")
	fmt.Fprintf(&sb, "| %d | `%s` | %s | %s |\n",
		types.EntryModuleID, rel(g.Entry.Path()), packageName(g.Entry.Package()), requires(g.Entry.Path()))
	for _, rec := range g.Records() {
		fmt.Fprintf(&sb, "| %d | `%s` | %s | %s |\n",
			rec.ID, rel(rec.Script.Path()), packageName(rec.Script.Package()), requires(rec.Script.Path()))
	}

	sb.WriteString("\n## Load order\n\n")
	order, err := g.LoadOrder()
	var cycle *dag.CycleError
	switch {
	case errors.As(err, &cycle):
		sb.WriteString("Modules that export before requiring each other have no load order:\n\n")
		for _, p := range cycle.Cycle {
			fmt.Fprintf(&sb, "- `%s`\n", rel(types.FilesystemPath(p)))
		}
	case err != nil:
		fmt.Fprintf(&sb, "Unavailable: %v\n", err)
	default:
		for i, p := range order {
			fmt.Fprintf(&sb, "%d. `%s`\n", i+1, rel(p))
		}
	}
	return sb.String()
}

func packageName(pkg *manifest.Package) string {
	if pkg == nil {
		return ""
	}
	return pkg.Name
}
