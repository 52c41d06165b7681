// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/luapack/luapack/internal/config"
	"github.com/luapack/luapack/internal/issue"
	"github.com/luapack/luapack/pkg/bundle"
	"github.com/luapack/luapack/pkg/types"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

type buildFlags struct {
	output string
	minify bool
	indent string
}

func newBuildCommand(app *App) *cobra.Command {
	var flags buildFlags

	cmd := &cobra.Command{
		Use:   "build <entry>",
		Short: "Bundle an entry script and every module it requires",
		Long: `Bundle an entry script and every module it requires.

The bundle is written to standard output unless --output (or the output
config key) names a file. Parent directories of the output file are created.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd)
			if err != nil {
				return app.fail(cmd, "load configuration", app.flags.configPath, err)
			}
			applyBuildFlags(cmd, cfg, flags)
			if err := cfg.Validate(); err != nil {
				return app.fail(cmd, "validate options", "", err)
			}
			return runBuild(cmd, app, cfg, args[0])
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "write the bundle to this file instead of standard output")
	cmd.Flags().BoolVar(&flags.minify, "minify", false, "emit a compact bundle")
	cmd.Flags().StringVar(&flags.indent, "indent", config.DefaultIndent, "one indentation level of readable output")

	return cmd
}

// applyBuildFlags overrides cfg with the flags set on the command line.
func applyBuildFlags(cmd *cobra.Command, cfg *config.Config, flags buildFlags) {
	if cmd.Flags().Changed("output") {
		cfg.Output = flags.output
	}
	if cmd.Flags().Changed("minify") {
		cfg.Minify = flags.minify
	}
	if cmd.Flags().Changed("indent") {
		cfg.Indent = flags.indent
	}
}

func runBuild(cmd *cobra.Command, app *App, cfg *config.Config, entry string) error {
	res, err := app.bundler(cfg).Build(cmd.Context(), types.FilesystemPath(entry))
	if err != nil {
		return app.fail(cmd, "bundle", entry, err)
	}

	if cfg.Output == "" {
		fmt.Fprint(app.stdout, withNewline(res.Code))
		return nil
	}

	if err := writeBundle(app.Fs, cfg.Output, res); err != nil {
		return app.fail(cmd, "", "", issue.NewErrorContext().
			WithOperation("write bundle").
			WithResource(cfg.Output).
			WithIssue(issue.OutputWriteFailedId).
			WithSuggestion("Check that the output directory is writable").
			Wrap(err).
			Build())
	}

	fmt.Fprintf(app.stdout, "%s Bundled %d scripts into %s\n",
		SuccessStyle.Render("✓"), res.Graph.Len()+1, CmdStyle.Render(cfg.Output))
	return nil
}

func writeBundle(fs afero.Fs, output string, res *bundle.Result) error {
	if err := fs.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return err
	}
	return afero.WriteFile(fs, output, []byte(withNewline(res.Code)), 0o644)
}

func withNewline(code string) string {
	if code == "" || strings.HasSuffix(code, "\n") {
		return code
	}
	return code + "\n"
}
