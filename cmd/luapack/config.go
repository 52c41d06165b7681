// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/luapack/luapack/internal/config"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `luapack config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage luapack configuration",
		Long: `Manage luapack configuration.

Configuration is read from the --config file when given, otherwise from:
  - Linux: ~/.config/luapack/luapack.cue
  - macOS: ~/Library/Application Support/luapack/luapack.cue
  - Windows: %AppData%\luapack\luapack.cue
and then from luapack.cue in the working directory.

LUAPACK_DEBUG, LUAPACK_MINIFY, LUAPACK_OUTPUT and LUAPACK_INDENT override
file values; command-line flags override both.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd)
			if err != nil {
				return app.fail(cmd, "load configuration", app.flags.configPath, err)
			}

			source := cfg.Source
			if source == "" {
				source = "(defaults)"
			}
			fmt.Fprintf(app.stdout, "// source: %s\n", source)
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create the default configuration file",
		Long: `Create the default configuration file in the user config directory,
or at the --config path when one is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configTarget(app)
			if err != nil {
				return app.fail(cmd, "locate configuration", "", err)
			}
			if err := config.WriteFile(config.DefaultConfig(), path, force); err != nil {
				return app.fail(cmd, "create configuration", path, err)
			}
			fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), CmdStyle.Render(path))
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing configuration file")
	cfgCmd.AddCommand(initCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configTarget(app)
			if err != nil {
				return app.fail(cmd, "locate configuration", "", err)
			}
			fmt.Fprintln(app.stdout, path)
			return nil
		},
	})

	return cfgCmd
}

// configTarget is the file `config init` writes: the --config path or the
// user config file.
func configTarget(app *App) (string, error) {
	if app.flags.configPath != "" {
		return app.flags.configPath, nil
	}
	return config.DefaultFilePath()
}
