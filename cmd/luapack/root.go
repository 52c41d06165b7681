// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/luapack/luapack/pkg/types"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the luapack command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "luapack",
		Short: "Bundle a Lua program into a single script",
		Long: TitleStyle.Render("luapack") + SubtitleStyle.Render(" - Bundle a Lua program into a single script") + `

luapack follows the require calls of an entry script, resolves every
required module on disk (relative paths, package manifests and installed
packages) and writes one self-contained Lua 5.1 script that runs the
program without any module search path.

` + SubtitleStyle.Render("Examples:") + `
  luapack build main.lua              Print the bundle to standard output
  luapack build main.lua -o out.lua   Write the bundle to out.lua
  luapack build --minify main.lua     Emit a compact bundle
  luapack graph main.lua              Show the modules of a program
  luapack config show                 Show the effective configuration`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&app.flags.verbose, "verbose", "v", false, "show the full error chain and issue details")
	rootCmd.PersistentFlags().BoolVar(&app.flags.debug, "debug", false, "log module resolution traces to stderr")
	rootCmd.PersistentFlags().StringVar(&app.flags.configPath, "config", "", "config file (default is $HOME/.config/luapack/luapack.cue)")

	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	rootCmd.AddCommand(newBuildCommand(app))
	rootCmd.AddCommand(newGraphCommand(app))
	rootCmd.AddCommand(newConfigCommand(app))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the root command. It is called by main.main().
func Execute() {
	app, err := NewApp(Dependencies{})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(int(types.ExitBuildFailed))
	}

	// Pass version via fang.WithVersion() since fang overrides rootCmd.Version
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(int(exitCode(err)))
	}
}

// exitCode maps a command error onto the process status. Handlers report
// their failures as *ExitError; anything else comes from Cobra rejecting
// the command line.
func exitCode(err error) types.ExitCode {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return types.ExitUsage
}
