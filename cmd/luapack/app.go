// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"

	"github.com/luapack/luapack/internal/config"
	"github.com/luapack/luapack/pkg/bundle"
	"github.com/luapack/luapack/pkg/types"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

type (
	// App wires CLI services and shared dependencies. All Cobra command
	// handlers receive an App reference.
	App struct {
		Config ConfigProvider
		Fs     afero.Fs
		stdout io.Writer
		stderr io.Writer
		flags  globalFlags
	}

	// Dependencies defines the injection points for building an App. Nil fields are
	// replaced with production defaults by NewApp.
	Dependencies struct {
		Config ConfigProvider
		// Fs is where scripts are read and bundles written.
		Fs     afero.Fs
		Stdout io.Writer
		Stderr io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	globalFlags struct {
		configPath string
		verbose    bool
		debug      bool
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Fs == nil {
		deps.Fs = afero.NewOsFs()
	}

	return &App{
		Config: deps.Config,
		Fs:     deps.Fs,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
	}, nil
}

// loadConfig resolves the effective configuration: the config provider's
// layers first, then the persistent flags the user set explicitly.
func (a *App) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	opts := config.LoadOptions{ConfigFilePath: types.FilesystemPath(a.flags.configPath)}
	cfg, err := a.Config.Load(cmd.Context(), opts)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("debug") {
		cfg.Debug = a.flags.debug
	}
	return cfg, nil
}

// logger returns the build logger: warnings only, every trace line in
// debug mode.
func (a *App) logger(cfg *config.Config) *log.Logger {
	logger := log.NewWithOptions(a.stderr, log.Options{Prefix: "luapack"})
	logger.SetLevel(log.WarnLevel)
	if cfg.Debug {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// bundler builds a Bundler for cfg.
func (a *App) bundler(cfg *config.Config) *bundle.Bundler {
	return bundle.New(
		bundle.WithFs(a.Fs),
		bundle.WithLogger(a.logger(cfg)),
		bundle.WithMinify(cfg.Minify),
		bundle.WithIndent(cfg.Indent),
	)
}
