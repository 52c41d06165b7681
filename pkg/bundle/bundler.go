// SPDX-License-Identifier: MPL-2.0

package bundle

import (
	"context"
	"io"

	"github.com/luapack/luapack/pkg/luaprint"
	"github.com/luapack/luapack/pkg/manifest"
	"github.com/luapack/luapack/pkg/resolve"
	"github.com/luapack/luapack/pkg/script"
	"github.com/luapack/luapack/pkg/types"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/yuin/gopher-lua/ast"
)

type (
	// Bundler builds bundles. A Bundler holds only configuration, so one
	// value can run any number of builds.
	Bundler struct {
		fs     afero.Fs
		logger *log.Logger
		print  luaprint.Options
	}

	// Option configures a Bundler.
	Option func(*Bundler)

	// Result is the outcome of a successful build.
	Result struct {
		Graph *Graph
		// Chunk is the emitted program.
		Chunk []ast.Stmt
		// Code is Chunk rendered as Lua source.
		Code string
	}
)

// WithFs sets the filesystem scripts and manifests are read from.
func WithFs(fs afero.Fs) Option {
	return func(b *Bundler) {
		b.fs = fs
	}
}

// WithLogger sets the logger for build and resolution traces.
func WithLogger(l *log.Logger) Option {
	return func(b *Bundler) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithMinify selects compact output.
func WithMinify(minify bool) Option {
	return func(b *Bundler) {
		b.print.Minify = minify
	}
}

// WithIndent sets one indentation level of readable output.
func WithIndent(indent string) Option {
	return func(b *Bundler) {
		b.print.Indent = indent
	}
}

// New returns a Bundler reading from the OS filesystem unless WithFs is
// given.
func New(opts ...Option) *Bundler {
	b := &Bundler{
		fs:     afero.NewOsFs(),
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build bundles the program whose entry script is entryPath. ctx is
// checked before each module is built.
func (b *Bundler) Build(ctx context.Context, entryPath types.FilesystemPath) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	loc := manifest.NewLocator(b.fs)
	entry, err := b.entry(loc, entryPath)
	if err != nil {
		return nil, err
	}

	resolver := resolve.New(b.fs, entry, resolve.WithLogger(b.logger), resolve.WithLocator(loc))
	graph, err := newBuilder(ctx, entry, resolver, b.logger).build()
	if err != nil {
		return nil, err
	}

	chunk, err := Emit(graph)
	if err != nil {
		return nil, err
	}
	code, err := luaprint.String(chunk, b.print)
	if err != nil {
		return nil, err
	}

	b.logger.Info("bundle built", "entry", entry.Path(), "modules", graph.Len(), "bytes", len(code))
	return &Result{Graph: graph, Chunk: chunk, Code: code}, nil
}

func (b *Bundler) entry(loc *manifest.Locator, path types.FilesystemPath) (*script.Ref, error) {
	if err := path.Validate(); err != nil {
		return nil, &EntryNotFoundError{Path: path}
	}
	ref, err := script.New(b.fs, path, nil)
	if err != nil {
		return nil, err
	}
	if !script.Exists(b.fs, ref.Path()) {
		return nil, &EntryNotFoundError{Path: ref.Path()}
	}

	// An entry that is its package's declared luaMain belongs to that
	// package; any other entry is a loose script.
	pkg, err := loc.FindEnclosing(ref.Dir())
	if err != nil {
		return nil, err
	}
	if pkg != nil && pkg.EntryScriptPath == ref.Path() {
		b.logger.Debug("entry package", "name", pkg.Name, "manifest", pkg.ManifestPath)
		return script.New(b.fs, ref.Path(), pkg)
	}
	return ref, nil
}
