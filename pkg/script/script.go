// SPDX-License-Identifier: MPL-2.0

// Package script identifies the Lua source files taking part in a bundle.
package script

import (
	"fmt"
	"path/filepath"

	"github.com/luapack/luapack/pkg/manifest"
	"github.com/luapack/luapack/pkg/types"

	"github.com/spf13/afero"
)

// Ref names one source file by canonical path, together with the package
// that owns it (nil for loose project files). Two refs with the same
// canonical path denote the same module. Contents are read on first use
// and kept for the lifetime of the ref.
type Ref struct {
	path types.FilesystemPath
	pkg  *manifest.Package
	fs   afero.Fs

	loaded   bool
	contents []byte
	readErr  error
}

// New returns a Ref for path, which is canonicalized first.
func New(fs afero.Fs, path types.FilesystemPath, pkg *manifest.Package) (*Ref, error) {
	canonical, err := path.Canonical()
	if err != nil {
		return nil, err
	}
	return &Ref{path: canonical, pkg: pkg, fs: fs}, nil
}

// Path returns the canonical path. It is the ref's identity key.
func (r *Ref) Path() types.FilesystemPath { return r.path }

// Dir returns the directory containing the script.
func (r *Ref) Dir() types.FilesystemPath { return r.path.Dir() }

// Package returns the owning package, or nil.
func (r *Ref) Package() *manifest.Package { return r.pkg }

// Name returns the base file name, for messages.
func (r *Ref) Name() string { return filepath.Base(string(r.path)) }

// String implements fmt.Stringer.
func (r *Ref) String() string { return string(r.path) }

// Contents returns the file's bytes, reading storage at most once. A failed
// read is remembered too, so callers see the same error every time.
func (r *Ref) Contents() ([]byte, error) {
	if !r.loaded {
		r.loaded = true
		r.contents, r.readErr = afero.ReadFile(r.fs, string(r.path))
		if r.readErr != nil {
			r.readErr = fmt.Errorf("reading %s: %w", r.path, r.readErr)
		}
	}
	return r.contents, r.readErr
}

// Exists reports whether path names a regular file on fs.
func Exists(fs afero.Fs, path types.FilesystemPath) bool {
	info, err := fs.Stat(string(path))
	return err == nil && !info.IsDir()
}
