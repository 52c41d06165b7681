// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/luapack/luapack/pkg/cueutil"
	"github.com/luapack/luapack/pkg/types"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
)

const (
	// EntryField is the manifest key naming the package's entry script.
	EntryField = "luaMain"
	// InstallDir holds installed dependency packages, one directory per package.
	InstallDir = "lua_modules"
	// SourceExt is the only extension luapack resolves.
	SourceExt = ".lua"
)

// FileNames lists manifest file names in lookup order.
var FileNames = []string{"package.cue", "package.json", "package.toml"}

//go:embed manifest_schema.cue
var manifestSchema []byte

var (
	// ErrNoManifest is returned when a directory holds none of FileNames.
	ErrNoManifest = errors.New("no package manifest")
	// ErrNotAPackage is returned when a manifest exists but does not declare
	// a usable luaMain entry.
	ErrNotAPackage = errors.New("not a resolvable package")
	// ErrInvalidManifest is the sentinel wrapped by InvalidManifestError.
	ErrInvalidManifest = errors.New("invalid package manifest")
)

type (
	// Manifest holds the manifest fields luapack understands.
	Manifest struct {
		Name    string `json:"name,omitempty" toml:"name"`
		LuaMain string `json:"luaMain,omitempty" toml:"luaMain"`
	}

	// Package describes a resolvable package: a root directory whose
	// manifest designates one entry script.
	Package struct {
		// Name is the manifest name, or the root directory's base name.
		Name string
		// RootDir is the directory holding the manifest.
		RootDir types.FilesystemPath
		// ManifestPath is the manifest file the package was loaded from.
		ManifestPath types.FilesystemPath
		// EntryScriptPath is the absolute path of the luaMain script.
		EntryScriptPath types.FilesystemPath
		// EntryDir is the directory of EntryScriptPath. Modules inside the
		// package may be required relative to it.
		EntryDir types.FilesystemPath
	}

	// InvalidManifestError reports a manifest that exists but cannot be decoded.
	InvalidManifestError struct {
		Path  types.FilesystemPath
		Cause error
	}

	// Locator finds and loads packages on a filesystem.
	Locator struct {
		fs afero.Fs
	}
)

// Error implements the error interface.
func (e *InvalidManifestError) Error() string {
	return fmt.Sprintf("invalid package manifest %s: %v", e.Path, e.Cause)
}

// Unwrap returns ErrInvalidManifest so both the sentinel and the cause match.
func (e *InvalidManifestError) Unwrap() []error { return []error{ErrInvalidManifest, e.Cause} }

// NewLocator returns a Locator reading from fs.
func NewLocator(fs afero.Fs) *Locator {
	return &Locator{fs: fs}
}

// Read decodes the first manifest found in dir.
func (l *Locator) Read(dir types.FilesystemPath) (*Manifest, types.FilesystemPath, error) {
	for _, name := range FileNames {
		path := types.FilesystemPath(filepath.Join(string(dir), name))
		data, err := afero.ReadFile(l.fs, string(path))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, "", fmt.Errorf("reading %s: %w", path, err)
		}
		m, err := decode(name, data)
		if err != nil {
			return nil, "", &InvalidManifestError{Path: path, Cause: err}
		}
		return m, path, nil
	}
	return nil, "", fmt.Errorf("%s: %w", dir, ErrNoManifest)
}

func decode(name string, data []byte) (*Manifest, error) {
	if filepath.Ext(name) == ".toml" {
		var m Manifest
		if err := toml.Unmarshal(data, &m); err != nil {
			return nil, err
		}
		return &m, nil
	}
	res, err := cueutil.ParseAndDecode[Manifest](manifestSchema, data, "#Manifest",
		cueutil.WithFilename(name),
		cueutil.WithConcrete(false))
	if err != nil {
		return nil, err
	}
	return res.Value, nil
}

// Load reads the manifest in dir and returns the package it describes.
// It fails with ErrNoManifest when dir has no manifest and with
// ErrNotAPackage when the manifest lacks a .lua luaMain entry.
func (l *Locator) Load(dir types.FilesystemPath) (*Package, error) {
	root, err := dir.Canonical()
	if err != nil {
		return nil, err
	}
	m, manifestPath, err := l.Read(root)
	if err != nil {
		return nil, err
	}

	entry := strings.TrimSpace(m.LuaMain)
	if entry == "" {
		return nil, fmt.Errorf("%s: %s not declared: %w", manifestPath, EntryField, ErrNotAPackage)
	}
	switch filepath.Ext(entry) {
	case SourceExt:
	case "":
		entry += SourceExt
	default:
		return nil, fmt.Errorf("%s: %s %q is not a %s file: %w", manifestPath, EntryField, m.LuaMain, SourceExt, ErrNotAPackage)
	}
	if filepath.IsAbs(entry) {
		return nil, fmt.Errorf("%s: %s %q must be relative to the manifest: %w", manifestPath, EntryField, m.LuaMain, ErrNotAPackage)
	}

	entryPath := types.FilesystemPath(filepath.Join(string(root), filepath.FromSlash(entry)))
	name := m.Name
	if name == "" {
		name = filepath.Base(string(root))
	}
	return &Package{
		Name:            name,
		RootDir:         root,
		ManifestPath:    manifestPath,
		EntryScriptPath: entryPath,
		EntryDir:        entryPath.Dir(),
	}, nil
}

// FindEnclosing walks from dir towards the filesystem root and returns the
// nearest package whose root contains dir. Directories whose manifest does
// not declare luaMain are skipped. It returns (nil, nil) when no ancestor
// is a package.
func (l *Locator) FindEnclosing(dir types.FilesystemPath) (*Package, error) {
	cur, err := dir.Canonical()
	if err != nil {
		return nil, err
	}
	for {
		pkg, err := l.Load(cur)
		switch {
		case err == nil:
			return pkg, nil
		case errors.Is(err, ErrNoManifest), errors.Is(err, ErrNotAPackage):
		default:
			return nil, err
		}
		parent := cur.Dir()
		if parent == cur {
			return nil, nil
		}
		cur = parent
	}
}

// FindInstalled looks for lua_modules/<name> in from and each ancestor and
// returns the first one that loads as a package. Installed directories with
// no manifest, or whose manifest lacks luaMain, are skipped so the search
// keeps climbing. It returns (nil, nil) when nothing matches.
func (l *Locator) FindInstalled(from types.FilesystemPath, name string) (*Package, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return nil, nil
	}
	cur, err := from.Canonical()
	if err != nil {
		return nil, err
	}
	for {
		candidate := types.FilesystemPath(filepath.Join(string(cur), InstallDir, name))
		if isDir(l.fs, candidate) {
			pkg, err := l.Load(candidate)
			switch {
			case err == nil:
				return pkg, nil
			case errors.Is(err, ErrNoManifest), errors.Is(err, ErrNotAPackage):
			default:
				return nil, err
			}
		}
		parent := cur.Dir()
		if parent == cur {
			return nil, nil
		}
		cur = parent
	}
}

func isDir(fs afero.Fs, path types.FilesystemPath) bool {
	info, err := fs.Stat(string(path))
	return err == nil && info.IsDir()
}
