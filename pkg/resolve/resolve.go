// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/luapack/luapack/pkg/manifest"
	"github.com/luapack/luapack/pkg/script"
	"github.com/luapack/luapack/pkg/types"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

const (
	// StrategyRelative resolves against the requiring script's directory.
	StrategyRelative Strategy = iota + 1
	// StrategyPackage resolves against the owning package's entry directory.
	StrategyPackage
	// StrategyEntry resolves against the bundle entry's directory.
	StrategyEntry
	// StrategyInstalled resolves through lua_modules package lookup.
	StrategyInstalled
)

// ErrNotFound is wrapped by NotFoundError.
var ErrNotFound = errors.New("module not found")

type (
	// Strategy identifies one resolution rule.
	Strategy int

	// NotFoundError is returned when no strategy produced an existing file.
	NotFoundError struct {
		Specifier types.Specifier
		Requirer  types.FilesystemPath
		// Tried lists every candidate path that was checked, in order.
		Tried []types.FilesystemPath
	}

	// Resolver resolves specifiers for one bundle.
	Resolver struct {
		fs       afero.Fs
		locator  *manifest.Locator
		entryDir types.FilesystemPath
		logger   *log.Logger
	}

	// Option configures a Resolver.
	Option func(*Resolver)
)

// String returns the strategy name used in trace output.
func (s Strategy) String() string {
	switch s {
	case StrategyRelative:
		return "relative"
	case StrategyPackage:
		return "package"
	case StrategyEntry:
		return "entry"
	case StrategyInstalled:
		return "installed"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("module %q not found from %s (%d candidates tried)", e.Specifier, e.Requirer, len(e.Tried))
}

// Unwrap returns ErrNotFound.
func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// WithLogger routes resolution traces to l at debug level.
func WithLogger(l *log.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithLocator overrides the package locator, which defaults to one reading fs.
func WithLocator(l *manifest.Locator) Option {
	return func(r *Resolver) {
		r.locator = l
	}
}

// New returns a Resolver for a bundle whose entry script is entry.
func New(fs afero.Fs, entry *script.Ref, opts ...Option) *Resolver {
	r := &Resolver{
		fs:       fs,
		locator:  manifest.NewLocator(fs),
		entryDir: entry.Dir(),
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the script spec names when required from requirer.
// The returned error wraps ErrNotFound when every strategy failed, or
// types.ErrInvalidSpecifier when spec cannot name a file at all.
func (r *Resolver) Resolve(requirer *script.Ref, spec types.Specifier) (*script.Ref, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	var tried []types.FilesystemPath
	attempt := func(s Strategy, base types.FilesystemPath, rel types.Specifier, pkg *manifest.Package) (*script.Ref, error) {
		candidate := types.FilesystemPath(filepath.Join(string(base), rel.RelPath(manifest.SourceExt)))
		tried = append(tried, candidate)
		ok := script.Exists(r.fs, candidate)
		r.logger.Debug("resolve", "specifier", spec, "strategy", s, "candidate", candidate, "found", ok)
		if !ok {
			return nil, nil
		}
		return script.New(r.fs, candidate, pkg)
	}

	owner := requirer.Package()

	if ref, err := attempt(StrategyRelative, requirer.Dir(), spec, owner); ref != nil || err != nil {
		return ref, err
	}
	if owner != nil {
		if ref, err := attempt(StrategyPackage, owner.EntryDir, spec, owner); ref != nil || err != nil {
			return ref, err
		}
	} else {
		if ref, err := attempt(StrategyEntry, r.entryDir, spec, nil); ref != nil || err != nil {
			return ref, err
		}
	}

	ref, installedTried, err := r.resolveInstalled(requirer, spec)
	tried = append(tried, installedTried...)
	if ref != nil || err != nil {
		return ref, err
	}

	return nil, &NotFoundError{Specifier: spec, Requirer: requirer.Path(), Tried: tried}
}

// resolveInstalled implements StrategyInstalled. The whole specifier is
// tried as a package name first; for dotted specifiers the first segment
// is then tried as the package and the rest as a path inside it.
func (r *Resolver) resolveInstalled(requirer *script.Ref, spec types.Specifier) (*script.Ref, []types.FilesystemPath, error) {
	var tried []types.FilesystemPath

	pkg, err := r.locator.FindInstalled(requirer.Dir(), string(spec))
	if err != nil {
		return nil, tried, err
	}
	if pkg != nil {
		tried = append(tried, pkg.EntryScriptPath)
		ok := script.Exists(r.fs, pkg.EntryScriptPath)
		r.logger.Debug("resolve", "specifier", spec, "strategy", StrategyInstalled,
			"package", pkg.Name, "candidate", pkg.EntryScriptPath, "found", ok)
		if ok {
			ref, err := script.New(r.fs, pkg.EntryScriptPath, pkg)
			return ref, tried, err
		}
	}

	head, rest := spec.Split()
	if rest == "" {
		return nil, tried, nil
	}
	pkg, err = r.locator.FindInstalled(requirer.Dir(), head)
	if err != nil || pkg == nil {
		return nil, tried, err
	}
	candidate := types.FilesystemPath(filepath.Join(string(pkg.EntryDir), rest.RelPath(manifest.SourceExt)))
	tried = append(tried, candidate)
	ok := script.Exists(r.fs, candidate)
	r.logger.Debug("resolve", "specifier", spec, "strategy", StrategyInstalled,
		"package", pkg.Name, "candidate", candidate, "found", ok)
	if !ok {
		return nil, tried, nil
	}
	ref, err := script.New(r.fs, candidate, pkg)
	return ref, tried, err
}

// FormatTried renders the candidate list for diagnostics, one per line.
func FormatTried(tried []types.FilesystemPath) string {
	lines := make([]string, len(tried))
	for i, p := range tried {
		lines[i] = "  " + string(p)
	}
	return strings.Join(lines, "\n")
}
