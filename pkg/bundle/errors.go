// SPDX-License-Identifier: MPL-2.0

package bundle

import (
	"errors"
	"fmt"
	"strings"

	"github.com/luapack/luapack/pkg/types"
)

var (
	// ErrEntryNotFound is returned when the entry script does not exist.
	ErrEntryNotFound = errors.New("entry script not found")
	// ErrModuleNotFound is returned when a require specifier names no file.
	ErrModuleNotFound = errors.New("module not found")
	// ErrInvalidRequireArgument is returned for require calls whose argument
	// is not a single string literal.
	ErrInvalidRequireArgument = errors.New("require argument must be a single string literal")
	// ErrCircularDependency is returned when a module is required again
	// while it is still being built.
	ErrCircularDependency = errors.New("circular dependency")
	// ErrInvalidExportPosition is returned for module.exports assignments
	// in the entry script.
	ErrInvalidExportPosition = errors.New("module.exports assigned in the entry script")
	// ErrSyntax is returned when a script does not parse.
	ErrSyntax = errors.New("syntax error")
)

type (
	// EntryNotFoundError reports a missing or non-file entry path.
	EntryNotFoundError struct {
		Path types.FilesystemPath
	}

	// ModuleNotFoundError reports a specifier that no resolution strategy
	// could map onto a file.
	ModuleNotFoundError struct {
		Specifier types.Specifier
		Requirer  types.FilesystemPath
		Line      int
		// Tried lists the candidate paths that were checked.
		Tried []types.FilesystemPath
		// Cause is set when the specifier itself is malformed.
		Cause error
	}

	// InvalidRequireArgumentError reports a dynamic require call.
	InvalidRequireArgumentError struct {
		File types.FilesystemPath
		Line int
	}

	// CircularDependencyError reports a require cycle.
	CircularDependencyError struct {
		// Module is the module being re-entered.
		Module types.FilesystemPath
		// Requirer is the script whose require closed the cycle.
		Requirer types.FilesystemPath
		// Chain is the require chain from Module back to Module.
		Chain []types.FilesystemPath
	}

	// InvalidExportPositionError reports module.exports assigned in the
	// entry script, which has no module id.
	InvalidExportPositionError struct {
		File types.FilesystemPath
		Line int
	}

	// SyntaxError wraps a parser failure.
	SyntaxError struct {
		File  types.FilesystemPath
		Cause error
	}
)

func (e *EntryNotFoundError) Error() string {
	return fmt.Sprintf("entry script not found: %s", e.Path)
}

// Unwrap returns ErrEntryNotFound.
func (e *EntryNotFoundError) Unwrap() error { return ErrEntryNotFound }

func (e *ModuleNotFoundError) Error() string {
	msg := fmt.Sprintf("module %q not found (required from %s:%d)", e.Specifier, e.Requirer, e.Line)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns ErrModuleNotFound and the cause, if any.
func (e *ModuleNotFoundError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrModuleNotFound}
	}
	return []error{ErrModuleNotFound, e.Cause}
}

func (e *InvalidRequireArgumentError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, ErrInvalidRequireArgument)
}

// Unwrap returns ErrInvalidRequireArgument.
func (e *InvalidRequireArgumentError) Unwrap() error { return ErrInvalidRequireArgument }

func (e *CircularDependencyError) Error() string {
	chain := make([]string, len(e.Chain))
	for i, p := range e.Chain {
		chain[i] = string(p)
	}
	return fmt.Sprintf("circular dependency: %s is required by %s while it is still loading (%s)",
		e.Module, e.Requirer, strings.Join(chain, " -> "))
}

// Unwrap returns ErrCircularDependency.
func (e *CircularDependencyError) Unwrap() error { return ErrCircularDependency }

func (e *InvalidExportPositionError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, ErrInvalidExportPosition)
}

// Unwrap returns ErrInvalidExportPosition.
func (e *InvalidExportPositionError) Unwrap() error { return ErrInvalidExportPosition }

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error in %s: %v", e.File, e.Cause)
}

// Unwrap returns ErrSyntax and the parser error.
func (e *SyntaxError) Unwrap() []error { return []error{ErrSyntax, e.Cause} }
