// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/luapack/luapack/internal/config"
	"github.com/luapack/luapack/internal/issue"
	"github.com/luapack/luapack/pkg/bundle"
	"github.com/luapack/luapack/pkg/manifest"
	"github.com/luapack/luapack/pkg/resolve"
	"github.com/luapack/luapack/pkg/types"

	"github.com/spf13/cobra"
)

// issueStyle lets glamour pick dark, light or plain output for the terminal.
const issueStyle = "auto"

// fail reports err on stderr and returns the ExitError the handler should
// return. Known failures carry suggestions and, in verbose mode, their
// issue card.
func (a *App) fail(cmd *cobra.Command, operation, resource string, err error) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	ae := actionable(operation, resource, err)
	fmt.Fprintln(a.stderr, ErrorStyle.Render("Error: ")+ae.Format(a.flags.verbose))

	if iss := ae.Issue(); iss != nil && a.flags.verbose {
		if rendered, renderErr := iss.Render(issueStyle); renderErr == nil {
			fmt.Fprint(a.stderr, rendered)
		}
	}
	return &ExitError{Code: types.ExitBuildFailed, Err: err}
}

// actionable wraps err with the suggestions and issue card of its kind.
// Errors that already are actionable are returned as they are.
func actionable(operation, resource string, err error) *issue.ActionableError {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae
	}

	ctx := issue.NewErrorContext().
		WithOperation(operation).
		WithResource(resource)

	var (
		notFound *bundle.ModuleNotFoundError
		cycle    *bundle.CircularDependencyError
	)
	switch {
	case errors.Is(err, bundle.ErrEntryNotFound):
		ctx.WithIssue(issue.EntryNotFoundId).
			WithSuggestion("Check the entry path; it is resolved against the working directory")
	case errors.As(err, &notFound):
		ctx.WithIssue(issue.ModuleNotFoundId).
			WithSuggestion("Check the spelling of the require specifier")
		if len(notFound.Tried) > 0 {
			ctx.WithSuggestion("Looked for:\n" + resolve.FormatTried(notFound.Tried))
		}
		ctx.WithSuggestion("Run with --debug to trace module resolution")
	case errors.Is(err, bundle.ErrInvalidRequireArgument):
		ctx.WithIssue(issue.InvalidRequireArgumentId).
			WithSuggestion(`Pass require exactly one string literal, such as require("util")`)
	case errors.As(err, &cycle):
		ctx.WithIssue(issue.CircularDependencyId).
			WithSuggestion("Move the shared code into a module both sides can require").
			WithSuggestion("Run 'luapack graph' on the entry to inspect the module table")
	case errors.Is(err, bundle.ErrInvalidExportPosition):
		ctx.WithIssue(issue.InvalidExportPositionId).
			WithSuggestion("Only required modules can assign module.exports")
	case errors.Is(err, bundle.ErrSyntax):
		ctx.WithIssue(issue.SyntaxErrorId).
			WithSuggestion("Check that the script runs under Lua 5.1")
	case errors.Is(err, manifest.ErrInvalidManifest):
		ctx.WithIssue(issue.InvalidManifestId).
			WithSuggestion("Check the name and luaMain fields of the package manifest")
	case errors.Is(err, config.ErrInvalidIndent):
		ctx.WithIssue(issue.ConfigLoadFailedId).
			WithSuggestion("Use spaces or tabs with --indent")
	case errors.Is(err, fs.ErrExist):
		ctx.WithSuggestion("Pass --force to overwrite it")
	case errors.Is(err, fs.ErrPermission):
		ctx.WithIssue(issue.PermissionDeniedId)
	}

	return ctx.Wrap(err).Build()
}
