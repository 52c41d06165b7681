// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
)

// SpecifierSeparator splits a specifier into nested path segments.
const SpecifierSeparator = "."

// ErrInvalidSpecifier is the sentinel error wrapped by InvalidSpecifierError.
var ErrInvalidSpecifier = errors.New("invalid module specifier")

type (
	// Specifier is the literal string passed to require, e.g. "util.strings".
	// Dot-separated segments map 1:1 onto nested relative path segments.
	Specifier string

	// InvalidSpecifierError is returned when a Specifier is empty, has an
	// empty segment, or contains a path separator or whitespace.
	InvalidSpecifierError struct {
		Value  Specifier
		Reason string
	}
)

// String returns the string representation of the Specifier.
func (s Specifier) String() string { return string(s) }

// Validate reports whether the specifier can be mapped onto a relative path.
func (s Specifier) Validate() error {
	if s == "" {
		return &InvalidSpecifierError{Value: s, Reason: "must be non-empty"}
	}
	if strings.ContainsAny(string(s), `/\`) {
		return &InvalidSpecifierError{Value: s, Reason: "path separators are not allowed, use dots"}
	}
	if strings.IndexFunc(string(s), unicode.IsSpace) >= 0 {
		return &InvalidSpecifierError{Value: s, Reason: "whitespace is not allowed"}
	}
	for _, seg := range s.Segments() {
		if seg == "" {
			return &InvalidSpecifierError{Value: s, Reason: "empty segment"}
		}
	}
	return nil
}

// Segments returns the dot-separated parts of the specifier.
func (s Specifier) Segments() []string {
	return strings.Split(string(s), SpecifierSeparator)
}

// RelPath maps the specifier onto a relative file path with ext appended.
//
//	Specifier("a.b.c").RelPath(".lua") == "a/b/c.lua"
func (s Specifier) RelPath(ext string) string {
	return filepath.Join(s.Segments()...) + ext
}

// Split separates the first segment from the rest. rest is empty when the
// specifier has a single segment.
func (s Specifier) Split() (head string, rest Specifier) {
	h, r, _ := strings.Cut(string(s), SpecifierSeparator)
	return h, Specifier(r)
}

// Error implements the error interface for InvalidSpecifierError.
func (e *InvalidSpecifierError) Error() string {
	return fmt.Sprintf("invalid module specifier %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidSpecifier for errors.Is() compatibility.
func (e *InvalidSpecifierError) Unwrap() error { return ErrInvalidSpecifier }
