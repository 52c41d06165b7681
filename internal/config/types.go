// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultIndent is one indentation level of readable bundles.
const DefaultIndent = "  "

// ErrInvalidIndent is the sentinel error wrapped by InvalidIndentError.
var ErrInvalidIndent = errors.New("invalid indent")

type (
	// Config holds the luapack settings.
	Config struct {
		// Debug enables build trace logging.
		Debug bool `json:"debug" mapstructure:"debug"`
		// Minify emits compact bundles.
		Minify bool `json:"minify" mapstructure:"minify"`
		// Output is the bundle destination; empty means standard output.
		Output string `json:"output" mapstructure:"output"`
		// Indent is one indentation level of readable bundles.
		Indent string `json:"indent" mapstructure:"indent"`

		// Source is the config file the values were read from, empty when
		// only defaults and the environment applied.
		Source string `json:"-" mapstructure:"-"`
	}

	// InvalidIndentError is returned when Indent holds anything other
	// than spaces and tabs.
	InvalidIndentError struct {
		Value string
	}
)

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Indent: DefaultIndent,
	}
}

// Validate checks the constraints the schema also enforces, for values
// that arrive through the environment or flags.
func (c *Config) Validate() error {
	if c.Indent == "" || strings.Trim(c.Indent, " \t") != "" {
		return &InvalidIndentError{Value: c.Indent}
	}
	return nil
}

func (e *InvalidIndentError) Error() string {
	return fmt.Sprintf("invalid indent %q: must be one or more spaces or tabs", e.Value)
}

// Unwrap returns ErrInvalidIndent.
func (e *InvalidIndentError) Unwrap() error { return ErrInvalidIndent }
