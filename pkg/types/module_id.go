// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strconv"
)

// EntryModuleID is reserved for the entry script. The entry never owns a
// registry slot; its statements run directly at the end of the bundle.
const EntryModuleID ModuleID = 0

// ErrInvalidModuleID is the sentinel error wrapped by InvalidModuleIDError.
var ErrInvalidModuleID = errors.New("invalid module id")

type (
	// ModuleID is the integer key a bundled module is registered under.
	ModuleID int

	// InvalidModuleIDError is returned for negative module ids.
	InvalidModuleIDError struct {
		Value ModuleID
	}
)

// Validate returns an error for negative ids.
func (id ModuleID) Validate() error {
	if id < 0 {
		return &InvalidModuleIDError{Value: id}
	}
	return nil
}

// IsEntry reports whether id denotes the entry script.
func (id ModuleID) IsEntry() bool { return id == EntryModuleID }

// String returns the decimal form of the id.
func (id ModuleID) String() string { return strconv.Itoa(int(id)) }

// Error implements the error interface.
func (e *InvalidModuleIDError) Error() string {
	return fmt.Sprintf("invalid module id %d (must be non-negative)", e.Value)
}

// Unwrap returns ErrInvalidModuleID for errors.Is() compatibility.
func (e *InvalidModuleIDError) Unwrap() error { return ErrInvalidModuleID }
