// SPDX-License-Identifier: MPL-2.0

// Package cueutil decodes CUE (and JSON, which is a subset of CUE) documents
// against an embedded schema. Both the luapack config file and the
// package.cue / package.json manifests go through it:
//
//  1. compile the embedded schema and look up its root definition
//  2. compile the user document and unify it with that definition
//  3. validate and decode into a Go struct
//
// # Usage
//
//	//go:embed manifest_schema.cue
//	var manifestSchema []byte
//
//	res, err := cueutil.ParseAndDecode[Manifest](manifestSchema, data, "#Manifest",
//	    cueutil.WithFilename("package.json"),
//	    cueutil.WithConcrete(false))
//
// Errors carry the offending file and the JSON path of the bad field.
package cueutil
