// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package genie

import (
	"fmt"

	"github.com/suprsokr/wkconvert/drs"
)

// SchemaVersionError reports a data file or section version the converter does
// not understand. Conversion cannot continue: skipping the table would produce an
// installation that loads but behaves wrongly.
type SchemaVersionError struct {
	Path      string // Data file path, if known
	Section   string // Section name or "data file"
	Version   uint16 // Version found
	Supported uint16 // Version understood by this package
}

func (e *SchemaVersionError) Error() string {
	where := e.Section
	if e.Path != "" {
		where = e.Path + ": " + e.Section
	}
	return fmt.Sprintf("unsupported schema version in %s: found %d, supported %d", where, e.Version, e.Supported)
}

// FormatError reports a malformed or corrupt data file. It is the archive
// format error of package drs, so callers handle both with one errors.As.
type FormatError = drs.FormatError
