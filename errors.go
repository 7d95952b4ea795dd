// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package wkconvert

import (
	"fmt"

	"github.com/suprsokr/wkconvert/drs"
	"github.com/suprsokr/wkconvert/genie"
	"github.com/suprsokr/wkconvert/settings"
	"github.com/suprsokr/wkconvert/userpatch"
)

// Error types returned by Run, usable with errors.As.
type (
	ConfigurationError = settings.ConfigurationError
	FormatError        = drs.FormatError
	SchemaVersionError = genie.SchemaVersionError
	HandoffError       = userpatch.HandoffError
)

// IOError is a filesystem failure while the job extracts, writes or publishes
// files.
type IOError struct {
	Op   string // What the job was doing
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}
