// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package drs

import "fmt"

// FormatError reports a malformed or truncated archive.
type FormatError struct {
	Path   string // Archive path
	Reason string // What is wrong
	Err    error  // Underlying error, if any
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed archive %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed archive %s: %s", e.Path, e.Reason)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

func formatError(path, reason string, err error) *FormatError {
	return &FormatError{Path: path, Reason: reason, Err: err}
}
