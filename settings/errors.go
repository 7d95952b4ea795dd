// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package settings

import "fmt"

// ConfigurationError reports an invalid setting. Build joins one error per
// problem; use errors.As to get the first.
type ConfigurationError struct {
	Field  string // Setting name
	Reason string // What is wrong
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid setting %s: %s", e.Field, e.Reason)
}

func configError(field, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
