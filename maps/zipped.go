// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package maps

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/krolaw/zipstream"
)

// scanZipped reads a zipped map and returns the scripts inside it that
// reference HD-only constants. Zipped maps are copied unchanged, so those
// scripts will not load in AoC.
func scanZipped(data []byte) ([]string, error) {
	zr := zipstream.NewReader(bytes.NewReader(data))
	var stale []string
	for {
		hdr, err := zr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read zipped map: %w", err)
		}

		if !strings.EqualFold(path.Ext(hdr.Name), scriptExt) {
			if _, err := io.Copy(io.Discard, zr); err != nil {
				return nil, fmt.Errorf("read zipped map: %w", err)
			}
			continue
		}
		script, err := io.ReadAll(zr)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", hdr.Name, err)
		}
		if len(Reindex(script)) != len(script) {
			stale = append(stale, hdr.Name)
		}
	}
	return stale, nil
}
