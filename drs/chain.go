// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package drs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// normalizeEntryName normalizes a loose file name for lookup.
// Loose files are matched case-insensitively and ids ignore leading zeros
// ("015000.SLP" == "15000.slp").
func normalizeEntryName(name string) string {
	return canonicalName(strings.ToLower(filepath.Base(name)))
}

// Chain is a prioritized list of directories holding loose entry files
// ("<id>.<ext>") that override archive entries. Later directories win.
type Chain struct {
	dirs       []string
	fileMap    map[string]string // cache: normalized entry name -> file path
	cacheBuilt bool              // whether fileMap has been populated
}

// NewChain creates a chain over dirs in order of increasing priority.
// Directories that do not exist are skipped.
func NewChain(dirs ...string) *Chain {
	return &Chain{dirs: dirs, fileMap: make(map[string]string)}
}

// Resolve returns the path of the highest priority file for an entry name.
func (c *Chain) Resolve(name string) (string, bool, error) {
	if err := c.build(); err != nil {
		return "", false, err
	}
	p, ok := c.fileMap[normalizeEntryName(name)]
	return p, ok, nil
}

// Names returns the sorted entry names provided by the chain.
func (c *Chain) Names() ([]string, error) {
	if err := c.build(); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(c.fileMap))
	for name := range c.fileMap {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Overlay copies every entry provided by the chain into the archive and returns
// the number of entries written.
func (c *Chain) Overlay(a *StagingArchive) (int, error) {
	names, err := c.Names()
	if err != nil {
		return 0, err
	}
	for _, name := range names {
		data, err := os.ReadFile(c.fileMap[name])
		if err != nil {
			return 0, fmt.Errorf("read override %s: %w", name, err)
		}
		if err := a.Set(name, data); err != nil {
			return 0, fmt.Errorf("overlay %s: %w", name, err)
		}
	}
	return len(names), nil
}

// build populates the file map once. Files whose names are not entry names are
// ignored.
func (c *Chain) build() error {
	if c.cacheBuilt {
		return nil
	}
	for _, dir := range c.dirs {
		items, err := os.ReadDir(dir)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return fmt.Errorf("read override directory %s: %w", dir, err)
		}
		for _, item := range items {
			if item.IsDir() {
				continue
			}
			name := normalizeEntryName(item.Name())
			if _, _, err := ParseEntryName(name); err != nil {
				continue
			}
			c.fileMap[name] = filepath.Join(dir, item.Name())
		}
	}
	c.cacheBuilt = true
	return nil
}
