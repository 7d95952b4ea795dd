// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

// Package maps copies random map scripts from an HD installation into the map
// folder of a converted installation.
//
// Maps are staged per destination. A map whose name is already taken in the
// destination (or earlier in the same staging folder) is skipped when the
// content is identical and renamed "<base>_<n><ext>" otherwise, so a differing
// file is never overwritten.
package maps

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Source and destination folders, relative to the installation roots.
var (
	BuiltinDir = filepath.Join("resources", "_common", "random-map-scripts")
	CustomDir  = "Random"
	TargetDir  = "Random"
)

const (
	scriptExt = ".rms"
	// zipped scripts carry this prefix and are copied as is
	zippedPrefix = "ZR@"
)

// Rename records a map stored under a new name.
type Rename struct {
	From string // Source file name
	To   string // Name in the destination
}

// Result summarizes one migration.
type Result struct {
	Copied   int      // Maps staged, renamed ones included
	Skipped  int      // Maps already present with identical content
	Renamed  []Rename // Maps staged under a new name
	Warnings []string // Non-fatal problems, such as a missing source folder
}

// Migrator stages maps for one destination.
type Migrator struct {
	hdPath     string
	copyMaps   bool
	copyCustom bool
}

// New creates a migrator reading from an HD installation.
func New(hdPath string, copyMaps, copyCustom bool) *Migrator {
	return &Migrator{hdPath: hdPath, copyMaps: copyMaps, copyCustom: copyCustom}
}

// Enabled reports whether any map source is selected.
func (m *Migrator) Enabled() bool {
	return m.copyMaps || m.copyCustom
}

// Migrate stages the selected maps into stageDir. liveDir is the installed map
// folder of the destination and is only read; it may not exist yet.
func (m *Migrator) Migrate(stageDir, liveDir string) (*Result, error) {
	result := &Result{}

	var sources []string
	if m.copyMaps {
		sources = append(sources, filepath.Join(m.hdPath, BuiltinDir))
	}
	if m.copyCustom {
		sources = append(sources, filepath.Join(m.hdPath, CustomDir))
	}
	if len(sources) == 0 {
		return result, nil
	}

	if err := os.MkdirAll(stageDir, 0755); err != nil {
		return nil, fmt.Errorf("create map directory: %w", err)
	}
	for _, src := range sources {
		if err := m.migrateDir(src, stageDir, liveDir, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (m *Migrator) migrateDir(src, stageDir, liveDir string, result *Result) error {
	items, err := os.ReadDir(src)
	if os.IsNotExist(err) {
		result.Warnings = append(result.Warnings, fmt.Sprintf("map folder %s not found, skipping", src))
		return nil
	}
	if err != nil {
		return fmt.Errorf("read map folder: %w", err)
	}

	var names []string
	for _, item := range items {
		if item.Type().IsRegular() && strings.EqualFold(filepath.Ext(item.Name()), scriptExt) {
			names = append(names, item.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(src, name))
		if err != nil {
			return fmt.Errorf("read map %s: %w", name, err)
		}
		if strings.HasPrefix(name, zippedPrefix) {
			stale, err := scanZipped(data)
			if err != nil {
				result.Warnings = append(result.Warnings, fmt.Sprintf("%s: %v", name, err))
			}
			for _, script := range stale {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("%s: %s uses HD-only terrains or objects", name, script))
			}
		} else {
			data = Reindex(data)
		}

		target, skip, err := placeMap(name, data, stageDir, liveDir)
		if err != nil {
			return err
		}
		if skip {
			result.Skipped++
			continue
		}
		if err := os.WriteFile(filepath.Join(stageDir, target), data, 0644); err != nil {
			return fmt.Errorf("stage map %s: %w", name, err)
		}
		result.Copied++
		if target != name {
			result.Renamed = append(result.Renamed, Rename{From: name, To: target})
		}
	}
	return nil
}

// placeMap picks the staged name of a map. It reports skip when a file with the
// same content already exists under a candidate name.
func placeMap(name string, data []byte, stageDir, liveDir string) (string, bool, error) {
	sum := blake2b.Sum256(data)
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)

	candidate := name
	for n := 1; ; n++ {
		taken := false
		for _, dir := range []string{stageDir, liveDir} {
			if dir == "" {
				continue
			}
			existing, err := os.ReadFile(filepath.Join(dir, candidate))
			if os.IsNotExist(err) {
				continue
			}
			if err != nil {
				return "", false, fmt.Errorf("compare map %s: %w", candidate, err)
			}
			if blake2b.Sum256(existing) == sum {
				return candidate, true, nil
			}
			taken = true
		}
		if !taken {
			return candidate, false, nil
		}
		candidate = base + "_" + strconv.Itoa(n) + ext
	}
}
