// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

// Package resources reads the converter resource pack: replacement graphics
// grouped in asset sets, tooltip texts per language, and the generated placement
// grid overlay.
//
// An asset set is a directory of "<id>.<ext>" files. Files may be stored lz4
// compressed as "<id>.<ext>.lz4"; an uncompressed file of the same name wins.
package resources

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pierrec/lz4/v4"
	"gopkg.in/ini.v1"

	"github.com/suprsokr/wkconvert/drs"
)

const lz4Ext = ".lz4"

// DefaultLanguage is used when the pack has no tooltips for a language.
const DefaultLanguage = "en"

// Pack is a converter resource pack rooted at a directory.
type Pack struct {
	root string
}

// Open opens the pack at root.
func Open(root string) (*Pack, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("open resource pack: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("open resource pack: %s is not a directory", root)
	}
	return &Pack{root: root}, nil
}

// Generated returns a pack without a directory. Only generated assets such as
// the grid overlay are available; asset sets are empty.
func Generated() *Pack {
	return &Pack{}
}

// Root returns the pack directory.
func (p *Pack) Root() string {
	return p.root
}

// Overlay writes every entry of an asset set into the archive and returns the
// number of entries written. A missing set writes nothing.
func (p *Pack) Overlay(set string, a *drs.StagingArchive) (int, error) {
	if p.root == "" {
		return 0, nil
	}
	dir := filepath.Join(p.root, set)

	compressed, err := compressedEntries(dir)
	if err != nil {
		return 0, err
	}
	chain := drs.NewChain(dir)
	written := 0
	for _, c := range compressed {
		if _, ok, err := chain.Resolve(c.name); err != nil {
			return 0, err
		} else if ok {
			continue
		}
		data, err := readLZ4(c.path)
		if err != nil {
			return 0, err
		}
		if err := a.Set(c.name, data); err != nil {
			return 0, fmt.Errorf("overlay %s: %w", c.name, err)
		}
		written++
	}

	n, err := chain.Overlay(a)
	if err != nil {
		return 0, err
	}
	return written + n, nil
}

type compressedEntry struct {
	name string // entry name, "<id>.<ext>"
	path string
}

// compressedEntries lists the lz4 files in dir sorted by entry name.
func compressedEntries(dir string) ([]compressedEntry, error) {
	items, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read asset set: %w", err)
	}
	var entries []compressedEntry
	for _, item := range items {
		lower := strings.ToLower(item.Name())
		if item.IsDir() || !strings.HasSuffix(lower, lz4Ext) {
			continue
		}
		name := strings.TrimSuffix(lower, lz4Ext)
		if _, _, err := drs.ParseEntryName(name); err != nil {
			continue
		}
		entries = append(entries, compressedEntry{name: name, path: filepath.Join(dir, item.Name())})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })
	return entries, nil
}

func readLZ4(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(lz4.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("decompress %s: %w", path, err)
	}
	return data, nil
}

// TooltipPath returns the tooltip file for a language.
func (p *Pack) TooltipPath(lang string) string {
	return filepath.Join(p.root, "tooltips", lang+".ini")
}

// Tooltips reads the replacement strings for a language. Keys are string ids;
// "\n" in a value stands for a line break. Languages without a file fall back to
// English.
func (p *Pack) Tooltips(lang string) (map[int32]string, error) {
	if p.root == "" {
		return nil, errors.New("load tooltips: no resource pack")
	}
	path := p.TooltipPath(lang)
	if _, err := os.Stat(path); os.IsNotExist(err) && lang != DefaultLanguage {
		path = p.TooltipPath(DefaultLanguage)
	}

	cfg, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:       true,
		UnescapeValueDoubleQuotes: true,
	}, path)
	if err != nil {
		return nil, fmt.Errorf("load tooltips: %w", err)
	}

	tips := make(map[int32]string)
	for _, section := range cfg.Sections() {
		for _, key := range section.Keys() {
			id, err := strconv.ParseInt(key.Name(), 10, 32)
			if err != nil {
				return nil, fmt.Errorf("load tooltips: %s: invalid string id %q", path, key.Name())
			}
			tips[int32(id)] = strings.ReplaceAll(key.Value(), `\n`, "\n")
		}
	}
	return tips, nil
}
