// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package drs

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Entry is one resource held by a StagingArchive.
type Entry struct {
	ID    int32  // Resource id
	Ext   string // Extension without dot ("slp", "wav", "bina")
	Data  []byte // Payload
	index int    // Position in the source index, -1 for added entries
}

// Name returns the entry name, "<id>.<ext>".
func (e *Entry) Name() string {
	return EntryName(e.ID, e.Ext)
}

// StagingArchive is the in-memory form of one extracted archive. It maps entry
// names to payloads and remembers the source layout so that Repack can write the
// entries back in their original order.
type StagingArchive struct {
	copyright string
	fileType  string
	tables    []string // extensions in source table order
	entries   map[string]*Entry
}

// NewStagingArchive creates an empty archive with the given file type ("tribe").
func NewStagingArchive(fileType string) *StagingArchive {
	if fileType == "" {
		fileType = defaultFileType
	}
	return &StagingArchive{
		copyright: defaultCopyright,
		fileType:  fileType,
		entries:   make(map[string]*Entry),
	}
}

// EntryName builds the canonical entry name for an id and extension.
func EntryName(id int32, ext string) string {
	return strconv.FormatInt(int64(id), 10) + "." + ext
}

// ParseEntryName splits "<id>.<ext>" into its parts.
func ParseEntryName(name string) (int32, string, error) {
	base, ext, ok := strings.Cut(name, ".")
	if !ok || ext == "" || len(ext) > 4 {
		return 0, "", fmt.Errorf("invalid entry name %q", name)
	}
	id, err := strconv.ParseInt(base, 10, 32)
	if err != nil {
		return 0, "", fmt.Errorf("invalid entry id in %q: %w", name, err)
	}
	return int32(id), strings.ToLower(ext), nil
}

// canonicalName rewrites parseable names to EntryName form, so "015000.SLP"
// and "15000.slp" address the same entry.
func canonicalName(name string) string {
	id, ext, err := ParseEntryName(name)
	if err != nil {
		return name
	}
	return EntryName(id, ext)
}

// Get returns the payload of an entry.
func (a *StagingArchive) Get(name string) ([]byte, bool) {
	e, ok := a.entries[canonicalName(name)]
	if !ok {
		return nil, false
	}
	return e.Data, true
}

// Has reports whether the archive holds the entry.
func (a *StagingArchive) Has(name string) bool {
	_, ok := a.entries[canonicalName(name)]
	return ok
}

// Set replaces the payload of an existing entry or adds a new one.
// Replaced entries keep their position in the source index.
func (a *StagingArchive) Set(name string, data []byte) error {
	id, ext, err := ParseEntryName(name)
	if err != nil {
		return err
	}
	if e, ok := a.entries[EntryName(id, ext)]; ok {
		e.Data = data
		return nil
	}
	a.entries[EntryName(id, ext)] = &Entry{ID: id, Ext: ext, Data: data, index: -1}
	return nil
}

// Delete removes an entry. It reports whether the entry existed.
func (a *StagingArchive) Delete(name string) bool {
	name = canonicalName(name)
	if _, ok := a.entries[name]; !ok {
		return false
	}
	delete(a.entries, name)
	return true
}

// Len returns the number of entries.
func (a *StagingArchive) Len() int {
	return len(a.entries)
}

// Names returns all entry names in sorted order.
func (a *StagingArchive) Names() []string {
	names := make([]string, 0, len(a.entries))
	for name := range a.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FileType returns the archive file type from the header.
func (a *StagingArchive) FileType() string {
	return a.fileType
}

// add inserts an entry read from a source index.
func (a *StagingArchive) add(e *Entry) error {
	name := e.Name()
	if _, ok := a.entries[name]; ok {
		return fmt.Errorf("duplicate entry %s", name)
	}
	a.entries[name] = e
	return nil
}

// tableGroup is one table of the output layout.
type tableGroup struct {
	ext     string
	entries []*Entry
}

// layout groups entries into tables in deterministic write order: source tables
// first in their source order, then new extensions sorted by name. Within a table
// source entries keep their index order and added entries follow sorted by id.
func (a *StagingArchive) layout() []tableGroup {
	byExt := make(map[string][]*Entry)
	for _, e := range a.entries {
		byExt[e.Ext] = append(byExt[e.Ext], e)
	}

	order := make([]string, 0, len(byExt))
	seen := make(map[string]bool)
	for _, ext := range a.tables {
		if _, ok := byExt[ext]; ok && !seen[ext] {
			order = append(order, ext)
			seen[ext] = true
		}
	}
	var extra []string
	for ext := range byExt {
		if !seen[ext] {
			extra = append(extra, ext)
		}
	}
	sort.Strings(extra)
	order = append(order, extra...)

	groups := make([]tableGroup, 0, len(order))
	for _, ext := range order {
		entries := byExt[ext]
		sort.Slice(entries, func(i, j int) bool {
			ei, ej := entries[i], entries[j]
			switch {
			case ei.index >= 0 && ej.index >= 0:
				return ei.index < ej.index
			case ei.index >= 0:
				return true
			case ej.index >= 0:
				return false
			default:
				return ei.ID < ej.ID
			}
		})
		groups = append(groups, tableGroup{ext: ext, entries: entries})
	}
	return groups
}
