// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package genie

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// String ids of the civilization texts.
const (
	civNameBase        int32 = 10270  // civ display name: base + civ id
	civDescriptionBase int32 = 120150 // civ tech tree help: base + civ id
)

// CivNameID returns the string id of a civ's display name.
func CivNameID(c Civ) int32 { return civNameBase + int32(c) }

// CivDescriptionID returns the string id of a civ's description.
func CivDescriptionID(c Civ) int32 { return civDescriptionBase + int32(c) }

// StringTablePath returns the location of the HD string table for a language.
func StringTablePath(hdPath, lang string) string {
	return filepath.Join(hdPath, "resources", lang, "strings", "key-value", "key-value-strings-utf8.txt")
}

// StringTable holds the UI strings of one language, keyed by numeric id.
type StringTable struct {
	entries map[int32]string
}

// NewStringTable creates an empty table.
func NewStringTable() *StringTable {
	return &StringTable{entries: make(map[int32]string)}
}

// ReadStringTable reads a key-value string file.
func ReadStringTable(path string) (*StringTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open string table: %w", err)
	}
	defer f.Close()

	t, err := ParseStringTable(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return t, nil
}

// ParseStringTable parses lines of the form `<id> "text"`. Blank lines, "//"
// comments and entries with non-numeric keys are skipped.
func ParseStringTable(r io.Reader) (*StringTable, error) {
	t := NewStringTable()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if line == 1 {
			text = strings.TrimPrefix(text, "\ufeff")
		}
		if text == "" || strings.HasPrefix(text, "//") {
			continue
		}

		key, value, ok := strings.Cut(text, " ")
		if !ok {
			return nil, fmt.Errorf("line %d: missing value", line)
		}
		id, err := strconv.ParseInt(key, 10, 32)
		if err != nil {
			continue
		}
		value = strings.TrimSpace(value)
		if unquoted, err := strconv.Unquote(value); err == nil {
			value = unquoted
		} else {
			value = strings.TrimSuffix(strings.TrimPrefix(value, `"`), `"`)
		}
		t.entries[int32(id)] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read string table: %w", err)
	}
	return t, nil
}

// Get returns the string for an id.
func (t *StringTable) Get(id int32) (string, bool) {
	s, ok := t.entries[id]
	return s, ok
}

// Set stores the string for an id.
func (t *StringTable) Set(id int32, s string) {
	t.entries[id] = s
}

// Len returns the number of strings.
func (t *StringTable) Len() int {
	return len(t.entries)
}

// IDs returns all ids in ascending order.
func (t *StringTable) IDs() []int32 {
	ids := make([]int32, 0, len(t.entries))
	for id := range t.entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Clone returns a deep copy.
func (t *StringTable) Clone() *StringTable {
	out := &StringTable{entries: make(map[int32]string, len(t.entries))}
	for id, s := range t.entries {
		out.entries[id] = s
	}
	return out
}

// WriteTo writes the table in key-value form, ordered by id.
func (t *StringTable) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var n int64
	for _, id := range t.IDs() {
		written, err := fmt.Fprintf(bw, "%d %s\n", id, strconv.Quote(t.entries[id]))
		n += int64(written)
		if err != nil {
			return n, err
		}
	}
	return n, bw.Flush()
}
