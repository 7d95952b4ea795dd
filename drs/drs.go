// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package drs

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is the worker count used when a caller passes zero.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// Extract reads a DRS archive into a StagingArchive.
// Payloads are read by at most workers goroutines; the result does not depend on
// the worker count. Malformed archives fail with *FormatError.
func Extract(path string, workers int) (*StagingArchive, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat archive: %w", err)
	}
	size := info.Size()

	h, err := readHeader(file)
	if err != nil {
		return nil, formatError(path, "read header", err)
	}
	if string(h.Version[:]) != formatVersion {
		return nil, formatError(path, fmt.Sprintf("unsupported version %q", h.Version[:]), nil)
	}
	if h.NumTables < 0 || h.NumTables > maxTables {
		return nil, formatError(path, fmt.Sprintf("invalid table count %d", h.NumTables), nil)
	}

	tables, err := readTableInfos(file, int(h.NumTables))
	if err != nil {
		return nil, formatError(path, "read table index", err)
	}

	archive := &StagingArchive{
		copyright: string(bytes.TrimRight(h.Copyright[:], "\x00")),
		fileType:  string(bytes.TrimRight(h.FileType[:], "\x00")),
		entries:   make(map[string]*Entry),
	}

	indexEnd := int64(headerSize) + int64(h.NumTables)*tableInfoSize
	var locations []fileInfo
	var entries []*Entry
	for i, t := range tables {
		if t.NumFiles < 0 {
			return nil, formatError(path, fmt.Sprintf("table %d: negative file count", i), nil)
		}
		start := int64(t.Offset)
		end := start + int64(t.NumFiles)*fileInfoSize
		if start < indexEnd || end > size {
			return nil, formatError(path, fmt.Sprintf("table %d: index out of range (%d-%d)", i, start, end), nil)
		}

		files, err := readFileInfos(io.NewSectionReader(file, start, end-start), int(t.NumFiles))
		if err != nil {
			return nil, formatError(path, fmt.Sprintf("table %d: read file index", i), err)
		}

		ext := decodeExt(t.Ext)
		archive.tables = append(archive.tables, ext)
		for _, fi := range files {
			payloadEnd := int64(fi.Offset) + int64(fi.Size)
			if fi.Offset < 0 || fi.Size < 0 || payloadEnd > size {
				return nil, formatError(path, fmt.Sprintf("entry %s: truncated payload (%d+%d > %d)",
					EntryName(fi.ID, ext), fi.Offset, fi.Size, size), nil)
			}
			e := &Entry{ID: fi.ID, Ext: ext, index: len(entries)}
			if err := archive.add(e); err != nil {
				return nil, formatError(path, err.Error(), nil)
			}
			entries = append(entries, e)
			locations = append(locations, fi)
		}
	}

	if workers <= 0 {
		workers = DefaultWorkers
	}
	var g errgroup.Group
	g.SetLimit(workers)
	for i := range entries {
		e, loc := entries[i], locations[i]
		g.Go(func() error {
			data := make([]byte, loc.Size)
			if _, err := file.ReadAt(data, int64(loc.Offset)); err != nil {
				if errors.Is(err, io.EOF) {
					return formatError(path, fmt.Sprintf("entry %s: truncated payload", e.Name()), err)
				}
				return fmt.Errorf("read entry %s: %w", e.Name(), err)
			}
			e.Data = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return archive, nil
}
