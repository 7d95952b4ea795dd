// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package drs

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
)

// Repack writes the archive to dst. The output depends only on the entry set,
// the payload bytes and the source layout, so repacking an unmodified extraction
// of a canonical archive reproduces it byte for byte.
// The archive is written to a temp file next to dst and renamed into place.
func Repack(a *StagingArchive, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(dst), "drs_*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	if err := writeArchive(tempFile, a); err != nil {
		tempFile.Close()
		os.Remove(tempPath)
		return err
	}
	if err := tempFile.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("close temp file: %w", err)
	}

	// Move temp file to final path
	os.Remove(dst)
	if err := os.Rename(tempPath, dst); err != nil {
		if err := copyFile(tempPath, dst); err != nil {
			os.Remove(tempPath)
			return fmt.Errorf("save archive: %w", err)
		}
		os.Remove(tempPath)
	}
	return nil
}

// writeArchive writes the complete DRS archive
func writeArchive(w io.Writer, a *StagingArchive) error {
	groups := a.layout()

	numFiles := 0
	for _, g := range groups {
		numFiles += len(g.entries)
	}
	firstFileOffset := int64(headerSize) + int64(len(groups))*tableInfoSize + int64(numFiles)*fileInfoSize

	h := &header{NumTables: int32(len(groups)), FirstFileOffset: int32(firstFileOffset)}
	setFixed(h.Copyright[:], a.copyright)
	setFixed(h.Version[:], formatVersion)
	setFixed(h.FileType[:], a.fileType)

	// Table infos point at consecutive file info blocks
	tables := make([]tableInfo, len(groups))
	infoOffset := int64(headerSize) + int64(len(groups))*tableInfoSize
	for i, g := range groups {
		tables[i] = tableInfo{Ext: encodeExt(g.ext), Offset: int32(infoOffset), NumFiles: int32(len(g.entries))}
		infoOffset += int64(len(g.entries)) * fileInfoSize
	}

	// Payloads follow the index in table order
	files := make([]fileInfo, 0, numFiles)
	dataOffset := firstFileOffset
	for _, g := range groups {
		for _, e := range g.entries {
			files = append(files, fileInfo{ID: e.ID, Offset: int32(dataOffset), Size: int32(len(e.Data))})
			dataOffset += int64(len(e.Data))
		}
	}
	if dataOffset > math.MaxInt32 {
		return fmt.Errorf("archive too large: %d bytes", dataOffset)
	}

	bw := bufio.NewWriter(w)
	if err := writeHeader(bw, h); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, tables); err != nil {
		return fmt.Errorf("write table index: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, files); err != nil {
		return fmt.Errorf("write file index: %w", err)
	}
	for _, g := range groups {
		for _, e := range g.entries {
			if _, err := bw.Write(e.Data); err != nil {
				return fmt.Errorf("write entry %s: %w", e.Name(), err)
			}
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush archive: %w", err)
	}
	return nil
}

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
