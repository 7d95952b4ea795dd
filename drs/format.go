// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package drs

import (
	"bytes"
	"encoding/binary"
	"io"
)

// DRS format constants
const (
	headerSize    = 64 // copyright + version + file type + two int32 fields
	tableInfoSize = 12 // ext + offset + file count
	fileInfoSize  = 12 // id + offset + size

	// Copyright string written by Ensemble Studios tools, padded with zeros
	defaultCopyright = "Copyright (c) 1997 Ensemble Studios.\x1a"
	// Only version understood by the AoC engine
	formatVersion = "1.00"
	// Default file type for data archives
	defaultFileType = "tribe"

	// Upper bound on tables; real archives carry 1 to 4
	maxTables = 64
)

// header is the fixed DRS archive header (64 bytes)
type header struct {
	Copyright       [40]byte // Copyright banner
	Version         [4]byte  // "1.00"
	FileType        [12]byte // "tribe", zero padded
	NumTables       int32    // Number of table infos following the header
	FirstFileOffset int32    // Offset of the first payload byte
}

// tableInfo describes one table of same-typed entries
type tableInfo struct {
	Ext      [4]byte // Extension, reversed and space padded ("pls " for slp)
	Offset   int32   // Offset of the first fileInfo of this table
	NumFiles int32   // Number of fileInfos in this table
}

// fileInfo locates one entry payload
type fileInfo struct {
	ID     int32 // Resource id
	Offset int32 // Offset of the payload
	Size   int32 // Payload size in bytes
}

// encodeExt converts an extension ("slp") to its on-disk form ("pls ").
func encodeExt(ext string) [4]byte {
	var out [4]byte
	padded := []byte("    ")
	copy(padded[4-min(len(ext), 4):], ext)
	for i := 0; i < 4; i++ {
		out[i] = padded[3-i]
	}
	return out
}

// decodeExt converts an on-disk extension ("pls ") to its name ("slp").
func decodeExt(raw [4]byte) string {
	var rev [4]byte
	for i := 0; i < 4; i++ {
		rev[i] = raw[3-i]
	}
	return string(bytes.TrimSpace(rev[:]))
}

// setFixed zero fills dst and copies s into it.
func setFixed(dst []byte, s string) {
	clear(dst)
	copy(dst, s)
}

// readHeader reads the DRS header from a reader
func readHeader(r io.Reader) (*header, error) {
	h := &header{}
	if err := binary.Read(r, binary.LittleEndian, h); err != nil {
		return nil, err
	}
	return h, nil
}

// writeHeader writes the DRS header to a writer
func writeHeader(w io.Writer, h *header) error {
	return binary.Write(w, binary.LittleEndian, h)
}

// readTableInfos reads n table infos
func readTableInfos(r io.Reader, n int) ([]tableInfo, error) {
	tables := make([]tableInfo, n)
	if err := binary.Read(r, binary.LittleEndian, tables); err != nil {
		return nil, err
	}
	return tables, nil
}

// readFileInfos reads n file infos
func readFileInfos(r io.Reader, n int) ([]fileInfo, error) {
	files := make([]fileInfo, n)
	if err := binary.Read(r, binary.LittleEndian, files); err != nil {
		return nil, err
	}
	return files, nil
}
