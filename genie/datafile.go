// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package genie

import (
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/suprsokr/wkconvert/drs"
)

// rawSection is a section of unknown kind, carried through unchanged.
type rawSection struct {
	version uint16
	data    []byte
}

// DataFile is the decoded game data file (empires2_x1_p1.dat).
type DataFile struct {
	Civs        []CivRecord
	Units       []Unit
	Terrains    []Terrain
	WallHeights []WallHeight

	order []uint16              // section kinds in file order
	raw   map[uint16]rawSection // sections of unknown kind
}

// ReadDataFile reads and decodes a data file.
func ReadDataFile(path string) (*DataFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read data file: %w", err)
	}
	d, err := Decode(raw)
	if err != nil {
		var formatErr *drs.FormatError
		if errors.As(err, &formatErr) {
			formatErr.Path = path
		}
		var schemaErr *SchemaVersionError
		if errors.As(err, &schemaErr) {
			schemaErr.Path = path
		}
		return nil, err
	}
	return d, nil
}

// Decode parses a zlib compressed data file. Corrupt streams, including adler32
// checksum mismatches, fail with *drs.FormatError; unsupported file or section
// versions fail with *SchemaVersionError.
func Decode(raw []byte) (*DataFile, error) {
	zr, err := zlib.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, &drs.FormatError{Reason: "invalid compressed stream", Err: err}
	}
	body, err := io.ReadAll(zr)
	if err != nil {
		if errors.Is(err, zlib.ErrChecksum) {
			return nil, &drs.FormatError{Reason: "checksum mismatch", Err: err}
		}
		return nil, &drs.FormatError{Reason: "truncated compressed stream", Err: err}
	}

	r := &reader{b: body}
	if magic := string(r.take(len(dataMagic))); magic != dataMagic {
		return nil, &drs.FormatError{Reason: fmt.Sprintf("invalid magic %q", magic)}
	}
	version := r.u16()
	count := int(r.u16())
	if r.err != nil {
		return nil, &drs.FormatError{Reason: "truncated header", Err: r.err}
	}
	if version != dataVersion {
		return nil, &SchemaVersionError{Section: "data file", Version: version, Supported: dataVersion}
	}

	d := &DataFile{raw: make(map[uint16]rawSection)}
	seen := make(map[uint16]bool)
	for i := 0; i < count; i++ {
		kind := r.u16()
		sv := r.u16()
		length := int(r.u32())
		payload := r.take(length)
		if r.err != nil {
			return nil, &drs.FormatError{Reason: fmt.Sprintf("section %d: truncated", i), Err: r.err}
		}
		if seen[kind] {
			return nil, &drs.FormatError{Reason: fmt.Sprintf("duplicate section kind %d", kind)}
		}
		seen[kind] = true
		d.order = append(d.order, kind)

		name, known := sectionNames[kind]
		if !known {
			d.raw[kind] = rawSection{version: sv, data: append([]byte(nil), payload...)}
			continue
		}
		if sv != sectionVersion {
			return nil, &SchemaVersionError{Section: name, Version: sv, Supported: sectionVersion}
		}

		sr := &reader{b: payload}
		switch kind {
		case sectionCivs:
			d.Civs = decodeCivs(sr)
		case sectionUnits:
			d.Units = decodeUnits(sr)
		case sectionTerrains:
			d.Terrains = decodeTerrains(sr)
		case sectionWallHeights:
			d.WallHeights = decodeWallHeights(sr)
		}
		if sr.err != nil {
			return nil, &drs.FormatError{Reason: fmt.Sprintf("section %s: malformed", name), Err: sr.err}
		}
		if sr.remaining() != 0 {
			return nil, &drs.FormatError{Reason: fmt.Sprintf("section %s: %d trailing bytes", name, sr.remaining())}
		}
	}
	if r.remaining() != 0 {
		return nil, &drs.FormatError{Reason: fmt.Sprintf("%d trailing bytes after sections", r.remaining())}
	}
	return d, nil
}

// NewDataFile creates a data file holding the four known tables.
func NewDataFile(civs []CivRecord, units []Unit, terrains []Terrain, walls []WallHeight) *DataFile {
	return &DataFile{
		Civs:        civs,
		Units:       units,
		Terrains:    terrains,
		WallHeights: walls,
		order:       []uint16{sectionCivs, sectionUnits, sectionTerrains, sectionWallHeights},
		raw:         make(map[uint16]rawSection),
	}
}

// Encode serializes and compresses the data file. Sections are written in their
// source order; the output is deterministic.
func (d *DataFile) Encode() ([]byte, error) {
	body := &writer{}
	body.buf.WriteString(dataMagic)
	body.u16(dataVersion)
	body.u16(uint16(len(d.order)))

	for _, kind := range d.order {
		if raw, ok := d.raw[kind]; ok {
			body.u16(kind)
			body.u16(raw.version)
			body.u32(uint32(len(raw.data)))
			body.buf.Write(raw.data)
			continue
		}

		section := &writer{}
		var err error
		switch kind {
		case sectionCivs:
			err = encodeCivs(section, d.Civs)
		case sectionUnits:
			err = encodeUnits(section, d.Units)
		case sectionTerrains:
			err = encodeTerrains(section, d.Terrains)
		case sectionWallHeights:
			err = encodeWallHeights(section, d.WallHeights)
		}
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", sectionNames[kind], err)
		}
		body.u16(kind)
		body.u16(sectionVersion)
		body.u32(uint32(section.buf.Len()))
		body.buf.Write(section.buf.Bytes())
	}

	var out bytes.Buffer
	zw, err := zlib.NewWriterLevel(&out, zlib.BestCompression)
	if err != nil {
		return nil, fmt.Errorf("create zlib writer: %w", err)
	}
	if _, err := zw.Write(body.buf.Bytes()); err != nil {
		return nil, fmt.Errorf("zlib write: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("zlib close: %w", err)
	}
	return out.Bytes(), nil
}

// WriteFile encodes the data file to path.
func (d *DataFile) WriteFile(path string) error {
	data, err := d.Encode()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write data file: %w", err)
	}
	return nil
}

// Clone returns a deep copy.
func (d *DataFile) Clone() *DataFile {
	out := &DataFile{
		Civs:        append([]CivRecord(nil), d.Civs...),
		Units:       append([]Unit(nil), d.Units...),
		Terrains:    append([]Terrain(nil), d.Terrains...),
		WallHeights: append([]WallHeight(nil), d.WallHeights...),
		order:       append([]uint16(nil), d.order...),
		raw:         make(map[uint16]rawSection, len(d.raw)),
	}
	for k, v := range d.raw {
		out.raw[k] = rawSection{version: v.version, data: append([]byte(nil), v.data...)}
	}
	return out
}
