// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package genie

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Data file format constants
const (
	dataMagic          = "GDAT"
	dataVersion uint16 = 1

	// Section kinds
	sectionCivs        uint16 = 1
	sectionUnits       uint16 = 2
	sectionTerrains    uint16 = 3
	sectionWallHeights uint16 = 4

	// Supported version of every known section
	sectionVersion uint16 = 1
)

var sectionNames = map[uint16]string{
	sectionCivs:        "civs",
	sectionUnits:       "units",
	sectionTerrains:    "terrains",
	sectionWallHeights: "wall heights",
}

var errShortBuffer = errors.New("unexpected end of section")

// reader decodes little endian fields from a byte slice and keeps the first error.
type reader struct {
	b   []byte
	off int
	err error
}

func (r *reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.off+n > len(r.b) {
		r.err = errShortBuffer
		return nil
	}
	p := r.b[r.off : r.off+n]
	r.off += n
	return p
}

func (r *reader) u8() uint8 {
	p := r.take(1)
	if p == nil {
		return 0
	}
	return p[0]
}

func (r *reader) u16() uint16 {
	p := r.take(2)
	if p == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(p)
}

func (r *reader) u32() uint32 {
	p := r.take(4)
	if p == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(p)
}

func (r *reader) i16() int16   { return int16(r.u16()) }
func (r *reader) i32() int32   { return int32(r.u32()) }
func (r *reader) f32() float32 { return math.Float32frombits(r.u32()) }

func (r *reader) str() string {
	n := int(r.u16())
	return string(r.take(n))
}

func (r *reader) remaining() int {
	return len(r.b) - r.off
}

// writer encodes little endian fields into a buffer.
type writer struct {
	buf bytes.Buffer
}

func (w *writer) u8(v uint8) { w.buf.WriteByte(v) }

func (w *writer) u16(v uint16) {
	w.buf.Write(binary.LittleEndian.AppendUint16(nil, v))
}

func (w *writer) u32(v uint32) {
	w.buf.Write(binary.LittleEndian.AppendUint32(nil, v))
}

func (w *writer) i16(v int16)   { w.u16(uint16(v)) }
func (w *writer) i32(v int32)   { w.u32(uint32(v)) }
func (w *writer) f32(v float32) { w.u32(math.Float32bits(v)) }

func (w *writer) str(s string) error {
	if len(s) > math.MaxUint16 {
		return fmt.Errorf("string too long: %d bytes", len(s))
	}
	w.u16(uint16(len(s)))
	w.buf.WriteString(s)
	return nil
}
