// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package genie

// Unit classes referenced by the transforms
const (
	ClassTree uint16 = 15
	ClassWall uint16 = 27
)

// NoGraphic marks an unset graphic or terrain reference.
const NoGraphic = -1

// CivRecord is one row of the civs table.
type CivRecord struct {
	ID       Civ     // Civilization id
	Culture  Culture // Architecture and unit graphics set
	MonkUnit int32   // Monk unit template trained at the monastery
	Name     string  // Internal short name
}

// Unit is one row of the units table.
type Unit struct {
	ID          int32  // Unit id
	Class       uint16 // Unit class
	Graphic     int32  // Standing graphic, an slp id in graphics.drs
	SnowGraphic int32  // Snow skin variant, NoGraphic if none
	Flags       uint32 // Engine compatibility bit flags
}

// Terrain is one row of the terrains table.
type Terrain struct {
	ID          int16  // Terrain id
	SLP         int32  // Terrain texture, an slp id in terrain.drs
	SnowVariant int16  // Terrain used when snow covered, NoGraphic if none
	Overlay     int32  // Overlay layer resource in terrain.drs, NoGraphic if none
	Name        string // Internal name
}

// WallHeight is one row of the wall heights table.
type WallHeight struct {
	UnitID int32   // Wall unit id
	Height float32 // Selection and line-of-sight height in tiles
}

func decodeCivs(r *reader) []CivRecord {
	n := int(r.u32())
	civs := make([]CivRecord, 0, min(n, 256))
	for i := 0; i < n && r.err == nil; i++ {
		civs = append(civs, CivRecord{
			ID:       Civ(r.u8()),
			Culture:  Culture(r.u8()),
			MonkUnit: r.i32(),
			Name:     r.str(),
		})
	}
	return civs
}

func encodeCivs(w *writer, civs []CivRecord) error {
	w.u32(uint32(len(civs)))
	for _, c := range civs {
		w.u8(uint8(c.ID))
		w.u8(uint8(c.Culture))
		w.i32(c.MonkUnit)
		if err := w.str(c.Name); err != nil {
			return err
		}
	}
	return nil
}

func decodeUnits(r *reader) []Unit {
	n := int(r.u32())
	units := make([]Unit, 0, min(n, 4096))
	for i := 0; i < n && r.err == nil; i++ {
		units = append(units, Unit{
			ID:          r.i32(),
			Class:       r.u16(),
			Graphic:     r.i32(),
			SnowGraphic: r.i32(),
			Flags:       r.u32(),
		})
	}
	return units
}

func encodeUnits(w *writer, units []Unit) error {
	w.u32(uint32(len(units)))
	for _, u := range units {
		w.i32(u.ID)
		w.u16(u.Class)
		w.i32(u.Graphic)
		w.i32(u.SnowGraphic)
		w.u32(u.Flags)
	}
	return nil
}

func decodeTerrains(r *reader) []Terrain {
	n := int(r.u32())
	terrains := make([]Terrain, 0, min(n, 256))
	for i := 0; i < n && r.err == nil; i++ {
		terrains = append(terrains, Terrain{
			ID:          r.i16(),
			SLP:         r.i32(),
			SnowVariant: r.i16(),
			Overlay:     r.i32(),
			Name:        r.str(),
		})
	}
	return terrains
}

func encodeTerrains(w *writer, terrains []Terrain) error {
	w.u32(uint32(len(terrains)))
	for _, t := range terrains {
		w.i16(t.ID)
		w.i32(t.SLP)
		w.i16(t.SnowVariant)
		w.i32(t.Overlay)
		if err := w.str(t.Name); err != nil {
			return err
		}
	}
	return nil
}

func decodeWallHeights(r *reader) []WallHeight {
	n := int(r.u32())
	walls := make([]WallHeight, 0, min(n, 256))
	for i := 0; i < n && r.err == nil; i++ {
		walls = append(walls, WallHeight{UnitID: r.i32(), Height: r.f32()})
	}
	return walls
}

func encodeWallHeights(w *writer, walls []WallHeight) error {
	w.u32(uint32(len(walls)))
	for _, wh := range walls {
		w.i32(wh.UnitID)
		w.f32(wh.Height)
	}
	return nil
}
