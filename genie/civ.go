// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package genie

import (
	"fmt"
	"strings"
)

// Civ identifies a civilization in the data file. Gaia is 0.
type Civ uint8

// Civilizations in data file order.
const (
	Gaia Civ = iota
	Britons
	Franks
	Goths
	Teutons
	Japanese
	Chinese
	Byzantines
	Persians
	Saracens
	Turks
	Vikings
	Mongols
	Celts
	Spanish
	Aztecs
	Mayans
	Huns
	Koreans
	Italians
	Indians
	Incas
	Magyars
	Slavs
	Portuguese
	Ethiopians
	Malians
	Berbers
	Khmer
	Malay
	Burmese
	Vietnamese

	// NumCivs is the number of playable civilizations.
	NumCivs = int(Vietnamese)
)

var civNames = [...]string{
	"Gaia", "Britons", "Franks", "Goths", "Teutons", "Japanese", "Chinese", "Byzantines",
	"Persians", "Saracens", "Turks", "Vikings", "Mongols", "Celts", "Spanish", "Aztecs",
	"Mayans", "Huns", "Koreans", "Italians", "Indians", "Incas", "Magyars", "Slavs",
	"Portuguese", "Ethiopians", "Malians", "Berbers", "Khmer", "Malay", "Burmese",
	"Vietnamese",
}

func (c Civ) String() string {
	if int(c) < len(civNames) {
		return civNames[c]
	}
	return fmt.Sprintf("Civ(%d)", uint8(c))
}

// Valid reports whether c is a playable civilization.
func (c Civ) Valid() bool {
	return c >= Britons && int(c) <= NumCivs
}

// ParseCiv resolves a civilization by name, ignoring case.
func ParseCiv(name string) (Civ, error) {
	for i := 1; i < len(civNames); i++ {
		if strings.EqualFold(civNames[i], name) {
			return Civ(i), nil
		}
	}
	return 0, fmt.Errorf("unknown civilization %q", name)
}

// DLC content levels. Each level includes the previous ones.
const (
	DLCConquerors = 0
	DLCForgotten  = 1
	DLCAfrican    = 2
	DLCRajas      = 3
)

// lastCivForDLC is the highest civ id available at each DLC level.
var lastCivForDLC = [...]Civ{
	DLCConquerors: Koreans,
	DLCForgotten:  Slavs,
	DLCAfrican:    Berbers,
	DLCRajas:      Vietnamese,
}

// AvailableAt reports whether the civ ships with the given DLC level.
func (c Civ) AvailableAt(level int) bool {
	if level < 0 {
		level = 0
	}
	if level >= len(lastCivForDLC) {
		level = len(lastCivForDLC) - 1
	}
	return c <= lastCivForDLC[level]
}

// Culture is the architecture and unit graphics set of a civilization.
type Culture uint8

const (
	CultureWestEuropean Culture = iota + 1
	CultureEastEuropean
	CultureMiddleEastern
	CultureEastAsian
	CultureMesoAmerican
	CultureMediterranean
	CultureIndian
	CultureAfrican
	CultureSoutheastAsian
)

// Monk unit ids. The default monk is shared by every civ in the HD data file.
const (
	MonkUnit int32 = 125
)

// regionalMonks maps each culture to its regional monk template.
var regionalMonks = map[Culture]int32{
	CultureWestEuropean:   MonkUnit,
	CultureEastEuropean:   1811,
	CultureMiddleEastern:  1812,
	CultureEastAsian:      1813,
	CultureMesoAmerican:   1814,
	CultureMediterranean:  1815,
	CultureIndian:         1816,
	CultureAfrican:        1817,
	CultureSoutheastAsian: 1818,
}

// RegionalMonk returns the monk unit used by a culture.
func RegionalMonk(c Culture) int32 {
	if id, ok := regionalMonks[c]; ok {
		return id
	}
	return MonkUnit
}

// MaxBonusSlot bounds CivOverride.BonusSlot. Civ descriptions have far fewer
// lines.
const MaxBonusSlot = 16

// CivOverride replaces the user-facing texts of one civilization.
type CivOverride struct {
	Name        string // Full display name
	ShortName   string // Internal short name stored in the civ table
	Description string // Tech tree help text
	BonusSlot   int    // Description bonus line replaced by CustomText, -1 for none
	CustomText  string // Replacement bonus line
}

// GrantsGameplayChange reports whether the override rewrites a civ bonus.
func (o *CivOverride) GrantsGameplayChange() bool {
	return o.BonusSlot >= 0 && o.CustomText != ""
}

// Validate checks the bonus slot range.
func (o *CivOverride) Validate() error {
	if o.BonusSlot < -1 || o.BonusSlot >= MaxBonusSlot {
		return fmt.Errorf("bonus slot %d out of range [-1, %d)", o.BonusSlot, MaxBonusSlot)
	}
	return nil
}

// CivOverrides holds at most one override per civilization.
type CivOverrides [NumCivs + 1]*CivOverride

// Set stores an override for a civ.
func (o *CivOverrides) Set(c Civ, override CivOverride) error {
	if !c.Valid() {
		return fmt.Errorf("invalid civilization id %d", uint8(c))
	}
	if err := override.Validate(); err != nil {
		return fmt.Errorf("%s: %w", c, err)
	}
	o[c] = &override
	return nil
}

// Get returns the override for a civ, or nil.
func (o *CivOverrides) Get(c Civ) *CivOverride {
	if int(c) >= len(o) {
		return nil
	}
	return o[c]
}

// Len returns the number of civs with an override.
func (o *CivOverrides) Len() int {
	n := 0
	for _, v := range o {
		if v != nil {
			n++
		}
	}
	return n
}

// Clone returns a deep copy.
func (o *CivOverrides) Clone() *CivOverrides {
	out := &CivOverrides{}
	for i, v := range o {
		if v != nil {
			c := *v
			out[i] = &c
		}
	}
	return out
}
