// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package maps

import (
	"bytes"
	"fmt"
	"regexp"
	"sort"
)

// hdConstants are the terrain and object constants the HD edition predefines
// for random map scripts. AoC does not know them, so a script using one needs an
// explicit #const with the id of the converted data file.
var hdConstants = map[string]int{
	// terrains
	"DLC_SAVANNAH":        41,
	"DLC_DIRT4":           42,
	"DLC_MOORLAND":        44,
	"DLC_CRACKEDIT":       45,
	"DLC_QUICKSAND":       46,
	"DLC_BLACK":           47,
	"DLC_DRAGONFOREST":    48,
	"DLC_BAOBABFOREST":    49,
	"DLC_ACACIA_FOREST":   50,
	"DLC_MANGROVESHALLOW": 54,
	"DLC_MANGROVEFOREST":  55,
	"DLC_RAINFOREST":      56,
	"DLC_WATER4":          57,
	"DLC_WATER5":          58,

	// objects
	"DLC_ZEBRA":        1019,
	"DLC_OSTRICH":      1026,
	"DLC_LION":         1029,
	"DLC_CROCODILE":    1031,
	"DLC_GOAT":         1060,
	"DLC_KOMODO":       1135,
	"DLC_BOX_TURTLES":  1137,
	"DLC_RHINO":        1139,
	"DLC_WATERBUFFALO": 1142,
	"DLC_ELEPHANT":     1301,
}

var (
	identPattern = regexp.MustCompile(`\b[A-Z][A-Z0-9_]*\b`)
	constPattern = regexp.MustCompile(`(?m)^\s*#const\s+([A-Za-z0-9_]+)`)
)

// Reindex prepends a #const definition for every HD-only constant the script
// references but does not define. Definitions are emitted in name order. The
// script is returned unchanged if nothing is missing.
func Reindex(script []byte) []byte {
	defined := make(map[string]bool)
	for _, m := range constPattern.FindAllSubmatch(script, -1) {
		defined[string(m[1])] = true
	}

	var missing []string
	seen := make(map[string]bool)
	for _, ident := range identPattern.FindAll(script, -1) {
		name := string(ident)
		if seen[name] || defined[name] {
			continue
		}
		seen[name] = true
		if _, ok := hdConstants[name]; ok {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return script
	}
	sort.Strings(missing)

	var buf bytes.Buffer
	for _, name := range missing {
		fmt.Fprintf(&buf, "#const %s %d\n", name, hdConstants[name])
	}
	buf.Write(script)
	return buf.Bytes()
}
