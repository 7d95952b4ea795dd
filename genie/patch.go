// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package genie

import (
	"errors"
	"fmt"
	"strings"

	"github.com/suprsokr/wkconvert/drs"
)

// Asset sets in the converter resource pack. Each is a directory of loose
// "<id>.<ext>" files overlaid into graphics.drs.
const (
	AssetSmallTrees    = "small-trees"
	AssetShortWalls    = "short-walls"
	AssetRegionalMonks = "regional-monks"
)

// GridOverlayID is the terrain.drs resource holding the placement grid bitmap.
const GridOverlayID int32 = 15999

// GridOverlayEntry is the entry name of the grid bitmap in terrain.drs.
var GridOverlayEntry = drs.EntryName(GridOverlayID, "bina")

// smallTreeOffset maps a tree graphic to its small variant in the resource pack.
const smallTreeOffset int32 = 50000

// SmallTreeGraphic returns the small tree graphic for a tree graphic.
func SmallTreeGraphic(g int32) int32 {
	if g == NoGraphic {
		return NoGraphic
	}
	return g + smallTreeOffset
}

// shortWallHeights lists the heights used for the shipped wall units.
// Walls not listed are cut to half their height.
var shortWallHeights = map[int32]float32{
	72:  1.0, // palisade wall
	117: 1.5, // stone wall
	155: 1.5, // fortified wall
	370: 1.5, // city wall
}

// HDOnlyFlags are unit flag bits the AoC engine rejects.
const HDOnlyFlags uint32 = 0xFFFF0000

// Options selects the transforms applied by a Patcher.
type Options struct {
	NoSnow            bool
	SmallTrees        bool
	ShortWalls        bool
	RegionalMonks     bool
	Grid              bool
	FixFlags          bool
	ReplaceTooltips   bool
	RestrictedCivMods bool

	DLCLevel  int           // Civs beyond this level are removed
	Language  string        // Language of the string table, for tooltips
	Overrides *CivOverrides // Civ text overrides, may be nil
}

// Resources provides the converter assets used by the transforms.
type Resources interface {
	// Overlay copies the entries of an asset set into an archive.
	Overlay(set string, a *drs.StagingArchive) (int, error)
	// Tooltips returns replacement strings for a language.
	Tooltips(lang string) (map[int32]string, error)
	// GridOverlay returns the encoded grid bitmap.
	GridOverlay() ([]byte, error)
}

// Target is the mutable state a Patcher works on. Archives may be nil when no
// enabled transform needs them.
type Target struct {
	Data     *DataFile
	Strings  *StringTable
	Graphics *drs.StagingArchive // graphics.drs
	Terrain  *drs.StagingArchive // terrain.drs
}

// Report summarizes what a Patcher changed.
type Report struct {
	Applied          []string // Transform names in application order
	OverlaidEntries  int      // Entries written into archives
	TooltipsReplaced int      // Strings replaced from the tooltip set
	DroppedCivs      int      // Civs removed by the DLC level
	Neutralized      []Civ    // Overrides stripped of gameplay changes
	OverriddenCivs   []Civ    // Civs whose texts were rewritten
}

// Patcher applies the enabled transforms to a Target.
type Patcher struct {
	opts Options
	res  Resources
}

// NewPatcher creates a patcher. res may be nil if no enabled transform reads
// converter resources.
func NewPatcher(opts Options, res Resources) *Patcher {
	return &Patcher{opts: opts, res: res}
}

var errNoResources = errors.New("converter resources not available")

type transform struct {
	name    string
	enabled bool
	apply   func(*Target, *Report) error
}

// Apply runs every enabled transform in a fixed order. Each transform writes
// only its own table columns, strings or archive entries, so the result of a
// flag set does not depend on the other flags.
func (p *Patcher) Apply(t *Target) (*Report, error) {
	if t.Data == nil {
		return nil, errors.New("patch: no data file")
	}

	overrides := p.opts.Overrides
	hasOverrides := overrides != nil && overrides.Len() > 0

	report := &Report{}
	transforms := []transform{
		{"dlc level", p.opts.DLCLevel < DLCRajas, p.dropCivs},
		{"no snow", p.opts.NoSnow, p.noSnow},
		{"small trees", p.opts.SmallTrees, p.smallTrees},
		{"short walls", p.opts.ShortWalls, p.shortWalls},
		{"regional monks", p.opts.RegionalMonks, p.regionalMonks},
		{"grid", p.opts.Grid, p.grid},
		{"fix flags", p.opts.FixFlags, p.fixFlags},
		{"replace tooltips", p.opts.ReplaceTooltips, p.replaceTooltips},
		{"civ overrides", hasOverrides, p.civOverrides},
	}
	for _, tr := range transforms {
		if !tr.enabled {
			continue
		}
		if err := tr.apply(t, report); err != nil {
			return nil, fmt.Errorf("apply %s: %w", tr.name, err)
		}
		report.Applied = append(report.Applied, tr.name)
	}
	return report, nil
}

func (p *Patcher) dropCivs(t *Target, r *Report) error {
	kept := t.Data.Civs[:0:0]
	for _, c := range t.Data.Civs {
		if c.ID == Gaia || c.ID.AvailableAt(p.opts.DLCLevel) {
			kept = append(kept, c)
		} else {
			r.DroppedCivs++
		}
	}
	t.Data.Civs = kept
	return nil
}

func (p *Patcher) noSnow(t *Target, _ *Report) error {
	for i := range t.Data.Units {
		t.Data.Units[i].SnowGraphic = NoGraphic
	}
	for i := range t.Data.Terrains {
		t.Data.Terrains[i].SnowVariant = NoGraphic
	}
	return nil
}

func (p *Patcher) smallTrees(t *Target, r *Report) error {
	for i := range t.Data.Units {
		if t.Data.Units[i].Class == ClassTree {
			t.Data.Units[i].Graphic = SmallTreeGraphic(t.Data.Units[i].Graphic)
		}
	}
	return p.overlay(AssetSmallTrees, t.Graphics, "graphics", r)
}

func (p *Patcher) shortWalls(t *Target, r *Report) error {
	for i := range t.Data.WallHeights {
		wh := &t.Data.WallHeights[i]
		if h, ok := shortWallHeights[wh.UnitID]; ok {
			wh.Height = h
		} else {
			wh.Height /= 2
		}
	}
	return p.overlay(AssetShortWalls, t.Graphics, "graphics", r)
}

func (p *Patcher) regionalMonks(t *Target, r *Report) error {
	for i := range t.Data.Civs {
		if t.Data.Civs[i].ID == Gaia {
			continue
		}
		t.Data.Civs[i].MonkUnit = RegionalMonk(t.Data.Civs[i].Culture)
	}
	return p.overlay(AssetRegionalMonks, t.Graphics, "graphics", r)
}

func (p *Patcher) grid(t *Target, r *Report) error {
	if p.res == nil {
		return errNoResources
	}
	if t.Terrain == nil {
		return errors.New("terrain archive not loaded")
	}
	for i := range t.Data.Terrains {
		t.Data.Terrains[i].Overlay = GridOverlayID
	}
	bitmap, err := p.res.GridOverlay()
	if err != nil {
		return fmt.Errorf("build grid overlay: %w", err)
	}
	if err := t.Terrain.Set(GridOverlayEntry, bitmap); err != nil {
		return err
	}
	r.OverlaidEntries++
	return nil
}

func (p *Patcher) fixFlags(t *Target, _ *Report) error {
	for i := range t.Data.Units {
		t.Data.Units[i].Flags &^= HDOnlyFlags
	}
	return nil
}

func (p *Patcher) replaceTooltips(t *Target, r *Report) error {
	if p.res == nil {
		return errNoResources
	}
	if t.Strings == nil {
		return errors.New("string table not loaded")
	}
	tips, err := p.res.Tooltips(p.opts.Language)
	if err != nil {
		return err
	}
	for id, text := range tips {
		t.Strings.Set(id, text)
	}
	r.TooltipsReplaced = len(tips)
	return nil
}

func (p *Patcher) civOverrides(t *Target, r *Report) error {
	overrides := p.opts.Overrides
	if p.opts.RestrictedCivMods {
		overrides, r.Neutralized = Neutralize(overrides)
	}
	if t.Strings == nil {
		return errors.New("string table not loaded")
	}

	index := make(map[Civ]int, len(t.Data.Civs))
	for i, c := range t.Data.Civs {
		index[c.ID] = i
	}
	for civ, o := range overrides {
		if o == nil {
			continue
		}
		c := Civ(civ)
		i, ok := index[c]
		if !ok {
			// Dropped by the DLC level.
			continue
		}
		if o.ShortName != "" {
			t.Data.Civs[i].Name = o.ShortName
		}
		if o.Name != "" {
			t.Strings.Set(CivNameID(c), o.Name)
		}

		var err error
		desc := o.Description
		if desc == "" {
			desc, _ = t.Strings.Get(CivDescriptionID(c))
		}
		if o.GrantsGameplayChange() {
			if desc, err = replaceLine(desc, o.BonusSlot, o.CustomText); err != nil {
				return fmt.Errorf("civ override for %s: %w", c, err)
			}
		}
		if desc != "" {
			t.Strings.Set(CivDescriptionID(c), desc)
		}
		r.OverriddenCivs = append(r.OverriddenCivs, c)
	}
	return nil
}

func (p *Patcher) overlay(set string, a *drs.StagingArchive, archive string, r *Report) error {
	if p.res == nil {
		return errNoResources
	}
	if a == nil {
		return fmt.Errorf("%s archive not loaded", archive)
	}
	n, err := p.res.Overlay(set, a)
	if err != nil {
		return err
	}
	r.OverlaidEntries += n
	return nil
}

// Neutralize returns a copy of the overrides with every gameplay change removed.
// Names and descriptions are kept. It also returns the civs that were changed.
func Neutralize(o *CivOverrides) (*CivOverrides, []Civ) {
	if o == nil {
		return nil, nil
	}
	out := o.Clone()
	var changed []Civ
	for civ, v := range out {
		if v != nil && v.GrantsGameplayChange() {
			v.BonusSlot = -1
			v.CustomText = ""
			changed = append(changed, Civ(civ))
		}
	}
	return out, changed
}

// replaceLine replaces line n of a description, appending blank lines as needed.
func replaceLine(text string, n int, line string) (string, error) {
	if n < 0 || n >= MaxBonusSlot {
		return "", fmt.Errorf("bonus slot %d out of range [0, %d)", n, MaxBonusSlot)
	}
	lines := strings.Split(text, "\n")
	for len(lines) <= n {
		lines = append(lines, "")
	}
	lines[n] = line
	return strings.Join(lines, "\n"), nil
}
