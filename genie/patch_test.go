// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package genie

import (
	"reflect"
	"strings"
	"testing"

	"github.com/suprsokr/wkconvert/drs"
)

// fakeResources serves fixed assets.
type fakeResources struct {
	tips map[int32]string
}

func (f *fakeResources) Overlay(set string, a *drs.StagingArchive) (int, error) {
	return 1, a.Set(drs.EntryName(90000, "slp"), []byte(set))
}

func (f *fakeResources) Tooltips(lang string) (map[int32]string, error) {
	return f.tips, nil
}

func (f *fakeResources) GridOverlay() ([]byte, error) {
	return []byte("BM grid"), nil
}

func newTestTarget() *Target {
	strs := NewStringTable()
	strs.Set(CivNameID(Britons), "Britons")
	strs.Set(CivDescriptionID(Britons), "Infantry civilization\nFoot archers +1 range\nShepherds work faster")
	strs.Set(26001, "old tooltip")
	return &Target{
		Data:     testDataFile(),
		Strings:  strs,
		Graphics: drs.NewStagingArchive("graphics"),
		Terrain:  drs.NewStagingArchive("terrain"),
	}
}

func applyOptions(t *testing.T, opts Options) *Target {
	t.Helper()
	if opts.DLCLevel == 0 {
		opts.DLCLevel = DLCRajas
	}
	target := newTestTarget()
	res := &fakeResources{tips: map[int32]string{26001: "new tooltip"}}
	if _, err := NewPatcher(opts, res).Apply(target); err != nil {
		t.Fatalf("apply: %v", err)
	}
	return target
}

func TestTransforms(t *testing.T) {
	t.Run("no snow", func(t *testing.T) {
		got := applyOptions(t, Options{NoSnow: true})
		for _, u := range got.Data.Units {
			if u.SnowGraphic != NoGraphic {
				t.Errorf("unit %d SnowGraphic = %d", u.ID, u.SnowGraphic)
			}
		}
		for _, tr := range got.Data.Terrains {
			if tr.SnowVariant != NoGraphic {
				t.Errorf("terrain %d SnowVariant = %d", tr.ID, tr.SnowVariant)
			}
		}
	})

	t.Run("small trees", func(t *testing.T) {
		got := applyOptions(t, Options{SmallTrees: true})
		if g := got.Data.Units[1].Graphic; g != SmallTreeGraphic(435) {
			t.Errorf("tree Graphic = %d, want %d", g, SmallTreeGraphic(435))
		}
		if g := got.Data.Units[0].Graphic; g != 10 {
			t.Errorf("non-tree Graphic changed to %d", g)
		}
		if got.Graphics.Len() != 1 {
			t.Errorf("graphics entries = %d, want 1", got.Graphics.Len())
		}
	})

	t.Run("short walls", func(t *testing.T) {
		got := applyOptions(t, Options{ShortWalls: true})
		want := []WallHeight{{72, 1.0}, {117, 1.5}, {999, 2}}
		if !reflect.DeepEqual(got.Data.WallHeights, want) {
			t.Errorf("WallHeights = %v, want %v", got.Data.WallHeights, want)
		}
	})

	t.Run("regional monks", func(t *testing.T) {
		got := applyOptions(t, Options{RegionalMonks: true})
		for _, c := range got.Data.Civs {
			want := RegionalMonk(c.Culture)
			if c.ID == Gaia {
				want = MonkUnit
			}
			if c.MonkUnit != want {
				t.Errorf("%s MonkUnit = %d, want %d", c.ID, c.MonkUnit, want)
			}
		}
	})

	t.Run("grid", func(t *testing.T) {
		got := applyOptions(t, Options{Grid: true})
		for _, tr := range got.Data.Terrains {
			if tr.Overlay != GridOverlayID {
				t.Errorf("terrain %d Overlay = %d", tr.ID, tr.Overlay)
			}
		}
		if !got.Terrain.Has(GridOverlayEntry) {
			t.Errorf("terrain archive missing %s", GridOverlayEntry)
		}
	})

	t.Run("fix flags", func(t *testing.T) {
		got := applyOptions(t, Options{FixFlags: true})
		if f := got.Data.Units[0].Flags; f != 0x1 {
			t.Errorf("Flags = %#x, want 0x1", f)
		}
	})

	t.Run("replace tooltips", func(t *testing.T) {
		got := applyOptions(t, Options{ReplaceTooltips: true, Language: "en"})
		if s, _ := got.Strings.Get(26001); s != "new tooltip" {
			t.Errorf("tooltip = %q", s)
		}
	})

	t.Run("dlc level", func(t *testing.T) {
		target := newTestTarget()
		report, err := NewPatcher(Options{DLCLevel: DLCForgotten}, nil).Apply(target)
		if err != nil {
			t.Fatal(err)
		}
		if report.DroppedCivs != 1 {
			t.Errorf("DroppedCivs = %d, want 1", report.DroppedCivs)
		}
		for _, c := range target.Data.Civs {
			if c.ID == Vietnamese {
				t.Error("Vietnamese kept at Forgotten level")
			}
		}
	})
}

// contents returns every entry of an archive by name.
func contents(a *drs.StagingArchive) map[string]string {
	out := make(map[string]string, a.Len())
	for _, name := range a.Names() {
		data, _ := a.Get(name)
		out[name] = string(data)
	}
	return out
}

// TestFlagIsolation checks that adding a flag to a set only changes the tables
// owned by that flag.
func TestFlagIsolation(t *testing.T) {
	overrides := &CivOverrides{}
	if err := overrides.Set(Britons, CivOverride{Name: "Angles", BonusSlot: 1, CustomText: "Longbowmen +2 range"}); err != nil {
		t.Fatal(err)
	}
	apply := func(t *testing.T, opts Options) *Target {
		t.Helper()
		opts.NoSnow = true
		opts.DLCLevel = DLCRajas
		opts.Overrides = overrides
		target := newTestTarget()
		target.Graphics.Set(drs.EntryName(435, "slp"), []byte("oak"))
		target.Terrain.Set(drs.EntryName(15000, "slp"), []byte("grass"))
		res := &fakeResources{tips: map[int32]string{26001: "new tooltip"}}
		if _, err := NewPatcher(opts, res).Apply(target); err != nil {
			t.Fatalf("apply: %v", err)
		}
		return target
	}
	base := apply(t, Options{})

	tests := []struct {
		name    string
		opts    Options
		changed []string
	}{
		{"grid", Options{Grid: true}, []string{"terrains", "terrain"}},
		{"fix flags", Options{FixFlags: true}, []string{"units"}},
		{"small trees", Options{SmallTrees: true}, []string{"units", "graphics"}},
		{"short walls", Options{ShortWalls: true}, []string{"walls", "graphics"}},
		{"regional monks", Options{RegionalMonks: true}, []string{"civs", "graphics"}},
		{"tooltips", Options{ReplaceTooltips: true}, []string{"strings"}},
		{"restricted civ mods", Options{RestrictedCivMods: true}, []string{"strings"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := apply(t, tt.opts)
			regions := map[string]bool{
				"civs":     !reflect.DeepEqual(got.Data.Civs, base.Data.Civs),
				"units":    !reflect.DeepEqual(got.Data.Units, base.Data.Units),
				"terrains": !reflect.DeepEqual(got.Data.Terrains, base.Data.Terrains),
				"walls":    !reflect.DeepEqual(got.Data.WallHeights, base.Data.WallHeights),
				"strings":  !reflect.DeepEqual(got.Strings, base.Strings),
				"graphics": !reflect.DeepEqual(contents(got.Graphics), contents(base.Graphics)),
				"terrain":  !reflect.DeepEqual(contents(got.Terrain), contents(base.Terrain)),
			}
			want := make(map[string]bool)
			for _, r := range tt.changed {
				want[r] = true
			}
			for region, changed := range regions {
				if changed != want[region] {
					t.Errorf("region %s changed = %v, want %v", region, changed, want[region])
				}
			}
			if data, _ := got.Graphics.Get(drs.EntryName(435, "slp")); string(data) != "oak" {
				t.Errorf("existing graphics entry = %q, want oak", data)
			}
			if data, _ := got.Terrain.Get(drs.EntryName(15000, "slp")); string(data) != "grass" {
				t.Errorf("existing terrain entry = %q, want grass", data)
			}
		})
	}
}

func TestBonusSlotBounds(t *testing.T) {
	tests := []struct {
		name    string
		slot    int
		wantErr bool
	}{
		{"none", -1, false},
		{"first", 0, false},
		{"last", MaxBonusSlot - 1, false},
		{"below none", -2, true},
		{"past last", MaxBonusSlot, true},
		{"huge", 1 << 40, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &CivOverrides{}
			err := o.Set(Britons, CivOverride{Name: "Angles", BonusSlot: tt.slot, CustomText: "x"})
			if (err != nil) != tt.wantErr {
				t.Fatalf("Set() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && o.Get(Britons) != nil {
				t.Error("rejected override was stored")
			}
		})
	}

	t.Run("apply rejects out of range slot", func(t *testing.T) {
		o := &CivOverrides{}
		o[Britons] = &CivOverride{Name: "Angles", BonusSlot: 20_000_000, CustomText: "x"}
		target := newTestTarget()
		if _, err := NewPatcher(Options{DLCLevel: DLCRajas, Overrides: o}, nil).Apply(target); err == nil {
			t.Fatal("Apply() error = nil, want bonus slot error")
		}
		if desc, _ := target.Strings.Get(CivDescriptionID(Britons)); strings.Count(desc, "\n") > 2 {
			t.Errorf("description grew to %d lines", strings.Count(desc, "\n")+1)
		}
	})
}

func TestCivOverrides(t *testing.T) {
	overrides := &CivOverrides{}
	if err := overrides.Set(Britons, CivOverride{
		Name:       "Angles",
		ShortName:  "Angles",
		BonusSlot:  1,
		CustomText: "Longbowmen +2 range",
	}); err != nil {
		t.Fatal(err)
	}

	t.Run("unrestricted", func(t *testing.T) {
		target := newTestTarget()
		report, err := NewPatcher(Options{DLCLevel: DLCRajas, Overrides: overrides}, nil).Apply(target)
		if err != nil {
			t.Fatal(err)
		}
		if s, _ := target.Strings.Get(CivNameID(Britons)); s != "Angles" {
			t.Errorf("name = %q, want Angles", s)
		}
		desc, _ := target.Strings.Get(CivDescriptionID(Britons))
		if !strings.Contains(desc, "Longbowmen +2 range") || strings.Contains(desc, "Foot archers") {
			t.Errorf("description = %q", desc)
		}
		if target.Data.Civs[1].Name != "Angles" {
			t.Errorf("civ short name = %q", target.Data.Civs[1].Name)
		}
		if len(report.Neutralized) != 0 {
			t.Errorf("Neutralized = %v, want none", report.Neutralized)
		}
	})

	t.Run("restricted", func(t *testing.T) {
		target := newTestTarget()
		report, err := NewPatcher(Options{DLCLevel: DLCRajas, Overrides: overrides, RestrictedCivMods: true}, nil).Apply(target)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(report.Neutralized, []Civ{Britons}) {
			t.Errorf("Neutralized = %v, want [Britons]", report.Neutralized)
		}
		if s, _ := target.Strings.Get(CivNameID(Britons)); s != "Angles" {
			t.Errorf("name = %q, want Angles", s)
		}
		desc, _ := target.Strings.Get(CivDescriptionID(Britons))
		if !strings.Contains(desc, "Foot archers +1 range") {
			t.Errorf("description = %q, want original bonus line", desc)
		}
		if overrides.Get(Britons).CustomText == "" {
			t.Error("Neutralize modified the caller's overrides")
		}
	})
}

func TestApplyWithoutResources(t *testing.T) {
	target := newTestTarget()
	_, err := NewPatcher(Options{DLCLevel: DLCRajas, Grid: true}, nil).Apply(target)
	if err == nil {
		t.Fatal("Apply() with grid and no resources succeeded")
	}
}
