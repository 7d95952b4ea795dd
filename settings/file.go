// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package settings

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/suprsokr/wkconvert/genie"
)

// File is the YAML form of the settings. Omitted selections keep their
// defaults; relative paths are resolved against the file's directory.
type File struct {
	UseVoobly         bool `yaml:"use_voobly"`
	UseExe            bool `yaml:"use_exe"`
	UseBoth           bool `yaml:"use_both"`
	UseRegionalMonks  bool `yaml:"use_regional_monks"`
	UseSmallTrees     bool `yaml:"use_small_trees"`
	UseShortWalls     bool `yaml:"use_short_walls"`
	CopyMaps          bool `yaml:"copy_maps"`
	CopyCustomMaps    bool `yaml:"copy_custom_maps"`
	RestrictedCivMods bool `yaml:"restricted_civ_mods"`
	UseNoSnow         bool `yaml:"use_no_snow"`
	FixFlags          bool `yaml:"fix_flags"`
	ReplaceTooltips   bool `yaml:"replace_tooltips"`
	UseGrid           bool `yaml:"use_grid"`

	Language string `yaml:"language"`
	DLCLevel *int   `yaml:"dlc_level"`
	Patch    *int   `yaml:"patch"`
	Hotkeys  string `yaml:"hotkeys"`
	ModName  string `yaml:"mod_name"`

	HDPath       string `yaml:"hd_path"`
	OutPath      string `yaml:"out_path"`
	VooblyPath   string `yaml:"voobly_path"`
	UPPath       string `yaml:"up_path"`
	ResourcePath string `yaml:"resource_path"`

	// Keyed by civilization name, for example "Britons".
	CivOverrides map[string]FileOverride `yaml:"civ_overrides"`
}

// FileOverride is the YAML form of a civ override. BonusSlot defaults to -1.
type FileOverride struct {
	Name        string `yaml:"name"`
	ShortName   string `yaml:"short_name"`
	Description string `yaml:"description"`
	BonusSlot   *int   `yaml:"bonus_slot"`
	CustomText  string `yaml:"custom_text"`
}

// ParseFile decodes a YAML settings document. Unknown keys are rejected.
func ParseFile(data []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, configError("file", "%v", err)
	}
	return &f, nil
}

// LoadFile reads, resolves and validates a settings file.
func LoadFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings file: %w", err)
	}
	f, err := ParseFile(data)
	if err != nil {
		return nil, err
	}
	f.ResolvePaths(filepath.Dir(path))
	return f.Builder().Build()
}

// ResolvePaths makes relative paths absolute against base.
func (f *File) ResolvePaths(base string) {
	for _, p := range []*string{&f.HDPath, &f.OutPath, &f.VooblyPath, &f.UPPath, &f.ResourcePath} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
}

// Builder returns a builder holding the file's settings.
func (f *File) Builder() *Builder {
	b := NewBuilder().
		UseVoobly(f.UseVoobly).
		UseExe(f.UseExe).
		UseBoth(f.UseBoth).
		UseRegionalMonks(f.UseRegionalMonks).
		UseSmallTrees(f.UseSmallTrees).
		UseShortWalls(f.UseShortWalls).
		CopyMaps(f.CopyMaps).
		CopyCustomMaps(f.CopyCustomMaps).
		RestrictedCivMods(f.RestrictedCivMods).
		UseNoSnow(f.UseNoSnow).
		FixFlags(f.FixFlags).
		ReplaceTooltips(f.ReplaceTooltips).
		UseGrid(f.UseGrid).
		HDPath(f.HDPath).
		OutPath(f.OutPath).
		VooblyPath(f.VooblyPath).
		UPPath(f.UPPath).
		ResourcePath(f.ResourcePath)

	if f.Language != "" {
		b.Language(f.Language)
	}
	if f.DLCLevel != nil {
		b.DLCLevel(*f.DLCLevel)
	}
	if f.Patch != nil {
		b.Patch(*f.Patch)
	}
	if f.Hotkeys != "" {
		b.Hotkeys(f.Hotkeys)
	}
	if f.ModName != "" {
		b.ModName(f.ModName)
	}

	names := make([]string, 0, len(f.CivOverrides))
	for name := range f.CivOverrides {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		o := f.CivOverrides[name]
		slot := -1
		if o.BonusSlot != nil {
			slot = *o.BonusSlot
		}
		b.CivOverrideByName(name, genie.CivOverride{
			Name:        o.Name,
			ShortName:   o.ShortName,
			Description: o.Description,
			BonusSlot:   slot,
			CustomText:  o.CustomText,
		})
	}
	return b
}
