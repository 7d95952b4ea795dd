// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

// Package settings holds the validated, immutable configuration of one
// conversion run.
//
// Settings are assembled with a Builder and checked once by Build: field
// ranges, the destination selection, and the existence and permissions of
// every directory the selected features need. A Settings value has no setters.
package settings

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/suprsokr/wkconvert/genie"
)

// Defaults
const (
	DefaultLanguage = "en"
	DefaultModName  = "WololoKingdoms"
	DefaultHotkeys  = "keep"
	DefaultDLCLevel = genie.DLCRajas
	DefaultPatch    = -1
)

// values carries every setting with its validation rules.
type values struct {
	UseVoobly         bool
	UseExe            bool
	UseBoth           bool
	UseRegionalMonks  bool
	UseSmallTrees     bool
	UseShortWalls     bool
	CopyMaps          bool
	CopyCustomMaps    bool
	RestrictedCivMods bool
	UseNoSnow         bool
	FixFlags          bool
	ReplaceTooltips   bool
	UseGrid           bool

	Language string `validate:"required,oneof=en de es fr it ja ko nl pt ru zh"`
	DLCLevel int    `validate:"min=0,max=3"`
	Patch    int    `validate:"min=-1"`
	Hotkeys  string `validate:"required,oneof=keep hd aoc"`
	ModName  string `validate:"required,max=64,modname"`

	HDPath       string `validate:"required"`
	OutPath      string
	VooblyPath   string
	UPPath       string
	ResourcePath string

	CivOverrides genie.CivOverrides
}

// Settings is a validated configuration. The zero value is not valid; use
// a Builder.
type Settings struct {
	v values
}

func (s *Settings) UseVoobly() bool         { return s.v.UseVoobly }
func (s *Settings) UseExe() bool            { return s.v.UseExe }
func (s *Settings) UseBoth() bool           { return s.v.UseBoth }
func (s *Settings) UseRegionalMonks() bool  { return s.v.UseRegionalMonks }
func (s *Settings) UseSmallTrees() bool     { return s.v.UseSmallTrees }
func (s *Settings) UseShortWalls() bool     { return s.v.UseShortWalls }
func (s *Settings) CopyMaps() bool          { return s.v.CopyMaps }
func (s *Settings) CopyCustomMaps() bool    { return s.v.CopyCustomMaps }
func (s *Settings) RestrictedCivMods() bool { return s.v.RestrictedCivMods }
func (s *Settings) UseNoSnow() bool         { return s.v.UseNoSnow }
func (s *Settings) FixFlags() bool          { return s.v.FixFlags }
func (s *Settings) ReplaceTooltips() bool   { return s.v.ReplaceTooltips }
func (s *Settings) UseGrid() bool           { return s.v.UseGrid }

func (s *Settings) Language() string { return s.v.Language }
func (s *Settings) DLCLevel() int    { return s.v.DLCLevel }
func (s *Settings) Patch() int       { return s.v.Patch }
func (s *Settings) Hotkeys() string  { return s.v.Hotkeys }
func (s *Settings) ModName() string  { return s.v.ModName }

func (s *Settings) HDPath() string       { return s.v.HDPath }
func (s *Settings) OutPath() string      { return s.v.OutPath }
func (s *Settings) VooblyPath() string   { return s.v.VooblyPath }
func (s *Settings) UPPath() string       { return s.v.UPPath }
func (s *Settings) ResourcePath() string { return s.v.ResourcePath }

// CivOverrides returns a copy of the civ overrides.
func (s *Settings) CivOverrides() *genie.CivOverrides {
	return s.v.CivOverrides.Clone()
}

// ExeSelected reports whether the standalone installation is a destination.
func (s *Settings) ExeSelected() bool { return s.v.UseExe || s.v.UseBoth }

// VooblySelected reports whether the Voobly data mod is a destination.
func (s *Settings) VooblySelected() bool { return s.v.UseVoobly || s.v.UseBoth }

// ExeDir returns the standalone installation directory of the mod.
func (s *Settings) ExeDir() string {
	return filepath.Join(s.v.OutPath, "Games", s.v.ModName)
}

// VooblyDir returns the Voobly data mod directory.
func (s *Settings) VooblyDir() string {
	return filepath.Join(s.v.VooblyPath, "Voobly Mods", "AOC", "Data Mods", s.v.ModName)
}

// NeedsResources reports whether a selected feature reads the resource pack.
func (s *Settings) NeedsResources() bool {
	return s.v.UseSmallTrees || s.v.UseShortWalls || s.v.UseRegionalMonks || s.v.ReplaceTooltips
}

// Builder assembles Settings. Setters return the builder for chaining.
type Builder struct {
	v    values
	errs []error
}

// NewBuilder returns a builder holding the default selections.
func NewBuilder() *Builder {
	return &Builder{v: values{
		Language: DefaultLanguage,
		DLCLevel: DefaultDLCLevel,
		Patch:    DefaultPatch,
		Hotkeys:  DefaultHotkeys,
		ModName:  DefaultModName,
	}}
}

func (b *Builder) UseVoobly(on bool) *Builder         { b.v.UseVoobly = on; return b }
func (b *Builder) UseExe(on bool) *Builder            { b.v.UseExe = on; return b }
func (b *Builder) UseBoth(on bool) *Builder           { b.v.UseBoth = on; return b }
func (b *Builder) UseRegionalMonks(on bool) *Builder  { b.v.UseRegionalMonks = on; return b }
func (b *Builder) UseSmallTrees(on bool) *Builder     { b.v.UseSmallTrees = on; return b }
func (b *Builder) UseShortWalls(on bool) *Builder     { b.v.UseShortWalls = on; return b }
func (b *Builder) CopyMaps(on bool) *Builder          { b.v.CopyMaps = on; return b }
func (b *Builder) CopyCustomMaps(on bool) *Builder    { b.v.CopyCustomMaps = on; return b }
func (b *Builder) RestrictedCivMods(on bool) *Builder { b.v.RestrictedCivMods = on; return b }
func (b *Builder) UseNoSnow(on bool) *Builder         { b.v.UseNoSnow = on; return b }
func (b *Builder) FixFlags(on bool) *Builder          { b.v.FixFlags = on; return b }
func (b *Builder) ReplaceTooltips(on bool) *Builder   { b.v.ReplaceTooltips = on; return b }
func (b *Builder) UseGrid(on bool) *Builder           { b.v.UseGrid = on; return b }

func (b *Builder) Language(code string) *Builder  { b.v.Language = code; return b }
func (b *Builder) DLCLevel(level int) *Builder    { b.v.DLCLevel = level; return b }
func (b *Builder) Patch(patch int) *Builder       { b.v.Patch = patch; return b }
func (b *Builder) Hotkeys(choice string) *Builder { b.v.Hotkeys = choice; return b }
func (b *Builder) ModName(name string) *Builder   { b.v.ModName = name; return b }

func (b *Builder) HDPath(path string) *Builder       { b.v.HDPath = path; return b }
func (b *Builder) OutPath(path string) *Builder      { b.v.OutPath = path; return b }
func (b *Builder) VooblyPath(path string) *Builder   { b.v.VooblyPath = path; return b }
func (b *Builder) UPPath(path string) *Builder       { b.v.UPPath = path; return b }
func (b *Builder) ResourcePath(path string) *Builder { b.v.ResourcePath = path; return b }

// CivOverride sets the override of one civilization. An invalid civ is
// reported by Build.
func (b *Builder) CivOverride(civ genie.Civ, o genie.CivOverride) *Builder {
	if err := b.v.CivOverrides.Set(civ, o); err != nil {
		b.errs = append(b.errs, configError("CivOverrides", "%v", err))
	}
	return b
}

// CivOverrideByName sets an override by civilization name.
func (b *Builder) CivOverrideByName(name string, o genie.CivOverride) *Builder {
	civ, err := genie.ParseCiv(name)
	if err != nil {
		b.errs = append(b.errs, configError("CivOverrides", "%v", err))
		return b
	}
	return b.CivOverride(civ, o)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("modname", func(fl validator.FieldLevel) bool {
		name := fl.Field().String()
		return name != "." && name != ".." && !strings.ContainsAny(name, `/\:*?"<>|`)
	})
	return v
}

// Build validates the settings. All problems are reported together, each as a
// *ConfigurationError.
func (b *Builder) Build() (*Settings, error) {
	errs := append([]error(nil), b.errs...)

	if err := validate.Struct(&b.v); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return nil, fmt.Errorf("validate settings: %w", err)
		}
		for _, fe := range fieldErrs {
			errs = append(errs, configError(fe.Field(), "%s", describe(fe)))
		}
	}

	s := &Settings{v: b.v}
	if !s.v.UseVoobly && !s.v.UseExe && !s.v.UseBoth {
		errs = append(errs, configError("UseVoobly", "no destination selected: enable voobly, exe or both"))
	}

	if s.v.HDPath != "" {
		errs = appendErr(errs, checkDir("HDPath", s.v.HDPath, false))
	}
	if s.ExeSelected() {
		errs = appendErr(errs, checkDir("OutPath", s.v.OutPath, true))
		errs = appendErr(errs, checkDir("UPPath", s.v.UPPath, false))
	}
	if s.VooblySelected() {
		errs = appendErr(errs, checkDir("VooblyPath", s.v.VooblyPath, true))
	}
	if s.NeedsResources() {
		errs = appendErr(errs, checkDir("ResourcePath", s.v.ResourcePath, false))
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return s, nil
}

func appendErr(errs []error, err error) []error {
	if err != nil {
		return append(errs, err)
	}
	return errs
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("%v is not one of %s", fe.Value(), fe.Param())
	case "min":
		return fmt.Sprintf("%v is below the minimum %s", fe.Value(), fe.Param())
	case "max":
		return fmt.Sprintf("%v is above the maximum %s", fe.Value(), fe.Param())
	case "modname":
		return fmt.Sprintf("%q cannot be used as a folder name", fe.Value())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// checkDir verifies that path is an existing, readable directory, and writable
// when write is set.
func checkDir(field, path string, write bool) error {
	if path == "" {
		return configError(field, "is required by the selected options")
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return configError(field, "%s does not exist", path)
		}
		return configError(field, "%s: %v", path, err)
	}
	if !info.IsDir() {
		return configError(field, "%s is not a directory", path)
	}

	dir, err := os.Open(path)
	if err != nil {
		return configError(field, "%s is not readable: %v", path, err)
	}
	_, err = dir.Readdirnames(1)
	dir.Close()
	if err != nil && !errors.Is(err, io.EOF) {
		return configError(field, "%s is not readable: %v", path, err)
	}

	if write {
		probe, err := os.CreateTemp(path, ".wkconvert-probe-*")
		if err != nil {
			return configError(field, "%s is not writable: %v", path, err)
		}
		probe.Close()
		os.Remove(probe.Name())
	}
	return nil
}
