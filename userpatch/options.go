// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package userpatch

import (
	"runtime"
	"strings"
)

// InstallOptions are the optional features of the UserPatch installer, passed
// as a bit string with the -f flag.
type InstallOptions struct {
	WidescreenCommandBar bool
	WindowedMode         bool // Windows only
	UPnP                 bool // Automatic port forwarding, Windows only

	AlternateRed              bool // Dark red minimap color
	AlternatePurple           bool // Dark purple minimap color
	AlternateGray             bool // Dark gray minimap color
	ExtendPopulationCaps      bool // Population cap up to 1000
	ReplaceSnowWithGrass      bool
	WaterAnimation            bool
	PrecisionScrolling        bool // Scroll by pixels instead of half tiles
	ShiftGroupAppend          bool
	KeydownHotkeys            bool
	SavegameFormat            bool // New savegame file name format
	MultipleQueue             bool // Multiple building queueing
	OriginalPatrolDelay       bool
	WaterMovement             bool
	WeatherSystem             bool // Rain and snow effects
	CustomTerrains            bool // Terrains from scenarios and ZR@ maps
	TerrainUnderwater         bool
	NumericAgeDisplay         bool
	TouchScreenControl        bool
	StoreSpecAddresses        bool
	NormalMouse               bool
	DelinkVolume              bool
	WineChatbox               bool
	LowQualityEnvironment     bool
	LowFPS                    bool
	ExtendedHotkeys           bool
	ForceGameplayFeatures     bool
	DisplayOreResource        bool
	MultiplayerAntiCheat      bool
	DefaultBackgroundMode     bool
	SPAtMultiplayerSpeed      bool
	DebugLogging              bool
	StatisticsFontStyle       bool
	BackgroundAudioPlayback   bool
	CivilianAttackSwitch      bool
	HandleSmallFarmSelections bool
	SpecResearchEvents        bool
}

// DefaultOptions returns the recommended feature set for the current platform.
func DefaultOptions() InstallOptions {
	return defaultOptions(runtime.GOOS == "windows")
}

func defaultOptions(windows bool) InstallOptions {
	return InstallOptions{
		WidescreenCommandBar: true,
		WindowedMode:         windows,

		ExtendPopulationCaps: true,
		WaterAnimation:       true,
		PrecisionScrolling:   true,
		ShiftGroupAppend:     true,
		KeydownHotkeys:       true,
		SavegameFormat:       true,
		WaterMovement:        true,
		WeatherSystem:        true,
		CustomTerrains:       true,
		TerrainUnderwater:    true,
		TouchScreenControl:   true,
		StoreSpecAddresses:   true,
		// the chat box flickers under wine
		WineChatbox:          !windows,
		ExtendedHotkeys:      true,
		MultiplayerAntiCheat: true,
	}
}

// FeatureBits encodes the options in installer order, one '0' or '1' per
// feature. Some features are opt-out in the installer and are written inverted.
func (o InstallOptions) FeatureBits() string {
	flags := []bool{
		o.WidescreenCommandBar,
		o.WindowedMode,
		o.UPnP,
		o.AlternateRed,
		o.AlternatePurple,
		o.AlternateGray,
		o.ExtendPopulationCaps,
		o.ReplaceSnowWithGrass,
		o.WaterAnimation,
		o.PrecisionScrolling,
		o.ShiftGroupAppend,
		o.KeydownHotkeys,
		o.SavegameFormat,
		o.MultipleQueue,
		o.OriginalPatrolDelay,
		!o.WaterMovement,
		!o.WeatherSystem,
		!o.CustomTerrains,
		!o.TerrainUnderwater,
		o.NumericAgeDisplay,
		o.TouchScreenControl,
		o.StoreSpecAddresses,
		o.NormalMouse,
		o.DelinkVolume,
		o.WineChatbox,
		o.LowQualityEnvironment,
		o.LowFPS,
		!o.ExtendedHotkeys,
		o.ForceGameplayFeatures,
		o.DisplayOreResource,
		!o.MultiplayerAntiCheat,
		o.DefaultBackgroundMode,
		o.SPAtMultiplayerSpeed,
		o.DebugLogging,
		o.StatisticsFontStyle,
		o.BackgroundAudioPlayback,
		!o.CivilianAttackSwitch,
		o.HandleSmallFarmSelections,
		o.SpecResearchEvents,
	}

	var b strings.Builder
	b.Grow(len(flags))
	for _, f := range flags {
		if f {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}
