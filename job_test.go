// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package wkconvert

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/suprsokr/wkconvert/drs"
	"github.com/suprsokr/wkconvert/genie"
	"github.com/suprsokr/wkconvert/internal/logging"
	"github.com/suprsokr/wkconvert/maps"
	"github.com/suprsokr/wkconvert/settings"
	"github.com/suprsokr/wkconvert/userpatch"
)

// recorder keeps every listener event in order.
type recorder struct {
	events   []string
	progress []int
	errors   []string
	installs [][]string
}

func (r *recorder) Log(msg string)       { r.events = append(r.events, "log") }
func (r *recorder) SetStatus(msg string) { r.events = append(r.events, "status:"+msg) }
func (r *recorder) ReportProgress(p int) {
	r.progress = append(r.progress, p)
	r.events = append(r.events, fmt.Sprintf("progress:%d", p))
}
func (r *recorder) ReportError(msg string) {
	r.errors = append(r.errors, msg)
	r.events = append(r.events, "error")
}
func (r *recorder) RequestConfirmDialog(text string) { r.events = append(r.events, "dialog") }
func (r *recorder) RequestConfirmDialogTitled(title, text string) {
	r.events = append(r.events, "dialog:"+title)
}
func (r *recorder) RequestConfirmDialogWithReplacement(title, text, replacement string) {
	r.events = append(r.events, "dialog:"+title+":"+replacement)
}
func (r *recorder) OnFinished() { r.events = append(r.events, "finished") }
func (r *recorder) RequestInstallExternalPatch(exe string, args []string) {
	r.installs = append(r.installs, append([]string{exe}, args...))
	r.events = append(r.events, "install")
}

func (r *recorder) count(event string) int {
	n := 0
	for _, e := range r.events {
		if e == event {
			n++
		}
	}
	return n
}

// install is a fake HD installation with output directories.
type install struct {
	root, hd, out, voobly, up, staging string
}

func newInstall(t *testing.T) *install {
	t.Helper()
	root := t.TempDir()
	in := &install{
		root:    root,
		hd:      filepath.Join(root, "hd"),
		out:     filepath.Join(root, "out"),
		voobly:  filepath.Join(root, "voobly"),
		up:      filepath.Join(root, "up"),
		staging: filepath.Join(root, "staging"),
	}
	for _, dir := range []string{in.hd, in.out, in.voobly, in.up} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
	}

	graphics := drs.NewStagingArchive("graphics")
	graphics.Set("100.slp", []byte("villager"))
	graphics.Set("101.slp", []byte("oak tree"))
	graphics.Set("200.slp", []byte("villager in snow"))
	terrain := drs.NewStagingArchive("terrain")
	terrain.Set("15000.slp", []byte("grass"))
	for name, a := range map[string]*drs.StagingArchive{"graphics.drs": graphics, "terrain.drs": terrain} {
		if err := drs.Repack(a, filepath.Join(in.hd, DataDir, name)); err != nil {
			t.Fatal(err)
		}
	}

	data := genie.NewDataFile(
		[]genie.CivRecord{
			{ID: genie.Gaia, Culture: genie.CultureWestEuropean, MonkUnit: genie.MonkUnit, Name: "Gaia"},
			{ID: genie.Britons, Culture: genie.CultureWestEuropean, MonkUnit: genie.MonkUnit, Name: "British"},
			{ID: genie.Vietnamese, Culture: genie.CultureSoutheastAsian, MonkUnit: genie.MonkUnit, Name: "Vietnamese"},
		},
		[]genie.Unit{
			{ID: 83, Class: 4, Graphic: 100, SnowGraphic: 200, Flags: 0x00010001},
			{ID: 349, Class: genie.ClassTree, Graphic: 101, SnowGraphic: genie.NoGraphic},
		},
		[]genie.Terrain{
			{ID: 0, SLP: 15000, SnowVariant: 32, Overlay: genie.NoGraphic, Name: "Grass"},
		},
		[]genie.WallHeight{{UnitID: 72, Height: 2}},
	)
	if err := data.WriteFile(filepath.Join(in.hd, DataDir, DataFileName)); err != nil {
		t.Fatal(err)
	}

	strs := genie.NewStringTable()
	strs.Set(genie.CivNameID(genie.Britons), "Britons")
	strs.Set(genie.CivDescriptionID(genie.Britons), "Foot archer civilization")
	var buf bytes.Buffer
	strs.WriteTo(&buf)
	writeFile(t, genie.StringTablePath(in.hd, "en"), buf.String())

	writeFile(t, filepath.Join(in.hd, maps.BuiltinDir, "Arabia.rms"), "<PLAYER_SETUP>\nrandom_placement\n")
	writeFile(t, filepath.Join(in.up, userpatch.ExecutableName), "MZ")
	return in
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

// snapshot returns the files under dir, keyed by relative path.
func snapshot(t *testing.T, dir string) map[string]string {
	t.Helper()
	files := make(map[string]string)
	filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		rel, _ := filepath.Rel(dir, path)
		files[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	return files
}

func (in *install) builder() *settings.Builder {
	return settings.NewBuilder().
		HDPath(in.hd).
		OutPath(in.out).
		VooblyPath(in.voobly).
		UPPath(in.up)
}

func (in *install) build(t *testing.T, b *settings.Builder) *settings.Settings {
	t.Helper()
	s, err := b.Build()
	if err != nil {
		t.Fatalf("Build(): %v", err)
	}
	return s
}

func (in *install) run(t *testing.T, s *settings.Settings) (*recorder, error) {
	t.Helper()
	rec := &recorder{}
	job := NewJob(s, rec, WithStagingRoot(in.staging), WithWorkers(2))
	defer job.Close()
	err := job.Run()
	return rec, err
}

func TestRunStandaloneWithMapsAndNoSnow(t *testing.T) {
	in := newInstall(t)
	s := in.build(t, in.builder().UseExe(true).CopyMaps(true).UseNoSnow(true))

	rec, err := in.run(t, s)
	if err != nil {
		t.Fatalf("Run(): %v", err)
	}

	exeDir := s.ExeDir()
	for _, rel := range []string{
		"Data/graphics.drs",
		"Data/terrain.drs",
		"Data/" + DataFileName,
		"language.ini",
		"Random/Arabia.rms",
	} {
		if _, err := os.Stat(filepath.Join(exeDir, filepath.FromSlash(rel))); err != nil {
			t.Errorf("%s not published: %v", rel, err)
		}
	}
	if _, err := os.Stat(s.VooblyDir()); !os.IsNotExist(err) {
		t.Errorf("voobly destination was written")
	}

	// untouched archives pass through byte for byte
	src, _ := os.ReadFile(filepath.Join(in.hd, DataDir, "graphics.drs"))
	dst, _ := os.ReadFile(filepath.Join(exeDir, DataDir, "graphics.drs"))
	if !bytes.Equal(src, dst) {
		t.Error("graphics.drs changed without an archive transform")
	}

	data, err := genie.ReadDataFile(filepath.Join(exeDir, DataDir, DataFileName))
	if err != nil {
		t.Fatalf("read published data file: %v", err)
	}
	for _, u := range data.Units {
		if u.SnowGraphic != genie.NoGraphic {
			t.Errorf("unit %d keeps snow graphic %d", u.ID, u.SnowGraphic)
		}
	}
	if data.Units[0].Flags != 0x00010001 {
		t.Errorf("flags changed without fix flags: %#x", data.Units[0].Flags)
	}

	if rec.count("finished") != 1 || rec.count("error") != 0 {
		t.Errorf("events = %v", rec.events)
	}
	if len(rec.installs) != 1 || len(rec.installs[0]) < 2 {
		t.Fatalf("install requests = %v", rec.installs)
	}
	if !strings.Contains(strings.Join(rec.installs[0], " "), "-g:"+settings.DefaultModName) {
		t.Errorf("install args = %v", rec.installs[0])
	}

	entries, _ := os.ReadDir(in.staging)
	if len(entries) != 0 {
		t.Errorf("staging not removed: %v", entries)
	}
}

func TestProgressIsMonotonic(t *testing.T) {
	in := newInstall(t)
	s := in.build(t, in.builder().UseBoth(true).CopyMaps(true))

	rec, err := in.run(t, s)
	if err != nil {
		t.Fatalf("Run(): %v", err)
	}

	last := -1
	hundreds := 0
	for _, p := range rec.progress {
		if p < last {
			t.Errorf("progress went from %d to %d: %v", last, p, rec.progress)
		}
		if p == 100 {
			hundreds++
		}
		last = p
	}
	if hundreds != 1 || last != 100 {
		t.Errorf("progress = %v, want a single final 100", rec.progress)
	}

	n := len(rec.events)
	if n < 2 || rec.events[n-2] != "progress:100" || rec.events[n-1] != "finished" {
		t.Errorf("last events = %v", rec.events[max(0, n-3):])
	}

	install := -1
	for i, e := range rec.events {
		if e == "install" {
			install = i
		}
	}
	if install < 0 || install > n-2 {
		t.Errorf("install request at %d of %d events", install, n)
	}
}

func TestRunMissingSource(t *testing.T) {
	in := newInstall(t)
	s := in.build(t, in.builder().UseExe(true))
	os.RemoveAll(in.hd)

	rec, err := in.run(t, s)
	var configErr *ConfigurationError
	if !errors.As(err, &configErr) {
		t.Fatalf("Run() error = %v, want *ConfigurationError", err)
	}
	if rec.count("error") != 1 || rec.count("finished") != 0 {
		t.Errorf("events = %v", rec.events)
	}
	if _, err := os.Stat(s.ExeDir()); !os.IsNotExist(err) {
		t.Error("destination created after a failed validation")
	}
	if _, err := os.Stat(in.staging); !os.IsNotExist(err) {
		t.Error("staging created before validation passed")
	}
}

func TestRunMalformedDataFile(t *testing.T) {
	tests := []struct {
		name    string
		corrupt func(t *testing.T, in *install)
		check   func(error) bool
	}{
		{
			name: "truncated archive",
			corrupt: func(t *testing.T, in *install) {
				writeFile(t, filepath.Join(in.hd, DataDir, "terrain.drs"), "short")
			},
			check: func(err error) bool {
				var e *FormatError
				return errors.As(err, &e)
			},
		},
		{
			name: "data file is not zlib",
			corrupt: func(t *testing.T, in *install) {
				writeFile(t, filepath.Join(in.hd, DataDir, DataFileName), "not a data file")
			},
			check: func(err error) bool {
				var e *FormatError
				return errors.As(err, &e)
			},
		},
		{
			name: "missing string table",
			corrupt: func(t *testing.T, in *install) {
				os.Remove(genie.StringTablePath(in.hd, "en"))
			},
			check: func(err error) bool {
				var e *IOError
				return errors.As(err, &e)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := newInstall(t)
			s := in.build(t, in.builder().UseExe(true))
			tt.corrupt(t, in)

			rec, err := in.run(t, s)
			if err == nil || !tt.check(err) {
				t.Fatalf("Run() error = %v (%T)", err, err)
			}
			if len(rec.errors) != 1 || rec.errors[0] != err.Error() {
				t.Errorf("reported errors = %v", rec.errors)
			}
			if _, err := os.Stat(s.ExeDir()); !os.IsNotExist(err) {
				t.Error("destination written by a failed job")
			}
		})
	}
}

func TestRunTwice(t *testing.T) {
	in := newInstall(t)
	s := in.build(t, in.builder().UseVoobly(true))

	rec := &recorder{}
	job := NewJob(s, rec, WithStagingRoot(in.staging))
	defer job.Close()
	if err := job.Run(); err != nil {
		t.Fatalf("first Run(): %v", err)
	}
	if job.State() != Finished {
		t.Errorf("State() = %v, want Finished", job.State())
	}

	n := len(rec.events)
	if err := job.Run(); err == nil {
		t.Error("second Run() succeeded")
	}
	if len(rec.events) != n {
		t.Errorf("second Run() emitted %v", rec.events[n:])
	}
	if rec.count("install") != 0 {
		t.Error("installer requested for a voobly only job")
	}
}

func TestRunIsIdempotent(t *testing.T) {
	in := newInstall(t)
	s := in.build(t, in.builder().UseExe(true).CopyMaps(true).UseNoSnow(true).UseGrid(true).FixFlags(true))

	if _, err := in.run(t, s); err != nil {
		t.Fatalf("first Run(): %v", err)
	}
	first := snapshot(t, s.ExeDir())
	os.RemoveAll(s.ExeDir())

	if _, err := in.run(t, s); err != nil {
		t.Fatalf("second Run(): %v", err)
	}
	second := snapshot(t, s.ExeDir())

	if len(first) == 0 || !reflect.DeepEqual(first, second) {
		t.Errorf("destination trees differ: %d and %d files", len(first), len(second))
	}
}

func TestPublishFailureLeavesDestinationsUntouched(t *testing.T) {
	in := newInstall(t)
	s := in.build(t, in.builder().UseBoth(true))

	// the voobly mod path is a file, so preparing it fails after the
	// standalone destination was prepared
	writeFile(t, s.VooblyDir(), "in the way")

	rec, err := in.run(t, s)
	var ioErr *IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("Run() error = %v, want *IOError", err)
	}
	if rec.count("install") != 0 || rec.count("finished") != 0 {
		t.Errorf("events = %v", rec.events)
	}
	if _, err := os.Stat(s.ExeDir()); !os.IsNotExist(err) {
		t.Error("standalone destination published despite failure")
	}
	if got, _ := os.ReadFile(s.VooblyDir()); string(got) != "in the way" {
		t.Error("voobly path modified")
	}
	entries, _ := os.ReadDir(filepath.Dir(s.ExeDir()))
	if len(entries) != 0 {
		t.Errorf("leftover publish directories: %v", entries)
	}
}

func TestRenamedMapsRequestDialog(t *testing.T) {
	in := newInstall(t)
	s := in.build(t, in.builder().UseVoobly(true).CopyMaps(true))
	writeFile(t, filepath.Join(s.VooblyDir(), maps.TargetDir, "Arabia.rms"), "a different map")

	rec, err := in.run(t, s)
	if err != nil {
		t.Fatalf("Run(): %v", err)
	}
	if rec.count("dialog:Map name conflicts:1") != 1 {
		t.Errorf("events = %v", rec.events)
	}

	published := snapshot(t, filepath.Join(s.VooblyDir(), maps.TargetDir))
	if published["Arabia.rms"] != "a different map" {
		t.Error("existing map overwritten")
	}
	if len(published) != 2 {
		t.Errorf("maps = %v", published)
	}
}

func TestRestrictedCivModsRequestDialog(t *testing.T) {
	in := newInstall(t)
	s := in.build(t, in.builder().UseVoobly(true).RestrictedCivMods(true).
		CivOverride(genie.Britons, genie.CivOverride{Name: "Angles", BonusSlot: 1, CustomText: "Archers +2 range"}))

	rec, err := in.run(t, s)
	if err != nil {
		t.Fatalf("Run(): %v", err)
	}
	if rec.count("dialog") != 1 {
		t.Errorf("events = %v", rec.events)
	}
}

func TestHotkeyProfile(t *testing.T) {
	in := newInstall(t)
	writeFile(t, filepath.Join(in.hd, ProfileDir, hdHotkeyFile), "hotkeys")
	s := in.build(t, in.builder().UseVoobly(true).Hotkeys(userpatch.HotkeysHD))

	if _, err := in.run(t, s); err != nil {
		t.Fatalf("Run(): %v", err)
	}
	got, err := os.ReadFile(filepath.Join(s.VooblyDir(), ProfileDir, modHotkeyFile))
	if err != nil || string(got) != "hotkeys" {
		t.Errorf("hotkey profile = %q, %v", got, err)
	}
}

func TestMissingInstaller(t *testing.T) {
	in := newInstall(t)
	s := in.build(t, in.builder().UseExe(true))
	os.Remove(filepath.Join(in.up, userpatch.ExecutableName))

	rec, err := in.run(t, s)
	var handoff *HandoffError
	if !errors.As(err, &handoff) {
		t.Fatalf("Run() error = %v, want *HandoffError", err)
	}
	// deployment stays in place
	if _, err := os.Stat(filepath.Join(s.ExeDir(), "language.ini")); err != nil {
		t.Errorf("deployment missing after installer failure: %v", err)
	}
	if rec.count("error") != 1 || rec.count("finished") != 0 {
		t.Errorf("events = %v", rec.events)
	}
}

func TestRunWithLogger(t *testing.T) {
	in := newInstall(t)
	s := in.build(t, in.builder().UseVoobly(true))

	var buf bytes.Buffer
	job := NewJob(s, nil, WithLogger(logging.New(&buf, true)), WithStagingRoot(in.staging))
	if err := job.Run(); err != nil {
		t.Fatalf("Run(): %v", err)
	}
	if err := job.Close(); err != nil {
		t.Errorf("Close() after Run: %v", err)
	}
	if err := job.Close(); err != nil {
		t.Errorf("second Close(): %v", err)
	}
	for _, want := range []string{`"state":"Extracting"`, `"message":"finished"`} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("log is missing %s", want)
		}
	}
}

func TestNilSettings(t *testing.T) {
	rec := &recorder{}
	err := NewJob(nil, rec).Run()
	var configErr *ConfigurationError
	if !errors.As(err, &configErr) {
		t.Fatalf("Run() error = %v, want *ConfigurationError", err)
	}
	if rec.count("error") != 1 {
		t.Errorf("events = %v", rec.events)
	}
}
