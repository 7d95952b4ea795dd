// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package wkconvert

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/suprsokr/wkconvert/deploy"
	"github.com/suprsokr/wkconvert/drs"
	"github.com/suprsokr/wkconvert/genie"
	"github.com/suprsokr/wkconvert/internal/logging"
	"github.com/suprsokr/wkconvert/langtext"
	"github.com/suprsokr/wkconvert/maps"
	"github.com/suprsokr/wkconvert/resources"
	"github.com/suprsokr/wkconvert/settings"
	"github.com/suprsokr/wkconvert/userpatch"
)

// Layout of the HD installation and of the converted mod.
var (
	// DataDir holds the archives and the data file, in both trees.
	DataDir = "Data"
	// DataFileName is the data file name.
	DataFileName = "empires2_x1_p1.dat"
	// ProfileDir holds the hotkey profiles of the HD installation.
	ProfileDir = "Profiles"
)

// Hotkey profile files.
const (
	hdHotkeyFile  = "player0.hki"
	modHotkeyFile = "player1.hki"
)

type sourceArchive struct {
	name     string
	required bool
}

// sourceArchives are read from DataDir in this order. Missing optional
// archives are skipped.
var sourceArchives = []sourceArchive{
	{"graphics.drs", true},
	{"terrain.drs", true},
	{"interfac.drs", false},
	{"sounds.drs", false},
}

// destination is one publish target.
type destination struct {
	name string
	dir  string
}

// Job converts one HD installation. A job runs once.
type Job struct {
	settings    *settings.Settings
	listener    Listener
	log         *logging.Logger
	workers     int
	stagingRoot string

	state    State
	started  bool
	progress progress

	staging  *deploy.Staging
	pack     *resources.Pack
	dests    []destination
	archives map[string]*drs.StagingArchive
	order    []string // extracted archive names in sourceArchives order
	data     *genie.DataFile
	strings  *genie.StringTable
	renamed  int
}

// Option configures a Job.
type Option func(*Job)

// WithLogger writes log lines and stage transitions to l.
func WithLogger(l *logging.Logger) Option {
	return func(j *Job) { j.log = l }
}

// WithWorkers sets the number of goroutines reading archive payloads.
// Zero uses drs.DefaultWorkers.
func WithWorkers(n int) Option {
	return func(j *Job) { j.workers = n }
}

// WithStagingRoot creates the staging directory under dir instead of the
// system temp directory.
func WithStagingRoot(dir string) Option {
	return func(j *Job) { j.stagingRoot = dir }
}

// NewJob creates a job. A nil listener ignores every event.
func NewJob(s *settings.Settings, l Listener, opts ...Option) *Job {
	if l == nil {
		l = NopListener{}
	}
	j := &Job{settings: s, listener: l, state: Created}
	for _, opt := range opts {
		opt(j)
	}
	j.progress.report = j.listener.ReportProgress
	return j
}

// State returns the current state of the job.
func (j *Job) State() State {
	return j.state
}

type stage struct {
	state State
	run   func(weight int) error
}

// Run converts the installation and publishes the result. It blocks until
// the job is Finished or Failed. On failure the listener receives exactly one
// ReportError and the returned error matches it.
func (j *Job) Run() error {
	if j.started {
		return errors.New("job already started")
	}
	j.started = true

	stages := []stage{
		{Validating, j.validate},
		{Extracting, j.extract},
		{Patching, j.patch},
		{MigratingMaps, j.migrateMaps},
		{Repacking, j.repack},
		{Deploying, j.deploy},
	}
	if j.settings != nil && j.settings.ExeSelected() {
		stages = append(stages, stage{InstallingPatch, j.installPatch})
	}

	for _, st := range stages {
		j.state = st.state
		j.listener.SetStatus(stageStatus[st.state])
		j.log.Info("stage", map[string]string{"state": st.state.String()})

		w := stageWeights[st.state]
		if err := st.run(w); err != nil {
			return j.fail(err)
		}
		j.progress.complete(w)
	}

	j.cleanup()
	j.state = Finished
	j.log.Info("finished", nil)
	j.progress.finish()
	j.listener.OnFinished()
	return nil
}

// Close removes the staging directory. It is safe to call at any time and
// more than once.
func (j *Job) Close() error {
	if j.staging == nil {
		return nil
	}
	err := j.staging.Discard()
	j.staging = nil
	return err
}

func (j *Job) fail(err error) error {
	failedIn := j.state
	j.state = Failed
	j.cleanup()
	j.log.Error("failed", map[string]string{"state": failedIn.String(), "error": err.Error()})
	j.listener.ReportError(err.Error())
	return err
}

func (j *Job) cleanup() {
	if err := j.Close(); err != nil {
		j.log.Warn("cleanup", map[string]string{"error": err.Error()})
	}
	j.archives = nil
}

func (j *Job) logf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	j.log.Info(msg, nil)
	j.listener.Log(msg)
}

// ioError wraps failures that are not already typed.
func ioError(op, path string, err error) error {
	var (
		configErr *ConfigurationError
		formatErr *FormatError
		schemaErr *SchemaVersionError
		handoff   *HandoffError
		ioErr     *IOError
	)
	switch {
	case errors.As(err, &configErr), errors.As(err, &formatErr), errors.As(err, &schemaErr),
		errors.As(err, &handoff), errors.As(err, &ioErr):
		return err
	}
	return &IOError{Op: op, Path: path, Err: err}
}

func (j *Job) validate(_ int) error {
	s := j.settings
	if s == nil {
		return &ConfigurationError{Field: "settings", Reason: "no settings given"}
	}

	info, err := os.Stat(s.HDPath())
	if err != nil || !info.IsDir() {
		return &ConfigurationError{Field: "HDPath", Reason: fmt.Sprintf("%s is not a directory", s.HDPath())}
	}
	for _, a := range sourceArchives {
		path := filepath.Join(s.HDPath(), DataDir, a.name)
		if _, err := os.Stat(path); a.required && err != nil {
			return &ConfigurationError{Field: "HDPath", Reason: fmt.Sprintf("%s not found, is this an HD installation?", path)}
		}
	}

	if s.ExeSelected() {
		j.dests = append(j.dests, destination{"standalone", s.ExeDir()})
	}
	if s.VooblySelected() {
		j.dests = append(j.dests, destination{"voobly", s.VooblyDir()})
	}
	if len(j.dests) == 2 && filepath.Clean(j.dests[0].dir) == filepath.Clean(j.dests[1].dir) {
		return &ConfigurationError{Field: "VooblyPath", Reason: "voobly and standalone destinations are the same directory"}
	}

	if s.ResourcePath() != "" {
		j.pack, err = resources.Open(s.ResourcePath())
		if err != nil {
			return &ConfigurationError{Field: "ResourcePath", Reason: err.Error()}
		}
	} else {
		j.pack = resources.Generated()
	}

	j.staging, err = deploy.NewStaging(j.stagingRoot)
	if err != nil {
		return ioError("create staging", j.stagingRoot, err)
	}
	j.log.Debug("staging", map[string]string{"dir": j.staging.Dir()})
	return nil
}

func (j *Job) extract(w int) error {
	hd := j.settings.HDPath()
	total := len(sourceArchives) + 2
	done := 0

	j.archives = make(map[string]*drs.StagingArchive)
	for _, a := range sourceArchives {
		path := filepath.Join(hd, DataDir, a.name)
		if _, err := os.Stat(path); err != nil && !a.required {
			j.logf("%s not found, skipping", a.name)
		} else {
			archive, err := drs.Extract(path, j.workers)
			if err != nil {
				return ioError("extract", path, err)
			}
			j.archives[a.name] = archive
			j.order = append(j.order, a.name)
			j.logf("Extracted %s: %d entries", a.name, archive.Len())
		}
		done++
		j.progress.step(w, done, total)
	}

	dataPath := filepath.Join(hd, DataDir, DataFileName)
	data, err := genie.ReadDataFile(dataPath)
	if err != nil {
		return ioError("read data file", dataPath, err)
	}
	j.data = data
	done++
	j.progress.step(w, done, total)

	stringsPath := genie.StringTablePath(hd, j.settings.Language())
	if _, err := os.Stat(stringsPath); os.IsNotExist(err) && j.settings.Language() != settings.DefaultLanguage {
		j.logf("No %s strings found, using %s", j.settings.Language(), settings.DefaultLanguage)
		stringsPath = genie.StringTablePath(hd, settings.DefaultLanguage)
	}
	j.strings, err = genie.ReadStringTable(stringsPath)
	if err != nil {
		return ioError("read string table", stringsPath, err)
	}
	j.logf("Read %d strings", j.strings.Len())
	return nil
}

func (j *Job) patch(_ int) error {
	s := j.settings
	patcher := genie.NewPatcher(genie.Options{
		NoSnow:            s.UseNoSnow(),
		SmallTrees:        s.UseSmallTrees(),
		ShortWalls:        s.UseShortWalls(),
		RegionalMonks:     s.UseRegionalMonks(),
		Grid:              s.UseGrid(),
		FixFlags:          s.FixFlags(),
		ReplaceTooltips:   s.ReplaceTooltips(),
		RestrictedCivMods: s.RestrictedCivMods(),
		DLCLevel:          s.DLCLevel(),
		Language:          s.Language(),
		Overrides:         s.CivOverrides(),
	}, j.pack)

	report, err := patcher.Apply(&genie.Target{
		Data:     j.data,
		Strings:  j.strings,
		Graphics: j.archives["graphics.drs"],
		Terrain:  j.archives["terrain.drs"],
	})
	if err != nil {
		return ioError("patch", "", err)
	}

	for _, name := range report.Applied {
		j.logf("Applied %s", name)
	}
	if report.DroppedCivs > 0 {
		j.logf("Removed %d civilizations above DLC level %d", report.DroppedCivs, s.DLCLevel())
	}
	if len(report.Neutralized) > 0 {
		names := make([]string, len(report.Neutralized))
		for i, c := range report.Neutralized {
			names[i] = c.String()
		}
		j.listener.RequestConfirmDialog(fmt.Sprintf(
			"Restricted civ mods is enabled. Gameplay changes were removed from the overrides of %s.",
			strings.Join(names, ", ")))
	}
	return nil
}

func (j *Job) migrateMaps(w int) error {
	s := j.settings
	m := maps.New(s.HDPath(), s.CopyMaps(), s.CopyCustomMaps())
	if !m.Enabled() {
		return nil
	}

	for i, d := range j.dests {
		result, err := m.Migrate(
			filepath.Join(j.staging.Dest(i), maps.TargetDir),
			filepath.Join(d.dir, maps.TargetDir),
		)
		if err != nil {
			return ioError("copy maps", d.dir, err)
		}
		for _, warning := range result.Warnings {
			j.log.Warn(warning, nil)
			j.listener.Log("Warning: " + warning)
		}
		for _, r := range result.Renamed {
			j.logf("%s: %s copied as %s", d.name, r.From, r.To)
		}
		j.logf("%s: %d maps copied, %d already present", d.name, result.Copied, result.Skipped)
		j.renamed += len(result.Renamed)
		j.progress.step(w, i+1, len(j.dests))
	}

	if j.renamed > 0 {
		j.listener.RequestConfirmDialogWithReplacement(
			"Map name conflicts",
			"$1 maps had the name of a different map already installed and were copied with a number suffix.",
			strconv.Itoa(j.renamed),
		)
	}
	return nil
}

func (j *Job) repack(w int) error {
	common := j.staging.Common()
	dataDir := filepath.Join(common, DataDir)
	total := len(j.order) + 3

	for i, name := range j.order {
		dst := filepath.Join(dataDir, name)
		if err := drs.Repack(j.archives[name], dst); err != nil {
			return ioError("write archive", dst, err)
		}
		delete(j.archives, name)
		j.logf("Wrote %s", name)
		j.progress.step(w, i+1, total)
	}

	dataPath := filepath.Join(dataDir, DataFileName)
	if err := j.data.WriteFile(dataPath); err != nil {
		return ioError("write data file", dataPath, err)
	}
	j.progress.step(w, len(j.order)+1, total)

	if err := langtext.Write(common, j.strings, j.settings.Language()); err != nil {
		return ioError("write strings", common, err)
	}
	j.progress.step(w, len(j.order)+2, total)

	return j.stageHotkeys(common)
}

// stageHotkeys copies the HD hotkey profile when the hd profile is selected.
func (j *Job) stageHotkeys(common string) error {
	switch j.settings.Hotkeys() {
	case userpatch.HotkeysHD:
		src := filepath.Join(j.settings.HDPath(), ProfileDir, hdHotkeyFile)
		if _, err := os.Stat(src); err != nil {
			j.listener.RequestConfirmDialogTitled("Hotkeys",
				"No HD hotkey profile was found. The mod keeps the default hotkeys.")
			return nil
		}
		dst := filepath.Join(common, ProfileDir, modHotkeyFile)
		if err := deploy.CopyFile(src, dst); err != nil {
			return ioError("copy hotkeys", src, err)
		}
		j.logf("Copied HD hotkeys")
	case userpatch.HotkeysAoC:
		j.logf("Using AoC hotkeys")
	}
	return nil
}

func (j *Job) deploy(w int) error {
	var pending []*deploy.Pending
	rollback := func() {
		for i := len(pending) - 1; i >= 0; i-- {
			if err := pending[i].Rollback(); err != nil {
				j.log.Error("rollback", map[string]string{"dir": pending[i].Destination(), "error": err.Error()})
			}
		}
	}

	for i, d := range j.dests {
		p, err := j.staging.Prepare(i, d.dir)
		if err != nil {
			rollback()
			return ioError("prepare", d.dir, err)
		}
		pending = append(pending, p)
		j.progress.step(w, i+1, 2*len(j.dests))
	}

	for i, p := range pending {
		if err := p.Commit(); err != nil {
			rollback()
			return ioError("publish", p.Destination(), err)
		}
		j.progress.step(w, len(j.dests)+i+1, 2*len(j.dests))
	}

	for i, p := range pending {
		if err := p.Finish(); err != nil {
			j.log.Warn("remove backup", map[string]string{"dir": p.Destination(), "error": err.Error()})
		}
		j.logf("Installed %d files to %s (%s)", len(p.Files()), p.Destination(), j.dests[i].name)
	}
	return nil
}

func (j *Job) installPatch(_ int) error {
	s := j.settings
	req, err := userpatch.Prepare(userpatch.Config{
		Dir:      s.UPPath(),
		ModName:  s.ModName(),
		DLCLevel: s.DLCLevel(),
		Patch:    s.Patch(),
		Hotkeys:  s.Hotkeys(),
		NoSnow:   s.UseNoSnow(),
	})
	if err != nil {
		return err
	}
	j.logf("Requesting UserPatch installation: %s %s", req.Executable, strings.Join(req.Args, " "))
	j.listener.RequestInstallExternalPatch(req.Executable, req.Args)
	return nil
}
