// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package wkconvert

// State is the stage a job is in.
type State int

const (
	Created State = iota
	Validating
	Extracting
	Patching
	MigratingMaps
	Repacking
	Deploying
	InstallingPatch
	Finished
	Failed
)

var stateNames = [...]string{
	Created:         "Created",
	Validating:      "Validating",
	Extracting:      "Extracting",
	Patching:        "Patching",
	MigratingMaps:   "MigratingMaps",
	Repacking:       "Repacking",
	Deploying:       "Deploying",
	InstallingPatch: "InstallingPatch",
	Finished:        "Finished",
	Failed:          "Failed",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "State(?)"
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == Finished || s == Failed
}

// stageWeights are the progress shares of the stages. They sum to 100.
var stageWeights = map[State]int{
	Validating:      2,
	Extracting:      25,
	Patching:        20,
	MigratingMaps:   8,
	Repacking:       25,
	Deploying:       18,
	InstallingPatch: 2,
}

// stageStatus is the status text sent when a stage is entered.
var stageStatus = map[State]string{
	Validating:      "Validating settings",
	Extracting:      "Extracting archives",
	Patching:        "Patching game data",
	MigratingMaps:   "Copying maps",
	Repacking:       "Writing archives",
	Deploying:       "Installing mod files",
	InstallingPatch: "Preparing UserPatch installation",
}

// progress tracks the overall percentage. It never decreases and reaches
// 100 only through finish.
type progress struct {
	base    int // sum of the weights of completed stages
	current int // last reported value
	report  func(int)
}

// step reports done of total parts of the stage with weight w.
func (p *progress) step(w, done, total int) {
	if total <= 0 {
		return
	}
	p.set(p.base + w*done/total)
}

// complete marks the stage with weight w as done.
func (p *progress) complete(w int) {
	p.base += w
	p.set(p.base)
}

// finish reports 100.
func (p *progress) finish() {
	p.current = 100
	p.report(100)
}

func (p *progress) set(v int) {
	if v >= 100 {
		v = 99
	}
	if v <= p.current {
		return
	}
	p.current = v
	p.report(v)
}
