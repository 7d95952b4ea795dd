// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

// Package userpatch builds the hand-off request that installs UserPatch, the
// community AoC engine patch, into a converted standalone installation.
//
// The converter never runs the installer itself: it computes the executable
// path and arguments and hands them to the caller, who decides how and when to
// launch them. Launch is provided for callers that want the default behavior.
package userpatch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
)

// ExecutableName is the UserPatch installer binary.
const ExecutableName = "SetupAoC.exe"

// Hotkey profiles.
const (
	HotkeysKeep = "keep"
	HotkeysHD   = "hd"
	HotkeysAoC  = "aoc"
)

// HandoffError reports that the installer launch request could not be built.
// The deployment it follows is complete and valid.
type HandoffError struct {
	Executable string // Installer path, if known
	Reason     string
	Err        error
}

func (e *HandoffError) Error() string {
	msg := "cannot hand off UserPatch installer"
	if e.Executable != "" {
		msg += " " + e.Executable
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *HandoffError) Unwrap() error {
	return e.Err
}

// Config selects what the installer is asked to do.
type Config struct {
	Dir      string // Directory holding SetupAoC.exe
	ModName  string // Data mod name, installed as the game's default mod
	DLCLevel int
	Patch    int    // Data mod variant, negative for none
	Hotkeys  string // HotkeysKeep, HotkeysHD or HotkeysAoC
	NoSnow   bool   // Replace snow with grass in the engine as well
	Options  *InstallOptions
}

// Request is a launch request for the caller. The caller owns Args.
type Request struct {
	Executable string
	Args       []string
}

// Locate returns the installer path in dir.
func Locate(dir string) (string, error) {
	if dir == "" {
		return "", &HandoffError{Reason: "no UserPatch directory configured"}
	}
	path := filepath.Join(dir, ExecutableName)
	info, err := os.Stat(path)
	if err != nil {
		return "", &HandoffError{Executable: path, Reason: "installer not found", Err: err}
	}
	if info.IsDir() {
		return "", &HandoffError{Executable: path, Reason: "installer is a directory"}
	}
	return path, nil
}

// BuildArgs returns the installer arguments in order: install, features, mod
// name, DLC level, then patch and hotkeys when set.
func BuildArgs(cfg Config) ([]string, error) {
	if cfg.ModName == "" {
		return nil, &HandoffError{Reason: "mod name is required"}
	}

	opts := DefaultOptions()
	if cfg.Options != nil {
		opts = *cfg.Options
	}
	opts.ReplaceSnowWithGrass = cfg.NoSnow

	args := []string{
		"-i",
		"-f:" + opts.FeatureBits(),
		"-g:" + cfg.ModName,
		"-d:" + strconv.Itoa(cfg.DLCLevel),
	}
	if cfg.Patch >= 0 {
		args = append(args, "-p:"+strconv.Itoa(cfg.Patch))
	}
	switch cfg.Hotkeys {
	case "", HotkeysKeep:
	case HotkeysHD, HotkeysAoC:
		args = append(args, "-h:"+cfg.Hotkeys)
	default:
		return nil, &HandoffError{Reason: fmt.Sprintf("unknown hotkey profile %q", cfg.Hotkeys)}
	}
	return args, nil
}

// Prepare locates the installer and builds its arguments.
func Prepare(cfg Config) (*Request, error) {
	exe, err := Locate(cfg.Dir)
	if err != nil {
		return nil, err
	}
	args, err := BuildArgs(cfg)
	if err != nil {
		var handoff *HandoffError
		if errors.As(err, &handoff) {
			handoff.Executable = exe
		}
		return nil, err
	}
	return &Request{Executable: exe, Args: args}, nil
}

// Command returns the command that launches a request. Outside Windows the
// installer runs under wine.
func Command(ctx context.Context, req *Request) *exec.Cmd {
	if runtime.GOOS == "windows" {
		return exec.CommandContext(ctx, req.Executable, req.Args...)
	}
	return exec.CommandContext(ctx, "wine", append([]string{req.Executable}, req.Args...)...)
}

// Launch runs the installer and waits for it to exit.
func Launch(ctx context.Context, req *Request) (string, error) {
	cmd := Command(ctx, req)
	cmd.Dir = filepath.Dir(req.Executable)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return stdout.String(), fmt.Errorf("run installer: %w\nStderr: %s", err, stderr.String())
	}
	return stdout.String(), nil
}
