// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

// Package deploy stages converted output in a temporary directory and publishes
// it into installation directories.
//
// A Staging directory holds a "common" tree shared by every destination and one
// "dest-<i>" tree per destination. Publishing is split in two phases: Prepare
// copies the merged tree next to the destination without touching it, and
// Commit moves the files in, backing up whatever they replace. A failed Commit
// restores the backups, so a destination is either fully updated or unchanged.
package deploy

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

// renameFile is swapped out by tests to simulate failures.
var renameFile = os.Rename

// Staging is a temporary directory holding output before it is published.
type Staging struct {
	dir string
}

// NewStaging creates a staging directory under root, or under the system temp
// directory if root is empty.
func NewStaging(root string) (*Staging, error) {
	if root != "" {
		if err := os.MkdirAll(root, 0755); err != nil {
			return nil, fmt.Errorf("create staging root: %w", err)
		}
	}
	dir, err := os.MkdirTemp(root, "wkconvert-*")
	if err != nil {
		return nil, fmt.Errorf("create staging directory: %w", err)
	}
	return &Staging{dir: dir}, nil
}

// Dir returns the staging directory.
func (s *Staging) Dir() string { return s.dir }

// Common returns the tree shared by all destinations.
func (s *Staging) Common() string { return filepath.Join(s.dir, "common") }

// Dest returns the tree of destination i.
func (s *Staging) Dest(i int) string { return filepath.Join(s.dir, "dest-"+strconv.Itoa(i)) }

// Discard removes the staging directory. It is safe to call more than once.
func (s *Staging) Discard() error {
	if s.dir == "" {
		return nil
	}
	if err := os.RemoveAll(s.dir); err != nil {
		return fmt.Errorf("remove staging directory: %w", err)
	}
	s.dir = ""
	return nil
}

// Files returns the merged file list of destination i: relative path to staged
// source. Files in the destination tree take precedence over common files.
func (s *Staging) Files(i int) (map[string]string, error) {
	files := make(map[string]string)
	for _, root := range []string{s.Common(), s.Dest(i)} {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) && path == root {
					return filepath.SkipDir
				}
				return err
			}
			if d.IsDir() {
				return nil
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			files[rel] = path
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("list staged files: %w", err)
		}
	}
	return files, nil
}

// Pending is a prepared, not yet committed publish of one destination.
type Pending struct {
	dst    string
	fresh  bool     // dst did not exist when prepared
	temp   string   // prepared tree, next to dst
	backup string   // replaced files, next to dst
	files  []string // relative paths, sorted

	installed []string // files moved into dst
	backedUp  []string // files moved out of dst
	created   []string // directories created in dst
	parents   []string // ancestors of dst created by Prepare, outermost first
	committed bool
}

// Prepare copies the merged tree of destination i next to dst. The destination
// itself is not modified.
func (s *Staging) Prepare(i int, dst string) (*Pending, error) {
	files, err := s.Files(i)
	if err != nil {
		return nil, err
	}

	p := &Pending{dst: dst}
	info, err := os.Stat(dst)
	switch {
	case os.IsNotExist(err):
		p.fresh = true
	case err != nil:
		return nil, fmt.Errorf("stat destination: %w", err)
	case !info.IsDir():
		return nil, fmt.Errorf("destination %s is not a directory", dst)
	}

	parent := filepath.Dir(dst)
	if p.parents, err = mkdirParents(parent); err != nil {
		p.removeParents()
		return nil, fmt.Errorf("create destination parent: %w", err)
	}
	p.temp, err = os.MkdirTemp(parent, ".wkconvert-new-*")
	if err != nil {
		p.removeParents()
		return nil, fmt.Errorf("create publish directory: %w", err)
	}

	for rel, src := range files {
		p.files = append(p.files, rel)
		if err := CopyFile(src, filepath.Join(p.temp, rel)); err != nil {
			os.RemoveAll(p.temp)
			p.removeParents()
			return nil, fmt.Errorf("prepare %s: %w", rel, err)
		}
	}
	sort.Strings(p.files)
	return p, nil
}

// Destination returns the directory this publish targets.
func (p *Pending) Destination() string { return p.dst }

// Files returns the relative paths that Commit installs.
func (p *Pending) Files() []string { return p.files }

// Commit moves the prepared files into the destination. On failure every change
// is undone before the error is returned.
func (p *Pending) Commit() error {
	if p.committed {
		return errors.New("publish already committed")
	}
	if p.fresh {
		if err := renameFile(p.temp, p.dst); err != nil {
			p.cleanup()
			return fmt.Errorf("publish %s: %w", p.dst, err)
		}
		p.committed = true
		return nil
	}

	var err error
	p.backup, err = os.MkdirTemp(filepath.Dir(p.dst), ".wkconvert-old-*")
	if err != nil {
		return fmt.Errorf("create backup directory: %w", err)
	}
	p.committed = true
	for _, rel := range p.files {
		if err := p.install(rel); err != nil {
			if rbErr := p.Rollback(); rbErr != nil {
				return fmt.Errorf("publish %s: %w (rollback: %v)", rel, err, rbErr)
			}
			return fmt.Errorf("publish %s: %w", rel, err)
		}
	}
	return nil
}

func (p *Pending) install(rel string) error {
	target := filepath.Join(p.dst, rel)
	if err := p.mkdirs(filepath.Dir(rel)); err != nil {
		return err
	}

	if info, err := os.Lstat(target); err == nil {
		if info.IsDir() {
			return fmt.Errorf("%s is a directory", target)
		}
		saved := filepath.Join(p.backup, rel)
		if err := os.MkdirAll(filepath.Dir(saved), 0755); err != nil {
			return fmt.Errorf("create backup directory: %w", err)
		}
		if err := renameFile(target, saved); err != nil {
			return fmt.Errorf("back up: %w", err)
		}
		p.backedUp = append(p.backedUp, rel)
	} else if !os.IsNotExist(err) {
		return err
	}

	if err := renameFile(filepath.Join(p.temp, rel), target); err != nil {
		return fmt.Errorf("move into place: %w", err)
	}
	p.installed = append(p.installed, rel)
	return nil
}

// mkdirs creates the missing directories of rel below dst and records them.
func (p *Pending) mkdirs(rel string) error {
	if rel == "." {
		return nil
	}
	if err := p.mkdirs(filepath.Dir(rel)); err != nil {
		return err
	}
	dir := filepath.Join(p.dst, rel)
	if _, err := os.Stat(dir); err == nil {
		return nil
	}
	if err := os.Mkdir(dir, 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	p.created = append(p.created, dir)
	return nil
}

// Rollback undoes a commit, or discards a prepared publish that was never
// committed.
func (p *Pending) Rollback() error {
	var errs []error
	if p.committed && p.fresh {
		if err := os.RemoveAll(p.dst); err != nil {
			errs = append(errs, err)
		}
	}
	for i := len(p.installed) - 1; i >= 0; i-- {
		if err := os.Remove(filepath.Join(p.dst, p.installed[i])); err != nil {
			errs = append(errs, err)
		}
	}
	for i := len(p.backedUp) - 1; i >= 0; i-- {
		rel := p.backedUp[i]
		if err := os.Rename(filepath.Join(p.backup, rel), filepath.Join(p.dst, rel)); err != nil {
			errs = append(errs, err)
		}
	}
	for i := len(p.created) - 1; i >= 0; i-- {
		os.Remove(p.created[i])
	}
	p.installed, p.backedUp, p.created = nil, nil, nil
	p.committed = false

	if err := p.cleanup(); err != nil {
		errs = append(errs, err)
	}
	p.removeParents()
	return errors.Join(errs...)
}

// mkdirParents creates dir and its missing ancestors. It returns the created
// directories, outermost first, including those created before a failure.
func mkdirParents(dir string) ([]string, error) {
	var missing []string
	for d := dir; ; d = filepath.Dir(d) {
		if _, err := os.Stat(d); err == nil {
			break
		}
		missing = append(missing, d)
		if filepath.Dir(d) == d {
			break
		}
	}

	var created []string
	for i := len(missing) - 1; i >= 0; i-- {
		if err := os.Mkdir(missing[i], 0755); err != nil && !os.IsExist(err) {
			return created, err
		}
		created = append(created, missing[i])
	}
	return created, nil
}

// removeParents removes the ancestors created by Prepare that are still empty.
func (p *Pending) removeParents() {
	for i := len(p.parents) - 1; i >= 0; i-- {
		os.Remove(p.parents[i])
	}
	p.parents = nil
}

// Finish removes the backups of a successful commit.
func (p *Pending) Finish() error {
	return p.cleanup()
}

func (p *Pending) cleanup() error {
	var errs []error
	for _, dir := range []string{p.temp, p.backup} {
		if dir == "" {
			continue
		}
		if err := os.RemoveAll(dir); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// CopyFile copies src to dst, creating parent directories.
func CopyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		return err
	}
	return dstFile.Close()
}
