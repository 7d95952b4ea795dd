// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

/*
Package drs reads and writes DRS resource archives, the packed container used by
Age of Empires II for graphics, sounds, terrains and interface assets.

An archive is extracted into a [StagingArchive], an in-memory map from entry name
("<id>.<ext>", for example "15000.slp") to payload. Entries can be replaced, added
or deleted, and the archive is then written back with [Repack].

# Basic Usage

Extracting, mutating and repacking:

	archive, err := drs.Extract("Data/graphics.drs", 0)
	if err != nil {
		log.Fatal(err)
	}

	if err := archive.Set("15000.slp", smallTree); err != nil {
		log.Fatal(err)
	}

	if err := drs.Repack(archive, "out/Data/graphics.drs"); err != nil {
		log.Fatal(err)
	}

# Determinism

Repack lays entries out in source index order, tables in source order, with added
tables and entries appended in sorted order. Payloads are packed contiguously after
the index. Output bytes therefore depend only on the entry set and payloads:
extracting and repacking an archive in this canonical layout reproduces it exactly.

Extract reads payloads with a bounded worker pool. Entries are stored by index, so
the worker count never changes the result.

# Loose Overrides

A [Chain] resolves loose "<id>.<ext>" files from a list of directories, later
directories taking priority, and can overlay them onto an archive.

# Errors

Truncated payloads, out-of-range index offsets, unknown versions and duplicate
entries fail with [*FormatError]. Filesystem errors are returned wrapped.

# Limitations

  - Only version "1.00" archives are supported
  - Archives are limited to 2GB (int32 offsets)
  - Payload padding present in a source archive is not preserved
*/
package drs
