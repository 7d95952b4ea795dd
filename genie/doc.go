// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

/*
Package genie decodes, patches and encodes the game data tables: the civilization,
unit, terrain and wall height tables of the data file, and the key-value UI string
table.

# Data File

The data file is a zlib stream. Its adler32 checksum is verified on read; a
mismatch or truncated stream fails with [*FormatError]. The content is a small
header ("GDAT", version) followed by versioned sections. A section kind this
package does not know is kept as opaque bytes and written back unchanged. An
unsupported file or section version fails with [*SchemaVersionError].

# Transforms

A [Patcher] applies the transforms selected by [Options] to a [Target]:

	p := genie.NewPatcher(genie.Options{NoSnow: true, Grid: true}, pack)
	report, err := p.Apply(&genie.Target{Data: data, Strings: strs, Terrain: terrain})

Each transform owns a fixed set of table columns, strings and archive entries and
touches nothing else.
*/
package genie
