// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

/*
Package wkconvert converts an Age of Empires II HD installation into an
Age of Conquests data mod.

A Job reads the HD archives, data file and strings, applies the selected
compatibility transforms, copies maps, repacks everything into a staging
directory and publishes it into the standalone installation, the Voobly data
mod folder, or both. Progress, log lines and dialogs go to a Listener.

# Basic Usage

	s, err := settings.NewBuilder().
		HDPath(`C:\Games\Age2HD`).
		OutPath(`C:\Games\Age2`).
		UPPath(`C:\Games\UserPatch`).
		UseExe(true).
		UseNoSnow(true).
		CopyMaps(true).
		Build()
	if err != nil {
		log.Fatal(err)
	}

	job := wkconvert.NewJob(s, listener)
	defer job.Close()
	if err := job.Run(); err != nil {
		log.Fatal(err)
	}

# Stages

Run moves through Validating, Extracting, Patching, MigratingMaps, Repacking,
Deploying and, when the standalone destination is selected, InstallingPatch.
Each stage sends a status text when entered and a progress value when done.
Progress never decreases and reaches 100 only right before OnFinished.

# Errors

A failed job reports exactly one error to the listener and returns it. Use
errors.As with [ConfigurationError], [FormatError], [SchemaVersionError],
[HandoffError] or [IOError] to tell them apart. Nothing is published unless
every stage before Deploying succeeded, and a destination is either fully
updated or left as it was.

# Installer

The job never starts the UserPatch installer. It sends
RequestInstallExternalPatch with the executable and its arguments; the caller
launches it, for example with userpatch.Launch.
*/
package wkconvert
