// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

// Command wkconvert converts an HD installation using a YAML settings file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/suprsokr/wkconvert"
	"github.com/suprsokr/wkconvert/internal/logging"
	"github.com/suprsokr/wkconvert/internal/tui"
	"github.com/suprsokr/wkconvert/settings"
	"github.com/suprsokr/wkconvert/userpatch"
)

// configEnv names the settings file when -config is not given.
const configEnv = "WKCONVERT_CONFIG"

type options struct {
	config    string
	logPath   string
	debug     bool
	plain     bool
	noInstall bool
	workers   int
	staging   string
}

func parseFlags(args []string) (*options, error) {
	o := &options{}
	fs := flag.NewFlagSet("wkconvert", flag.ContinueOnError)
	fs.StringVar(&o.config, "config", "", "Settings file (default $"+configEnv+" or wkconvert.yaml)")
	fs.StringVar(&o.logPath, "log", "wkconvert.log", "Log file")
	fs.BoolVar(&o.debug, "debug", false, "Enable debug logging")
	fs.BoolVar(&o.plain, "plain", false, "Print plain text instead of the progress screen")
	fs.BoolVar(&o.noInstall, "no-install", false, "Do not run the UserPatch installer")
	fs.IntVar(&o.workers, "workers", 0, "Archive reader goroutines (default: number of CPUs)")
	fs.StringVar(&o.staging, "staging", "", "Directory for temporary files (default: system temp)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if o.config == "" {
		o.config = os.Getenv(configEnv)
	}
	if o.config == "" {
		o.config = "wkconvert.yaml"
	}
	if o.workers < 0 {
		return nil, fmt.Errorf("invalid worker count: %d", o.workers)
	}
	return o, nil
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	opts, err := parseFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	s, err := settings.LoadFile(opts.config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		return 1
	}

	f, err := os.OpenFile(opts.logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logging error: %v\n", err)
		return 1
	}
	defer f.Close()
	logger := logging.New(f, opts.debug)
	logger.Info("started", map[string]any{"config": opts.config, "workers": opts.workers})

	jobOpts := []wkconvert.Option{
		wkconvert.WithLogger(logger),
		wkconvert.WithWorkers(opts.workers),
		wkconvert.WithStagingRoot(opts.staging),
	}

	var install *tui.InstallMsg
	if opts.plain {
		listener := tui.NewPlain(os.Stdout)
		job := wkconvert.NewJob(s, listener, jobOpts...)
		err = job.Run()
		job.Close()
		install = listener.Install
	} else {
		install, err = runTUI(s, jobOpts)
	}
	if err != nil {
		logger.Error("conversion failed", err.Error())
		return 1
	}

	if install == nil || opts.noInstall {
		return 0
	}
	return launch(logger, install)
}

func runTUI(s *settings.Settings, jobOpts []wkconvert.Option) (*tui.InstallMsg, error) {
	p := tea.NewProgram(tui.NewModel("wkconvert: "+s.ModName()))
	job := wkconvert.NewJob(s, tui.NewListener(p.Send), jobOpts...)
	defer job.Close()

	go func() {
		p.Send(tui.DoneMsg{Err: job.Run()})
	}()

	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("run progress screen: %w", err)
	}
	m, ok := final.(tui.Model)
	if !ok {
		return nil, errors.New("unexpected final model")
	}
	return m.Install, m.Err
}

func launch(logger *logging.Logger, install *tui.InstallMsg) int {
	fmt.Printf("Running %s\n", install.Executable)
	req := &userpatch.Request{Executable: install.Executable, Args: install.Args}
	out, err := userpatch.Launch(context.Background(), req)
	logger.Info("installer output", out)
	if err != nil {
		logger.Error("installer failed", err.Error())
		fmt.Fprintf(os.Stderr, "UserPatch installation failed: %v\n", err)
		return 1
	}
	fmt.Println("UserPatch installed")
	return 0
}
