// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

// Package tui shows the progress of a conversion job in the terminal.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Messages sent by Listener to the program.
type (
	LogMsg      string
	StatusMsg   string
	ProgressMsg int
	ErrorMsg    string
	FinishedMsg struct{}

	// NoticeMsg is a dialog request. Confirmation dialogs are shown as notices.
	NoticeMsg struct {
		Title string
		Text  string
	}

	// InstallMsg is the installer launch request of the job.
	InstallMsg struct {
		Executable string
		Args       []string
	}

	// DoneMsg is sent when Job.Run returns.
	DoneMsg struct {
		Err error
	}
)

// Listener forwards job events to a bubbletea program.
type Listener struct {
	send func(tea.Msg)
}

// NewListener returns a listener sending to send, usually (*tea.Program).Send.
func NewListener(send func(tea.Msg)) *Listener {
	return &Listener{send: send}
}

func (l *Listener) Log(msg string)             { l.send(LogMsg(msg)) }
func (l *Listener) SetStatus(msg string)       { l.send(StatusMsg(msg)) }
func (l *Listener) ReportProgress(percent int) { l.send(ProgressMsg(percent)) }
func (l *Listener) ReportError(msg string)     { l.send(ErrorMsg(msg)) }
func (l *Listener) OnFinished()                { l.send(FinishedMsg{}) }

func (l *Listener) RequestConfirmDialog(text string) {
	l.send(NoticeMsg{Text: text})
}

func (l *Listener) RequestConfirmDialogTitled(title, text string) {
	l.send(NoticeMsg{Title: title, Text: text})
}

func (l *Listener) RequestConfirmDialogWithReplacement(title, text, replacement string) {
	l.send(NoticeMsg{Title: title, Text: Replace(text, replacement)})
}

func (l *Listener) RequestInstallExternalPatch(executable string, args []string) {
	l.send(InstallMsg{Executable: executable, Args: append([]string(nil), args...)})
}
