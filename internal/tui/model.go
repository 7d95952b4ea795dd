// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// maxLogLines is the number of log lines kept on screen.
const maxLogLines = 8

// Model is the progress screen of one job.
type Model struct {
	Title    string
	Status   string
	Percent  int
	Lines    []string
	Notices  []NoticeMsg
	Install  *InstallMsg
	Error    string
	Finished bool
	Err      error // returned by Job.Run
	Done     bool

	width    int
	progress progress.Model
	spinner  spinner.Model
}

// NewModel returns the screen for a job.
func NewModel(title string) Model {
	return Model{
		Title:    title,
		Status:   "Starting",
		progress: progress.New(progress.WithDefaultGradient()),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// a running job cannot be cancelled; the program quits on DoneMsg
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = max(10, min(msg.Width-4, 80))
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case LogMsg:
		m.Lines = append(m.Lines, string(msg))
		if len(m.Lines) > maxLogLines {
			m.Lines = m.Lines[len(m.Lines)-maxLogLines:]
		}
	case StatusMsg:
		m.Status = string(msg)
	case ProgressMsg:
		if int(msg) > m.Percent {
			m.Percent = int(msg)
		}
	case ErrorMsg:
		m.Error = string(msg)
	case NoticeMsg:
		m.Notices = append(m.Notices, msg)
	case InstallMsg:
		m.Install = &msg
	case FinishedMsg:
		m.Finished = true
	case DoneMsg:
		m.Done = true
		m.Err = msg.Err
		return m, tea.Quit
	}
	return m, nil
}

// Replace substitutes "$1" in text.
func Replace(text, replacement string) string {
	return strings.ReplaceAll(text, "$1", replacement)
}
