// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1).
			MarginBottom(1)

	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	logStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).PaddingLeft(2)

	noticeStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("205")).
			Padding(0, 1).
			MarginTop(1)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			PaddingTop(1)
)

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.Title))
	b.WriteString("\n")

	switch {
	case m.Error != "":
		b.WriteString(failStyle.Render("Conversion failed: " + m.Error))
	case m.Finished:
		b.WriteString(successStyle.Render("Conversion finished"))
	default:
		b.WriteString(m.spinner.View() + " " + statusStyle.Render(m.Status))
	}
	b.WriteString("\n\n")
	b.WriteString(m.progress.ViewAs(float64(m.Percent) / 100))
	b.WriteString("\n\n")

	for _, line := range m.Lines {
		b.WriteString(logStyle.Render(line))
		b.WriteString("\n")
	}

	for _, n := range m.Notices {
		text := n.Text
		if n.Title != "" {
			text = lipgloss.NewStyle().Bold(true).Render(n.Title) + "\n" + text
		}
		b.WriteString(noticeStyle.Render(text))
		b.WriteString("\n")
	}

	if m.Install != nil {
		b.WriteString(footerStyle.Render(fmt.Sprintf("UserPatch will be installed: %s %s",
			m.Install.Executable, strings.Join(m.Install.Args, " "))))
		b.WriteString("\n")
	}
	return b.String()
}
