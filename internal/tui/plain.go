// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package tui

import (
	"fmt"
	"io"
	"strings"
)

// Plain writes job events as lines of text, for terminals without a TTY.
// Progress is written only when it changes by at least 10.
type Plain struct {
	w       io.Writer
	last    int
	Install *InstallMsg
}

// NewPlain returns a listener writing to w.
func NewPlain(w io.Writer) *Plain {
	return &Plain{w: w, last: -10}
}

func (p *Plain) Log(msg string)       { fmt.Fprintln(p.w, logStyle.Render(msg)) }
func (p *Plain) SetStatus(msg string) { fmt.Fprintln(p.w, statusStyle.Render(msg)) }

func (p *Plain) ReportProgress(percent int) {
	if percent-p.last >= 10 || percent == 100 {
		p.last = percent
		fmt.Fprintf(p.w, "%3d%%\n", percent)
	}
}

func (p *Plain) ReportError(msg string) {
	fmt.Fprintln(p.w, failStyle.Render("Conversion failed: "+msg))
}

func (p *Plain) RequestConfirmDialog(text string) {
	fmt.Fprintln(p.w, noticeStyle.Render(text))
}

func (p *Plain) RequestConfirmDialogTitled(title, text string) {
	fmt.Fprintln(p.w, noticeStyle.Render(title+"\n"+text))
}

func (p *Plain) RequestConfirmDialogWithReplacement(title, text, replacement string) {
	p.RequestConfirmDialogTitled(title, Replace(text, replacement))
}

func (p *Plain) OnFinished() {
	fmt.Fprintln(p.w, successStyle.Render("Conversion finished"))
}

func (p *Plain) RequestInstallExternalPatch(executable string, args []string) {
	p.Install = &InstallMsg{Executable: executable, Args: append([]string(nil), args...)}
	fmt.Fprintln(p.w, footerStyle.Render("UserPatch will be installed: "+executable+" "+strings.Join(args, " ")))
}
