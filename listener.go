// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package wkconvert

// Listener receives the events of a job. Every method is called on the
// goroutine running Job.Run, in pipeline order.
type Listener interface {
	// Log receives a line for the conversion log.
	Log(msg string)
	// SetStatus receives the description of the stage being entered.
	SetStatus(msg string)
	// ReportProgress receives the overall progress, 0 to 100, never decreasing.
	ReportProgress(percent int)
	// ReportError receives the message of the error that ended the job.
	ReportError(msg string)
	// RequestConfirmDialog asks the user to acknowledge a message.
	RequestConfirmDialog(text string)
	// RequestConfirmDialogTitled is RequestConfirmDialog with a title.
	RequestConfirmDialogTitled(title, text string)
	// RequestConfirmDialogWithReplacement asks for a titled dialog where "$1"
	// in text stands for replacement.
	RequestConfirmDialogWithReplacement(title, text, replacement string)
	// OnFinished is the last event of a successful job.
	OnFinished()
	// RequestInstallExternalPatch asks the caller to launch the UserPatch
	// installer. The job does not wait for it; args is owned by the callee.
	RequestInstallExternalPatch(executable string, args []string)
}

// NopListener ignores every event. Embed it to handle a subset of them.
type NopListener struct{}

func (NopListener) Log(string)                                                 {}
func (NopListener) SetStatus(string)                                           {}
func (NopListener) ReportProgress(int)                                         {}
func (NopListener) ReportError(string)                                         {}
func (NopListener) RequestConfirmDialog(string)                                {}
func (NopListener) RequestConfirmDialogTitled(string, string)                  {}
func (NopListener) RequestConfirmDialogWithReplacement(string, string, string) {}
func (NopListener) OnFinished()                                                {}
func (NopListener) RequestInstallExternalPatch(string, []string)               {}

// ListenerFuncs adapts a set of callbacks to a Listener. Nil fields are
// ignored.
type ListenerFuncs struct {
	LogFunc                                 func(msg string)
	SetStatusFunc                           func(msg string)
	ReportProgressFunc                      func(percent int)
	ReportErrorFunc                         func(msg string)
	RequestConfirmDialogFunc                func(text string)
	RequestConfirmDialogTitledFunc          func(title, text string)
	RequestConfirmDialogWithReplacementFunc func(title, text, replacement string)
	OnFinishedFunc                          func()
	RequestInstallExternalPatchFunc         func(executable string, args []string)
}

func (f ListenerFuncs) Log(msg string) {
	if f.LogFunc != nil {
		f.LogFunc(msg)
	}
}

func (f ListenerFuncs) SetStatus(msg string) {
	if f.SetStatusFunc != nil {
		f.SetStatusFunc(msg)
	}
}

func (f ListenerFuncs) ReportProgress(percent int) {
	if f.ReportProgressFunc != nil {
		f.ReportProgressFunc(percent)
	}
}

func (f ListenerFuncs) ReportError(msg string) {
	if f.ReportErrorFunc != nil {
		f.ReportErrorFunc(msg)
	}
}

func (f ListenerFuncs) RequestConfirmDialog(text string) {
	if f.RequestConfirmDialogFunc != nil {
		f.RequestConfirmDialogFunc(text)
	}
}

func (f ListenerFuncs) RequestConfirmDialogTitled(title, text string) {
	if f.RequestConfirmDialogTitledFunc != nil {
		f.RequestConfirmDialogTitledFunc(title, text)
	}
}

func (f ListenerFuncs) RequestConfirmDialogWithReplacement(title, text, replacement string) {
	if f.RequestConfirmDialogWithReplacementFunc != nil {
		f.RequestConfirmDialogWithReplacementFunc(title, text, replacement)
	}
}

func (f ListenerFuncs) OnFinished() {
	if f.OnFinishedFunc != nil {
		f.OnFinishedFunc()
	}
}

func (f ListenerFuncs) RequestInstallExternalPatch(executable string, args []string) {
	if f.RequestInstallExternalPatchFunc != nil {
		f.RequestInstallExternalPatchFunc(executable, args)
	}
}
