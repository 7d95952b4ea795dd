// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

// Package logging writes one JSON object per log line.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Levels
const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// Logger is safe for concurrent use. A nil *Logger discards everything.
type Logger struct {
	mu     sync.Mutex
	writer io.Writer
	debug  bool
	now    func() time.Time
}

// New returns a logger writing to w. Debug entries are written only when
// debug is set.
func New(w io.Writer, debug bool) *Logger {
	return &Logger{writer: w, debug: debug, now: time.Now}
}

// Entry is one log line.
type Entry struct {
	Level     string    `json:"level"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Data      any       `json:"data,omitempty"`
}

func (l *Logger) Info(msg string, data any)  { l.log(LevelInfo, msg, data) }
func (l *Logger) Warn(msg string, data any)  { l.log(LevelWarn, msg, data) }
func (l *Logger) Error(msg string, data any) { l.log(LevelError, msg, data) }

func (l *Logger) Debug(msg string, data any) {
	if l != nil && l.debug {
		l.log(LevelDebug, msg, data)
	}
}

func (l *Logger) log(level, msg string, data any) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	line, err := json.Marshal(Entry{
		Level:     level,
		Timestamp: l.now(),
		Message:   msg,
		Data:      data,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		return
	}
	line = append(line, '\n')
	l.writer.Write(line)
}
