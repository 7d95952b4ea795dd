// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestLogger(t *testing.T) {
	stamp := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name      string
		debug     bool
		write     func(l *Logger)
		wantLines int
		wantLevel string
	}{
		{"info", false, func(l *Logger) { l.Info("extracted", map[string]int{"entries": 3}) }, 1, LevelInfo},
		{"warn", false, func(l *Logger) { l.Warn("map folder missing", nil) }, 1, LevelWarn},
		{"error", false, func(l *Logger) { l.Error("failed", "boom") }, 1, LevelError},
		{"debug enabled", true, func(l *Logger) { l.Debug("detail", nil) }, 1, LevelDebug},
		{"debug disabled", false, func(l *Logger) { l.Debug("detail", nil) }, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := New(&buf, tt.debug)
			l.now = func() time.Time { return stamp }
			tt.write(l)

			lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
			if buf.Len() == 0 {
				lines = nil
			}
			if len(lines) != tt.wantLines {
				t.Fatalf("got %d lines, want %d: %q", len(lines), tt.wantLines, buf.String())
			}
			if tt.wantLines == 0 {
				return
			}
			var e Entry
			if err := json.Unmarshal([]byte(lines[0]), &e); err != nil {
				t.Fatalf("invalid JSON output: %v", err)
			}
			if e.Level != tt.wantLevel {
				t.Errorf("Level = %s, want %s", e.Level, tt.wantLevel)
			}
			if !e.Timestamp.Equal(stamp) {
				t.Errorf("Timestamp = %v, want %v", e.Timestamp, stamp)
			}
		})
	}
}

func TestLoggerData(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, false).Info("stage", map[string]string{"state": "Extracting"})
	if !strings.Contains(buf.String(), `"data":{"state":"Extracting"}`) {
		t.Errorf("data missing from %s", buf.String())
	}
}

func TestNilLogger(t *testing.T) {
	var l *Logger
	l.Info("ignored", nil)
	l.Debug("ignored", nil)
}
