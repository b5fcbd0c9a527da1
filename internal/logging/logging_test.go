package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNew_JSONWhenNotTerminal(t *testing.T) {
	var buf bytes.Buffer
	logger := WithJobID(WithComponent(New(&buf, "info"), "executor"), "job-1")
	logger.Info("render finished", "size", 42)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	if entry["component"] != "executor" || entry["job_id"] != "job-1" {
		t.Errorf("missing attributes in %v", entry)
	}
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "warn")
	logger.Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("info line written at warn level: %q", buf.String())
	}
}

func TestWithComponent_NilLogger(t *testing.T) {
	logger := WithComponent(nil, "x")
	if logger == nil {
		t.Fatal("WithComponent(nil) returned nil")
	}
	logger.Info("no panic")
}

func TestSanitizePath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		t.Skip("no home directory")
	}
	if got := SanitizePath(home + "/.nexus/uploads"); got != "~/.nexus/uploads" {
		t.Errorf("SanitizePath() = %q", got)
	}
	if got := SanitizePath("/srv/data"); got != "/srv/data" && home != "/" {
		t.Errorf("SanitizePath() changed unrelated path: %q", got)
	}
}
