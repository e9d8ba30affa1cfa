package app

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LogLevelDebug},
		{"DEBUG", LogLevelDebug},
		{"info", LogLevelInfo},
		{"warn", LogLevelWarn},
		{"warning", LogLevelWarn},
		{"error", LogLevelError},
		{"bogus", LogLevelInfo},
		{"", LogLevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLogLevel(tt.in); got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(LoggerConfig{Level: LogLevelWarn, Output: &buf, Prefix: "test"})

	log.Debug("hidden")
	log.Info("hidden too")
	log.Warn("shown")
	log.Error("also shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("below-level messages leaked: %q", out)
	}
	if !strings.Contains(out, "[WARN] test: shown") {
		t.Errorf("warn missing: %q", out)
	}
	if !strings.Contains(out, "[ERROR] test: also shown") {
		t.Errorf("error missing: %q", out)
	}
}

func TestLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(LoggerConfig{Level: LogLevelDebug, Output: &buf})

	log.WithComponent("assist").WithField("pass", 3).Info("checked %d units", 7)

	out := buf.String()
	if !strings.Contains(out, "checked 7 units") {
		t.Errorf("formatted message missing: %q", out)
	}
	if !strings.Contains(out, "component=assist") || !strings.Contains(out, "pass=3") {
		t.Errorf("fields missing: %q", out)
	}
}

func TestNullLogger(t *testing.T) {
	// Must not panic with a nil output.
	NullLogger.Error("dropped %v", "silently")
}
