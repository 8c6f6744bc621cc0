package app

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func newTestLogger(level LogLevel) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := NewLogger(LoggerConfig{Level: level, Output: &buf, Prefix: "test"})
	l.sink.now = func() time.Time { return time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC) }
	return l, &buf
}

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LogLevelDebug, "DEBUG"},
		{LogLevelInfo, "INFO"},
		{LogLevelWarn, "WARN"},
		{LogLevelError, "ERROR"},
		{LogLevel(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.expected {
			t.Errorf("LogLevel(%d).String() = %q, want %q", tt.level, got, tt.expected)
		}
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
	}{
		{"debug", LogLevelDebug},
		{"DEBUG", LogLevelDebug},
		{"Info", LogLevelInfo},
		{"warn", LogLevelWarn},
		{"WARNING", LogLevelWarn},
		{"error", LogLevelError},
		{"unknown", LogLevelInfo},
		{"", LogLevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLogLevel(tt.input); got != tt.expected {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestLoggerFormat(t *testing.T) {
	l, buf := newTestLogger(LogLevelInfo)

	l.WithFields(map[string]any{"b": 2, "a": 1}).Info("hello %s", "world")

	want := "2026-01-02T15:04:05.000 [INFO] test: hello world {a=1, b=2}\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestLoggerLevelFilter(t *testing.T) {
	l, buf := newTestLogger(LogLevelWarn)

	l.Debug("d")
	l.Info("i")
	l.Warn("w")
	l.Error("e")

	out := buf.String()
	if strings.Contains(out, "[DEBUG]") || strings.Contains(out, "[INFO]") {
		t.Errorf("filtered levels were written: %q", out)
	}
	if !strings.Contains(out, "[WARN] test: w") || !strings.Contains(out, "[ERROR] test: e") {
		t.Errorf("missing levels in %q", out)
	}
}

func TestDerivedLoggerSharesSink(t *testing.T) {
	l, buf := newTestLogger(LogLevelError)
	host := l.WithComponent("host")

	host.Warn("hidden")
	if buf.Len() != 0 {
		t.Errorf("derived logger ignored parent level: %q", buf.String())
	}

	host.Error("shown")
	if !strings.Contains(buf.String(), "{component=host}") {
		t.Errorf("output = %q, want component field", buf.String())
	}
	if host.Level() != LogLevelError {
		t.Errorf("Level() = %v, want ERROR", host.Level())
	}
}

func TestNullLogger(t *testing.T) {
	l := NewNullLogger()
	l.Error("discarded")
	l.WithField("k", "v").Info("discarded")
}
