package logging

import (
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{" warn ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tc := range cases {
		if got := parseLevel(tc.in); got != tc.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestSetupInstallsDefaultLogger(t *testing.T) {
	logger := Setup("api", "info")
	if slog.Default() != logger {
		t.Error("Setup should install the logger as the slog default")
	}
}

func TestNewJSONLoggerEnabledLevels(t *testing.T) {
	logger := NewJSONLogger("api", "warn")

	if logger.Enabled(nil, slog.LevelInfo) {
		t.Error("info should be disabled at warn level")
	}
	if !logger.Enabled(nil, slog.LevelError) {
		t.Error("error should be enabled at warn level")
	}
}
