package main

import (
	"context"
	"log/slog"
	"testing"
)

func TestNewLogger_Levels(t *testing.T) {
	cases := []struct {
		level   string
		enabled slog.Level
		muted   slog.Level
	}{
		{"debug", slog.LevelDebug, slog.LevelDebug - 4},
		{"info", slog.LevelInfo, slog.LevelDebug},
		{"warn", slog.LevelWarn, slog.LevelInfo},
		{"error", slog.LevelError, slog.LevelWarn},
		{"bogus", slog.LevelInfo, slog.LevelDebug},
		{"", slog.LevelInfo, slog.LevelDebug},
	}

	for _, tc := range cases {
		logger := newLogger(tc.level)
		if !logger.Enabled(context.Background(), tc.enabled) {
			t.Errorf("newLogger(%q) should enable level %v", tc.level, tc.enabled)
		}
		if logger.Enabled(context.Background(), tc.muted) {
			t.Errorf("newLogger(%q) should mute level %v", tc.level, tc.muted)
		}
	}
}
