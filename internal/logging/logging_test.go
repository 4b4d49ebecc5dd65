package logging

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestNewLevels(t *testing.T) {
	cases := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"WARN", zerolog.WarnLevel},
		{" info ", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
		{"nonsense", zerolog.InfoLevel},
	}

	for _, tc := range cases {
		if got := New(tc.level).GetLevel(); got != tc.want {
			t.Fatalf("New(%q) level = %s, want %s", tc.level, got, tc.want)
		}
	}
}
