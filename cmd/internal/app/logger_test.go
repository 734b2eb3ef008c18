package app

import (
	"log/slog"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want slog.Level
	}{
		{name: "debug", in: "debug", want: slog.LevelDebug},
		{name: "upper case", in: "INFO", want: slog.LevelInfo},
		{name: "padded", in: "  warn  ", want: slog.LevelWarn},
		{name: "warning alias", in: "warning", want: slog.LevelWarn},
		{name: "error", in: "error", want: slog.LevelError},
		{name: "unknown falls back to info", in: "loud", want: slog.LevelInfo},
		{name: "empty falls back to info", in: "", want: slog.LevelInfo},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := parseLogLevel(tc.in); got != tc.want {
				t.Fatalf("parseLogLevel(%q)=%v want=%v", tc.in, got, tc.want)
			}
		})
	}
}

func TestNewLoggerFormatSelection(t *testing.T) {
	if _, ok := NewLogger("info", "pretty").Handler().(*prettyHandler); !ok {
		t.Fatal("format pretty should select the pretty handler")
	}
	if _, ok := NewLogger("info", "text").Handler().(*slog.TextHandler); !ok {
		t.Fatal("format text should select the text handler")
	}
	if _, ok := NewLogger("info", "json").Handler().(*slog.JSONHandler); !ok {
		t.Fatal("format json should select the JSON handler")
	}
	// Anything unrecognized is production-safe JSON.
	if _, ok := NewLogger("info", "fancy").Handler().(*slog.JSONHandler); !ok {
		t.Fatal("unknown format should fall back to the JSON handler")
	}
}

func TestNewLoggerRespectsLevel(t *testing.T) {
	log := NewLogger("error", "json")
	if log.Enabled(nil, slog.LevelWarn) {
		t.Fatal("warn should be filtered at error level")
	}
	if !log.Enabled(nil, slog.LevelError) {
		t.Fatal("error must pass at error level")
	}
}
