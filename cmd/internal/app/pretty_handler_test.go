package app

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestStripANSI(t *testing.T) {
	t.Parallel()

	in := ansiBlue + "INFO" + ansiReset + " plain " + ansiRed + "ERR" + ansiReset
	got := stripANSI(in)
	want := "INFO plain ERR"
	if got != want {
		t.Fatalf("stripANSI()=%q want=%q", got, want)
	}
}

func TestQuoteIfNeeded(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{in: "plain", want: "plain"},
		{in: "", want: `""`},
		{in: "two words", want: `"two words"`},
		{in: `a="b"`, want: `"a=\"b\""`},
	}
	for _, tc := range cases {
		if got := quoteIfNeeded(tc.in); got != tc.want {
			t.Fatalf("quoteIfNeeded(%q)=%q want=%q", tc.in, got, tc.want)
		}
	}
}

func TestLevelTagPlain(t *testing.T) {
	t.Parallel()

	cases := []struct {
		level slog.Level
		want  string
	}{
		{level: slog.LevelDebug, want: "[DEBUG]"},
		{level: slog.LevelInfo, want: "[INFO]"},
		{level: slog.LevelWarn, want: "[WARN]"},
		{level: slog.LevelError, want: "[ERROR]"},
	}
	for _, tc := range cases {
		if got := levelTag(tc.level, false); got != tc.want {
			t.Fatalf("levelTag(%v)=%q want=%q", tc.level, got, tc.want)
		}
	}
}

func TestPrettyHandlerOutput(t *testing.T) {
	t.Parallel()

	var buf strings.Builder
	h := newPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}, false)
	log := slog.New(h)

	log.Info("http.request",
		"method", "get",
		"path", "/api/v1/balance",
		"status", 200,
		"duration_ms", int64(12),
		"remote", "127.0.0.1:5000",
	)

	line := buf.String()
	for _, want := range []string{
		"lvl=[INFO]",
		"msg=http.request",
		"method=GET",
		"path=/api/v1/balance",
		"status=200",
		"duration_ms=12ms",
		"remote=127.0.0.1:5000",
	} {
		if !strings.Contains(line, want) {
			t.Fatalf("output %q missing %q", line, want)
		}
	}
	if !strings.HasSuffix(line, "\n") {
		t.Fatalf("output must end in newline: %q", line)
	}
}

func TestPrettyHandlerGroupsAndAttrs(t *testing.T) {
	t.Parallel()

	var buf strings.Builder
	h := newPrettyHandler(&buf, nil, false)
	log := slog.New(h).WithGroup("db")

	log.Warn("slow.query", "elapsed", 2*time.Second, "table", "sessions")

	line := buf.String()
	if !strings.Contains(line, "lvl=[WARN]") {
		t.Fatalf("output %q missing level", line)
	}
	if !strings.Contains(line, "db.elapsed=2s") || !strings.Contains(line, "db.table=sessions") {
		t.Fatalf("output %q missing grouped attrs", line)
	}
}

func TestPrettyHandlerRespectsLevel(t *testing.T) {
	t.Parallel()

	h := newPrettyHandler(&strings.Builder{}, &slog.HandlerOptions{Level: slog.LevelWarn}, false)
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("info should be filtered at warn level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("error should pass at warn level")
	}
}
