package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestJSONLevelFiltering(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelWarn)
	log.Info("dropped")
	if buf.Len() > 0 {
		t.Fatalf("expected no output at info, got: %s", buf.String())
	}
	log.Warn("kept", "key", "value")
	out := buf.String()
	if !strings.Contains(out, "kept") || !strings.Contains(out, `"key":"value"`) {
		t.Fatalf("unexpected JSON output: %s", out)
	}
}

func TestDiscardIsSilentAndDisabled(t *testing.T) {
	t.Parallel()
	log := Discard()
	log.Error("nothing")
	if log.Enabled(slog.LevelError) {
		t.Fatalf("Discard should not enable any level")
	}
}

func TestSetupFormats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format string
		want   string
	}{
		{"json", `"msg":"hello"`},
		{"text", "msg=hello"},
		{"pretty", "hello"},
		{"", "hello"},
	}
	for _, tc := range tests {
		var buf bytes.Buffer
		log, err := Setup(&buf, tc.format, "debug")
		if err != nil {
			t.Fatalf("Setup(%q): %v", tc.format, err)
		}
		log.Debug("hello")
		if !strings.Contains(buf.String(), tc.want) {
			t.Errorf("Setup(%q): expected %q in %q", tc.format, tc.want, buf.String())
		}
	}
}

func TestSetupRejectsUnknown(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	if _, err := Setup(&buf, "xml", "info"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
	if _, err := Setup(&buf, "json", "loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected slog.Level
		ok       bool
	}{
		{"debug", slog.LevelDebug, true},
		{"DEBUG", slog.LevelDebug, true},
		{"info", slog.LevelInfo, true},
		{"", slog.LevelInfo, true},
		{"warning", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"trace", slog.LevelInfo, false},
	}
	for _, tc := range tests {
		got, err := ParseLevel(tc.input)
		if (err == nil) != tc.ok {
			t.Errorf("ParseLevel(%q): unexpected err %v", tc.input, err)
		}
		if got != tc.expected {
			t.Errorf("ParseLevel(%q): expected %v, got %v", tc.input, tc.expected, got)
		}
	}
}

func TestContextRoundTrip(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	ctx := WithContext(context.Background(), JSON(&buf, slog.LevelInfo))
	FromContext(ctx).Info("roundtrip")
	if !strings.Contains(buf.String(), "roundtrip") {
		t.Fatalf("expected message via context logger, got: %s", buf.String())
	}
	if FromContext(context.Background()) == nil {
		t.Fatalf("FromContext without logger returned nil")
	}
}

func TestPrettyGroupsAndAttrs(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, nil)
	log := slog.New(h.WithAttrs([]slog.Attr{slog.String("component", "bf")}).WithGroup("a").WithGroup("b"))
	log.Info("nested", "key", "val", "took", 1500*time.Millisecond)

	out := buf.String()
	for _, want := range []string{" component=bf", "a.b.key=val", "a.b.took=1.5s", "nested"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output, got: %s", want, out)
		}
	}
	if strings.Contains(out, "a.b.component") {
		t.Fatalf("attrs added before a group must not be qualified: %s", out)
	}

	buf.Reset()
	slog.New(h.WithGroup("g").WithAttrs([]slog.Attr{slog.Int("n", 3)})).Info("late")
	if !strings.Contains(buf.String(), "g.n=3") {
		t.Fatalf("attrs added inside a group must be qualified: %s", buf.String())
	}
}

func TestPrettyGroupValue(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, nil))
	log.Info("plan", slog.Group("padded", "pixels", 64, "frames", 32))
	out := buf.String()
	if !strings.Contains(out, "padded.pixels=64") || !strings.Contains(out, "padded.frames=32") {
		t.Fatalf("expected flattened group attrs, got: %s", out)
	}
}

func TestPrettyQuoting(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, nil))
	log.Info("test", "msg", "hello world", "simple", "plain")
	out := buf.String()
	if !strings.Contains(out, `msg="hello world"`) {
		t.Fatalf("expected quoted string, got: %s", out)
	}
	if !strings.Contains(out, "simple=plain") {
		t.Fatalf("expected unquoted simple string, got: %s", out)
	}
}

func TestPrettyEmptyGroupReturnsSameHandler(t *testing.T) {
	t.Parallel()
	h := NewPrettyHandler(&bytes.Buffer{}, nil)
	if h.WithGroup("") != slog.Handler(h) {
		t.Fatal("WithGroup empty string should return same handler")
	}
}

func TestNeedsQuoting(t *testing.T) {
	t.Parallel()

	tests := map[string]bool{
		"simple":    false,
		"has space": true,
		"k=v":       true,
		`q"uote`:    true,
		"":          false,
	}
	for in, want := range tests {
		if got := needsQuoting(in); got != want {
			t.Errorf("needsQuoting(%q): expected %v, got %v", in, want, got)
		}
	}
}
