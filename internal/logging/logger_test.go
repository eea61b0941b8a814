package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "warn")

	l.Info("hidden")
	l.Warn("shown", "key", "value")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "key=value") {
		t.Errorf("warn line missing: %q", out)
	}
}

func TestNewUnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "chatty")
	l.Debug("debug line")
	l.Info("info line")

	if strings.Contains(buf.String(), "debug line") {
		t.Error("debug should be filtered at default info level")
	}
	if !strings.Contains(buf.String(), "info line") {
		t.Error("info line missing")
	}
}

func TestHelpersBeforeInitAreNoops(t *testing.T) {
	saved := Logger
	Logger = nil
	defer func() { Logger = saved }()

	Info("x")
	Warn("x")
	Error("x")
	Debug("x")
	if WithPrefix("fetch") == nil {
		t.Error("WithPrefix should return a usable logger before Init")
	}
}

func TestInitWritesDailyFile(t *testing.T) {
	saved := Logger
	defer func() { Logger = saved }()

	dir := t.TempDir()
	if err := Init(dir, "debug"); err != nil {
		t.Fatalf("Init: %v", err)
	}
	Info("hello", "n", 1)
	Close()

	matches, err := filepath.Glob(filepath.Join(dir, "logs", "marketplace-*.log"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("expected one log file, got %v (%v)", matches, err)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Errorf("log file missing message: %q", data)
	}
}

func TestWithPrefixTagsLines(t *testing.T) {
	saved := Logger
	defer func() { Logger = saved }()

	var buf bytes.Buffer
	Logger = New(&buf, "info")
	WithPrefix("events").Warn("events dropped", "count", 3)

	out := buf.String()
	if !strings.Contains(out, "events:") || !strings.Contains(out, "count=3") {
		t.Errorf("prefixed line = %q", out)
	}
}
