package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/abelbrown/marketplace/internal/catalog"
	"github.com/abelbrown/marketplace/internal/events"
)

func TestParseRange(t *testing.T) {
	tests := []struct {
		name      string
		from, to  string
		wantStart bool
		wantEnd   bool
		wantErr   bool
	}{
		{"empty", "", "", false, false, false},
		{"both", "2024-01-01", "2024-01-31", true, true, false},
		{"from only", "2024-01-01", "", true, false, false},
		{"to only", "", "2024-01-31", false, true, false},
		{"bad from", "yesterday", "", false, false, true},
		{"bad to", "", "31/01/2024", false, false, true},
		{"reversed", "2024-02-01", "2024-01-01", false, false, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			start, end, err := parseRange(tc.from, tc.to)
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tc.wantErr)
			}
			if (start != nil) != tc.wantStart || (end != nil) != tc.wantEnd {
				t.Errorf("start=%v end=%v", start, end)
			}
		})
	}
}

func TestParseRangeEndIsInclusive(t *testing.T) {
	_, end, err := parseRange("", "2024-01-31")
	if err != nil {
		t.Fatal(err)
	}
	lateInDay := time.Date(2024, 1, 31, 23, 0, 0, 0, time.Local)
	if end.Before(lateInDay) {
		t.Errorf("end %v should cover the whole day", end)
	}
}

func TestPrintItems(t *testing.T) {
	var buf bytes.Buffer
	items := []catalog.Item{
		{Title: "Dark", Author: "ann", Repo: "ann/dark", Theme: true, Description: "a\nb"},
		{Title: "Tool", Author: "bob"},
	}
	if err := printItems(&buf, items); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"TITLE", "🎨 Dark", "https://github.com/ann/dark", "a b", "🧩 Tool", "Total 2"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatEvent(t *testing.T) {
	e := events.Event{
		Time:  time.Date(2024, 1, 1, 9, 30, 0, 0, time.Local),
		Level: events.LevelError,
		Kind:  events.KindFetchError,
		Comp:  "fetch",
		Key:   "plugins-0",
		Gen:   2,
		DurMs: 12.5,
		Err:   "boom",
	}
	got := formatEvent(e)
	for _, want := range []string{"09:30:00.000", "ERROR", "[fetch ]", "fetch.error", "(12.5ms)", "key=plugins-0#2", "err=boom"} {
		if !strings.Contains(got, want) {
			t.Errorf("formatEvent missing %q: %s", want, got)
		}
	}
}

func TestPrintEventsTail(t *testing.T) {
	log := strings.Join([]string{
		`{"t":"2024-01-01T00:00:00Z","kind":"fetch.start","comp":"fetch"}`,
		`not json`,
		`{"t":"2024-01-01T00:00:01Z","kind":"cache.miss","comp":"cache"}`,
		`{"t":"2024-01-01T00:00:02Z","kind":"fetch.complete","comp":"fetch","count":3}`,
	}, "\n")
	evs, err := events.Tail(strings.NewReader(log), 10, "fetch")
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := printEvents(&buf, evs); err != nil {
		t.Fatal(err)
	}
	if lines := strings.Count(buf.String(), "\n"); lines != 2 {
		t.Errorf("printed %d lines, want 2:\n%s", lines, buf.String())
	}
	if !strings.Contains(buf.String(), "n=3") {
		t.Errorf("missing count:\n%s", buf.String())
	}
}
