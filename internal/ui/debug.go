package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/abelbrown/marketplace/internal/events"
)

// debugPanelChrome is the number of terminal lines consumed by the debug
// panel's border (top + bottom = 2) and vertical padding (top + bottom = 2).
const debugPanelChrome = 4

// debugOverlay renders event counts and the most recent events.
// Returns empty string if ring is nil.
func debugOverlay(st styles, ring *events.Ring, width, height int, now time.Time) string {
	if ring == nil {
		return ""
	}

	stats := ring.Counts()
	recent := ring.Last(20)

	var lines []string
	lines = append(lines, st.DebugHeader.Render("Pipeline Stats"))
	lines = append(lines, fmt.Sprintf("  Fetches:    %d started, %d complete, %d errors",
		stats[events.KindFetchStart], stats[events.KindFetchComplete], stats[events.KindFetchError]))
	lines = append(lines, fmt.Sprintf("  Cache:      %d hit, %d miss, %d stale, %d refetch, %d superseded",
		stats[events.KindCacheHit], stats[events.KindCacheMiss], stats[events.KindCacheStale],
		stats[events.KindCacheRefetch], stats[events.KindCacheSuperseded]))
	lines = append(lines, fmt.Sprintf("  Pipeline:   %d runs", stats[events.KindPipelineRun]))
	lines = append(lines, fmt.Sprintf("  Buffer:     %d / %d events", ring.Len(), ring.Cap()))
	lines = append(lines, "")

	lines = append(lines, st.DebugHeader.Render("Recent Events"))
	for _, e := range recent {
		line := fmt.Sprintf("  %6s  %-18s", formatAge(now.Sub(e.Time)), string(e.Kind))
		if e.Key != "" {
			line += fmt.Sprintf("  %s#%d", e.Key, e.Gen)
		}
		if e.Count > 0 {
			line += fmt.Sprintf("  n=%d", e.Count)
		}
		if e.Msg != "" {
			line += "  " + truncateRunes(e.Msg, 40)
		}
		if e.Err != "" {
			line += "  ERR:" + truncateRunes(e.Err, 30)
		}
		lines = append(lines, line)
	}

	maxHeight := height - debugPanelChrome
	if maxHeight < 1 {
		maxHeight = 1
	}
	if len(lines) > maxHeight {
		lines = lines[:maxHeight]
	}

	panelWidth := 84
	if panelWidth > width-4 {
		panelWidth = width - 4
	}
	if panelWidth < 20 {
		panelWidth = 20
	}

	return st.DebugPanel.Width(panelWidth).Render(strings.Join(lines, "\n"))
}

// formatAge formats a duration as a compact human string.
// Negative durations from clock skew clamp to "0ms".
func formatAge(d time.Duration) string {
	if d < 0 {
		return "0ms"
	}
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
