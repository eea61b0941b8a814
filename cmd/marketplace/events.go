package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abelbrown/marketplace/internal/config"
	"github.com/abelbrown/marketplace/internal/events"
)

var (
	flagEventsTail int
	flagEventsKind string
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show recent entries from the JSONL event log",
	Args:  cobra.NoArgs,
	RunE:  runEvents,
}

func init() {
	eventsCmd.Flags().IntVarP(&flagEventsTail, "tail", "n", 50, "Number of recent events to show (0 = all)")
	eventsCmd.Flags().StringVar(&flagEventsKind, "kind", "", "Filter by event kind prefix (e.g. 'fetch')")
	rootCmd.AddCommand(eventsCmd)
}

func runEvents(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	dir, err := cfg.ResolveDataDir()
	if err != nil {
		return err
	}
	path := filepath.Join(dir, eventLogName)

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("event log not found at %s (run marketplace first): %w", path, err)
	}
	defer f.Close()

	evs, err := events.Tail(f, flagEventsTail, flagEventsKind)
	if err != nil {
		return err
	}
	return printEvents(cmd.OutOrStdout(), evs)
}

func printEvents(w io.Writer, evs []events.Event) error {
	for _, e := range evs {
		if _, err := fmt.Fprintln(w, formatEvent(e)); err != nil {
			return err
		}
	}
	return nil
}

// formatEvent renders one event as a single human-readable line.
func formatEvent(e events.Event) string {
	lvl := strings.ToUpper(string(e.Level))
	if lvl == "" {
		lvl = "?"
	}
	parts := []string{fmt.Sprintf("%s %-5s [%-6s] %-18s", e.Time.Format("15:04:05.000"), lvl, e.Comp, e.Kind)}

	if e.Msg != "" {
		parts = append(parts, "- "+e.Msg)
	}
	if e.DurMs > 0 {
		parts = append(parts, fmt.Sprintf("(%.1fms)", e.DurMs))
	}
	if e.Key != "" {
		parts = append(parts, fmt.Sprintf("key=%s#%d", e.Key, e.Gen))
	}
	if e.Count > 0 {
		parts = append(parts, fmt.Sprintf("n=%d", e.Count))
	}
	if e.Source != "" {
		parts = append(parts, "src="+e.Source)
	}
	if e.Category != "" {
		parts = append(parts, "cat="+e.Category)
	}
	if e.Query != "" {
		parts = append(parts, fmt.Sprintf("q=%q", e.Query))
	}
	if e.Err != "" {
		parts = append(parts, "err="+e.Err)
	}
	return strings.Join(parts, " ")
}
