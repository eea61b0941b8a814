// Command marketplace browses the Logseq plugin and theme registry.
//
// Usage:
//
//	marketplace                 Interactive browser
//	marketplace list            Print the filtered catalog once
//	marketplace events          JSONL event log viewer
//	marketplace version         Print the build version
package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/abelbrown/marketplace/internal/filter"
	"github.com/abelbrown/marketplace/internal/logging"
	"github.com/abelbrown/marketplace/internal/state"
	"github.com/abelbrown/marketplace/internal/ui"
)

var (
	flagConfig   string
	flagURL      string
	flagCategory string
	flagQuery    string
)

var rootCmd = &cobra.Command{
	Use:          "marketplace",
	Short:        "Browse Logseq plugins and themes in the terminal",
	SilenceUsage: true,
	Long: `marketplace fetches the Logseq marketplace listing and lets you filter it
by category and date range, fuzzy-search titles and open repositories.

Settings are read from ~/.marketplace/config.yaml and MARKETPLACE_* variables.`,
	RunE: runBrowse,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default ~/.marketplace/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagURL, "url", "", "Registry URL (overrides source.url)")
	rootCmd.Flags().StringVar(&flagCategory, "category", "", "Initial category: all, plugins or themes")
	rootCmd.Flags().StringVar(&flagQuery, "query", "", "Initial search query")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runBrowse(cmd *cobra.Command, args []string) error {
	rt, err := setup()
	if err != nil {
		return err
	}
	defer rt.Close()

	category, err := rt.category(flagCategory)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	query, refetch := ui.CacheCommands(ctx, rt.cache)
	app := ui.NewAppWithConfig(ui.AppConfig{
		Query:    query,
		Refetch:  refetch,
		OpenURL:  ui.OpenInBrowser,
		Matcher:  filter.NewFuzzyMatcher(),
		State:    state.New(category, flagQuery, rt.cfg.DarkMode()),
		Source:   rt.cfg.Source.URL,
		Recorder: rt.rec,
		Ring:     rt.ring,
	})

	program := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		logging.Error("program exited", "err", err)
		return fmt.Errorf("run browser: %w", err)
	}
	return nil
}
