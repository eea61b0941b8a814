package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/abelbrown/marketplace/internal/catalog"
	"github.com/abelbrown/marketplace/internal/filter"
	"github.com/abelbrown/marketplace/internal/state"
	"github.com/abelbrown/marketplace/internal/ui"
)

var (
	flagListCategory string
	flagListFrom     string
	flagListTo       string
	flagListQuery    string
	flagListLimit    int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Fetch the catalog once and print the filtered table",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&flagListCategory, "category", "", "Category: all, plugins or themes")
	listCmd.Flags().StringVar(&flagListFrom, "from", "", "Earliest added date (YYYY-MM-DD)")
	listCmd.Flags().StringVar(&flagListTo, "to", "", "Latest added date, inclusive (YYYY-MM-DD)")
	listCmd.Flags().StringVar(&flagListQuery, "query", "", "Fuzzy search on title and name")
	listCmd.Flags().IntVar(&flagListLimit, "limit", 0, "Maximum rows to print (0 = all)")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	rt, err := setup()
	if err != nil {
		return err
	}
	defer rt.Close()

	category, err := rt.category(flagListCategory)
	if err != nil {
		return err
	}
	start, end, err := parseRange(flagListFrom, flagListTo)
	if err != nil {
		return err
	}

	st := state.New(category, flagListQuery, rt.cfg.DarkMode())
	st = state.Reduce(st, state.SetDateRange(start, end))

	snap, _ := rt.cache.Get(st.CacheKey())
	snap = rt.cache.Load(cmd.Context(), snap.Key, snap.Generation)
	if snap.Err != nil {
		return fmt.Errorf("fetch catalog: %w", snap.Err)
	}

	items := filter.ApplyContext(cmd.Context(), snap.Data, st.Params(), filter.NewFuzzyMatcher())
	if flagListLimit > 0 && len(items) > flagListLimit {
		items = items[:flagListLimit]
	}
	return printItems(cmd.OutOrStdout(), items)
}

// parseRange parses --from and --to. Either may be empty; the pipeline
// ignores a range with only one bound.
func parseRange(from, to string) (*time.Time, *time.Time, error) {
	var start, end *time.Time
	if from != "" {
		t, err := ui.ParseDay(from)
		if err != nil {
			return nil, nil, fmt.Errorf("--from: %w", err)
		}
		start = &t
	}
	if to != "" {
		t, err := ui.ParseDay(to)
		if err != nil {
			return nil, nil, fmt.Errorf("--to: %w", err)
		}
		t = ui.EndOfDay(t)
		end = &t
	}
	if start != nil && end != nil && start.After(*end) {
		return nil, nil, fmt.Errorf("--from %s is after --to %s", from, to)
	}
	return start, end, nil
}

// printItems writes the five table columns, tab-aligned.
func printItems(w io.Writer, items []catalog.Item) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TITLE\tAUTHOR\tREPO\tADDED AT\tDESCRIPTION")
	for _, it := range items {
		added := ""
		if t, ok := it.Added(); ok {
			added = t.In(time.Local).Format(ui.DateLayout)
		}
		fmt.Fprintf(tw, "%s %s\t%s\t%s\t%s\t%s\n",
			it.Glyph(),
			runewidth.Truncate(it.Title, 40, "…"),
			it.Author,
			it.RepoURL(),
			added,
			runewidth.Truncate(strings.Join(strings.Fields(it.Description), " "), 60, "…"),
		)
	}
	fmt.Fprintf(tw, "\nTotal %d\n", len(items))
	return tw.Flush()
}
