// Package filter turns the fetched item list into the displayed rows.
// Every stage is a pure function: []Item in, fresh []Item out. The input
// slice is never modified.
package filter

import (
	"context"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"

	"github.com/abelbrown/marketplace/internal/catalog"
	"github.com/abelbrown/marketplace/internal/tracing"
)

// Params is the slice of application state the pipeline reads.
type Params struct {
	Category catalog.Category
	// Start and End bound the added date inclusively. The range applies
	// only when both are set.
	Start *time.Time
	End   *time.Time
	Query string
}

// DateRangeActive reports whether both bounds are set.
func (p Params) DateRangeActive() bool {
	return p.Start != nil && p.End != nil
}

// Apply runs category, date, search and sort in that order.
// A nil matcher skips the search stage.
func Apply(items []catalog.Item, p Params, m Matcher) []catalog.Item {
	out := ByCategory(items, p.Category)
	if p.DateRangeActive() {
		out = ByDateRange(out, *p.Start, *p.End)
	}
	out = Search(out, p.Query, m)
	return SortByAdded(out)
}

// ApplyContext is Apply inside a "pipeline.apply" span.
func ApplyContext(ctx context.Context, items []catalog.Item, p Params, m Matcher) []catalog.Item {
	_, span := tracing.Tracer("marketplace/filter").Start(ctx, "pipeline.apply")
	defer span.End()

	out := Apply(items, p, m)
	span.SetAttributes(
		attribute.String("category", string(p.Category)),
		attribute.Bool("date_range", p.DateRangeActive()),
		attribute.Int("query.len", utf8.RuneCountInString(strings.TrimSpace(p.Query))),
		attribute.Int("items.in", len(items)),
		attribute.Int("items.out", len(out)),
	)
	return out
}

// ByCategory keeps themes for CategoryThemes and plugins for any other
// value except CategoryAll, which keeps everything.
func ByCategory(items []catalog.Item, c catalog.Category) []catalog.Item {
	result := make([]catalog.Item, 0, len(items))
	if c.IsAll() {
		return append(result, items...)
	}
	themes := c.IsThemes()
	for _, item := range items {
		if item.Theme == themes {
			result = append(result, item)
		}
	}
	return result
}

// ByDateRange keeps undated items and items added within [start, end],
// compared at millisecond precision.
func ByDateRange(items []catalog.Item, start, end time.Time) []catalog.Item {
	lo, hi := catalog.Millis(start), catalog.Millis(end)
	result := make([]catalog.Item, 0, len(items))
	for _, item := range items {
		if !item.HasAddedAt() || (lo <= item.AddedAt && item.AddedAt <= hi) {
			result = append(result, item)
		}
	}
	return result
}

// SearchEnabled reports whether the search stage runs for a list of n
// items and the given query.
func SearchEnabled(n int, query string) bool {
	return n > 1 && utf8.RuneCountInString(strings.TrimSpace(query)) > 1
}

// Search replaces items with the matcher's result when SearchEnabled holds.
// Order is whatever the matcher returns.
func Search(items []catalog.Item, query string, m Matcher) []catalog.Item {
	if m == nil || !SearchEnabled(len(items), query) {
		return append(make([]catalog.Item, 0, len(items)), items...)
	}
	found := m.Search(items, strings.TrimSpace(query))
	return append(make([]catalog.Item, 0, len(found)), found...)
}

// SortByAdded orders items newest first. Undated items go after every
// dated item and keep their relative order.
func SortByAdded(items []catalog.Item) []catalog.Item {
	result := append(make([]catalog.Item, 0, len(items)), items...)
	sort.SliceStable(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.HasAddedAt() != b.HasAddedAt() {
			return a.HasAddedAt()
		}
		return a.AddedAt > b.AddedAt
	})
	return result
}
