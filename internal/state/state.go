// Package state holds the browser's user selections and the single
// function that changes them.
package state

import (
	"fmt"
	"time"

	"github.com/abelbrown/marketplace/internal/catalog"
	"github.com/abelbrown/marketplace/internal/filter"
)

// DateRange bounds the added date inclusively. It filters only when both
// ends are set.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// Active reports whether both bounds are set.
func (r DateRange) Active() bool {
	return r.Start != nil && r.End != nil
}

// State is everything the user has chosen. The fetched items live in the
// request cache, not here.
type State struct {
	Query     string
	Category  catalog.Category
	DateRange DateRange
	DarkMode  bool
	// CacheToken is folded into the cache key; bumping it forces a fresh fetch.
	CacheToken int64
}

// New returns the initial state.
func New(category catalog.Category, query string, darkMode bool) State {
	if category == "" {
		category = catalog.CategoryAll
	}
	return State{
		Query:    query,
		Category: category,
		DarkMode: darkMode,
	}
}

// Update is a partial state. Each non-nil field replaces the matching
// field of State.
type Update struct {
	Query      *string
	Category   *catalog.Category
	DateRange  *DateRange
	DarkMode   *bool
	CacheToken *int64
}

// Reduce returns s with every field set in u overwritten. Values are not
// validated.
func Reduce(s State, u Update) State {
	if u.Query != nil {
		s.Query = *u.Query
	}
	if u.Category != nil {
		s.Category = *u.Category
	}
	if u.DateRange != nil {
		s.DateRange = *u.DateRange
	}
	if u.DarkMode != nil {
		s.DarkMode = *u.DarkMode
	}
	if u.CacheToken != nil {
		s.CacheToken = *u.CacheToken
	}
	return s
}

// SetQuery replaces the search query.
func SetQuery(q string) Update { return Update{Query: &q} }

// SetCategory replaces the category.
func SetCategory(c catalog.Category) Update { return Update{Category: &c} }

// SetDateRange replaces both bounds; either may be nil.
func SetDateRange(start, end *time.Time) Update {
	return Update{DateRange: &DateRange{Start: start, End: end}}
}

// ResetDateRange clears both bounds.
func ResetDateRange() Update { return Update{DateRange: &DateRange{}} }

// SetDarkMode sets the presentation mode.
func SetDarkMode(on bool) Update { return Update{DarkMode: &on} }

// BumpCacheToken sets the token to now in epoch milliseconds.
func BumpCacheToken(now time.Time) Update {
	token := now.UnixMilli()
	return Update{CacheToken: &token}
}

// CacheKey is the request cache key for the current token.
func (s State) CacheKey() string {
	return fmt.Sprintf("plugins-%d", s.CacheToken)
}

// Params extracts the pipeline inputs.
func (s State) Params() filter.Params {
	return filter.Params{
		Category: s.Category,
		Start:    s.DateRange.Start,
		End:      s.DateRange.End,
		Query:    s.Query,
	}
}
