package filter

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/sahilm/fuzzy"

	"github.com/abelbrown/marketplace/internal/catalog"
)

// Matcher selects and orders the items matching query.
// Implementations must not modify items.
type Matcher interface {
	Search(items []catalog.Item, query string) []catalog.Item
}

// Defaults for FuzzyMatcher.
const (
	DefaultDistance           = 10
	DefaultMinMatchCharLength = 2
)

// FuzzyMatcher matches the query against each item's title and name as an
// in-order, case-insensitive subsequence.
//
// Distance measures the gap inside a match, not where the match starts: a
// pattern may match anywhere in the key as long as no more than Distance
// unmatched characters fall between its first and last matched character.
type FuzzyMatcher struct {
	// Distance caps the unmatched characters between the first and last
	// matched character. Negative disables the cap.
	Distance int
	// MinMatchCharLength is the shortest contiguous run of matched
	// characters a match must contain.
	MinMatchCharLength int
}

// NewFuzzyMatcher returns a FuzzyMatcher with the default tolerances.
func NewFuzzyMatcher() FuzzyMatcher {
	return FuzzyMatcher{Distance: DefaultDistance, MinMatchCharLength: DefaultMinMatchCharLength}
}

// keys lays out title and name for every item: item i owns 2i and 2i+1.
type keys []string

func (k keys) String(i int) string { return k[i] }
func (k keys) Len() int            { return len(k) }

// Search returns matching items, best score first. Equal scores keep
// input order.
func (f FuzzyMatcher) Search(items []catalog.Item, query string) []catalog.Item {
	pattern := strings.ToLower(strings.TrimSpace(query))
	if pattern == "" || len(items) == 0 {
		return []catalog.Item{}
	}

	src := make(keys, 0, 2*len(items))
	for _, item := range items {
		src = append(src, strings.ToLower(item.Title), strings.ToLower(item.Name))
	}

	best := make(map[int]int)
	for _, m := range fuzzy.FindFrom(pattern, src) {
		if !f.accept(m) {
			continue
		}
		idx := m.Index / 2
		if score, ok := best[idx]; !ok || m.Score > score {
			best[idx] = m.Score
		}
	}

	order := make([]int, 0, len(best))
	for idx := range best {
		order = append(order, idx)
	}
	sort.Ints(order)
	sort.SliceStable(order, func(i, j int) bool {
		return best[order[i]] > best[order[j]]
	})

	result := make([]catalog.Item, 0, len(order))
	for _, idx := range order {
		result = append(result, items[idx])
	}
	return result
}

func (f FuzzyMatcher) accept(m fuzzy.Match) bool {
	if len(m.MatchedIndexes) == 0 {
		return false
	}
	if f.Distance >= 0 && skipped(m.Str, m.MatchedIndexes) > f.Distance {
		return false
	}
	return longestRun(m.Str, m.MatchedIndexes) >= f.MinMatchCharLength
}

// skipped counts unmatched runes between the first and last match.
// Matched indexes are byte offsets into s.
func skipped(s string, idx []int) int {
	first, last := idx[0], idx[len(idx)-1]
	_, size := utf8.DecodeRuneInString(s[last:])
	return utf8.RuneCountInString(s[first:last+size]) - len(idx)
}

// longestRun is the length of the longest sequence of adjacent matched runes.
func longestRun(s string, idx []int) int {
	longest, run := 1, 1
	for i := 1; i < len(idx); i++ {
		_, size := utf8.DecodeRuneInString(s[idx[i-1]:])
		if idx[i] == idx[i-1]+size {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}
