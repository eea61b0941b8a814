package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// Category is the coarse classification used by the category filter.
type Category string

const (
	// CategoryAll disables category filtering.
	CategoryAll Category = "all"
	// CategoryPlugins keeps items that are not themes.
	CategoryPlugins Category = "plugins"
	// CategoryThemes keeps themes only.
	CategoryThemes Category = "themes"
)

// ErrUnknownCategory is returned by ParseCategory for values outside the
// three known categories.
var ErrUnknownCategory = errors.New("unknown category")

// Categories lists the known categories in selector order.
func Categories() []Category {
	return []Category{CategoryAll, CategoryPlugins, CategoryThemes}
}

// ParseCategory parses s case-insensitively. Empty input means CategoryAll.
func ParseCategory(s string) (Category, error) {
	switch c := Category(strings.ToLower(strings.TrimSpace(s))); c {
	case "":
		return CategoryAll, nil
	case CategoryAll, CategoryPlugins, CategoryThemes:
		return c, nil
	default:
		return "", fmt.Errorf("%w: %q (want all, plugins or themes)", ErrUnknownCategory, s)
	}
}

// IsAll reports whether c disables category filtering.
func (c Category) IsAll() bool {
	return strings.EqualFold(string(c), string(CategoryAll))
}

// IsThemes reports whether c selects themes only.
func (c Category) IsThemes() bool {
	return strings.EqualFold(string(c), string(CategoryThemes))
}

// Next returns the following category in selector order, wrapping around.
// Unknown values advance to CategoryAll.
func (c Category) Next() Category {
	cats := Categories()
	for i, cat := range cats {
		if strings.EqualFold(string(c), string(cat)) {
			return cats[(i+1)%len(cats)]
		}
	}
	return CategoryAll
}

// Label is the capitalized display name ("All", "Plugins", "Themes").
func (c Category) Label() string {
	s := strings.ToLower(string(c))
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
