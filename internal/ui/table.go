package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/mattn/go-runewidth"

	"github.com/abelbrown/marketplace/internal/catalog"
)

// DateLayout renders the Added at column.
const DateLayout = "Mon Jan 02 2006"

// Fixed column widths; Description takes the rest.
const (
	titleWidth   = 28
	authorWidth  = 16
	repoWidth    = 32
	addedWidth   = 15
	minDescWidth = 12
)

// columns lays out the five columns for a terminal width.
func columns(width int) []table.Column {
	desc := width - (titleWidth + authorWidth + repoWidth + addedWidth) - 2*5
	if desc < minDescWidth {
		desc = minDescWidth
	}
	return []table.Column{
		{Title: "Title", Width: titleWidth},
		{Title: "Author", Width: authorWidth},
		{Title: "Repo", Width: repoWidth},
		{Title: "Added at", Width: addedWidth},
		{Title: "Description", Width: desc},
	}
}

// itemRows renders items as table rows, fitting each cell to its column.
func itemRows(items []catalog.Item, cols []table.Column) []table.Row {
	rows := make([]table.Row, 0, len(items))
	for _, it := range items {
		cells := []string{
			it.Glyph() + " " + it.Title,
			it.Author,
			repoLabel(it),
			addedLabel(it),
			it.Description,
		}
		for i := range cells {
			cells[i] = fit(cells[i], cols[i].Width)
		}
		rows = append(rows, table.Row(cells))
	}
	return rows
}

// repoLabel is the link text: the repo URL without its scheme.
func repoLabel(it catalog.Item) string {
	return strings.TrimPrefix(it.RepoURL(), "https://")
}

// addedLabel formats AddedAt in local time, or "" when absent.
func addedLabel(it catalog.Item) string {
	t, ok := it.Added()
	if !ok {
		return ""
	}
	return t.In(time.Local).Format(DateLayout)
}

// fit flattens s to one line and truncates it to width terminal cells.
func fit(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	return runewidth.Truncate(s, width, "…")
}
