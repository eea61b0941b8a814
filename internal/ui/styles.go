package ui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// palette is one presentation mode.
type palette struct {
	text      lipgloss.Color
	muted     lipgloss.Color
	primary   lipgloss.Color
	highlight lipgloss.Color
	bar       lipgloss.Color
	selected  lipgloss.Color
	danger    lipgloss.Color
}

var darkPalette = palette{
	text:      lipgloss.Color("255"),
	muted:     lipgloss.Color("241"),
	primary:   lipgloss.Color("62"),  // Purple
	highlight: lipgloss.Color("212"), // Pink
	bar:       lipgloss.Color("236"),
	selected:  lipgloss.Color("62"),
	danger:    lipgloss.Color("196"),
}

var lightPalette = palette{
	text:      lipgloss.Color("235"),
	muted:     lipgloss.Color("245"),
	primary:   lipgloss.Color("25"),
	highlight: lipgloss.Color("161"),
	bar:       lipgloss.Color("254"),
	selected:  lipgloss.Color("153"),
	danger:    lipgloss.Color("160"),
}

// styles holds every style the view uses for one palette.
type styles struct {
	Heading      lipgloss.Style
	HeadingLink  lipgloss.Style
	Control      lipgloss.Style
	ControlLabel lipgloss.Style
	Total        lipgloss.Style
	Hint         lipgloss.Style
	ErrorTitle   lipgloss.Style
	ErrorBox     lipgloss.Style
	Spinner      lipgloss.Style
	StatusBar    lipgloss.Style
	StatusKey    lipgloss.Style
	StatusText   lipgloss.Style
	DebugPanel   lipgloss.Style
	DebugHeader  lipgloss.Style
	Table        table.Styles
}

func newStyles(dark bool) styles {
	p := lightPalette
	if dark {
		p = darkPalette
	}

	tbl := table.DefaultStyles()
	tbl.Header = tbl.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(p.muted).
		BorderBottom(true).
		Foreground(p.highlight).
		Bold(true)
	tbl.Cell = tbl.Cell.Foreground(p.text)
	tbl.Selected = tbl.Selected.
		Foreground(p.text).
		Background(p.selected).
		Bold(true)

	return styles{
		Heading: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.text).
			Padding(0, 1),
		HeadingLink: lipgloss.NewStyle().
			Foreground(p.primary).
			Underline(true),
		Control: lipgloss.NewStyle().
			Foreground(p.text).
			Background(p.bar).
			Padding(0, 1).
			MarginRight(1),
		ControlLabel: lipgloss.NewStyle().
			Foreground(p.muted),
		Total: lipgloss.NewStyle().
			Foreground(p.text).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(p.primary).
			Padding(0, 1),
		Hint: lipgloss.NewStyle().
			Foreground(p.danger).
			Padding(0, 1),
		ErrorTitle: lipgloss.NewStyle().
			Foreground(p.danger).
			Bold(true),
		ErrorBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.danger).
			Padding(0, 1),
		Spinner: lipgloss.NewStyle().
			Foreground(p.highlight),
		StatusBar: lipgloss.NewStyle().
			Foreground(p.text).
			Background(p.bar).
			Padding(0, 1),
		StatusKey: lipgloss.NewStyle().
			Foreground(p.highlight).
			Bold(true),
		StatusText: lipgloss.NewStyle().
			Foreground(p.muted),
		DebugPanel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.primary).
			Padding(1, 2),
		DebugHeader: lipgloss.NewStyle().
			Foreground(p.highlight).
			Bold(true),
		Table: tbl,
	}
}
