package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the bindings active while the table has focus.
type keyMap struct {
	Category key.Binding
	Dates    key.Binding
	Reset    key.Binding
	Refresh  key.Binding
	Search   key.Binding
	Theme    key.Binding
	Open     key.Binding
	Debug    key.Binding
	Home     key.Binding
	Quit     key.Binding
	Escape   key.Binding
	Next     key.Binding
}

var keys = keyMap{
	Category: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "category")),
	Dates:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "dates")),
	Reset:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "reset dates")),
	Refresh:  key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "refresh")),
	Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Theme:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "dark/light")),
	Open:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open repo")),
	Debug:    key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "debug")),
	Home:     key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "marketplace")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Escape:   key.NewBinding(key.WithKeys("esc")),
	Next:     key.NewBinding(key.WithKeys("tab", "shift+tab")),
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.Category, k.Dates, k.Reset, k.Refresh, k.Open, k.Theme, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Search, k.Category, k.Dates, k.Reset},
		{k.Refresh, k.Open, k.Home, k.Theme, k.Debug, k.Quit},
	}
}
