package ui

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/browser"

	"github.com/abelbrown/marketplace/internal/cache"
	"github.com/abelbrown/marketplace/internal/catalog"
)

// CacheCommands adapts a request cache to AppConfig.Query and
// AppConfig.Refetch. Loads run under ctx and report back as CatalogLoaded.
func CacheCommands(ctx context.Context, c *cache.Cache[[]catalog.Item]) (
	query func(key string) (Snapshot, tea.Cmd),
	refetch func(key string) (Snapshot, tea.Cmd),
) {
	load := func(snap Snapshot) tea.Cmd {
		key, gen := snap.Key, snap.Generation
		return func() tea.Msg {
			return CatalogLoaded{Snapshot: c.Load(ctx, key, gen)}
		}
	}
	query = func(key string) (Snapshot, tea.Cmd) {
		snap, start := c.Get(key)
		if !start {
			return snap, nil
		}
		return snap, load(snap)
	}
	refetch = func(key string) (Snapshot, tea.Cmd) {
		snap := c.Refetch(key)
		return snap, load(snap)
	}
	return query, refetch
}

func init() {
	// The TUI owns the terminal.
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
}

// OpenInBrowser opens url with the system browser.
func OpenInBrowser(url string) tea.Cmd {
	return func() tea.Msg {
		return RepoOpened{URL: url, Err: browser.OpenURL(url)}
	}
}
