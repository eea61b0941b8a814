// Package ui provides the Bubble Tea TUI for the marketplace browser.
package ui

import (
	"github.com/abelbrown/marketplace/internal/cache"
	"github.com/abelbrown/marketplace/internal/catalog"
)

// Snapshot is the request cache state for the catalog listing.
type Snapshot = cache.Snapshot[[]catalog.Item]

// CatalogLoaded is sent when a load started by a Query or Refetch finishes.
type CatalogLoaded struct {
	Snapshot Snapshot
}

// RepoOpened is sent after an attempt to open a repository link.
type RepoOpened struct {
	URL string
	Err error
}
