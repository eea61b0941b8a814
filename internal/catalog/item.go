// Package catalog defines the registry listing: items, the document that
// carries them, and the category used to slice them.
package catalog

import (
	"strings"
	"time"
)

// RepoBaseURL is prepended to Item.Repo to build the repository link.
const RepoBaseURL = "https://github.com/"

// Item is one plugin or theme as published by the registry.
// Only Title, Name, Theme and AddedAt are inspected by the pipeline;
// the rest is display-only.
type Item struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Name        string `json:"name,omitempty"`
	Author      string `json:"author"`
	Description string `json:"description"`
	Repo        string `json:"repo"`
	Theme       bool   `json:"theme,omitempty"`
	// AddedAt is epoch milliseconds. Zero means the registry did not record it.
	AddedAt int64 `json:"addedAt,omitempty"`
}

// Document is the JSON body served by the registry.
type Document struct {
	Packages []Item `json:"packages"`
}

// HasAddedAt reports whether the item carries an added timestamp.
func (it Item) HasAddedAt() bool {
	return it.AddedAt != 0
}

// Added returns AddedAt as a time, and false if it is not set.
func (it Item) Added() (time.Time, bool) {
	if !it.HasAddedAt() {
		return time.Time{}, false
	}
	return time.UnixMilli(it.AddedAt), true
}

// RepoURL returns the repository link, or "" when Repo is empty.
func (it Item) RepoURL() string {
	repo := strings.Trim(strings.TrimSpace(it.Repo), "/")
	if repo == "" {
		return ""
	}
	return RepoBaseURL + repo
}

// Glyph is the decorative marker shown before the title.
func (it Item) Glyph() string {
	if it.Theme {
		return "🎨"
	}
	return "🧩"
}

// Millis converts t to epoch milliseconds, the unit AddedAt is stored in.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}
