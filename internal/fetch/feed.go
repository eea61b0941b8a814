package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/abelbrown/marketplace/internal/catalog"
)

// FeedSource reads a registry that publishes its packages as an RSS, Atom
// or JSON Feed document instead of the plain JSON listing.
type FeedSource struct {
	httpGetter
}

// NewFeedSource creates a FeedSource for url.
func NewFeedSource(url string, opts Options) *FeedSource {
	return &FeedSource{httpGetter: newHTTPGetter(url, opts)}
}

// Name identifies the source in events and the UI.
func (s *FeedSource) Name() string { return "feed" }

// URL returns the feed location.
func (s *FeedSource) URL() string { return s.url }

// Fetch performs one GET and converts feed entries to items.
func (s *FeedSource) Fetch(ctx context.Context) (catalog.Document, error) {
	return s.get(ctx, "fetch.feed", "application/rss+xml, application/atom+xml, application/feed+json", decodeFeed)
}

func decodeFeed(r io.Reader) (catalog.Document, error) {
	feed, err := gofeed.NewParser().Parse(r)
	if err != nil {
		return catalog.Document{}, fmt.Errorf("failed to parse feed: %w", err)
	}
	doc := catalog.Document{Packages: make([]catalog.Item, 0, len(feed.Items))}
	for _, fi := range feed.Items {
		doc.Packages = append(doc.Packages, convertFeedItem(fi))
	}
	return doc, nil
}

// convertFeedItem maps one entry. Entries tagged "theme" become themes; a
// github.com link supplies the repo.
func convertFeedItem(fi *gofeed.Item) catalog.Item {
	it := catalog.Item{
		ID:          entryID(fi),
		Title:       strings.TrimSpace(fi.Title),
		Name:        entryName(fi),
		Description: truncate(strings.TrimSpace(fi.Description), 500),
		Repo:        githubRepo(fi.Link),
	}

	switch {
	case fi.Author != nil && fi.Author.Name != "":
		it.Author = fi.Author.Name
	case len(fi.Authors) > 0 && fi.Authors[0] != nil:
		it.Author = fi.Authors[0].Name
	}

	if fi.PublishedParsed != nil {
		it.AddedAt = catalog.Millis(*fi.PublishedParsed)
	} else if fi.UpdatedParsed != nil {
		it.AddedAt = catalog.Millis(*fi.UpdatedParsed)
	}

	for _, c := range fi.Categories {
		if strings.EqualFold(strings.TrimSpace(c), "theme") || strings.EqualFold(strings.TrimSpace(c), "themes") {
			it.Theme = true
			break
		}
	}
	return it
}

// entryID prefers the GUID, then the link, then the title.
func entryID(fi *gofeed.Item) string {
	key := fi.GUID
	if key == "" {
		key = fi.Link
	}
	if key == "" {
		key = fi.Title
	}
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:8])
}

// entryName is the last path segment of the link, the closest thing a feed
// entry has to a package name.
func entryName(fi *gofeed.Item) string {
	u, err := url.Parse(fi.Link)
	if err != nil || u.Path == "" || u.Path == "/" {
		return ""
	}
	return path.Base(strings.TrimSuffix(u.Path, "/"))
}

// githubRepo extracts "owner/name" from a github.com URL.
func githubRepo(link string) string {
	u, err := url.Parse(link)
	if err != nil || !strings.EqualFold(strings.TrimPrefix(u.Host, "www."), "github.com") {
		return ""
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return ""
	}
	return parts[0] + "/" + parts[1]
}

// truncate shortens s to maxLen runes, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
