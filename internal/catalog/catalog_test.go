package catalog

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in      string
		want    Category
		wantErr bool
	}{
		{"all", CategoryAll, false},
		{"ALL", CategoryAll, false},
		{" Themes ", CategoryThemes, false},
		{"plugins", CategoryPlugins, false},
		{"", CategoryAll, false},
		{"widgets", "", true},
	}

	for _, tt := range tests {
		got, err := ParseCategory(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrUnknownCategory) {
				t.Errorf("ParseCategory(%q) err = %v, want ErrUnknownCategory", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseCategory(%q) unexpected error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseCategory(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCategoryNextCycles(t *testing.T) {
	c := CategoryAll
	seen := []Category{c}
	for i := 0; i < 3; i++ {
		c = c.Next()
		seen = append(seen, c)
	}
	want := []Category{CategoryAll, CategoryPlugins, CategoryThemes, CategoryAll}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("cycle[%d] = %q, want %q", i, seen[i], want[i])
		}
	}

	if got := Category("bogus").Next(); got != CategoryAll {
		t.Errorf("unknown.Next() = %q, want all", got)
	}
}

func TestCategoryLabel(t *testing.T) {
	if got := CategoryThemes.Label(); got != "Themes" {
		t.Errorf("Label() = %q, want Themes", got)
	}
	if got := Category("").Label(); got != "" {
		t.Errorf("empty Label() = %q, want empty", got)
	}
}

func TestItemDerivedFields(t *testing.T) {
	it := Item{Title: "Bar", Repo: "/owner/bar/", Theme: true, AddedAt: 1700000000000}

	if got := it.RepoURL(); got != "https://github.com/owner/bar" {
		t.Errorf("RepoURL() = %q", got)
	}
	if it.Glyph() != "🎨" {
		t.Errorf("theme glyph = %q", it.Glyph())
	}
	added, ok := it.Added()
	if !ok || !added.Equal(time.UnixMilli(1700000000000)) {
		t.Errorf("Added() = %v, %v", added, ok)
	}

	plain := Item{Title: "Foo"}
	if plain.Glyph() != "🧩" {
		t.Errorf("plugin glyph = %q", plain.Glyph())
	}
	if _, ok := plain.Added(); ok {
		t.Error("Added() should report false without addedAt")
	}
	if plain.RepoURL() != "" {
		t.Errorf("empty repo should give empty URL, got %q", plain.RepoURL())
	}
}

func TestDocumentDecodesRegistryShape(t *testing.T) {
	body := `{"packages":[
		{"title":"Foo","name":"foo","author":"a","description":"d","repo":"a/foo","addedAt":100},
		{"title":"Bar","author":"b","repo":"b/bar","theme":true,"icon":"icon.png"}
	]}`

	var doc Document
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(doc.Packages) != 2 {
		t.Fatalf("expected 2 packages, got %d", len(doc.Packages))
	}
	if doc.Packages[0].AddedAt != 100 || doc.Packages[0].Theme {
		t.Errorf("first package decoded wrong: %+v", doc.Packages[0])
	}
	if !doc.Packages[1].Theme || doc.Packages[1].HasAddedAt() {
		t.Errorf("second package decoded wrong: %+v", doc.Packages[1])
	}
}
