package e2e

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"time"

	"github.com/abelbrown/marketplace/internal/catalog"
)

// fixtureDocument is a small registry with one theme and two plugins, all
// dated so the default sort order is deterministic.
func fixtureDocument() catalog.Document {
	day := func(d int) int64 {
		return time.Date(2024, time.March, d, 12, 0, 0, 0, time.UTC).UnixMilli()
	}
	return catalog.Document{Packages: []catalog.Item{
		{ID: "foo", Title: "Fixture Foo", Name: "foo", Author: "alice", Description: "First fixture plugin.", Repo: "alice/foo", AddedAt: day(1)},
		{ID: "bar", Title: "Fixture Bar", Name: "bar", Author: "bob", Description: "A fixture theme.", Repo: "bob/bar", Theme: true, AddedAt: day(3)},
		{ID: "baz", Title: "Fixture Baz", Name: "baz", Author: "carol", Description: "Second fixture plugin.", Repo: "carol/baz", AddedAt: day(2)},
	}}
}

// registryServer serves the fixture document and counts requests.
type registryServer struct {
	*httptest.Server
	hits atomic.Int64
}

func newRegistryServer() *registryServer {
	rs := &registryServer{}
	body, _ := json.Marshal(fixtureDocument())
	rs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rs.hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	return rs
}
