package ui

import (
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/marketplace/internal/catalog"
	"github.com/abelbrown/marketplace/internal/events"
	"github.com/abelbrown/marketplace/internal/state"
)

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.Local)

func testItems() []catalog.Item {
	return []catalog.Item{
		{Title: "Foo", Name: "foo", Author: "ann", Repo: "ann/foo", AddedAt: 100},
		{Title: "Bar", Name: "bar", Author: "bob", Repo: "bob/bar", Theme: true, AddedAt: 300},
		{Title: "Baz", Name: "baz", Author: "cat", Repo: "cat/baz", AddedAt: 200},
	}
}

// mockCatalog records cache calls and answers with canned snapshots.
type mockCatalog struct {
	queried   []string
	refetched []string
	opened    []string
}

func (m *mockCatalog) query(key string) (Snapshot, tea.Cmd) {
	m.queried = append(m.queried, key)
	return Snapshot{Key: key, Loading: true, Generation: 1}, func() tea.Msg {
		return CatalogLoaded{Snapshot: loaded(key, 1)}
	}
}

func (m *mockCatalog) refetch(key string) (Snapshot, tea.Cmd) {
	m.refetched = append(m.refetched, key)
	return Snapshot{Key: key, Loading: true, Generation: 1}, func() tea.Msg {
		return CatalogLoaded{Snapshot: loaded(key, 1)}
	}
}

func (m *mockCatalog) open(url string) tea.Cmd {
	m.opened = append(m.opened, url)
	return func() tea.Msg { return RepoOpened{URL: url} }
}

func loaded(key string, gen uint64) Snapshot {
	return Snapshot{Key: key, Generation: gen, Data: testItems(), HasData: true, FetchedAt: fixedNow}
}

func newTestApp(m *mockCatalog) App {
	app := NewAppWithConfig(AppConfig{
		Query:   m.query,
		Refetch: m.refetch,
		OpenURL: m.open,
		State:   state.New(catalog.CategoryAll, "", true),
		Now:     func() time.Time { return fixedNow },
	})
	model, _ := app.Update(tea.WindowSizeMsg{Width: 140, Height: 30})
	return model.(App)
}

func press(t *testing.T, app App, keys ...tea.KeyMsg) App {
	t.Helper()
	for _, k := range keys {
		model, _ := app.Update(k)
		app = model.(App)
	}
	return app
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	escKey   = tea.KeyMsg{Type: tea.KeyEsc}
	enterKey = tea.KeyMsg{Type: tea.KeyEnter}
	tabKey   = tea.KeyMsg{Type: tea.KeyTab}
)

func deliver(t *testing.T, app App, msg tea.Msg) App {
	t.Helper()
	model, _ := app.Update(msg)
	return model.(App)
}

func resultTitles(app App) []string {
	var out []string
	for _, it := range app.Results() {
		out = append(out, it.Title)
	}
	return out
}

func assertTitles(t *testing.T, app App, want ...string) {
	t.Helper()
	got := resultTitles(app)
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("results = %v, want %v", got, want)
	}
}

func TestAppInitQueriesInitialKey(t *testing.T) {
	m := &mockCatalog{}
	app := newTestApp(m)

	if len(m.queried) != 1 || m.queried[0] != "plugins-0" {
		t.Fatalf("queried = %v, want [plugins-0]", m.queried)
	}
	if app.Init() == nil {
		t.Error("Init should return a command")
	}
	if !strings.Contains(app.View(), "Loading catalog") {
		t.Errorf("view should show the spinner while loading:\n%s", app.View())
	}
}

func TestAppNilCommands(t *testing.T) {
	app := NewAppWithConfig(AppConfig{})
	if app.State().Category != catalog.CategoryAll {
		t.Errorf("Category = %q, want all", app.State().Category)
	}
	app = deliver(t, app, tea.WindowSizeMsg{Width: 80, Height: 24})
	app = press(t, app, escKey, runes("R"), enterKey)
	if app.View() == "" {
		t.Error("view should render without commands")
	}
}

func TestAppLoadedRunsPipeline(t *testing.T) {
	app := newTestApp(&mockCatalog{})
	app = deliver(t, app, CatalogLoaded{Snapshot: loaded("plugins-0", 1)})

	assertTitles(t, app, "Bar", "Baz", "Foo")
	view := app.View()
	if !strings.Contains(view, "Total 3") {
		t.Errorf("view should show Total 3:\n%s", view)
	}
	if !strings.Contains(view, "github.com/bob/bar") {
		t.Errorf("view should show repo link text:\n%s", view)
	}
}

func TestAppErrorTakesPrecedenceOverLoading(t *testing.T) {
	app := newTestApp(&mockCatalog{})
	app = deliver(t, app, CatalogLoaded{Snapshot: Snapshot{
		Key:        "plugins-0",
		Generation: 1,
		Loading:    true,
		Err:        errors.New("connection refused"),
	}})

	view := app.View()
	if !strings.Contains(view, "Remote Error") || !strings.Contains(view, "connection refused") {
		t.Errorf("view should show the error callout:\n%s", view)
	}
	if strings.Contains(view, "Loading catalog") {
		t.Error("error should win over loading")
	}
}

func TestAppIgnoresOtherKeysAndSuperseded(t *testing.T) {
	app := newTestApp(&mockCatalog{})

	app = deliver(t, app, CatalogLoaded{Snapshot: loaded("plugins-999", 1)})
	if len(app.Results()) != 0 {
		t.Error("result for another key should be ignored")
	}

	snap := loaded("plugins-0", 1)
	snap.Superseded = true
	app = deliver(t, app, CatalogLoaded{Snapshot: snap})
	if len(app.Results()) != 0 {
		t.Error("superseded result should be ignored")
	}
}

func TestAppCategoryCycle(t *testing.T) {
	app := newTestApp(&mockCatalog{})
	app = deliver(t, app, CatalogLoaded{Snapshot: loaded("plugins-0", 1)})
	app = press(t, app, escKey)

	app = press(t, app, runes("c"))
	if app.State().Category != catalog.CategoryPlugins {
		t.Fatalf("Category = %q, want plugins", app.State().Category)
	}
	assertTitles(t, app, "Baz", "Foo")

	app = press(t, app, runes("c"))
	assertTitles(t, app, "Bar")

	app = press(t, app, runes("c"))
	if app.State().Category != catalog.CategoryAll {
		t.Errorf("Category = %q, want all", app.State().Category)
	}
	assertTitles(t, app, "Bar", "Baz", "Foo")
}

func TestAppSearchAutofocused(t *testing.T) {
	app := newTestApp(&mockCatalog{})
	app = deliver(t, app, CatalogLoaded{Snapshot: loaded("plugins-0", 1)})

	app = press(t, app, runes("b"), runes("a"))
	if app.State().Query != "ba" {
		t.Fatalf("Query = %q, want ba", app.State().Query)
	}
	assertTitles(t, app, "Bar", "Baz")

	// Typing "q" in the search box edits the query.
	app = press(t, app, runes("q"))
	if app.State().Query != "baq" {
		t.Errorf("Query = %q, want baq", app.State().Query)
	}
}

func TestAppRefreshBumpsTokenAndRefetches(t *testing.T) {
	m := &mockCatalog{}
	app := newTestApp(m)
	app = deliver(t, app, CatalogLoaded{Snapshot: loaded("plugins-0", 1)})
	app = press(t, app, escKey)

	model, cmd := app.Update(runes("R"))
	app = model.(App)

	wantKey := "plugins-" + strconv.FormatInt(fixedNow.UnixMilli(), 10)
	if app.State().CacheKey() != wantKey {
		t.Fatalf("CacheKey = %q, want %q", app.State().CacheKey(), wantKey)
	}
	if len(m.refetched) != 1 || m.refetched[0] != wantKey {
		t.Fatalf("refetched = %v, want [%s]", m.refetched, wantKey)
	}
	if cmd == nil {
		t.Fatal("refresh should return the load command")
	}

	// A late answer for the old key is dropped.
	app = deliver(t, app, CatalogLoaded{Snapshot: loaded("plugins-0", 2)})
	if !strings.Contains(app.View(), "Loading catalog") {
		t.Error("old key result should not end the new load")
	}

	app = deliver(t, app, cmd())
	assertTitles(t, app, "Bar", "Baz", "Foo")
}

func TestAppDateRange(t *testing.T) {
	app := newTestApp(&mockCatalog{})
	snap := loaded("plugins-0", 1)
	jan := time.Date(2024, 1, 10, 15, 0, 0, 0, time.Local).UnixMilli()
	snap.Data = []catalog.Item{
		{Title: "Inside", AddedAt: jan},
		{Title: "Outside", AddedAt: time.Date(2023, 5, 1, 0, 0, 0, 0, time.Local).UnixMilli()},
		{Title: "Undated"},
	}
	app = deliver(t, app, CatalogLoaded{Snapshot: snap})

	app = press(t, app, escKey, runes("d"), runes("2024-01-01"), tabKey, runes("2024-01-10"), enterKey)
	if !app.State().DateRange.Active() {
		t.Fatalf("date range should be active: %+v", app.State().DateRange)
	}
	// The end bound covers the whole day.
	assertTitles(t, app, "Inside", "Undated")

	app = press(t, app, runes("x"))
	if app.State().DateRange.Active() {
		t.Error("x should reset the date range")
	}
	assertTitles(t, app, "Inside", "Outside", "Undated")
}

func TestAppDateRangeRejectsFuture(t *testing.T) {
	app := newTestApp(&mockCatalog{})
	app = press(t, app, escKey, runes("d"), runes("2024-01-01"), tabKey, runes("2030-01-01"), enterKey)
	if app.State().DateRange.Active() {
		t.Error("end after today should be rejected")
	}
	if !strings.Contains(app.View(), "cannot be after today") {
		t.Errorf("view should show the date hint:\n%s", app.View())
	}

	app = press(t, app, escKey)
	if strings.Contains(app.View(), "cannot be after today") {
		t.Error("esc should clear the hint")
	}
}

func TestAppSingleBoundDoesNotFilter(t *testing.T) {
	app := newTestApp(&mockCatalog{})
	app = deliver(t, app, CatalogLoaded{Snapshot: loaded("plugins-0", 1)})
	app = press(t, app, escKey, runes("d"), runes("2024-01-01"), enterKey)

	if app.State().DateRange.Start == nil || app.State().DateRange.Active() {
		t.Fatalf("expected a start-only range: %+v", app.State().DateRange)
	}
	assertTitles(t, app, "Bar", "Baz", "Foo")
	if !strings.Contains(app.View(), "not filtering") {
		t.Error("status should note the partial range")
	}
}

func TestAppToggleDarkMode(t *testing.T) {
	app := newTestApp(&mockCatalog{})
	app = press(t, app, escKey, runes("t"))
	if app.State().DarkMode {
		t.Error("t should turn dark mode off")
	}
	app = press(t, app, runes("t"))
	if !app.State().DarkMode {
		t.Error("second t should turn dark mode on")
	}
}

func TestAppOpenSelectedRepo(t *testing.T) {
	m := &mockCatalog{}
	app := newTestApp(m)
	app = deliver(t, app, CatalogLoaded{Snapshot: loaded("plugins-0", 1)})
	app = press(t, app, escKey)

	model, cmd := app.Update(enterKey)
	app = model.(App)
	if len(m.opened) != 1 || m.opened[0] != "https://github.com/bob/bar" {
		t.Fatalf("opened = %v", m.opened)
	}
	app = deliver(t, app, cmd())
	if !strings.Contains(app.View(), "opened https://github.com/bob/bar") {
		t.Errorf("status should confirm the open:\n%s", app.View())
	}
}

func TestAppOpenWithoutRepoWarns(t *testing.T) {
	m := &mockCatalog{}
	rec := events.Discard()
	ring := events.NewRing(64)
	rec.Attach(ring)

	app := NewAppWithConfig(AppConfig{
		Query:    m.query,
		OpenURL:  m.open,
		State:    state.New(catalog.CategoryAll, "", true),
		Recorder: rec,
		Ring:     ring,
		Now:      func() time.Time { return fixedNow },
	})
	app = deliver(t, app, tea.WindowSizeMsg{Width: 140, Height: 30})
	snap := loaded("plugins-0", 1)
	snap.Data = []catalog.Item{{Title: "Orphan", Name: "orphan", AddedAt: 100}}
	app = deliver(t, app, CatalogLoaded{Snapshot: snap})
	app = press(t, app, escKey, enterKey)
	rec.Close()

	if len(m.opened) != 0 {
		t.Errorf("nothing should be opened, got %v", m.opened)
	}
	var warned bool
	for _, e := range ring.Snapshot() {
		if e.Kind == events.KindOpenRepo && e.Level == events.LevelWarn && strings.Contains(e.Msg, "Orphan") {
			warned = true
		}
	}
	if !warned {
		t.Errorf("expected a warn open_repo event, got %+v", ring.Snapshot())
	}
	if !strings.Contains(app.View(), "Orphan has no repository") {
		t.Errorf("status should explain the missing repo:\n%s", app.View())
	}
}

func TestAppOpenMarketplaceHome(t *testing.T) {
	m := &mockCatalog{}
	app := newTestApp(m)
	app = press(t, app, escKey, runes("m"))
	if len(m.opened) != 1 || m.opened[0] != MarketplaceURL {
		t.Errorf("opened = %v, want %s", m.opened, MarketplaceURL)
	}
}

func TestAppQuit(t *testing.T) {
	app := newTestApp(&mockCatalog{})

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("ctrl+c should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c should return tea.Quit")
	}

	app = press(t, app, escKey)
	_, cmd = app.Update(runes("q"))
	if cmd == nil {
		t.Fatal("q should quit from the table")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should return tea.Quit")
	}
}

func TestAppViewBeforeReady(t *testing.T) {
	app := NewAppWithConfig(AppConfig{})
	if app.View() != "Loading..." {
		t.Errorf("View before size = %q", app.View())
	}
}
