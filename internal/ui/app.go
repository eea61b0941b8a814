package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/abelbrown/marketplace/internal/catalog"
	"github.com/abelbrown/marketplace/internal/events"
	"github.com/abelbrown/marketplace/internal/filter"
	"github.com/abelbrown/marketplace/internal/logging"
	"github.com/abelbrown/marketplace/internal/state"
)

// Heading is the title line.
const Heading = "Logseq plugins & themes"

// MarketplaceURL is the registry's home page, linked from the heading.
const MarketplaceURL = "https://github.com/logseq/marketplace"

// focus is the control receiving keystrokes.
type focus int

const (
	focusTable focus = iota
	focusSearch
	focusStart
	focusEnd
)

// AppConfig holds the commands and collaborators the App needs.
// The App never touches the cache or the network directly.
type AppConfig struct {
	// Query looks key up in the request cache. The Cmd finishes a load the
	// lookup started and is nil when no load was needed.
	Query func(key string) (Snapshot, tea.Cmd)
	// Refetch forces a new load for key.
	Refetch func(key string) (Snapshot, tea.Cmd)
	// OpenURL opens a link outside the terminal.
	OpenURL func(url string) tea.Cmd

	Matcher filter.Matcher
	State   state.State
	Source  string

	Recorder *events.Recorder
	Ring     *events.Ring

	// Now replaces time.Now.
	Now func() time.Time
}

// App is the root Bubble Tea model.
// App does not hold the cache; snapshots arrive via Query, Refetch and
// CatalogLoaded messages.
type App struct {
	cfg AppConfig
	ctx context.Context

	st      state.State
	snap    Snapshot
	results []catalog.Item

	table      table.Model
	search     textinput.Model
	startInput textinput.Model
	endInput   textinput.Model
	spinner    spinner.Model
	help       help.Model
	styles     styles
	focus      focus

	pending   tea.Cmd
	dateHint  string
	status    string
	showDebug bool

	width  int
	height int
	ready  bool
}

// NewAppWithConfig creates the App and looks up the initial cache key.
func NewAppWithConfig(cfg AppConfig) App {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Matcher == nil {
		cfg.Matcher = filter.NewFuzzyMatcher()
	}
	st := cfg.State
	if st.Category == "" {
		st.Category = catalog.CategoryAll
	}

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "Search title ..."
	search.CharLimit = 128
	search.SetValue(st.Query)

	startInput := newDateInput("From ")
	endInput := newDateInput("To ")
	if st.DateRange.Start != nil {
		startInput.SetValue(st.DateRange.Start.Format(InputDateLayout))
	}
	if st.DateRange.End != nil {
		endInput.SetValue(st.DateRange.End.Format(InputDateLayout))
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	a := App{
		cfg:        cfg,
		ctx:        context.Background(),
		st:         st,
		search:     search,
		startInput: startInput,
		endInput:   endInput,
		spinner:    sp,
		help:       help.New(),
		table: table.New(
			table.WithColumns(columns(80)),
			table.WithHeight(10),
		),
	}
	a.applyStyles()
	a.pending = tea.Batch(a.query(), a.setFocus(focusSearch))
	a.recompute()
	return a
}

func newDateInput(prompt string) textinput.Model {
	ti := textinput.New()
	ti.Prompt = prompt
	ti.Placeholder = "YYYY-MM-DD"
	ti.CharLimit = len(DateLayout)
	ti.Width = len(DateLayout)
	return ti
}

// Init starts the spinner and any load begun by the initial lookup.
func (a App) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, a.pending)
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		a.cfg.Recorder.Emit(events.Event{Level: events.LevelDebug, Kind: events.KindKeyPress, Comp: "ui", Msg: msg.String()})
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		switch a.focus {
		case focusSearch:
			return a.updateSearch(msg)
		case focusStart, focusEnd:
			return a.updateDates(msg)
		default:
			return a.handleKeyMsg(msg)
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.layout()
		return a, nil

	case CatalogLoaded:
		return a.handleLoaded(msg)

	case RepoOpened:
		if msg.Err != nil {
			a.status = "open failed: " + msg.Err.Error()
			logging.Warn("open repo failed", "url", msg.URL, "err", msg.Err)
		} else {
			a.status = "opened " + msg.URL
		}
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	return a, nil
}

func (a App) handleLoaded(msg CatalogLoaded) (tea.Model, tea.Cmd) {
	snap := msg.Snapshot
	if snap.Key != a.st.CacheKey() || snap.Superseded {
		logging.Debug("discarding stale catalog result", "key", snap.Key, "gen", snap.Generation, "superseded", snap.Superseded)
		return a, nil
	}
	a.snap = snap
	if snap.Err != nil {
		logging.Error("catalog load failed", "key", snap.Key, "err", snap.Err)
	}
	a.recompute()
	return a, nil
}

// handleKeyMsg processes keys while the table has focus.
func (a App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, keys.Category):
		a.dispatch(state.SetCategory(a.st.Category.Next()))
		return a, nil

	case key.Matches(msg, keys.Dates):
		cmd := a.setFocus(focusStart)
		return a, cmd

	case key.Matches(msg, keys.Reset):
		a.startInput.SetValue("")
		a.endInput.SetValue("")
		a.dateHint = ""
		a.dispatch(state.ResetDateRange())
		return a, nil

	case key.Matches(msg, keys.Refresh):
		cmd := a.refresh()
		return a, cmd

	case key.Matches(msg, keys.Search):
		cmd := a.setFocus(focusSearch)
		return a, cmd

	case key.Matches(msg, keys.Theme):
		a.dispatch(state.SetDarkMode(!a.st.DarkMode))
		a.applyStyles()
		return a, nil

	case key.Matches(msg, keys.Open):
		cmd := a.openSelected()
		return a, cmd

	case key.Matches(msg, keys.Home):
		if a.cfg.OpenURL == nil {
			return a, nil
		}
		return a, a.cfg.OpenURL(MarketplaceURL)

	case key.Matches(msg, keys.Debug):
		a.showDebug = !a.showDebug
		return a, nil
	}

	var cmd tea.Cmd
	a.table, cmd = a.table.Update(msg)
	return a, cmd
}

// updateSearch feeds keys to the search input. Leaving the input keeps
// the query.
func (a App) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter", "tab", "down":
		cmd := a.setFocus(focusTable)
		return a, cmd
	}

	var cmd tea.Cmd
	a.search, cmd = a.search.Update(msg)
	if q := a.search.Value(); q != a.st.Query {
		a.dispatch(state.SetQuery(q))
	}
	return a, cmd
}

// updateDates feeds keys to the date inputs. Enter applies both bounds,
// esc abandons the edit.
func (a App) updateDates(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		a.restoreDateInputs()
		a.dateHint = ""
		cmd := a.setFocus(focusTable)
		return a, cmd

	case key.Matches(msg, keys.Next):
		if a.focus == focusStart {
			cmd := a.setFocus(focusEnd)
			return a, cmd
		}
		cmd := a.setFocus(focusStart)
		return a, cmd

	case msg.String() == "enter":
		if err := a.applyDates(); err != nil {
			a.dateHint = err.Error()
			return a, nil
		}
		a.dateHint = ""
		cmd := a.setFocus(focusTable)
		return a, cmd
	}

	var cmd tea.Cmd
	if a.focus == focusStart {
		a.startInput, cmd = a.startInput.Update(msg)
	} else {
		a.endInput, cmd = a.endInput.Update(msg)
	}
	return a, cmd
}

// applyDates parses both inputs into a date range. A single bound is
// stored but does not filter.
func (a *App) applyDates() error {
	start, err := parseBound(a.startInput.Value(), false)
	if err != nil {
		return fmt.Errorf("from: %w", err)
	}
	end, err := parseBound(a.endInput.Value(), true)
	if err != nil {
		return fmt.Errorf("to: %w", err)
	}
	if end != nil && end.After(EndOfDay(a.cfg.Now())) {
		return errors.New("to: cannot be after today")
	}
	if start != nil && end != nil && start.After(*end) {
		return errors.New("from must not be after to")
	}
	a.dispatch(state.SetDateRange(start, end))
	return nil
}

func parseBound(s string, end bool) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := ParseDay(s)
	if err != nil {
		return nil, err
	}
	if end {
		t = EndOfDay(t)
	}
	return &t, nil
}

func (a *App) restoreDateInputs() {
	a.startInput.SetValue("")
	a.endInput.SetValue("")
	if a.st.DateRange.Start != nil {
		a.startInput.SetValue(a.st.DateRange.Start.Format(InputDateLayout))
	}
	if a.st.DateRange.End != nil {
		a.endInput.SetValue(a.st.DateRange.End.Format(InputDateLayout))
	}
}

// dispatch reduces u into the state and re-runs the pipeline.
func (a *App) dispatch(u state.Update) {
	a.st = state.Reduce(a.st, u)
	a.recompute()
}

// refresh bumps the cache token and forces a load under the new key.
func (a *App) refresh() tea.Cmd {
	a.st = state.Reduce(a.st, state.BumpCacheToken(a.cfg.Now()))
	var cmd tea.Cmd
	if a.cfg.Refetch != nil {
		a.snap, cmd = a.cfg.Refetch(a.st.CacheKey())
	}
	a.recompute()
	a.cfg.Recorder.Emit(events.Event{
		Level: events.LevelInfo,
		Kind:  events.KindRefresh,
		Comp:  "ui",
		Key:   a.st.CacheKey(),
		Gen:   a.snap.Generation,
	})
	logging.Info("refresh", "key", a.st.CacheKey())
	return cmd
}

// query looks up the current key.
func (a *App) query() tea.Cmd {
	if a.cfg.Query == nil {
		return nil
	}
	var cmd tea.Cmd
	a.snap, cmd = a.cfg.Query(a.st.CacheKey())
	return cmd
}

// recompute runs the pipeline over the current snapshot from scratch.
func (a *App) recompute() {
	start := time.Now()
	a.results = filter.ApplyContext(a.ctx, a.snap.Data, a.st.Params(), a.cfg.Matcher)
	a.table.SetRows(itemRows(a.results, a.table.Columns()))
	if a.table.Cursor() >= len(a.results) {
		a.table.SetCursor(max(len(a.results)-1, 0))
	}
	a.cfg.Recorder.Emit(events.Event{
		Level:    events.LevelDebug,
		Kind:     events.KindPipelineRun,
		Comp:     "filter",
		Dur:      time.Since(start),
		Count:    len(a.results),
		Query:    a.st.Query,
		Category: string(a.st.Category),
	})
}

func (a *App) openSelected() tea.Cmd {
	it, ok := a.Selected()
	if !ok {
		return nil
	}
	url := it.RepoURL()
	if url == "" {
		a.status = it.Title + " has no repository"
		a.cfg.Recorder.Warn(events.KindOpenRepo, "ui", a.status)
		return nil
	}
	a.cfg.Recorder.Info(events.KindOpenRepo, "ui", url)
	if a.cfg.OpenURL == nil {
		return nil
	}
	return a.cfg.OpenURL(url)
}

// setFocus moves keyboard focus, blurring every other control.
func (a *App) setFocus(f focus) tea.Cmd {
	a.focus = f
	a.search.Blur()
	a.startInput.Blur()
	a.endInput.Blur()
	a.table.Blur()
	switch f {
	case focusSearch:
		return a.search.Focus()
	case focusStart:
		return a.startInput.Focus()
	case focusEnd:
		return a.endInput.Focus()
	default:
		a.table.Focus()
		return nil
	}
}

func (a *App) applyStyles() {
	a.styles = newStyles(a.st.DarkMode)
	a.table.SetStyles(a.styles.Table)
	a.spinner.Style = a.styles.Spinner
}

// chromeHeight is the number of lines around the table: heading,
// controls, search, hint, status and help.
const chromeHeight = 8

func (a *App) layout() {
	a.table.SetColumns(columns(a.width))
	a.table.SetWidth(a.width)
	a.table.SetHeight(max(a.height-chromeHeight, 3))
	a.help.Width = a.width
	a.table.SetRows(itemRows(a.results, a.table.Columns()))
}

// View renders the UI.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}
	if a.showDebug {
		return debugOverlay(a.styles, a.cfg.Ring, a.width, a.height-1, a.cfg.Now()) + "\n" + a.debugStatusBar()
	}

	sections := []string{
		a.renderHeading(),
		a.renderControls(),
		a.search.View(),
		a.styles.Hint.Render(a.dateHint),
		a.renderBody(),
		a.renderStatus(),
		a.help.View(keys),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (a App) renderHeading() string {
	h := a.styles.Heading.Render(Heading) + a.styles.HeadingLink.Render("Marketplace")
	if a.cfg.Source != "" {
		h += a.styles.StatusText.Render("  " + a.cfg.Source)
	}
	return h
}

func (a App) renderControls() string {
	cat := a.styles.Control.Render(a.styles.ControlLabel.Render("Category ") + a.st.Category.Label())
	dates := a.styles.Control.Render(a.startInput.View() + "  " + a.endInput.View())
	total := a.styles.Total.Render(fmt.Sprintf("Total %d", len(a.results)))
	return lipgloss.JoinHorizontal(lipgloss.Top, cat, dates, total)
}

// renderBody picks the error callout, the spinner or the table.
// An error wins over loading.
func (a App) renderBody() string {
	switch {
	case a.snap.Err != nil:
		title := a.styles.ErrorTitle.Render("Remote Error")
		return a.styles.ErrorBox.Width(max(a.width-4, 20)).Render(title + "\n" + a.snap.Err.Error())
	case a.snap.Loading:
		return a.spinner.View() + " Loading catalog..."
	default:
		return a.table.View()
	}
}

func (a App) renderStatus() string {
	var parts []string
	if it, ok := a.Selected(); ok {
		part := it.Title
		if t, ok := it.Added(); ok {
			part += " added " + humanize.RelTime(t, a.cfg.Now(), "ago", "from now")
		}
		parts = append(parts, part)
	}
	if r := a.st.DateRange; !r.Active() && (r.Start != nil || r.End != nil) {
		parts = append(parts, "partial date range, not filtering")
	}
	if !a.snap.FetchedAt.IsZero() {
		parts = append(parts, "fetched "+humanize.RelTime(a.snap.FetchedAt, a.cfg.Now(), "ago", "from now"))
	}
	if a.status != "" {
		parts = append(parts, a.status)
	}
	line := strings.Join(parts, " · ")
	if a.width > 2 {
		line = runewidth.Truncate(line, a.width-2, "…")
	}
	return a.styles.StatusBar.Width(a.width).Render(line)
}

func (a App) debugStatusBar() string {
	k := a.styles.StatusKey.Render("D") + a.styles.StatusText.Render(":close")
	return a.styles.StatusBar.Width(a.width).Render("  [DEBUG]  " + k)
}

// Selected returns the highlighted result.
func (a App) Selected() (catalog.Item, bool) {
	i := a.table.Cursor()
	if i < 0 || i >= len(a.results) {
		return catalog.Item{}, false
	}
	return a.results[i], true
}

// State returns the current state (for testing).
func (a App) State() state.State {
	return a.st
}

// Results returns the pipeline output (for testing).
func (a App) Results() []catalog.Item {
	return a.results
}
