package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/yiblet/sieve/internal/catalog"
	"github.com/yiblet/sieve/internal/clipboard/mockboard"
	"github.com/yiblet/sieve/internal/ghost"
)

func cardRecords() []catalog.Record {
	return []catalog.Record{
		{"id": "1", "title": "Red Lamp", "color": "red", "price": 10},
		{"id": "2", "title": "Blue Chair", "color": "blue", "price": 45},
		{"id": "3", "title": "Red Chair", "color": "red", "price": 30},
		{"id": "4", "title": "Green Desk", "color": "green", "price": 120},
		{"id": "5", "title": "Crème Sofa", "color": "beige", "price": 300},
	}
}

type testApp struct {
	*AppModel
	store    *catalog.Store
	registry *ghost.Registry
	board    *mockboard.MockClipboard
}

func newTestApp(t *testing.T, mode catalog.Mode, debounce time.Duration) *testApp {
	t.Helper()
	store := catalog.New(catalog.Options{Pagination: catalog.Pagination{
		CurrentPage:  1,
		ItemsPerPage: 2,
		Enabled:      true,
		Mode:         mode,
	}})
	registry := ghost.NewRegistry(store)
	if _, err := registry.RegisterAll(cardRecords()); err != nil {
		t.Fatalf("RegisterAll() error = %v", err)
	}
	board := mockboard.New()

	app := New(store, Options{
		Clipboard: board,
		Registry:  registry,
		Debounce:  debounce,
		Title:     "cards.json",
	})
	t.Cleanup(func() {
		app.Close()
		store.Close()
	})
	return &testApp{AppModel: app, store: store, registry: registry, board: board}
}

func keyMsg(key string) tea.KeyMsg {
	switch key {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
}

// press sends each key and then delivers any store update, the way the
// program loop would.
func (a *testApp) press(keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = a.Update(keyMsg(k))
		a.settle()
	}
	return cmd
}

func (a *testApp) settle() {
	select {
	case snap := <-a.binding.slot:
		a.Update(SnapshotMsg{Snapshot: snap})
	default:
	}
}

func visibleTitles(snap catalog.Snapshot) []string {
	var out []string
	for _, it := range snap.Visible() {
		out = append(out, CardTitle(it))
	}
	return out
}

func TestNew_StartsFromStoreState(t *testing.T) {
	app := newTestApp(t, catalog.ModePagination, 0)

	if !app.Snapshot.Loaded || len(app.Snapshot.Items) != 5 {
		t.Fatalf("expected loaded snapshot with 5 items, got %d", len(app.Snapshot.Items))
	}
	if app.ActivePane != FilterPane || app.CurrentMode != NormalMode {
		t.Errorf("unexpected initial pane %v mode %v", app.ActivePane, app.CurrentMode)
	}
	if app.CardPane.Count != 2 {
		t.Errorf("expected 2 visible cards, got %d", app.CardPane.Count)
	}
	if len(app.FilterPane.Rows) != 5 {
		t.Errorf("expected 4 color rows and 1 price row, got %d", len(app.FilterPane.Rows))
	}
}

func TestAppModel_ReceivesExternalChanges(t *testing.T) {
	app := newTestApp(t, catalog.ModePagination, 0)

	app.store.SetSearch("chair")
	msg := app.binding.wait()()
	snapMsg, ok := msg.(SnapshotMsg)
	if !ok {
		t.Fatalf("expected SnapshotMsg, got %T", msg)
	}
	_, cmd := app.Update(snapMsg)
	if cmd == nil {
		t.Error("expected the app to keep listening after a snapshot")
	}
	if app.Snapshot.Search != "chair" || app.Search.Input.Value() != "chair" {
		t.Errorf("search not synced: snapshot %q input %q", app.Snapshot.Search, app.Search.Input.Value())
	}

	app.Close()
	app.store.SetSearch("lamp")
	if msg := app.binding.wait()(); msg != nil {
		t.Errorf("expected no message after Close, got %T", msg)
	}
}

func TestAppModel_WindowResize(t *testing.T) {
	app := newTestApp(t, catalog.ModePagination, 0)

	app.Update(tea.WindowSizeMsg{Width: 140, Height: 30})

	if app.FilterWidth != 35 || app.CardWidth != 105 {
		t.Errorf("unexpected widths %d/%d", app.FilterWidth, app.CardWidth)
	}
	if app.CardPane.Height != 28 || app.FilterPane.Height != 28 {
		t.Errorf("unexpected pane heights %d/%d", app.FilterPane.Height, app.CardPane.Height)
	}
}

func TestAppModel_TabSwitching(t *testing.T) {
	app := newTestApp(t, catalog.ModePagination, 0)

	app.press("tab")
	if app.ActivePane != CardPane {
		t.Errorf("expected CardPane after tab, got %v", app.ActivePane)
	}
	app.press("tab")
	if app.ActivePane != FilterPane {
		t.Errorf("expected FilterPane after second tab, got %v", app.ActivePane)
	}
	app.press("l")
	if app.ActivePane != CardPane {
		t.Errorf("expected l to focus the card pane")
	}
	app.press("h")
	if app.ActivePane != FilterPane {
		t.Errorf("expected h to focus the filter pane")
	}
}

func TestAppModel_QuitKeys(t *testing.T) {
	for _, key := range []string{"q", "ctrl+c"} {
		t.Run(key, func(t *testing.T) {
			app := newTestApp(t, catalog.ModePagination, 0)
			if cmd := app.press(key); cmd == nil {
				t.Error("expected quit command but got nil")
			}
		})
	}
}

func TestFilterPane_ToggleOption(t *testing.T) {
	app := newTestApp(t, catalog.ModePagination, 0)

	row, _ := app.FilterPane.Selected()
	if row.Option != "red" {
		t.Fatalf("expected the most common option first, got %q", row.Option)
	}

	app.press("enter")
	v, ok := app.Snapshot.Filter("color")
	if !ok || len(v.Options) != 1 || v.Options[0] != "red" {
		t.Fatalf("expected color=red, got %+v", v)
	}
	if app.Snapshot.Pagination.TotalItems != 2 {
		t.Errorf("expected 2 red cards, got %d", app.Snapshot.Pagination.TotalItems)
	}

	app.press("j", " ")
	v, _ = app.Snapshot.Filter("color")
	if len(v.Options) != 2 {
		t.Errorf("expected a second option, got %v", v.Options)
	}

	app.press("k", "enter", "j", "enter")
	if _, ok := app.Snapshot.Filter("color"); ok {
		t.Errorf("expected deselecting every option to remove the filter")
	}
}

func TestFilterPane_ClearFacet(t *testing.T) {
	app := newTestApp(t, catalog.ModePagination, 0)

	app.press("enter", "j", "enter")
	app.press("d")
	if len(app.Snapshot.Filters) != 0 {
		t.Errorf("expected d to clear the facet, got %v", app.Snapshot.Filters)
	}
}

func TestFilterPane_RangePrompt(t *testing.T) {
	app := newTestApp(t, catalog.ModePagination, 0)

	app.press("G", "enter")
	if app.CurrentMode != RangeMode {
		t.Fatalf("expected RangeMode, got %v", app.CurrentMode)
	}
	if got := app.RangeInput.Value(); got != "10:300" {
		t.Errorf("expected the prompt to start at the data bounds, got %q", got)
	}

	app.RangeInput.SetValue("20:100")
	app.press("enter")
	if app.CurrentMode != NormalMode {
		t.Errorf("expected NormalMode after enter, got %v", app.CurrentMode)
	}
	v, ok := app.Snapshot.Filter(catalog.RangeKey("price"))
	if !ok || v.Min != 20 || v.Max != 100 {
		t.Fatalf("expected price range 20-100, got %+v", v)
	}
	if got := visibleTitles(app.Snapshot); len(got) != 2 || got[0] != "Blue Chair" || got[1] != "Red Chair" {
		t.Errorf("unexpected cards in range: %v", got)
	}

	app.press("enter")
	if got := app.RangeInput.Value(); got != "20:100" {
		t.Errorf("expected the prompt to start at the active range, got %q", got)
	}
	app.RangeInput.SetValue("cheap")
	app.press("enter")
	if !strings.HasPrefix(app.FlashMessage, "Invalid range") {
		t.Errorf("expected an invalid range flash, got %q", app.FlashMessage)
	}
	if v, _ := app.Snapshot.Filter(catalog.RangeKey("price")); v.Min != 20 {
		t.Errorf("invalid input should leave the filter alone")
	}
}

func TestSearch_DebounceCommitsLatestOnly(t *testing.T) {
	app := newTestApp(t, catalog.ModePagination, 300*time.Millisecond)

	app.press("/")
	if app.CurrentMode != SearchMode || !app.Search.Focused {
		t.Fatalf("expected search focus, got mode %v", app.CurrentMode)
	}

	app.press("c")
	stale := app.Search.seq
	if cmd := app.press("h"); cmd == nil {
		t.Error("expected a debounce timer command")
	}
	if app.store.Snapshot().Search != "" {
		t.Fatal("search applied before the debounce elapsed")
	}

	app.Update(searchSettledMsg{seq: stale, query: "c"})
	app.settle()
	if app.Snapshot.Search != "" {
		t.Errorf("stale timer applied %q", app.Snapshot.Search)
	}

	app.Update(searchSettledMsg{seq: app.Search.seq, query: "ch"})
	app.settle()
	if app.Snapshot.Search != "ch" {
		t.Errorf("expected search %q, got %q", "ch", app.Snapshot.Search)
	}
	if app.CurrentMode != SearchMode {
		t.Errorf("settling should not leave search mode")
	}
}

func TestSearch_EscapeCancelsPending(t *testing.T) {
	app := newTestApp(t, catalog.ModePagination, 300*time.Millisecond)

	app.press("/", "l", "a", "m", "p")
	pending := app.Search.seq
	app.press("esc")

	if app.CurrentMode != NormalMode || app.Search.Focused {
		t.Fatalf("expected escape to leave search mode")
	}
	app.Update(searchSettledMsg{seq: pending, query: "lamp"})
	app.settle()
	if app.Snapshot.Search != "" {
		t.Errorf("expected the pending search to be dropped, got %q", app.Snapshot.Search)
	}
	if app.Search.Input.Value() != "" {
		t.Errorf("expected the input to show the committed query, got %q", app.Search.Input.Value())
	}
}

func TestSearch_EnterAppliesImmediately(t *testing.T) {
	app := newTestApp(t, catalog.ModePagination, time.Hour)

	app.press("/", "s", "o", "f", "a", "enter")
	if app.Snapshot.Search != "sofa" {
		t.Fatalf("expected search sofa, got %q", app.Snapshot.Search)
	}
	if got := visibleTitles(app.Snapshot); len(got) != 1 || got[0] != "Crème Sofa" {
		t.Errorf("unexpected results %v", got)
	}

	app.press("c")
	if app.Snapshot.Search != "" {
		t.Errorf("expected c to clear the search, got %q", app.Snapshot.Search)
	}
}

func TestSearch_ZeroDebounceAppliesPerKey(t *testing.T) {
	app := newTestApp(t, catalog.ModePagination, 0)

	app.press("/", "d", "e")
	if app.Snapshot.Search != "de" {
		t.Errorf("expected search to follow typing, got %q", app.Snapshot.Search)
	}
}

func TestPaging(t *testing.T) {
	app := newTestApp(t, catalog.ModePagination, 0)

	app.press("n")
	if app.Snapshot.Pagination.CurrentPage != 2 {
		t.Fatalf("expected page 2, got %d", app.Snapshot.Pagination.CurrentPage)
	}
	if got := visibleTitles(app.Snapshot); got[0] != "Red Chair" {
		t.Errorf("unexpected page 2 %v", got)
	}

	app.press("n", "n")
	if app.Snapshot.Pagination.CurrentPage != 3 {
		t.Errorf("expected to stop at the last page, got %d", app.Snapshot.Pagination.CurrentPage)
	}

	app.press("p", "p", "p")
	if app.Snapshot.Pagination.CurrentPage != 1 {
		t.Errorf("expected to stop at page 1, got %d", app.Snapshot.Pagination.CurrentPage)
	}
}

func TestLoadMore(t *testing.T) {
	app := newTestApp(t, catalog.ModeLoadMore, 0)

	app.press("m")
	if n := len(app.Snapshot.Visible()); n != 4 {
		t.Fatalf("expected 4 visible cards after load more, got %d", n)
	}
	app.press("m", "m")
	if n := len(app.Snapshot.Visible()); n != 5 || app.Snapshot.HasMore() {
		t.Errorf("expected every card once exhausted, got %d", n)
	}
}

func TestAutoScroll_LoadsAtEnd(t *testing.T) {
	app := newTestApp(t, catalog.ModeAutoScroll, 0)

	app.press("tab", "j")
	if n := len(app.Snapshot.Visible()); n != 4 {
		t.Fatalf("expected reaching the last card to load more, got %d", n)
	}
	if app.CardPane.Cursor != 1 || app.CardPane.Count != 4 {
		t.Errorf("unexpected cursor %d of %d", app.CardPane.Cursor, app.CardPane.Count)
	}
}

func TestSortCycle(t *testing.T) {
	app := newTestApp(t, catalog.ModePagination, 0)

	app.press("s")
	if s := app.Snapshot.Sort; s.Field != "title" || s.Direction != catalog.Asc {
		t.Fatalf("expected title asc, got %+v", s)
	}
	if got := visibleTitles(app.Snapshot); got[0] != "Blue Chair" {
		t.Errorf("unexpected first card %v", got)
	}

	app.press("S")
	if app.Snapshot.Sort.Direction != catalog.Desc {
		t.Errorf("expected S to flip direction")
	}

	app.press("s", "s")
	if s := app.Snapshot.Sort; s.Field != "price" || s.Type != catalog.SortNumber {
		t.Errorf("expected numeric price sort, got %+v", s)
	}

	app.press("s")
	if !app.Snapshot.Sort.IsNatural() {
		t.Errorf("expected the cycle to end in natural order, got %+v", app.Snapshot.Sort)
	}
	app.press("S")
	if app.FlashMessage == "" {
		t.Error("expected a hint when flipping natural order")
	}
}

func TestReset_AsksFirst(t *testing.T) {
	app := newTestApp(t, catalog.ModePagination, 0)

	app.press("r")
	if app.CurrentMode != NormalMode || app.FlashMessage != "Nothing to reset" {
		t.Fatalf("expected nothing to reset, got mode %v flash %q", app.CurrentMode, app.FlashMessage)
	}

	app.press("enter")
	app.store.SetSearch("chair")
	app.settle()

	app.press("r")
	if app.CurrentMode != ConfirmMode || !app.Modal.Active {
		t.Fatal("expected a confirmation dialog")
	}
	app.press("n")
	if app.Modal.Active || !app.Snapshot.HasCriteria() {
		t.Fatal("expected cancel to keep the criteria")
	}

	app.press("r", "y")
	if app.Snapshot.HasCriteria() {
		t.Errorf("expected criteria cleared, got %v %q", app.Snapshot.Filters, app.Snapshot.Search)
	}
	if app.CurrentMode != NormalMode {
		t.Errorf("expected NormalMode after confirming")
	}
}

func TestRemoveCard(t *testing.T) {
	app := newTestApp(t, catalog.ModePagination, 0)

	app.press("tab", "j", "x")
	if app.CurrentMode != ConfirmMode {
		t.Fatalf("expected a confirmation dialog, got %v", app.CurrentMode)
	}
	if !strings.Contains(app.Modal.Content, "Blue Chair") {
		t.Errorf("expected the dialog to name the card, got %q", app.Modal.Content)
	}

	app.press("y")
	if app.registry.Len() != 4 || len(app.Snapshot.Items) != 4 {
		t.Fatalf("expected 4 cards left, got %d", len(app.Snapshot.Items))
	}
	for _, it := range app.Snapshot.Items {
		if it.ID() == "2" {
			t.Error("removed card is still present")
		}
	}
}

func TestCopyVisible(t *testing.T) {
	app := newTestApp(t, catalog.ModePagination, 0)

	app.press("y")
	data := string(app.board.GetData())
	if !strings.HasPrefix(data, "id\ttitle\t") {
		t.Errorf("expected a header row, got %q", data)
	}
	if !strings.Contains(data, "1\tRed Lamp") || strings.Contains(data, "Red Chair") {
		t.Errorf("expected only the visible cards, got %q", data)
	}
	if app.FlashMessage != "Copied 2 cards to clipboard" {
		t.Errorf("unexpected flash %q", app.FlashMessage)
	}
}

func TestHelpMode(t *testing.T) {
	app := newTestApp(t, catalog.ModePagination, 0)

	app.press("z")
	if app.CurrentMode != HelpMode {
		t.Fatal("expected HelpMode")
	}
	if !strings.Contains(app.View(), "Cycle the sort field") {
		t.Error("expected the help text")
	}
	app.press("z")
	if app.CurrentMode != NormalMode {
		t.Error("expected z to close help")
	}
}

func TestAppView(t *testing.T) {
	app := newTestApp(t, catalog.ModePagination, 0)

	view := app.View()
	for _, want := range []string{"cards.json", "Red Lamp", "Blue Chair", "Showing 1-2 of 5 cards", "page 1/3", "color", "[ ] red (2)"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if strings.Contains(view, "Green Desk") {
		t.Error("view shows a card from another page")
	}

	app.store.SetSearch("nothing matches this")
	app.settle()
	if view := app.View(); !strings.Contains(view, "No cards match the current filters") {
		t.Error("expected the empty state")
	}
}

func TestAppView_Loading(t *testing.T) {
	store := catalog.New(catalog.Options{})
	defer store.Close()
	app := New(store, Options{})
	defer app.Close()

	if !strings.Contains(app.View(), "Loading cards...") {
		t.Error("expected a loading state before items arrive")
	}
	if len(app.FilterPane.Rows) != 0 {
		t.Error("expected no facets before items arrive")
	}
}
