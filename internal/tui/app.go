package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/yiblet/sieve/internal/catalog"
	"github.com/yiblet/sieve/internal/clipboard"
	"github.com/yiblet/sieve/internal/ghost"
	"github.com/yiblet/sieve/internal/logging"
)

// PaneType represents which pane is currently active
type PaneType int

const (
	FilterPane PaneType = iota
	CardPane
)

// UIMode represents the current modal state of the application
type UIMode int

const (
	NormalMode UIMode = iota
	SearchMode
	RangeMode
	ConfirmMode
	HelpMode
)

type confirmAction int

const (
	confirmNone confirmAction = iota
	confirmReset
	confirmRemove
)

type flashExpiredMsg struct{}

const flashDuration = 2 * time.Second

// Options configures the browser.
type Options struct {
	// Clipboard receives copied cards. Copying is disabled when nil.
	Clipboard clipboard.Clipboard
	// Registry owns the cards; removing a card is disabled when nil.
	Registry *ghost.Registry
	// Debounce is how long typing must pause before the search applies.
	Debounce time.Duration
	Logger   *log.Logger
	// Title is shown in the header, usually the input file.
	Title string
}

// AppModel orchestrates all sub-models
type AppModel struct {
	Width       int
	Height      int
	FilterWidth int
	CardWidth   int
	ActivePane  PaneType
	CurrentMode UIMode
	Title       string

	// Sub-models
	FilterPane FilterPaneModel
	CardPane   CardPaneModel
	Search     SearchModel
	RangeInput textinput.Model
	Modal      ModalModel

	// Snapshot is the latest store state the view renders from.
	Snapshot catalog.Snapshot

	// Flash message for temporary notifications
	FlashMessage string
	FlashExpiry  time.Time

	rangeFacet Facet
	pending    confirmAction
	pendingID  string

	store     *catalog.Store
	binding   *binding
	registry  *ghost.Registry
	clipboard clipboard.Clipboard
	logger    *log.Logger
}

// New creates a browser bound to store. Call Close when done to release
// the subscription.
func New(store *catalog.Store, opts Options) *AppModel {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	rangeInput := textinput.New()
	rangeInput.Prompt = ""
	rangeInput.Placeholder = "MIN:MAX"
	rangeInput.CharLimit = 64

	a := &AppModel{
		Width:       120,
		Height:      24,
		ActivePane:  FilterPane,
		CurrentMode: NormalMode,
		Title:       opts.Title,
		FilterPane:  NewFilterPaneModel(),
		CardPane:    NewCardPaneModel(),
		Search:      NewSearchModel(opts.Debounce),
		RangeInput:  rangeInput,
		Modal:       NewModalModel(),
		store:       store,
		registry:    opts.Registry,
		clipboard:   opts.Clipboard,
		logger:      logger,
	}
	a.layout()

	a.binding = bind(store)
	select {
	case snap := <-a.binding.slot:
		a.applySnapshot(snap)
	default:
		a.applySnapshot(store.Snapshot())
	}
	return a
}

// Close stops listening to the store and cancels a pending search.
func (a *AppModel) Close() {
	a.Search.Cancel()
	a.binding.close()
}

// Init starts listening for store updates (required by tea.Model interface)
func (a *AppModel) Init() tea.Cmd {
	return a.binding.wait()
}

// Update handles app-level messages and routes to appropriate sub-models
func (a *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case SnapshotMsg:
		a.applySnapshot(m.Snapshot)
		return a, a.binding.wait()
	case tea.WindowSizeMsg:
		a.Width, a.Height = m.Width, m.Height
		a.layout()
		return a, nil
	case tea.KeyMsg:
		return a.handleKeyPress(m)
	case SearchMsg:
		commit, cmd := a.Search.Update(m)
		if commit != nil {
			a.applySearch(*commit)
		}
		return a, cmd
	case flashExpiredMsg:
		if time.Now().After(a.FlashExpiry) {
			a.FlashMessage = ""
			a.FlashExpiry = time.Time{}
		}
		return a, nil
	}

	// Cursor blink and other input internals
	var cmd tea.Cmd
	switch a.CurrentMode {
	case SearchMode:
		a.Search.Input, cmd = a.Search.Input.Update(msg)
	case RangeMode:
		a.RangeInput, cmd = a.RangeInput.Update(msg)
	}
	return a, cmd
}

func (a *AppModel) layout() {
	a.FilterWidth = min(max(a.Width/4, 24), 40)
	a.CardWidth = max(a.Width-a.FilterWidth, 20)
	paneHeight := max(a.Height-2, 5)

	a.FilterPane.Width, a.FilterPane.Height = a.FilterWidth, paneHeight
	a.CardPane.Width, a.CardPane.Height = a.CardWidth, paneHeight
}

func (a *AppModel) applySnapshot(snap catalog.Snapshot) {
	a.Snapshot = snap
	a.FilterPane.Update(SetFacetsMsg{Facets: Facets(snap)})
	a.CardPane.Update(SetCardCountMsg{Count: len(snap.Visible())})
	a.Search.Update(SyncSearchMsg{Query: snap.Search})
}

// handleKeyPress processes keyboard input based on the current mode
func (a *AppModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.CurrentMode {
	case SearchMode:
		return a.handleSearchModeKeys(msg)
	case RangeMode:
		return a.handleRangeModeKeys(msg)
	case ConfirmMode:
		return a.handleConfirmModeKeys(msg.String())
	case HelpMode:
		return a.handleHelpModeKeys(msg.String())
	default:
		return a.handleNormalModeKeys(msg.String())
	}
}

func (a *AppModel) handleSearchModeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return a.quit()
	case "esc":
		a.Search.Update(BlurSearchMsg{Query: a.Snapshot.Search})
		a.CurrentMode = NormalMode
		return a, nil
	case "enter":
		a.applySearch(a.Search.Submit())
		a.CurrentMode = NormalMode
		return a, nil
	}

	commit, cmd := a.Search.HandleKey(msg)
	if commit != nil {
		a.applySearch(*commit)
	}
	return a, cmd
}

func (a *AppModel) handleRangeModeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return a.quit()
	case "esc":
		a.RangeInput.Blur()
		a.CurrentMode = NormalMode
		return a, nil
	case "enter":
		a.RangeInput.Blur()
		a.CurrentMode = NormalMode
		lo, hi, err := ParseRangeInput(a.RangeInput.Value(), a.rangeFacet)
		if err != nil {
			return a, a.setFlashMessage(fmt.Sprintf("Invalid range: %v", err))
		}
		a.logger.Debug("range filter", "field", a.rangeFacet.Field, "min", lo, "max", hi)
		a.store.SetFilter(a.rangeFacet.Key(), catalog.Between(lo, hi))
		return a, nil
	}

	var cmd tea.Cmd
	a.RangeInput, cmd = a.RangeInput.Update(msg)
	return a, cmd
}

func (a *AppModel) handleConfirmModeKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "y", "Y", "enter":
		action, id := a.pending, a.pendingID
		a.dismissConfirm()
		switch action {
		case confirmReset:
			a.logger.Info("criteria reset")
			a.store.ResetFilters()
			return a, a.setFlashMessage("Filters and search cleared")
		case confirmRemove:
			if a.registry != nil && a.registry.Unregister(id) {
				a.logger.Info("card removed", "id", id)
				return a, a.setFlashMessage("Card removed")
			}
			return a, a.setFlashMessage("Card is no longer present")
		}
	case "n", "N", "esc", "q":
		a.dismissConfirm()
	case "ctrl+c":
		return a.quit()
	}
	return a, nil
}

func (a *AppModel) dismissConfirm() {
	a.Modal.Update(HideModalMsg{})
	a.pending = confirmNone
	a.pendingID = ""
	a.CurrentMode = NormalMode
}

func (a *AppModel) handleHelpModeKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "z", "esc", "?":
		a.CurrentMode = NormalMode
	case "q", "ctrl+c":
		return a.quit()
	}
	return a, nil
}

func (a *AppModel) handleNormalModeKeys(key string) (tea.Model, tea.Cmd) {
	snap := a.Snapshot

	switch key {
	case "q", "ctrl+c":
		return a.quit()
	case "z", "?":
		a.CurrentMode = HelpMode
		return a, nil
	case "tab":
		if a.ActivePane == FilterPane {
			a.ActivePane = CardPane
		} else {
			a.ActivePane = FilterPane
		}
		return a, nil
	case "h", "left":
		a.ActivePane = FilterPane
		return a, nil
	case "l", "right":
		a.ActivePane = CardPane
		return a, nil
	case "/":
		a.CurrentMode = SearchMode
		_, cmd := a.Search.Update(FocusSearchMsg{Query: snap.Search})
		return a, cmd
	case "c":
		a.applySearch("")
		return a, nil
	case "r":
		if !snap.HasCriteria() {
			return a, a.setFlashMessage("Nothing to reset")
		}
		a.pending = confirmReset
		a.CurrentMode = ConfirmMode
		a.Modal.Update(ShowResetConfirmation(len(snap.ActiveTags())))
		return a, nil
	case "n":
		if snap.Pagination.Mode == catalog.ModePagination && snap.HasMore() {
			a.store.SetPage(snap.Pagination.CurrentPage + 1)
		}
		return a, nil
	case "p":
		if snap.Pagination.Mode == catalog.ModePagination && snap.Pagination.CurrentPage > 1 {
			a.store.SetPage(snap.Pagination.CurrentPage - 1)
		}
		return a, nil
	case "m":
		return a, a.loadMore()
	case "s":
		a.cycleSort()
		return a, nil
	case "S":
		if snap.Sort.IsNatural() {
			return a, a.setFlashMessage("Press s to pick a sort field first")
		}
		dir := catalog.Desc
		if snap.Sort.Direction == catalog.Desc {
			dir = catalog.Asc
		}
		a.store.SetSort(snap.Sort.Field, dir, snap.Sort.Type)
		return a, nil
	case "y":
		return a, a.copyVisible()
	}

	if a.ActivePane == FilterPane {
		return a.handleFilterPaneKeys(key)
	}
	return a.handleCardPaneKeys(key)
}

func (a *AppModel) handleFilterPaneKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "j", "down":
		a.FilterPane.Update(FilterDownMsg{})
	case "k", "up":
		a.FilterPane.Update(FilterUpMsg{})
	case "g":
		a.FilterPane.Update(FilterTopMsg{})
	case "G":
		a.FilterPane.Update(FilterBottomMsg{})
	case "enter", " ":
		row, ok := a.FilterPane.Selected()
		if !ok {
			return a, nil
		}
		facet := a.FilterPane.Facets[row.Facet]
		if facet.Kind == FacetRange {
			return a, a.promptRange(facet)
		}
		current, _ := a.Snapshot.Filter(facet.Key())
		a.store.SetFilter(facet.Key(), ToggleOption(current, row.Option))
	case "backspace", "delete", "d":
		row, ok := a.FilterPane.Selected()
		if !ok {
			return a, nil
		}
		a.store.RemoveFilter(a.FilterPane.Facets[row.Facet].Key())
	}
	return a, nil
}

func (a *AppModel) handleCardPaneKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "j", "down":
		a.CardPane.Update(CardDownMsg{})
		if a.CardPane.AtEnd() && a.Snapshot.Pagination.Mode == catalog.ModeAutoScroll {
			return a, a.loadMore()
		}
	case "k", "up":
		a.CardPane.Update(CardUpMsg{})
	case "g":
		a.CardPane.Update(CardTopMsg{})
	case "G":
		a.CardPane.Update(CardBottomMsg{})
		if a.Snapshot.Pagination.Mode == catalog.ModeAutoScroll {
			return a, a.loadMore()
		}
	case "x":
		visible := a.Snapshot.Visible()
		if a.registry == nil || a.CardPane.Cursor >= len(visible) {
			return a, nil
		}
		it := visible[a.CardPane.Cursor]
		a.pending = confirmRemove
		a.pendingID = it.ID()
		a.CurrentMode = ConfirmMode
		a.Modal.Update(ShowRemoveConfirmation(CardTitle(it)))
	}
	return a, nil
}

func (a *AppModel) promptRange(facet Facet) tea.Cmd {
	lo, hi := facet.Lo, facet.Hi
	if v, ok := a.Snapshot.Filter(facet.Key()); ok && v.IsRange {
		lo, hi = v.Min, v.Max
	}
	a.rangeFacet = facet
	a.RangeInput.SetValue(formatBound(lo) + ":" + formatBound(hi))
	a.RangeInput.CursorEnd()
	a.CurrentMode = RangeMode
	return a.RangeInput.Focus()
}

// loadMore extends the visible window by one page when more cards exist.
func (a *AppModel) loadMore() tea.Cmd {
	snap := a.Snapshot
	if !snap.HasMore() {
		return nil
	}
	a.store.SetPage(snap.Pagination.CurrentPage + 1)
	return nil
}

// cycleSort moves through natural order and each sortable column.
func (a *AppModel) cycleSort() {
	snap := a.Snapshot
	fields := Columns(snap.Items)
	if len(fields) == 0 {
		return
	}

	next := 0
	if !snap.Sort.IsNatural() {
		next = len(fields)
		for i, f := range fields {
			if f == snap.Sort.Field {
				next = i + 1
				break
			}
		}
	}
	if next >= len(fields) {
		a.store.SetSort("", catalog.Asc, catalog.SortString)
		return
	}
	field := fields[next]
	a.store.SetSort(field, catalog.Asc, SortType(snap, field))
}

func (a *AppModel) applySearch(query string) {
	if query == a.Snapshot.Search {
		return
	}
	a.logger.Debug("search", "query", query)
	a.store.SetSearch(query)
}

func (a *AppModel) copyVisible() tea.Cmd {
	visible := a.Snapshot.Visible()
	if len(visible) == 0 {
		return a.setFlashMessage("No cards to copy")
	}
	if a.clipboard == nil || !a.clipboard.IsSupported() {
		return a.setFlashMessage("Clipboard not available")
	}
	if err := clipboard.WriteText(a.clipboard, FormatTSV(visible)); err != nil {
		a.logger.Error("copy failed", "error", err)
		return a.setFlashMessage(fmt.Sprintf("Copy failed: %v", err))
	}
	return a.setFlashMessage(fmt.Sprintf("Copied %d cards to clipboard", len(visible)))
}

func (a *AppModel) quit() (tea.Model, tea.Cmd) {
	a.Close()
	return a, tea.Quit
}

// setFlashMessage shows message on the status line for a short while
func (a *AppModel) setFlashMessage(message string) tea.Cmd {
	a.FlashMessage = message
	a.FlashExpiry = time.Now().Add(flashDuration)
	return tea.Tick(flashDuration, func(time.Time) tea.Msg {
		return flashExpiredMsg{}
	})
}

// View method for tea.Model compatibility
func (a *AppModel) View() string {
	return AppView(*a)
}

var titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))

// AppView renders the complete application as a pure function
func AppView(model AppModel) string {
	if model.Width == 0 {
		return "Initializing..."
	}
	if model.CurrentMode == HelpMode {
		return renderHelpView(model) + "\n" + renderStatusLine(model)
	}

	title := "sieve"
	if model.Title != "" {
		title += " · " + model.Title
	}
	title = TruncateTitle(title, max(model.Width/3, 8))
	header := titleStyle.Render(title) + "  " +
		SearchView(model.Search, max(model.Width-lipgloss.Width(title)-2, 10))

	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		FilterPaneView(model.FilterPane, model.Snapshot, model.ActivePane == FilterPane),
		CardPaneView(model.CardPane, model.Snapshot, model.ActivePane == CardPane),
	)

	view := header + "\n" + panes + "\n" + renderStatusLine(model)
	return ModalView(model.Modal, view, model.Width, model.Height)
}

var (
	flashStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// renderStatusLine renders the bottom status line
func renderStatusLine(model AppModel) string {
	if model.FlashMessage != "" && time.Now().Before(model.FlashExpiry) {
		return flashStyle.Width(model.Width).Render(model.FlashMessage)
	}

	var status string
	switch model.CurrentMode {
	case SearchMode:
		status = "Searching: Enter to apply now, Esc to cancel"
	case RangeMode:
		status = fmt.Sprintf("Range for %s: %s  (Enter to apply, Esc to cancel)",
			model.rangeFacet.Field, model.RangeInput.View())
		return lipgloss.NewStyle().Width(model.Width).Render(status)
	case ConfirmMode:
		status = "Confirm with y, cancel with n"
	case HelpMode:
		status = "Help - press z to return, q to quit"
	default:
		status = "Press z for help, q to quit"
	}
	return hintStyle.Width(model.Width).Render(status)
}

const helpContent = `sieve - browse a collection of cards

NAVIGATION:
  j, ↓        Move down
  k, ↑        Move up
  g, G        Go to top or bottom
  Tab         Toggle between the filter and card panes
  h, l        Focus the filter or card pane
  z, ?        Toggle this help screen

FILTERS (filter pane):
  Enter/Space Toggle an option, or edit a range as MIN:MAX
  d, ⌫        Clear the filter under the cursor
  r           Reset every filter and the search

SEARCH:
  /           Edit the search; it applies once typing pauses
  Enter       Apply the search immediately
  Esc         Stop editing and discard pending input
  c           Clear the search

SORT AND PAGES:
  s           Cycle the sort field (natural order last)
  S           Flip the sort direction
  n, p        Next or previous page
  m           Load more cards

CARDS (card pane):
  x           Remove the selected card
  y           Copy the visible cards as tab-separated text

GLOBAL:
  q, Ctrl+c   Quit`

// renderHelpView renders the help content as a single pane
func renderHelpView(model AppModel) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(1).
		Width(max(model.Width-4, 20)).
		Height(max(model.Height-4, 5)).
		Render(strings.TrimSpace(helpContent))
}
