package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// SearchMsg represents messages that the search box handles
type SearchMsg interface {
	isSearchMsg()
}

// FocusSearchMsg starts editing with the committed query.
type FocusSearchMsg struct {
	Query string
}

func (FocusSearchMsg) isSearchMsg() {}

// BlurSearchMsg stops editing. Pending input is dropped and the box shows
// the committed query again.
type BlurSearchMsg struct {
	Query string
}

func (BlurSearchMsg) isSearchMsg() {}

// SyncSearchMsg shows query without editing, for state that changed
// elsewhere.
type SyncSearchMsg struct {
	Query string
}

func (SyncSearchMsg) isSearchMsg() {}

// searchSettledMsg fires when typing has paused for the debounce delay.
type searchSettledMsg struct {
	seq   int
	query string
}

func (searchSettledMsg) isSearchMsg() {}

// SearchModel is a debounced search input. Every edit restarts the delay;
// only the last edit of a burst commits.
type SearchModel struct {
	Input   textinput.Model
	Delay   time.Duration
	Focused bool
	// seq identifies the latest edit. A settle message carrying an older
	// seq belongs to a cancelled timer.
	seq int
}

// NewSearchModel creates a search box that commits after delay.
func NewSearchModel(delay time.Duration) SearchModel {
	input := textinput.New()
	input.Prompt = "/ "
	input.Placeholder = "search cards"
	input.CharLimit = 256
	return SearchModel{Input: input, Delay: delay}
}

// Update applies msg. It returns the query to commit, if any, and a command
// to run.
func (s *SearchModel) Update(msg SearchMsg) (commit *string, cmd tea.Cmd) {
	switch m := msg.(type) {
	case FocusSearchMsg:
		s.Focused = true
		s.seq++
		s.Input.SetValue(m.Query)
		s.Input.CursorEnd()
		return nil, s.Input.Focus()
	case BlurSearchMsg:
		s.Focused = false
		s.seq++
		s.Input.Blur()
		s.Input.SetValue(m.Query)
	case SyncSearchMsg:
		if !s.Focused {
			s.Input.SetValue(m.Query)
		}
	case searchSettledMsg:
		if m.seq == s.seq && s.Focused {
			q := m.query
			return &q, nil
		}
	}
	return nil, nil
}

// HandleKey forwards a key press to the input and schedules a commit when
// the text changed.
func (s *SearchModel) HandleKey(msg tea.KeyMsg) (commit *string, cmd tea.Cmd) {
	before := s.Input.Value()
	var inputCmd tea.Cmd
	s.Input, inputCmd = s.Input.Update(msg)
	after := s.Input.Value()
	if after == before {
		return nil, inputCmd
	}

	s.seq++
	if s.Delay <= 0 {
		return &after, inputCmd
	}
	seq := s.seq
	settle := tea.Tick(s.Delay, func(time.Time) tea.Msg {
		return searchSettledMsg{seq: seq, query: after}
	})
	return nil, tea.Batch(inputCmd, settle)
}

// Submit commits the current text immediately and cancels any pending
// timer.
func (s *SearchModel) Submit() string {
	s.seq++
	s.Focused = false
	s.Input.Blur()
	return s.Input.Value()
}

// Cancel drops any pending timer.
func (s *SearchModel) Cancel() {
	s.seq++
}

var (
	searchActiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	searchIdleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// SearchView renders the search box on one line.
func SearchView(model SearchModel, width int) string {
	input := model.Input
	input.Width = max(width-lipgloss.Width(input.Prompt)-1, 1)
	if model.Focused {
		return searchActiveStyle.Render(input.View())
	}
	if input.Value() == "" {
		return searchIdleStyle.Render("/ search cards")
	}
	return searchIdleStyle.Render("/ " + TruncateTitle(input.Value(), max(width-2, 3)))
}
