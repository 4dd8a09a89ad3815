package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// ModalMsg represents messages that the modal component handles
type ModalMsg interface {
	isModalMsg()
}

// ShowModalMsg opens a confirmation dialog
type ShowModalMsg struct {
	Title   string
	Content string
	Options string
}

func (ShowModalMsg) isModalMsg() {}

// HideModalMsg closes the dialog
type HideModalMsg struct{}

func (HideModalMsg) isModalMsg() {}

// ModalModel holds the state for modal dialogs
type ModalModel struct {
	Active  bool
	Title   string
	Content string
	Options string
	Width   int
}

// NewModalModel creates a new modal model
func NewModalModel() ModalModel {
	return ModalModel{Width: 56}
}

// Update handles modal messages
func (m *ModalModel) Update(msg ModalMsg) error {
	switch msg := msg.(type) {
	case ShowModalMsg:
		m.Active = true
		m.Title = msg.Title
		m.Content = msg.Content
		m.Options = msg.Options
	case HideModalMsg:
		*m = ModalModel{Width: m.Width}
	}
	return nil
}

var modalStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("9")).
	Padding(1, 2).
	Align(lipgloss.Center)

// ModalView draws the dialog centred over backgroundView
func ModalView(model ModalModel, backgroundView string, windowWidth, windowHeight int) string {
	if !model.Active {
		return backgroundView
	}

	parts := []string{lipgloss.NewStyle().Bold(true).Render(model.Title)}
	if model.Content != "" {
		parts = append(parts, model.Content)
	}
	if model.Options != "" {
		parts = append(parts, model.Options)
	}

	width := min(model.Width, max(windowWidth-4, 10))
	box := modalStyle.Width(width).Render(strings.Join(parts, "\n\n"))

	boxLines := strings.Split(box, "\n")
	x := max((windowWidth-lipgloss.Width(box))/2, 0)
	y := max((windowHeight-len(boxLines))/2, 0)
	return overlay(backgroundView, boxLines, x, y)
}

// overlay replaces the cells under box with its lines, keeping the
// background visible on either side.
func overlay(background string, box []string, x, y int) string {
	lines := strings.Split(background, "\n")
	for len(lines) < y+len(box) {
		lines = append(lines, "")
	}

	for i, boxLine := range box {
		row := lines[y+i]
		if w := ansi.StringWidth(row); w < x {
			row += strings.Repeat(" ", x-w)
		}
		left := ansi.Truncate(row, x, "")
		right := ansi.TruncateLeft(row, x+ansi.StringWidth(boxLine), "")
		lines[y+i] = left + boxLine + right
	}
	return strings.Join(lines, "\n")
}

// ShowResetConfirmation asks before clearing every filter and the search
func ShowResetConfirmation(active int) ShowModalMsg {
	return ShowModalMsg{
		Title:   "Reset all criteria?",
		Content: fmt.Sprintf("%d active filter(s) and the search query will be cleared.", active),
		Options: "[Y] Yes, reset    [N] No, cancel",
	}
}

// ShowRemoveConfirmation asks before dropping a card from the collection
func ShowRemoveConfirmation(title string) ShowModalMsg {
	return ShowModalMsg{
		Title:   "Remove card?",
		Content: TruncateTitle(title, 40),
		Options: "[Y] Yes, remove    [N] No, cancel",
	}
}
