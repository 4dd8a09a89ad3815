package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/yiblet/sieve/internal/catalog"
)

// CardPaneMsg represents messages that the card pane handles
type CardPaneMsg interface {
	isCardPaneMsg()
}

// Card pane navigation messages
type CardUpMsg struct{}

func (CardUpMsg) isCardPaneMsg() {}

type CardDownMsg struct{}

func (CardDownMsg) isCardPaneMsg() {}

type CardTopMsg struct{}

func (CardTopMsg) isCardPaneMsg() {}

type CardBottomMsg struct{}

func (CardBottomMsg) isCardPaneMsg() {}

// SetCardCountMsg tells the pane how many cards are visible.
type SetCardCountMsg struct {
	Count int
}

func (SetCardCountMsg) isCardPaneMsg() {}

// CardPaneModel holds the cursor over the visible cards
type CardPaneModel struct {
	Cursor int
	Count  int
	Width  int
	Height int
}

// NewCardPaneModel creates an empty card pane
func NewCardPaneModel() CardPaneModel {
	return CardPaneModel{Width: 80, Height: 20}
}

// Update handles card pane messages
func (p *CardPaneModel) Update(msg CardPaneMsg) error {
	switch m := msg.(type) {
	case CardUpMsg:
		if p.Cursor > 0 {
			p.Cursor--
		}
	case CardDownMsg:
		if p.Cursor < p.Count-1 {
			p.Cursor++
		}
	case CardTopMsg:
		p.Cursor = 0
	case CardBottomMsg:
		p.Cursor = max(p.Count-1, 0)
	case SetCardCountMsg:
		p.Count = m.Count
		p.Cursor = min(p.Cursor, max(p.Count-1, 0))
	}
	return nil
}

// AtEnd reports whether the cursor is on the last visible card.
func (p CardPaneModel) AtEnd() bool {
	return p.Count > 0 && p.Cursor == p.Count-1
}

// detailFields is how many non-title fields a card shows.
const detailFields = 3

// skeletonCards is how many placeholder cards show while loading.
const skeletonCards = 3

var (
	cardTitleStyle    = lipgloss.NewStyle().Bold(true)
	cardDetailStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	cardSelectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	skeletonStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	counterStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	tagStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("6")).Padding(0, 1)
	emptyStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
)

// CardPaneView renders the active criteria, a counter and the visible
// cards. While the store is loading it shows placeholders instead.
func CardPaneView(model CardPaneModel, snap catalog.Snapshot, active bool) string {
	inner := max(model.Width-4, 10)
	height := max(model.Height-2, 1)

	var header []string
	if tags := TagsView(snap.ActiveTags(), inner); tags != "" {
		header = append(header, tags)
	}
	header = append(header, counterStyle.Render(TruncateTitle(Counter(snap), inner)), "")

	var body []string
	focus := 0
	visible := snap.Visible()
	switch {
	case snap.Loading():
		for range skeletonCards {
			body = append(body,
				skeletonStyle.Render(strings.Repeat("░", inner*2/3)),
				skeletonStyle.Render(strings.Repeat("░", inner/2)),
				"")
		}
	case len(visible) == 0 && snap.HasCriteria():
		body = append(body, emptyStyle.Render("No cards match the current filters. Press r to reset."))
	case len(visible) == 0:
		body = append(body, emptyStyle.Render("No cards."))
	default:
		for i, it := range visible {
			selected := i == model.Cursor
			if selected {
				focus = len(body)
			}
			body = append(body, cardLines(it, inner, selected && active)...)
			body = append(body, "")
		}
		if hint := moreHint(snap); hint != "" {
			body = append(body, counterStyle.Render(hint))
		}
	}

	body = scrollWindow(body, focus+detailFields, max(height-len(header), 1))

	border := lipgloss.Color("8")
	if active {
		border = lipgloss.Color("12")
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(model.Width - 2).
		Height(height).
		Render(strings.Join(append(header, body...), "\n"))
}

func cardLines(it *catalog.Item, width int, selected bool) []string {
	marker := "  "
	style := cardTitleStyle
	if selected {
		marker = "▸ "
		style = cardSelectedStyle
	}
	lines := []string{style.Render(marker + TruncateTitle(CardTitle(it), width-2))}

	shown := 0
	for _, f := range it.Fields() {
		if shown == detailFields {
			break
		}
		if f == "id" || f == "_id" || isTitleField(f) {
			continue
		}
		v := SanitizeTitle(it.String(f))
		if v == "" {
			continue
		}
		for _, l := range WrapClamp(f+": "+v, width-2, 2) {
			lines = append(lines, cardDetailStyle.Render("  "+l))
		}
		shown++
	}
	return lines
}

// Counter describes the visible window over the filtered result.
func Counter(snap catalog.Snapshot) string {
	total := snap.Pagination.TotalItems
	visible := len(snap.Visible())
	if snap.Loading() {
		return "Loading cards..."
	}
	if visible == 0 {
		return fmt.Sprintf("0 of %d cards", total)
	}

	start := 1
	p := snap.Pagination
	if p.Enabled && p.Mode == catalog.ModePagination {
		start = (p.CurrentPage-1)*p.ItemsPerPage + 1
	}
	s := fmt.Sprintf("Showing %d-%d of %d cards", start, start+visible-1, total)
	if p.Enabled && p.Mode == catalog.ModePagination && snap.TotalPages() > 1 {
		s += fmt.Sprintf(" · page %d/%d", p.CurrentPage, snap.TotalPages())
	}
	if !snap.Sort.IsNatural() {
		s += fmt.Sprintf(" · sorted by %s %s", snap.Sort.Field, snap.Sort.Direction)
	}
	return s
}

func moreHint(snap catalog.Snapshot) string {
	if !snap.HasMore() {
		return ""
	}
	switch snap.Pagination.Mode {
	case catalog.ModeLoadMore:
		return "Press m to load more"
	case catalog.ModeAutoScroll:
		return "More cards load as you scroll"
	default:
		return "Press n for the next page"
	}
}

// TagsView renders removable chips for the active criteria, wrapping onto
// further lines as needed.
func TagsView(tags []catalog.Tag, width int) string {
	if len(tags) == 0 {
		return ""
	}
	var lines []string
	var line string
	for _, tag := range tags {
		chip := tagStyle.Render(TruncateTitle(tag.Label, max(width-2, 3)))
		switch {
		case line == "":
			line = chip
		case lipgloss.Width(line)+1+lipgloss.Width(chip) > width:
			lines = append(lines, line)
			line = chip
		default:
			line += " " + chip
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}
