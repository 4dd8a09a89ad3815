package tui

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/yiblet/sieve/internal/catalog"
)

// FilterPaneMsg represents messages that the filter pane handles
type FilterPaneMsg interface {
	isFilterPaneMsg()
}

// Filter pane navigation messages
type FilterUpMsg struct{}

func (FilterUpMsg) isFilterPaneMsg() {}

type FilterDownMsg struct{}

func (FilterDownMsg) isFilterPaneMsg() {}

type FilterTopMsg struct{}

func (FilterTopMsg) isFilterPaneMsg() {}

type FilterBottomMsg struct{}

func (FilterBottomMsg) isFilterPaneMsg() {}

// SetFacetsMsg replaces the facets shown, keeping the cursor on the same
// row when it still exists.
type SetFacetsMsg struct {
	Facets []Facet
}

func (SetFacetsMsg) isFilterPaneMsg() {}

// FilterRow is one selectable line of the pane: an option of a multi facet,
// or a whole range facet.
type FilterRow struct {
	Facet  int
	Option string
}

// FilterPaneModel holds the facet list and cursor
type FilterPaneModel struct {
	Facets []Facet
	Rows   []FilterRow
	Cursor int
	Width  int
	Height int
}

// NewFilterPaneModel creates an empty filter pane
func NewFilterPaneModel() FilterPaneModel {
	return FilterPaneModel{Width: 30, Height: 20}
}

// Update handles filter pane messages
func (p *FilterPaneModel) Update(msg FilterPaneMsg) error {
	switch m := msg.(type) {
	case FilterUpMsg:
		if p.Cursor > 0 {
			p.Cursor--
		}
	case FilterDownMsg:
		if p.Cursor < len(p.Rows)-1 {
			p.Cursor++
		}
	case FilterTopMsg:
		p.Cursor = 0
	case FilterBottomMsg:
		p.Cursor = max(len(p.Rows)-1, 0)
	case SetFacetsMsg:
		var current *FilterRow
		if row, ok := p.Selected(); ok {
			current = &row
		}
		var prevField string
		if current != nil {
			prevField = p.Facets[current.Facet].Field
		}

		p.Facets = m.Facets
		p.Rows = facetRows(m.Facets)
		p.Cursor = min(p.Cursor, max(len(p.Rows)-1, 0))
		if current != nil {
			for i, row := range p.Rows {
				if p.Facets[row.Facet].Field == prevField && row.Option == current.Option {
					p.Cursor = i
					break
				}
			}
		}
	}
	return nil
}

// Selected returns the row under the cursor.
func (p FilterPaneModel) Selected() (FilterRow, bool) {
	if p.Cursor < 0 || p.Cursor >= len(p.Rows) {
		return FilterRow{}, false
	}
	return p.Rows[p.Cursor], true
}

func facetRows(facets []Facet) []FilterRow {
	var rows []FilterRow
	for i, f := range facets {
		if f.Kind == FacetRange {
			rows = append(rows, FilterRow{Facet: i})
			continue
		}
		for _, opt := range f.Options {
			rows = append(rows, FilterRow{Facet: i, Option: opt.Value})
		}
	}
	return rows
}

// ToggleOption returns the multi filter value after flipping option.
func ToggleOption(current catalog.FilterValue, option string) catalog.FilterValue {
	opts := slices.Clone(current.Options)
	if i := slices.Index(opts, option); i >= 0 {
		opts = slices.Delete(opts, i, i+1)
	} else {
		opts = append(opts, option)
	}
	return catalog.AnyOf(opts...)
}

// ParseRangeInput parses "MIN:MAX" as typed into the range prompt. Either
// side may be empty to keep the facet's own bound.
func ParseRangeInput(s string, facet Facet) (lo, hi float64, err error) {
	a, b, ok := strings.Cut(s, ":")
	if !ok {
		a, b, ok = strings.Cut(s, "-")
	}
	if !ok {
		return 0, 0, fmt.Errorf("expected MIN:MAX")
	}

	lo, hi = facet.Lo, facet.Hi
	if a = strings.TrimSpace(a); a != "" {
		if lo, err = strconv.ParseFloat(a, 64); err != nil {
			return 0, 0, fmt.Errorf("invalid minimum %q", a)
		}
	}
	if b = strings.TrimSpace(b); b != "" {
		if hi, err = strconv.ParseFloat(b, 64); err != nil {
			return 0, 0, fmt.Errorf("invalid maximum %q", b)
		}
	}
	if lo > hi {
		return 0, 0, fmt.Errorf("minimum is greater than maximum")
	}
	return lo, hi, nil
}

var (
	facetHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	facetCountStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	cursorStyle      = lipgloss.NewStyle().Background(lipgloss.Color("12")).Foreground(lipgloss.Color("0"))
)

// FilterPaneView renders the facets with their selection state.
func FilterPaneView(model FilterPaneModel, snap catalog.Snapshot, active bool) string {
	inner := max(model.Width-4, 1)

	var lines []string
	cursorLine := 0
	if len(model.Rows) == 0 {
		lines = append(lines, facetCountStyle.Render("No filterable fields"))
	}

	lastFacet := -1
	for i, row := range model.Rows {
		facet := model.Facets[row.Facet]
		if row.Facet != lastFacet {
			if lastFacet >= 0 {
				lines = append(lines, "")
			}
			lines = append(lines, facetHeaderStyle.Render(TruncateTitle(facet.Field, inner)))
			lastFacet = row.Facet
		}

		text := filterRowText(facet, row, snap)
		text = TruncateTitle(text, inner)
		if i == model.Cursor && active {
			text = cursorStyle.Render(padToWidth(text, inner))
			cursorLine = len(lines)
		}
		lines = append(lines, text)
	}

	height := max(model.Height-2, 1)
	lines = scrollWindow(lines, cursorLine, height)

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
		Render(strings.Join(lines, "\n"))
}

func filterRowText(facet Facet, row FilterRow, snap catalog.Snapshot) string {
	value, active := snap.Filter(facet.Key())
	if facet.Kind == FacetRange {
		lo, hi := facet.Lo, facet.Hi
		if active && value.IsRange {
			lo, hi = value.Min, value.Max
		}
		return fmt.Sprintf("%s – %s", formatBound(lo), formatBound(hi))
	}

	mark := "[ ]"
	if active && slices.Contains(value.Options, row.Option) {
		mark = "[x]"
	}
	count := 0
	for _, opt := range facet.Options {
		if opt.Value == row.Option {
			count = opt.Count
		}
	}
	return fmt.Sprintf("%s %s (%d)", mark, row.Option, count)
}

func formatBound(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// scrollWindow keeps at most height lines, sliding so that line focus stays
// visible.
func scrollWindow(lines []string, focus, height int) []string {
	if len(lines) <= height {
		return lines
	}
	start := 0
	if focus >= height {
		start = focus - height + 1
	}
	end := min(start+height, len(lines))
	return lines[start:end]
}

func padToWidth(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
