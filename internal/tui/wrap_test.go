package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func TestWrapText(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  []string
	}{
		{"fits", "Red Lamp", 20, []string{"Red Lamp"}},
		{"word boundary", "linen sofa with oak legs", 10, []string{"linen sofa", "with oak", "legs"}},
		{"long word", "abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
		{"newlines kept", "a\n\nb", 10, []string{"a", "", "b"}},
		{"collapses runs of spaces", "one    two three", 7, []string{"one two", "three"}},
		{"zero width", "anything", 0, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WrapText(tt.text, tt.width)
			if len(got) != len(tt.want) {
				t.Fatalf("WrapText(%q, %d) = %q, want %q", tt.text, tt.width, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("line %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestWrapText_MeasuresCells(t *testing.T) {
	// Each of these runes occupies two terminal cells.
	text := "家具家具家具"
	for _, line := range WrapText(text, 5) {
		if w := ansi.StringWidth(line); w > 5 {
			t.Errorf("line %q is %d cells wide, want <= 5", line, w)
		}
	}

	accented := "Crème Sofa"
	if got := WrapText(accented, 10); len(got) != 1 {
		t.Errorf("expected accented text of 10 cells to fit, got %q", got)
	}
}

func TestWrapClamp(t *testing.T) {
	text := "a soft linen sofa with deep cushions and oak legs"

	got := WrapClamp(text, 12, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 lines, got %q", got)
	}
	if !strings.HasSuffix(got[1], "...") {
		t.Errorf("expected ellipsis on the last line, got %q", got[1])
	}
	if w := ansi.StringWidth(got[1]); w > 12 {
		t.Errorf("clamped line is %d cells wide", w)
	}

	short := WrapClamp("short", 12, 2)
	if len(short) != 1 || short[0] != "short" {
		t.Errorf("unexpected clamp of short text: %q", short)
	}
}
