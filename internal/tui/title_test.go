package tui

import (
	"testing"

	"github.com/yiblet/sieve/internal/catalog"
)

func TestCardTitle(t *testing.T) {
	tests := []struct {
		name     string
		record   catalog.Record
		expected string
	}{
		{"title field", catalog.Record{"id": "1", "Title": "Brass Lamp", "name": "lamp"}, "Brass Lamp"},
		{"name field", catalog.Record{"id": "2", "name": "Oak\tDesk\n"}, "Oak Desk"},
		{"first field", catalog.Record{"id": "3", "color": "red", "price": "10"}, "red"},
		{"identity", catalog.Record{"id": "4"}, "4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CardTitle(catalog.Normalize(tt.record, 0))
			if got != tt.expected {
				t.Errorf("CardTitle() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestTruncateTitle(t *testing.T) {
	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"this is a long title", 10, "this is..."},
		{"crème brûlée tart", 8, "crème..."},
		{"abc", 2, ".."},
	}

	for _, tt := range tests {
		if got := TruncateTitle(tt.input, tt.maxLen); got != tt.expected {
			t.Errorf("TruncateTitle(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.expected)
		}
	}
}

func TestSanitizeTitle(t *testing.T) {
	if got := SanitizeTitle("  a\x00b\r\n  c  "); got != "a b c" {
		t.Errorf("SanitizeTitle() = %q", got)
	}
}
