package tui

import (
	"strings"
	"unicode"

	"github.com/yiblet/sieve/internal/catalog"
)

// titleFields are tried in order when picking a card heading.
var titleFields = []string{"title", "name", "label", "heading"}

// CardTitle picks a heading for a card: the first title-like field, then
// the first non-empty field, then the card's identity.
func CardTitle(it *catalog.Item) string {
	for _, f := range titleFields {
		if s := SanitizeTitle(it.String(f)); s != "" {
			return s
		}
	}
	for _, f := range it.Fields() {
		if s := SanitizeTitle(it.String(f)); s != "" {
			return s
		}
	}
	return it.ID()
}

// TruncateTitle ensures title is at most maxLen runes.
// If truncation is needed, appends "..." to indicate truncation.
func TruncateTitle(title string, maxLen int) string {
	title = strings.TrimSpace(title)

	runes := []rune(title)
	if len(runes) <= maxLen {
		return title
	}

	// Reserve 3 characters for "..."
	if maxLen < 3 {
		return strings.Repeat(".", maxLen)
	}

	return string(runes[:maxLen-3]) + "..."
}

// SanitizeTitle removes control characters and collapses whitespace.
func SanitizeTitle(title string) string {
	title = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, title)

	return strings.Join(strings.Fields(title), " ")
}
