package tui

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/x/ansi"
)

// WrapText wraps text to maxWidth terminal cells, breaking on word
// boundaries when possible. Newlines in the input are kept. Width is
// measured in cells, so wide runes count double.
func WrapText(text string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{}
	}

	var result []string
	for _, line := range strings.Split(text, "\n") {
		if ansi.StringWidth(line) <= maxWidth {
			result = append(result, line)
			continue
		}
		result = append(result, wrapLine(line, maxWidth)...)
	}
	return result
}

// WrapClamp wraps text and keeps at most maxLines lines, marking the last
// kept line with "..." when something was dropped.
func WrapClamp(text string, maxWidth, maxLines int) []string {
	lines := WrapText(text, maxWidth)
	if maxLines <= 0 || len(lines) <= maxLines {
		return lines
	}
	lines = lines[:maxLines]
	last := lines[maxLines-1]
	if ansi.StringWidth(last)+3 > maxWidth {
		last = ansi.Truncate(last, maxWidth-3, "")
	}
	lines[maxLines-1] = last + "..."
	return lines
}

func wrapLine(line string, maxWidth int) []string {
	var result []string
	var current strings.Builder
	width := 0

	flush := func() {
		if width > 0 {
			result = append(result, current.String())
			current.Reset()
			width = 0
		}
	}

	for _, word := range strings.FieldsFunc(line, unicode.IsSpace) {
		w := ansi.StringWidth(word)

		if w > maxWidth {
			flush()
			result = append(result, breakWord(word, maxWidth)...)
			continue
		}

		need := w
		if width > 0 {
			need++
		}
		if width+need > maxWidth {
			flush()
			need = w
		}
		if width > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(word)
		width += need
	}
	flush()
	return result
}

// breakWord splits a word wider than maxWidth into chunks that each fit.
func breakWord(word string, maxWidth int) []string {
	var chunks []string
	var current strings.Builder
	width := 0
	for _, r := range word {
		rw := ansi.StringWidth(string(r))
		if width+rw > maxWidth && width > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
			width = 0
		}
		current.WriteRune(r)
		width += rw
	}
	if width > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}
