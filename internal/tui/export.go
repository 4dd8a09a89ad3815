package tui

import (
	"sort"
	"strings"

	"github.com/yiblet/sieve/internal/catalog"
)

// MaxColumns caps the number of fields shown in tabular output.
const MaxColumns = 6

// Columns picks up to MaxColumns field names for tabular output, title-like
// fields first and the rest in order of how many cards carry them.
func Columns(items []*catalog.Item) []string {
	counts := make(map[string]int)
	for _, it := range items {
		for _, f := range it.Fields() {
			if it.String(f) != "" {
				counts[f]++
			}
		}
	}

	fields := make([]string, 0, len(counts))
	for f := range counts {
		fields = append(fields, f)
	}
	rank := func(f string) int {
		for i, tf := range titleFields {
			if f == tf {
				return i
			}
		}
		return len(titleFields)
	}
	sort.SliceStable(fields, func(i, j int) bool {
		ri, rj := rank(fields[i]), rank(fields[j])
		if ri != rj {
			return ri < rj
		}
		if counts[fields[i]] != counts[fields[j]] {
			return counts[fields[i]] > counts[fields[j]]
		}
		return fields[i] < fields[j]
	})

	if len(fields) > MaxColumns {
		fields = fields[:MaxColumns]
	}
	return fields
}

// FormatTSV renders cards as tab-separated text with a header row.
func FormatTSV(items []*catalog.Item) string {
	columns := Columns(items)
	var b strings.Builder
	b.WriteString(strings.Join(append([]string{"id"}, columns...), "\t"))
	b.WriteString("\n")
	for _, it := range items {
		row := []string{it.ID()}
		for _, col := range columns {
			row = append(row, SanitizeTitle(it.String(col)))
		}
		b.WriteString(strings.Join(row, "\t"))
		b.WriteString("\n")
	}
	return b.String()
}
