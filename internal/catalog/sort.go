package catalog

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// dateLayouts are tried in order when a date sort value is a string.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
	time.RFC1123Z,
	time.RFC1123,
}

// newCollator builds a collator for the locale, falling back to English for
// tags that do not parse.
func newCollator(locale string) *collate.Collator {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return collate.New(tag)
}

// sortItems orders items in place according to cfg. Natural order and ties
// fall back to the original insertion index.
func sortItems(items []*Item, cfg SortConfig, coll *collate.Collator) {
	if cfg.IsNatural() {
		slices.SortStableFunc(items, func(a, b *Item) int {
			return cmp.Compare(a.index, b.index)
		})
		return
	}
	slices.SortStableFunc(items, func(a, b *Item) int {
		return compareItems(a, b, cfg, coll)
	})
}

// compareItems compares two items under cfg. Null values sort after defined
// values in both directions.
func compareItems(a, b *Item, cfg SortConfig, coll *collate.Collator) int {
	av, aok := a.fields[cfg.Field]
	bv, bok := b.fields[cfg.Field]
	aNull := !aok || isNull(av)
	bNull := !bok || isNull(bv)

	switch {
	case aNull && bNull:
		return cmp.Compare(a.index, b.index)
	case aNull:
		return 1
	case bNull:
		return -1
	}

	var c int
	switch cfg.Type {
	case SortNumber:
		c = cmp.Compare(sortNumber(av), sortNumber(bv))
	case SortDate:
		c = cmp.Compare(epochMillis(av), epochMillis(bv))
	default:
		c = coll.CompareString(valueString(av), valueString(bv))
	}
	if cfg.Direction == Desc {
		c = -c
	}
	if c == 0 {
		return cmp.Compare(a.index, b.index)
	}
	return c
}

func isNull(v any) bool {
	if v == nil {
		return true
	}
	return strings.TrimSpace(valueString(v)) == ""
}

// sortNumber strips everything but digits, dots and minus signs and parses
// the result. Unparsable values compare as 0.
func sortNumber(v any) float64 {
	if n, ok := numeric(v); ok {
		return n
	}
	var b strings.Builder
	for _, r := range valueString(v) {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	f, ok := leadingFloat(b.String())
	if !ok {
		return 0
	}
	return f
}

// epochMillis converts a date value to milliseconds since the Unix epoch.
// Numbers are taken as milliseconds already. Unparsable values are 0.
func epochMillis(v any) int64 {
	switch t := v.(type) {
	case time.Time:
		return t.UnixMilli()
	case *time.Time:
		if t == nil {
			return 0
		}
		return t.UnixMilli()
	}
	if n, ok := numeric(v); ok {
		return int64(n)
	}
	s := strings.TrimSpace(valueString(v))
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UnixMilli()
		}
	}
	return 0
}
