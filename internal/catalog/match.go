package catalog

import (
	"sort"
	"strconv"
	"strings"
)

// compiledFilter is a filter entry resolved once per recomputation pass.
type compiledFilter struct {
	kind    FilterKind
	field   string
	options []string
	min     float64
	max     float64
}

// compileFilters resolves kind and target field for every active filter.
// Keys are visited in sorted order so evaluation is deterministic.
func compileFilters(filters map[string]FilterValue) []compiledFilter {
	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]compiledFilter, 0, len(keys))
	for _, key := range keys {
		v := filters[key]
		kind, field := ClassifyKey(key)
		cf := compiledFilter{kind: kind, field: field}
		if kind == KindRange {
			cf.min, cf.max = v.Min, v.Max
		} else {
			for _, o := range v.selected() {
				cf.options = append(cf.options, strings.ToLower(strings.TrimSpace(o)))
			}
		}
		out = append(out, cf)
	}
	return out
}

// searchTerms folds a query and splits it on whitespace.
func searchTerms(query string) []string {
	return strings.Fields(Fold(query))
}

// matches reports whether it passes every filter and contains every term.
// Filters run first because they are cheaper than substring search.
func matches(it *Item, filters []compiledFilter, terms []string) bool {
	for i := range filters {
		if !filters[i].match(it) {
			return false
		}
	}
	for _, t := range terms {
		if !strings.Contains(it.search, t) {
			return false
		}
	}
	return true
}

func (f *compiledFilter) match(it *Item) bool {
	if f.kind == KindRange {
		v, ok := rangeValue(it.fields[f.field])
		if !ok {
			return false
		}
		return f.min <= v && v <= f.max
	}

	// Substring containment means "red" also matches "redwood". Kept for
	// compatibility with near-duplicate option spellings in existing data.
	toks := it.tokens[f.field]
	for _, opt := range f.options {
		for _, tok := range toks {
			if tok == opt || strings.Contains(tok, opt) {
				return true
			}
		}
	}
	return false
}

// rangeValue extracts a number from a raw value for range comparison.
// Strings keep only digits, dots, minus signs and commas, commas become dots,
// and the longest numeric prefix is parsed.
func rangeValue(v any) (float64, bool) {
	if n, ok := numeric(v); ok {
		return n, true
	}
	s := valueString(v)
	if s == "" {
		return 0, false
	}
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		case r == ',':
			b.WriteRune('.')
		}
	}
	return leadingFloat(b.String())
}

// numeric returns native number values without string conversion.
func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// leadingFloat parses the longest prefix of s that forms a decimal number,
// so "12.5.3" yields 12.5 and "-" yields no value.
func leadingFloat(s string) (float64, bool) {
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
		digits++
	}
	if end < len(s) && s[end] == '.' {
		frac := end + 1
		for frac < len(s) && s[frac] >= '0' && s[frac] <= '9' {
			frac++
			digits++
		}
		if frac > end+1 || digits > 0 {
			end = frac
		}
	}
	if digits == 0 {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(s[:end], "."), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
