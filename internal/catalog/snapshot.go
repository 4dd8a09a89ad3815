package catalog

import (
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Snapshot is an independent copy of the store's derived state. Items are
// shared read-only; every container is owned by the snapshot.
type Snapshot struct {
	Items      []*Item
	Filtered   []*Item
	Filters    map[string]FilterValue
	Search     string
	Sort       SortConfig
	Pagination Pagination
	// Loaded is false until the first SetItems call.
	Loaded  bool
	Version uint64
}

// Clone returns a deep copy of the snapshot's containers.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Items = clone(s.Items)
	out.Filtered = clone(s.Filtered)
	out.Filters = make(map[string]FilterValue, len(s.Filters))
	for k, v := range s.Filters {
		out.Filters[k] = v.Clone()
	}
	return out
}

// Visible returns the items on the current page.
func (s Snapshot) Visible() []*Item {
	return Slice(s.Filtered, s.Pagination)
}

// TotalPages returns the number of pages over the filtered result.
func (s Snapshot) TotalPages() int {
	if !s.Pagination.Enabled {
		if len(s.Filtered) == 0 {
			return 0
		}
		return 1
	}
	return TotalPages(s.Pagination.TotalItems, s.Pagination.ItemsPerPage)
}

// HasMore reports whether pages beyond the current one exist.
func (s Snapshot) HasMore() bool {
	return s.Pagination.Enabled && s.Pagination.CurrentPage < s.TotalPages()
}

// Loading reports whether no items have been ingested yet.
func (s Snapshot) Loading() bool { return !s.Loaded }

// HasCriteria reports whether any filter or search is active.
func (s Snapshot) HasCriteria() bool {
	return len(s.Filters) > 0 || s.Search != ""
}

// Filter returns the active value for key.
func (s Snapshot) Filter(key string) (FilterValue, bool) {
	v, ok := s.Filters[key]
	if !ok {
		return FilterValue{}, false
	}
	return v.Clone(), true
}

// TagKind identifies what an active tag removes.
type TagKind int

const (
	TagOption TagKind = iota
	TagRange
	TagSearch
)

// Tag is one removable chip in an active-criteria display.
type Tag struct {
	Kind   TagKind
	Key    string
	Option string
	Label  string
}

// ActiveTags lists one tag per selected option, range and search query, in
// key order with search last.
func (s Snapshot) ActiveTags() []Tag {
	keys := make([]string, 0, len(s.Filters))
	for k := range s.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var tags []Tag
	for _, key := range keys {
		v := s.Filters[key]
		kind, field := ClassifyKey(key)
		if kind == KindRange {
			tags = append(tags, Tag{
				Kind:  TagRange,
				Key:   key,
				Label: fmt.Sprintf("%s: %s – %s", field, formatNumber(v.Min), formatNumber(v.Max)),
			})
			continue
		}
		for _, opt := range v.selected() {
			tags = append(tags, Tag{
				Kind:   TagOption,
				Key:    key,
				Option: opt,
				Label:  fmt.Sprintf("%s: %s", field, opt),
			})
		}
	}
	if s.Search != "" {
		tags = append(tags, Tag{Kind: TagSearch, Label: fmt.Sprintf("%q", s.Search)})
	}
	return tags
}

// Option is a distinct multi-select value with the number of items carrying it.
type Option struct {
	Value string
	Count int
}

// Options returns the distinct tokens of field across all items, ordered by
// descending count and then by value.
func (s Snapshot) Options(field string) []Option {
	return fieldOptions(s.Items, NormalizeField(field))
}

// Bounds returns the numeric extent of field across all items.
func (s Snapshot) Bounds(field string) (lo, hi float64, ok bool) {
	return fieldBounds(s.Items, NormalizeField(field))
}

func fieldOptions(items []*Item, field string) []Option {
	counts := make(map[string]int)
	for _, it := range items {
		seen := make(map[string]bool)
		for _, tok := range it.tokens[field] {
			if !seen[tok] {
				seen[tok] = true
				counts[tok]++
			}
		}
	}
	out := make([]Option, 0, len(counts))
	for v, c := range counts {
		out = append(out, Option{Value: v, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	return out
}

func fieldBounds(items []*Item, field string) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, it := range items {
		v, has := rangeValue(it.fields[field])
		if !has {
			continue
		}
		ok = true
		lo = min(lo, v)
		hi = max(hi, v)
	}
	if !ok {
		return 0, 0, false
	}
	return lo, hi, true
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
