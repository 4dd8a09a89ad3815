package tui

import (
	"sort"
	"strconv"

	"github.com/yiblet/sieve/internal/catalog"
)

// maxFacetOptions is the most distinct values a field may have and still be
// offered as a multi-select facet.
const maxFacetOptions = 12

// FacetKind says how a facet filters.
type FacetKind int

const (
	FacetMulti FacetKind = iota
	FacetRange
)

// Facet is one filterable field of the loaded cards.
type Facet struct {
	Field   string
	Kind    FacetKind
	Options []catalog.Option
	Lo, Hi  float64
}

// Key returns the filter key the facet writes to.
func (f Facet) Key() string {
	if f.Kind == FacetRange {
		return catalog.RangeKey(f.Field)
	}
	return f.Field
}

// Facets derives the filterable fields from the loaded cards. A field whose
// values are all numeric with a spread becomes a range facet. A field with
// a few repeated values becomes a multi facet. Identity and title-like
// fields are never facets.
func Facets(snap catalog.Snapshot) []Facet {
	fields := make(map[string]bool)
	for _, it := range snap.Items {
		for _, f := range it.Fields() {
			fields[f] = true
		}
	}
	names := make([]string, 0, len(fields))
	for f := range fields {
		if f == "id" || f == "_id" || isTitleField(f) {
			continue
		}
		names = append(names, f)
	}
	sort.Strings(names)

	var facets []Facet
	for _, field := range names {
		if lo, hi, ok := snap.Bounds(field); ok && lo < hi && allNumeric(snap.Items, field) {
			facets = append(facets, Facet{Field: field, Kind: FacetRange, Lo: lo, Hi: hi})
			continue
		}
		opts := snap.Options(field)
		if len(opts) == 0 || len(opts) > maxFacetOptions || len(opts) == len(snap.Items) && len(opts) > 1 {
			continue
		}
		facets = append(facets, Facet{Field: field, Kind: FacetMulti, Options: opts})
	}
	return facets
}

// SortType guesses how a field should be compared.
func SortType(snap catalog.Snapshot, field string) catalog.SortType {
	if _, _, ok := snap.Bounds(field); ok && allNumeric(snap.Items, field) {
		return catalog.SortNumber
	}
	return catalog.SortString
}

func isTitleField(f string) bool {
	for _, tf := range titleFields {
		if f == tf {
			return true
		}
	}
	return false
}

func allNumeric(items []*catalog.Item, field string) bool {
	for _, it := range items {
		s := it.String(field)
		if s == "" {
			continue
		}
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return false
		}
	}
	return true
}
