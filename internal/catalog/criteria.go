package catalog

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strings"
)

// FilterKind classifies a filter key.
type FilterKind int

const (
	// KindMulti accepts any of a set of option strings.
	KindMulti FilterKind = iota
	// KindRange accepts numbers inside a closed interval.
	KindRange
)

func (k FilterKind) String() string {
	if k == KindRange {
		return "range"
	}
	return "multi"
}

// Filter key prefixes. A key without a prefix is a multi filter.
const (
	RangePrefix = "range_"
	MultiPrefix = "multi_"
)

// ClassifyKey returns the kind of a filter key and the field it targets.
func ClassifyKey(key string) (FilterKind, string) {
	k := strings.ToLower(strings.TrimSpace(key))
	if strings.HasPrefix(k, RangePrefix) {
		return KindRange, NormalizeField(strings.TrimPrefix(k, RangePrefix))
	}
	return KindMulti, NormalizeField(strings.TrimPrefix(k, MultiPrefix))
}

// RangeKey returns the filter key for a range filter on field.
func RangeKey(field string) string { return RangePrefix + NormalizeField(field) }

// FilterValue is the value of one active filter: a set of options for multi
// keys or a closed interval for range keys.
type FilterValue struct {
	Options []string
	Min     float64
	Max     float64
	IsRange bool
}

// AnyOf builds a multi-select filter value.
func AnyOf(opts ...string) FilterValue {
	return FilterValue{Options: opts}
}

// Between builds a range filter value covering [lo, hi].
func Between(lo, hi float64) FilterValue {
	return FilterValue{Min: lo, Max: hi, IsRange: true}
}

// Clone returns a copy that shares no memory with v.
func (v FilterValue) Clone() FilterValue {
	v.Options = slices.Clone(v.Options)
	return v
}

// Equal reports whether two values select the same items.
func (v FilterValue) Equal(o FilterValue) bool {
	if v.IsRange != o.IsRange {
		return false
	}
	if v.IsRange {
		return v.Min == o.Min && v.Max == o.Max
	}
	return slices.Equal(v.Options, o.Options)
}

// selected returns the non-blank options.
func (v FilterValue) selected() []string {
	out := make([]string, 0, len(v.Options))
	for _, o := range v.Options {
		if strings.TrimSpace(o) != "" {
			out = append(out, o)
		}
	}
	return out
}

// MarshalJSON encodes multi values as a string array and ranges as [min, max].
func (v FilterValue) MarshalJSON() ([]byte, error) {
	if v.IsRange {
		if math.IsNaN(v.Min) || math.IsNaN(v.Max) {
			return nil, fmt.Errorf("range bounds are not numbers")
		}
		return json.Marshal([2]float64{v.Min, v.Max})
	}
	if v.Options == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(v.Options)
}

// UnmarshalJSON accepts the encodings produced by MarshalJSON.
func (v *FilterValue) UnmarshalJSON(data []byte) error {
	var opts []string
	if err := json.Unmarshal(data, &opts); err == nil {
		*v = FilterValue{Options: opts}
		return nil
	}
	var bounds []float64
	if err := json.Unmarshal(data, &bounds); err != nil {
		return fmt.Errorf("failed to decode filter value: %w", err)
	}
	if len(bounds) != 2 {
		return fmt.Errorf("range filter needs 2 bounds, got %d", len(bounds))
	}
	*v = Between(bounds[0], bounds[1])
	return nil
}

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// SortType selects how sort values are compared.
type SortType string

const (
	SortString SortType = "string"
	SortNumber SortType = "number"
	SortDate   SortType = "date"
)

// SortConfig selects the ordering of the filtered result. An empty Field
// means natural order.
type SortConfig struct {
	Field     string    `json:"field"`
	Direction Direction `json:"direction"`
	Type      SortType  `json:"type"`
}

// SortBy builds a sort configuration with defaults for empty parts.
func SortBy(field string, dir Direction, typ SortType) SortConfig {
	return SortConfig{Field: field, Direction: dir, Type: typ}.normalized()
}

// IsNatural reports whether the configuration keeps insertion order.
func (c SortConfig) IsNatural() bool { return c.Field == "" }

func (c SortConfig) normalized() SortConfig {
	c.Field = NormalizeField(c.Field)
	if c.Direction != Desc {
		c.Direction = Asc
	}
	switch c.Type {
	case SortNumber, SortDate:
	default:
		c.Type = SortString
	}
	return c
}

// ParseDirection maps "asc"/"desc" (any case) to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc", "ascending":
		return Asc, nil
	case "desc", "descending":
		return Desc, nil
	default:
		return "", fmt.Errorf("unknown sort direction: %s", s)
	}
}

// ParseSortType maps a name to a SortType.
func ParseSortType(s string) (SortType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "string", "text":
		return SortString, nil
	case "number", "numeric":
		return SortNumber, nil
	case "date", "time":
		return SortDate, nil
	default:
		return "", fmt.Errorf("unknown sort type: %s", s)
	}
}

// Mode selects how the page counter is interpreted.
type Mode string

const (
	ModePagination Mode = "pagination"
	ModeLoadMore   Mode = "loadMore"
	ModeAutoScroll Mode = "autoScroll"
)

// ParseMode maps a mode name to a Mode. Matching is case-insensitive and
// accepts dashed spellings such as "load-more".
func ParseMode(s string) (Mode, error) {
	key := strings.ToLower(strings.NewReplacer("-", "", "_", "").Replace(strings.TrimSpace(s)))
	switch key {
	case "", "pagination", "pages":
		return ModePagination, nil
	case "loadmore":
		return ModeLoadMore, nil
	case "autoscroll", "infinite":
		return ModeAutoScroll, nil
	default:
		return "", fmt.Errorf("unknown pagination mode: %s", s)
	}
}

// Pagination describes the visible window over the filtered result.
// TotalItems is maintained by the store and mirrors the filtered length.
type Pagination struct {
	CurrentPage  int
	ItemsPerPage int
	TotalItems   int
	Enabled      bool
	Mode         Mode
	PersistPage  bool
}

// DefaultItemsPerPage is used when no positive page size is configured.
const DefaultItemsPerPage = 12

// DefaultPagination returns a disabled pagination state on page 1.
func DefaultPagination() Pagination {
	return Pagination{
		CurrentPage:  1,
		ItemsPerPage: DefaultItemsPerPage,
		Mode:         ModePagination,
	}
}

// sanitized clamps fields into their documented domains, taking prev as the
// fallback for invalid values.
func (p Pagination) sanitized(prev Pagination) Pagination {
	if p.CurrentPage < 1 {
		p.CurrentPage = 1
	}
	if p.ItemsPerPage <= 0 {
		p.ItemsPerPage = prev.ItemsPerPage
		if p.ItemsPerPage <= 0 {
			p.ItemsPerPage = DefaultItemsPerPage
		}
	}
	switch p.Mode {
	case ModePagination, ModeLoadMore, ModeAutoScroll:
	default:
		p.Mode = prev.Mode
		if p.Mode == "" {
			p.Mode = ModePagination
		}
	}
	return p
}

// MutationOption adjusts a single criteria mutation.
type MutationOption func(*mutation)

type mutation struct {
	keepPage bool
}

// KeepPage suppresses the reset to page 1 that criteria changes normally
// perform.
func KeepPage() MutationOption {
	return func(m *mutation) { m.keepPage = true }
}

func applyOptions(opts []MutationOption) mutation {
	var m mutation
	for _, o := range opts {
		o(&m)
	}
	return m
}
