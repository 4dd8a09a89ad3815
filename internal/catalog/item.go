package catalog

import (
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Record is a raw card as delivered by an ingestion adapter: arbitrary field
// names mapped to strings, numbers or lists of strings.
type Record map[string]any

// Item is a normalized, read-only card. All derived indexes are computed once
// by Normalize and never change afterwards.
type Item struct {
	id     string
	index  int
	fields map[string]any
	search string
	tokens map[string][]string
	source Record
}

// idFields are checked in order for a caller supplied identity.
var idFields = []string{"id", "_id"}

// ID returns the stable identity of the item.
func (it *Item) ID() string { return it.id }

// Index returns the natural display position of the item.
func (it *Item) Index() int { return it.index }

// Value returns the raw value stored under the normalized field name. List
// values are copies.
func (it *Item) Value(field string) (any, bool) {
	v, ok := it.fields[NormalizeField(field)]
	return cloneValue(v), ok
}

// String returns the field formatted as text, or "" when absent.
func (it *Item) String(field string) string {
	v, ok := it.Value(field)
	if !ok {
		return ""
	}
	return valueString(v)
}

// Fields returns the item's field names in sorted order.
func (it *Item) Fields() []string {
	names := make([]string, 0, len(it.fields))
	for name := range it.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Tokens returns the lowercased multi-select tokens for a field.
func (it *Item) Tokens(field string) []string {
	toks := it.tokens[NormalizeField(field)]
	out := make([]string, len(toks))
	copy(out, toks)
	return out
}

// SearchText returns the folded text used for free-text search.
func (it *Item) SearchText() string { return it.search }

// Record returns a copy of the item's fields keyed by normalized name.
func (it *Item) Record() Record {
	rec := make(Record, len(it.fields)+1)
	for k, v := range it.fields {
		rec[k] = cloneValue(v)
	}
	rec["id"] = it.id
	return rec
}

// MarshalJSON encodes the item as its normalized record.
func (it *Item) MarshalJSON() ([]byte, error) {
	return json.Marshal(it.Record())
}

// NormalizeField lowercases a field name and joins its words with underscores.
func NormalizeField(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "_")
}

// RecordID returns the caller supplied identity of rec, if any. Field names
// are matched the same way Normalize matches them.
func RecordID(rec Record) (string, bool) {
	fields := make(map[string]any, len(idFields))
	for key, value := range rec {
		name := NormalizeField(key)
		if slices.Contains(idFields, name) {
			fields[name] = value
		}
	}
	id := fieldsID(fields)
	return id, id != ""
}

func fieldsID(fields map[string]any) string {
	for _, f := range idFields {
		if v, ok := fields[f]; ok {
			if id := strings.TrimSpace(valueString(v)); id != "" {
				return id
			}
		}
	}
	return ""
}

// Normalize builds an Item from a raw record. The record is not retained for
// reading; only its identity is kept for pass-through on re-ingestion.
func Normalize(rec Record, index int) *Item {
	it := &Item{
		index:  index,
		fields: make(map[string]any, len(rec)),
		tokens: make(map[string][]string, len(rec)),
		source: rec,
	}

	for key, value := range rec {
		name := NormalizeField(key)
		if name == "" {
			continue
		}
		it.fields[name] = cloneValue(value)
	}

	it.id = fieldsID(it.fields)
	if it.id == "" {
		it.id = uuid.NewString()
	}
	for _, f := range idFields {
		delete(it.fields, f)
	}

	names := it.Fields()
	parts := make([]string, 0, len(names))
	for _, name := range names {
		text := valueString(it.fields[name])
		if text != "" {
			parts = append(parts, text)
		}
		if toks := tokenize(it.fields[name]); len(toks) > 0 {
			it.tokens[name] = toks
		}
	}
	it.search = Fold(strings.Join(parts, " "))

	return it
}

// withIndex returns a copy of it placed at a new natural position.
func (it *Item) withIndex(index int) *Item {
	moved := *it
	moved.index = index
	return &moved
}

// cloneValue copies list values so that an item shares no backing array with
// its source record or with its readers.
func cloneValue(v any) any {
	switch val := v.(type) {
	case []string:
		return slices.Clone(val)
	case []any:
		return slices.Clone(val)
	default:
		return v
	}
}

// Fold lowercases s and strips combining marks so "Élégante" becomes "elegante".
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return strings.ToLower(folded)
}

// tokenize splits a value into lowercased, trimmed tokens. Strings are split
// on commas; list values contribute each element.
func tokenize(v any) []string {
	var raw []string
	switch val := v.(type) {
	case nil:
		return nil
	case []string:
		raw = val
	case []any:
		for _, el := range val {
			raw = append(raw, valueString(el))
		}
	default:
		raw = []string{valueString(val)}
	}

	var toks []string
	for _, r := range raw {
		for _, part := range strings.Split(r, ",") {
			part = strings.ToLower(strings.TrimSpace(part))
			if part != "" {
				toks = append(toks, part)
			}
		}
	}
	return toks
}

// valueString formats a raw value as text. Lists are comma-joined.
func valueString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	case []string:
		return strings.Join(val, ",")
	case []any:
		parts := make([]string, 0, len(val))
		for _, el := range val {
			parts = append(parts, valueString(el))
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(val)
	}
}
