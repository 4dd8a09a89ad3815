package catalog

import (
	"encoding/json"
	"strconv"
	"strings"
)

// SessionStore is the key-value side table the store writes its criteria to.
// Every call may fail; failures are logged and otherwise ignored.
type SessionStore interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Remove(key string) error
}

// Session entry keys.
const (
	KeyFilters = "catalog.filters"
	KeySearch  = "catalog.search"
	KeySort    = "catalog.sort"
	KeyPage    = "catalog.page"
)

// SessionKeys lists every key the store writes.
var SessionKeys = []string{KeyFilters, KeySearch, KeySort, KeyPage}

// persistLocked writes the criteria and page. Default values are removed
// rather than written.
func (s *Store) persistLocked() {
	if s.session == nil {
		return
	}

	if len(s.filters) == 0 {
		s.removeEntry(KeyFilters)
	} else {
		s.writeJSON(KeyFilters, s.filters)
	}

	if s.search == "" {
		s.removeEntry(KeySearch)
	} else {
		s.writeJSON(KeySearch, s.search)
	}

	if s.sort.IsNatural() {
		s.removeEntry(KeySort)
	} else {
		s.writeJSON(KeySort, s.sort)
	}

	if s.page.PersistPage && s.page.CurrentPage > 1 {
		s.setEntry(KeyPage, strconv.Itoa(s.page.CurrentPage))
	} else {
		s.removeEntry(KeyPage)
	}
}

func (s *Store) clearSessionLocked() {
	if s.session == nil {
		return
	}
	for _, key := range SessionKeys {
		s.removeEntry(key)
	}
}

// restoreLocked applies whatever the session holds. Entries that fail to
// read or decode are skipped one by one. The restored page survives the
// criteria being applied.
func (s *Store) restoreLocked() {
	if s.session == nil {
		return
	}

	changed := false

	if raw, ok := s.readEntry(KeyFilters); ok {
		var filters map[string]FilterValue
		if err := json.Unmarshal([]byte(raw), &filters); err != nil {
			s.logger.Debug("ignoring saved filters", "err", err)
		} else {
			for key, v := range filters {
				kind, _ := ClassifyKey(key)
				if kind == KindRange && !v.IsRange {
					continue
				}
				if s.isEmptyFilterLocked(key, v) {
					continue
				}
				s.filters[key] = v
				changed = true
			}
		}
	}

	if raw, ok := s.readEntry(KeySearch); ok {
		var q string
		if err := json.Unmarshal([]byte(raw), &q); err != nil {
			s.logger.Debug("ignoring saved search", "err", err)
		} else if q != "" {
			s.search = q
			changed = true
		}
	}

	if raw, ok := s.readEntry(KeySort); ok {
		var cfg SortConfig
		if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
			s.logger.Debug("ignoring saved sort", "err", err)
		} else {
			s.sort = cfg.normalized()
			changed = true
		}
	}

	if s.page.PersistPage {
		if raw, ok := s.readEntry(KeyPage); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil && n >= 1 {
				s.page.CurrentPage = n
				changed = true
			}
		}
	}

	if changed {
		s.version++
		s.recomputeLocked()
		s.logger.Debug("restored session criteria",
			"filters", len(s.filters), "search", s.search, "sort", s.sort.Field, "page", s.page.CurrentPage)
	}
}

func (s *Store) readEntry(key string) (string, bool) {
	v, err := s.session.Get(key)
	if err != nil {
		s.logger.Debug("session read failed", "key", key, "err", err)
		return "", false
	}
	return v, v != ""
}

func (s *Store) writeJSON(key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Debug("session encode failed", "key", key, "err", err)
		return
	}
	s.setEntry(key, string(data))
}

func (s *Store) setEntry(key, value string) {
	if err := s.session.Set(key, value); err != nil {
		s.logger.Debug("session write failed", "key", key, "err", err)
	}
}

func (s *Store) removeEntry(key string) {
	if err := s.session.Remove(key); err != nil {
		s.logger.Debug("session remove failed", "key", key, "err", err)
	}
}
