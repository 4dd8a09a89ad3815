// Package catalog is the reactive state container behind every card widget.
// It owns the item collection, the active filter, search and sort criteria
// and the derived filtered result, and it publishes immutable snapshots of
// that state to any number of observers.
package catalog

import (
	"context"
	"fmt"
	"io"
	"reflect"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/text/collate"
)

// Observer receives snapshots. It is called synchronously on the goroutine
// that caused the change, never concurrently with another notification.
type Observer func(Snapshot)

// Options configures a Store.
type Options struct {
	// Session receives best-effort copies of the criteria and page. Nil
	// disables persistence.
	Session SessionStore
	// Logger receives diagnostics. Nil discards them.
	Logger *log.Logger
	// Locale selects the collation used by string sorts. Defaults to "en".
	Locale string
	// Pagination is the initial pagination state. Zero fields take the
	// values of DefaultPagination.
	Pagination Pagination
}

type subscription struct {
	fn Observer
	// since is the version delivered on registration; older queued
	// snapshots are not sent to this subscription.
	since uint64
}

// Store holds the catalog state. Create one per page with New and release
// it with Close. The zero value is not usable.
type Store struct {
	mu sync.Mutex

	items    []*Item
	records  []Record
	filtered []*Item
	filters  map[string]FilterValue
	search   string
	sort     SortConfig
	page     Pagination
	loaded   bool
	version  uint64

	collator *collate.Collator
	session  SessionStore
	logger   *log.Logger

	subs     []*subscription
	batching bool
	pending  bool
	queue    []Snapshot
	draining bool

	restored bool
	closed   bool

	// recomputes counts pipeline passes.
	recomputes int
}

// New creates a store with no items and no criteria.
func New(opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	locale := opts.Locale
	if locale == "" {
		locale = "en"
	}

	page := opts.Pagination.sanitized(DefaultPagination())
	page.TotalItems = 0

	return &Store{
		filters:  make(map[string]FilterValue),
		sort:     SortBy("", Asc, SortString),
		page:     page,
		collator: newCollator(locale),
		session:  opts.Session,
		logger:   logger,
	}
}

// Close drops every observer. Later mutations are ignored.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.subs = nil
	s.queue = nil
	return nil
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers fn and immediately delivers the current state to it.
// The first subscription restores criteria saved in the session. The returned
// function removes this registration; calling it again does nothing.
func (s *Store) Subscribe(fn Observer) (unsubscribe func()) {
	sub := &subscription{fn: fn}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return func() {}
	}
	if !s.restored {
		s.restored = true
		s.restoreLocked()
	}
	sub.since = s.version
	s.subs = append(s.subs, sub)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	fn(snap)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if i := slices.Index(s.subs, sub); i >= 0 {
				s.subs = slices.Delete(s.subs, i, i+1)
			}
		})
	}
}

// Batch runs fn with notifications held back. If fn changed anything, one
// notification carrying the final state follows; otherwise none does.
// Batches nest: only the outermost one notifies.
func (s *Store) Batch(fn func()) {
	s.mu.Lock()
	if s.batching {
		s.mu.Unlock()
		fn()
		return
	}
	s.batching = true
	s.pending = false
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.batching = false
		if s.pending {
			s.pending = false
			s.enqueueLocked()
		}
		s.mu.Unlock()
		s.drain()
	}()
	fn()
}

// SetItems replaces the item collection. A call whose records are the very
// same maps, in the same order, as the previous call is ignored, including
// any records that were skipped as invalid. Records already normalized by an
// earlier call are reused, keeping their identity when they moved. Records
// without an id only keep it while the same map is passed in.
func (s *Store) SetItems(records []Record) {
	s.mutate(func() bool {
		if s.loaded && sameRecords(s.records, records) {
			s.logger.Debug("items unchanged, skipping recompute", "count", len(records))
			return false
		}

		prev := make(map[uintptr]*Item, len(s.items))
		for _, it := range s.items {
			prev[recordPtr(it.source)] = it
		}

		items := make([]*Item, 0, len(records))
		for _, rec := range records {
			idx := len(items)
			if old, ok := prev[recordPtr(rec)]; ok && rec != nil {
				// a map listed twice is normalized afresh the second time
				delete(prev, recordPtr(rec))
				if old.index != idx {
					old = old.withIndex(idx)
				}
				items = append(items, old)
				continue
			}
			it, err := safeNormalize(rec, idx)
			if err != nil {
				s.logger.Warn("skipping item", "index", idx, "err", err)
				continue
			}
			items = append(items, it)
		}

		s.items = items
		s.records = slices.Clone(records)
		s.loaded = true
		s.recomputeLocked()
		return true
	})
}

// SetFilter sets the value of a filter key. An empty selection, or a range
// covering the full extent of the data, removes the key instead. So does a
// range key given a value that is not a range.
func (s *Store) SetFilter(key string, value FilterValue, opts ...MutationOption) {
	m := applyOptions(opts)
	s.mutate(func() bool {
		kind, _ := ClassifyKey(key)
		mismatch := kind == KindRange && !value.IsRange
		if mismatch {
			s.logger.Debug("range key given a non-range value, removing it", "key", key)
		}
		if mismatch || s.isEmptyFilterLocked(key, value) {
			if _, ok := s.filters[key]; !ok {
				return false
			}
			delete(s.filters, key)
		} else {
			if cur, ok := s.filters[key]; ok && cur.Equal(value) {
				return false
			}
			s.filters[key] = value.Clone()
		}
		s.criteriaChangedLocked(m)
		return true
	})
}

// RemoveFilter deletes a filter key.
func (s *Store) RemoveFilter(key string, opts ...MutationOption) {
	m := applyOptions(opts)
	s.mutate(func() bool {
		if _, ok := s.filters[key]; !ok {
			return false
		}
		delete(s.filters, key)
		s.criteriaChangedLocked(m)
		return true
	})
}

// SetSearch sets the free-text query. An empty query matches everything.
func (s *Store) SetSearch(query string, opts ...MutationOption) {
	m := applyOptions(opts)
	s.mutate(func() bool {
		if s.search == query {
			return false
		}
		s.search = query
		s.criteriaChangedLocked(m)
		return true
	})
}

// SetSort changes the ordering and returns to page 1. An empty field
// restores natural order.
func (s *Store) SetSort(field string, dir Direction, typ SortType) {
	cfg := SortBy(field, dir, typ)
	s.mutate(func() bool {
		if cfg == s.sort && s.page.CurrentPage == 1 {
			return false
		}
		s.sort = cfg
		s.criteriaChangedLocked(mutation{})
		return true
	})
}

// ResetFilters clears filters, search and sort, returns to page 1 and erases
// every persisted session entry.
func (s *Store) ResetFilters() {
	s.mutate(func() bool {
		s.filters = make(map[string]FilterValue)
		s.search = ""
		s.sort = SortBy("", Asc, SortString)
		s.page.CurrentPage = 1
		s.recomputeLocked()
		s.clearSessionLocked()
		return true
	})
}

// SetPagination edits the pagination state. TotalItems is owned by the store
// and any change fn makes to it is discarded.
func (s *Store) SetPagination(fn func(*Pagination)) {
	s.mutate(func() bool {
		next := s.page
		fn(&next)
		next = next.sanitized(s.page)
		next.TotalItems = len(s.filtered)
		if next == s.page {
			return false
		}
		s.page = next
		s.persistLocked()
		return true
	})
}

// SetPage moves to page n. Values below 1 are treated as 1; pages past the
// end are accepted and simply show nothing.
func (s *Store) SetPage(n int) {
	s.SetPagination(func(p *Pagination) { p.CurrentPage = n })
}

// WatchReset calls ResetFilters each time signal fires, until ctx is done or
// signal is closed.
func (s *Store) WatchReset(ctx context.Context, signal <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-signal:
			if !ok {
				return nil
			}
			s.logger.Info("reset signal received")
			s.ResetFilters()
		}
	}
}

// mutate runs fn under the lock and schedules a notification when fn reports
// a change.
func (s *Store) mutate(fn func() bool) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if fn() {
		s.version++
		if s.batching {
			s.pending = true
		} else {
			s.enqueueLocked()
		}
	}
	s.mu.Unlock()
	s.drain()
}

func (s *Store) criteriaChangedLocked(m mutation) {
	if !m.keepPage {
		s.page.CurrentPage = 1
	}
	s.recomputeLocked()
	s.persistLocked()
}

// isEmptyFilterLocked reports whether value constrains nothing.
func (s *Store) isEmptyFilterLocked(key string, value FilterValue) bool {
	kind, field := ClassifyKey(key)
	if kind == KindMulti {
		return len(value.selected()) == 0
	}
	if !value.IsRange {
		return true
	}
	lo, hi, ok := fieldBounds(s.items, field)
	return ok && value.Min == lo && value.Max == hi
}

// recomputeLocked derives the filtered, sorted result from items and criteria.
func (s *Store) recomputeLocked() {
	s.recomputes++

	filters := compileFilters(s.filters)
	terms := searchTerms(s.search)

	out := make([]*Item, 0, len(s.items))
	for _, it := range s.items {
		if matches(it, filters, terms) {
			out = append(out, it)
		}
	}
	sortItems(out, s.sort, s.collator)

	s.filtered = out
	s.page.TotalItems = len(out)
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{
		Items:      s.items,
		Filtered:   s.filtered,
		Filters:    s.filters,
		Search:     s.search,
		Sort:       s.sort,
		Pagination: s.page,
		Loaded:     s.loaded,
		Version:    s.version,
	}
	return snap.Clone()
}

func (s *Store) enqueueLocked() {
	if len(s.subs) == 0 {
		return
	}
	s.queue = append(s.queue, s.snapshotLocked())
}

// drain delivers queued snapshots in order. Only one goroutine drains at a
// time; snapshots queued by observers during delivery are picked up by the
// same loop.
func (s *Store) drain() {
	s.mu.Lock()
	if s.draining {
		s.mu.Unlock()
		return
	}
	s.draining = true
	for len(s.queue) > 0 {
		snap := s.queue[0]
		s.queue = s.queue[1:]
		subs := slices.Clone(s.subs)
		s.mu.Unlock()

		for _, sub := range subs {
			if snap.Version > sub.since {
				sub.fn(snap.Clone())
			}
		}

		s.mu.Lock()
	}
	s.draining = false
	s.mu.Unlock()
}

// sameRecords reports whether next holds, element by element, the same maps
// as prev. Nil entries compare equal to each other.
func sameRecords(prev, next []Record) bool {
	if len(prev) != len(next) {
		return false
	}
	for i, rec := range next {
		if recordPtr(prev[i]) != recordPtr(rec) {
			return false
		}
	}
	return true
}

func recordPtr(r Record) uintptr {
	if r == nil {
		return 0
	}
	return reflect.ValueOf(r).Pointer()
}

func safeNormalize(rec Record, index int) (it *Item, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to normalize record: %v", r)
		}
	}()
	if rec == nil {
		return nil, fmt.Errorf("record is nil")
	}
	return Normalize(rec, index), nil
}
