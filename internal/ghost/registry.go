// Package ghost collects data-only records that are declared one at a time
// and feeds the whole collection into a catalog store.
package ghost

import (
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/yiblet/sieve/internal/catalog"
)

// Sink receives the full record collection after every change.
// *catalog.Store satisfies it.
type Sink interface {
	SetItems(records []catalog.Record)
}

// Registry keeps registered records in insertion order, keyed by identity.
// Registering an identity that is already present replaces the record in
// place and keeps its position.
//
// A Registry is safe for concurrent use. One goroutine at a time publishes,
// and it always sends the latest collection, so the sink never ends up
// holding an older one. A call made while another goroutine is publishing
// may return before its change reaches the sink.
type Registry struct {
	mu         sync.Mutex
	sink       Sink
	order      []string
	records    map[string]catalog.Record
	dirty      bool
	publishing bool
}

// NewRegistry creates a registry that pushes into sink. A nil sink keeps the
// collection without publishing it.
func NewRegistry(sink Sink) *Registry {
	return &Registry{
		sink:    sink,
		records: make(map[string]catalog.Record),
	}
}

// Register adds or replaces rec and returns its identity. Records without an
// "id" or "_id" field are copied once and given a generated identity, so the
// caller's map is never modified.
func (r *Registry) Register(rec catalog.Record) (string, error) {
	if rec == nil {
		return "", fmt.Errorf("cannot register a nil record")
	}

	id, rec := withIdentity(rec)

	r.mu.Lock()
	r.putLocked(id, rec)
	r.dirty = true
	r.mu.Unlock()

	r.publish()
	return id, nil
}

// RegisterAll registers every record and publishes once. It returns the
// identities in the order given. Nothing is registered if any record is nil.
func (r *Registry) RegisterAll(recs []catalog.Record) ([]string, error) {
	for i, rec := range recs {
		if rec == nil {
			return nil, fmt.Errorf("cannot register a nil record at position %d", i)
		}
	}

	ids := make([]string, len(recs))
	r.mu.Lock()
	for i, rec := range recs {
		id, withID := withIdentity(rec)
		r.putLocked(id, withID)
		ids[i] = id
	}
	r.dirty = true
	r.mu.Unlock()

	r.publish()
	return ids, nil
}

// Unregister removes the record with the given identity. It reports whether
// anything was removed; removing an unknown identity does not publish.
func (r *Registry) Unregister(id string) bool {
	r.mu.Lock()
	if _, exists := r.records[id]; !exists {
		r.mu.Unlock()
		return false
	}
	delete(r.records, id)
	if i := slices.Index(r.order, id); i >= 0 {
		r.order = slices.Delete(r.order, i, i+1)
	}
	r.dirty = true
	r.mu.Unlock()

	r.publish()
	return true
}

// Records returns the registered records in insertion order.
func (r *Registry) Records() []catalog.Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// Len returns the number of registered records.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

// withIdentity returns the identity of rec, copying rec once to add a
// generated one when it has none.
func withIdentity(rec catalog.Record) (string, catalog.Record) {
	if id, ok := catalog.RecordID(rec); ok {
		return id, rec
	}
	id := uuid.NewString()
	withID := make(catalog.Record, len(rec)+1)
	for k, v := range rec {
		withID[k] = v
	}
	withID["id"] = id
	return id, withID
}

func (r *Registry) putLocked(id string, rec catalog.Record) {
	if _, exists := r.records[id]; !exists {
		r.order = append(r.order, id)
	}
	r.records[id] = rec
}

// snapshotLocked returns the same record maps in a fresh slice, so the sink
// can recognize unchanged records by identity.
func (r *Registry) snapshotLocked() []catalog.Record {
	out := make([]catalog.Record, len(r.order))
	for i, id := range r.order {
		out[i] = r.records[id]
	}
	return out
}

// publish sends the current collection until no change is left unsent. A
// goroutine that finds another one publishing leaves its change to it.
func (r *Registry) publish() {
	r.mu.Lock()
	if r.publishing {
		r.mu.Unlock()
		return
	}
	r.publishing = true
	for r.dirty {
		r.dirty = false
		records := r.snapshotLocked()
		r.mu.Unlock()

		if r.sink != nil {
			r.sink.SetItems(records)
		}

		r.mu.Lock()
	}
	r.publishing = false
	r.mu.Unlock()
}
