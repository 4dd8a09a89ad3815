package memstore

import (
	"errors"
	"sync"
	"testing"

	"github.com/yiblet/sieve/internal/session"
)

// TestInterfaceCompilation verifies MemoryStore satisfies the session interfaces.
func TestInterfaceCompilation(t *testing.T) {
	var _ session.Store = (*MemoryStore)(nil)
	var _ session.Backend = (*memoryBackend)(nil)
}

func TestBackend_GetSet(t *testing.T) {
	st := NewMemoryStore()
	b := st.Session("shop")

	if err := b.Set("catalog.search", `"red"`); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	value, err := b.Get("catalog.search")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if value != `"red"` {
		t.Errorf("expected value '\"red\"', got %s", value)
	}

	if err := b.Set("catalog.search", `"blue"`); err != nil {
		t.Fatalf("Set() update error = %v", err)
	}
	value, _ = b.Get("catalog.search")
	if value != `"blue"` {
		t.Errorf("expected updated value, got %s", value)
	}

	_, err = b.Get("missing")
	if !errors.Is(err, session.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestBackend_Remove(t *testing.T) {
	st := NewMemoryStore()
	b := st.Session("shop")

	b.Set("catalog.page", "3")
	if err := b.Remove("catalog.page"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := b.Get("catalog.page"); !errors.Is(err, session.ErrNotFound) {
		t.Errorf("expected removed key to be gone, got %v", err)
	}

	// Removing a missing key is not an error.
	if err := b.Remove("catalog.page"); err != nil {
		t.Errorf("expected no error removing missing key, got %v", err)
	}
	if err := st.Session("never-used").Remove("x"); err != nil {
		t.Errorf("expected no error removing from empty session, got %v", err)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	st := NewMemoryStore()
	a := st.Session("a")
	b := st.Session("b")

	a.Set("k", "1")
	if _, err := b.Get("k"); err == nil {
		t.Error("expected session b not to see session a's entry")
	}

	b.Set("k", "2")
	names, err := st.Names()
	if err != nil {
		t.Fatalf("Names() error = %v", err)
	}
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("Names() = %v, want [a b]", names)
	}

	b.Remove("k")
	names, _ = st.Names()
	if len(names) != 1 || names[0] != "a" {
		t.Errorf("expected emptied session to disappear, got %v", names)
	}
}

func TestDefaultSessionName(t *testing.T) {
	st := NewMemoryStore()
	st.Session("").Set("k", "v")

	v, err := st.Session(session.DefaultName).Get("k")
	if err != nil || v != "v" {
		t.Errorf("expected empty name to use the default session, got %q, %v", v, err)
	}
}

func TestBackend_ListReturnsCopy(t *testing.T) {
	st := NewMemoryStore()
	b := st.Session("shop")
	b.Set("a", "1")
	b.Set("b", "2")

	entries, err := b.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 2 || entries["a"] != "1" {
		t.Errorf("unexpected entries %v", entries)
	}

	entries["a"] = "changed"
	if v, _ := b.Get("a"); v != "1" {
		t.Error("List exposed internal state")
	}
}

func TestConcurrentAccess(t *testing.T) {
	st := NewMemoryStore()
	b := st.Session("shop")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := string(rune('a' + n))
			b.Set(key, "v")
			b.Get(key)
			b.List()
			b.Remove(key)
		}(i)
	}
	wg.Wait()

	entries, _ := b.List()
	if len(entries) != 0 {
		t.Errorf("expected all entries removed, got %v", entries)
	}
}
