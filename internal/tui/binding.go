package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/yiblet/sieve/internal/catalog"
)

// SnapshotMsg carries a new store state into the program.
type SnapshotMsg struct {
	Snapshot catalog.Snapshot
}

// binding forwards store notifications to the bubbletea loop. The slot
// holds at most one snapshot; a newer one replaces an undelivered older one,
// so the observer never blocks the store.
type binding struct {
	slot        chan catalog.Snapshot
	done        chan struct{}
	unsubscribe func()
}

func bind(store *catalog.Store) *binding {
	b := &binding{
		slot: make(chan catalog.Snapshot, 1),
		done: make(chan struct{}),
	}
	b.unsubscribe = store.Subscribe(b.observe)
	return b
}

func (b *binding) observe(snap catalog.Snapshot) {
	select {
	case <-b.slot:
	default:
	}
	select {
	case b.slot <- snap:
	default:
	}
}

// wait returns a command that blocks until the next snapshot arrives or the
// binding is closed.
func (b *binding) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case snap := <-b.slot:
			return SnapshotMsg{Snapshot: snap}
		case <-b.done:
			return nil
		}
	}
}

func (b *binding) close() {
	select {
	case <-b.done:
		return
	default:
	}
	b.unsubscribe()
	close(b.done)
}
