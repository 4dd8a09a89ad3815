package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/yiblet/sieve/internal/catalog"
	"github.com/yiblet/sieve/internal/ghost"
	"github.com/yiblet/sieve/internal/logging"
	"github.com/yiblet/sieve/internal/session/memstore"
	"github.com/yiblet/sieve/internal/tui"
)

func main() {
	fmt.Println("sieve Catalog Demo")

	sessions := memstore.NewMemoryStore()
	defer sessions.Close()
	logger := logging.New(os.Stderr, log.WarnLevel)

	store := catalog.New(catalog.Options{
		Session: sessions.Session("demo"),
		Logger:  logger,
		Pagination: catalog.Pagination{
			CurrentPage:  1,
			ItemsPerPage: 3,
			Enabled:      true,
			Mode:         catalog.ModePagination,
			PersistPage:  true,
		},
	})
	defer store.Close()

	unsubscribe := store.Subscribe(func(snap catalog.Snapshot) {
		fmt.Printf("  -> v%d %s\n", snap.Version, tui.Counter(snap))
	})
	defer unsubscribe()

	registry := ghost.NewRegistry(store)
	cards := []catalog.Record{
		{"id": "lamp", "title": "Brass Lamp", "category": "lighting", "price": "49 €", "added": "2024-03-01"},
		{"id": "sofa", "title": "Élégante Sofa", "category": "seating", "price": 899, "added": "2023-11-12"},
		{"id": "chair", "title": "Oak Chair", "category": "seating", "price": 129, "added": "2024-01-20"},
		{"id": "desk", "title": "Standing Desk", "category": "desks", "price": "1299,00", "added": "2022-06-05"},
		{"id": "rug", "title": "Wool Rug", "category": "textiles", "price": 240, "added": "2024-05-17"},
		{"title": "Mystery Box", "category": "misc"},
	}

	fmt.Println("\nLoading cards:")
	if _, err := registry.RegisterAll(cards); err != nil {
		logger.Fatal("failed to register cards", "error", err)
	}
	show(store.Snapshot())

	fmt.Println("\nFiltering to seating and lighting:")
	store.SetFilter("category", catalog.AnyOf("seating", "lighting"))
	show(store.Snapshot())

	fmt.Println("\nSearching for \"elegante\" (accents ignored):")
	store.SetSearch("elegante")
	show(store.Snapshot())

	fmt.Println("\nBatching a reset, a price range and a sort:")
	store.Batch(func() {
		store.ResetFilters()
		store.SetFilter(catalog.RangeKey("price"), catalog.Between(100, 1000))
		store.SetSort("price", catalog.Desc, catalog.SortNumber)
	})
	show(store.Snapshot())

	fmt.Println("\nNewest first, page 2:")
	store.Batch(func() {
		store.RemoveFilter(catalog.RangeKey("price"))
		store.SetSort("added", catalog.Desc, catalog.SortDate)
	})
	store.SetPage(2)
	show(store.Snapshot())

	fmt.Println("\nSession entries:")
	backend := sessions.Session("demo")
	for _, key := range catalog.SessionKeys {
		if value, err := backend.Get(key); err == nil {
			fmt.Printf("  %s = %s\n", key, value)
		}
	}

	fmt.Println("\nRestoring into a fresh store:")
	restored := catalog.New(catalog.Options{
		Session: sessions.Session("demo"),
		Pagination: catalog.Pagination{
			ItemsPerPage: 3,
			Enabled:      true,
			PersistPage:  true,
		},
	})
	defer restored.Close()
	stop := restored.Subscribe(func(catalog.Snapshot) {})
	defer stop()
	restored.SetItems(registry.Records())
	show(restored.Snapshot())

	fmt.Printf("\nDemo complete! (Using in-memory session)\n")
}

func show(snap catalog.Snapshot) {
	for _, tag := range snap.ActiveTags() {
		fmt.Printf("  [%s]", tag.Label)
	}
	if len(snap.ActiveTags()) > 0 {
		fmt.Println()
	}
	for i, it := range snap.Visible() {
		fmt.Printf("  %d. %-16s %-10s %v\n", i+1, tui.CardTitle(it), it.String("category"), it.String("price"))
	}
	fmt.Printf("  %s\n", tui.Counter(snap))
}
