package catalog

import "testing"

func TestSnapshot_Facets(t *testing.T) {
	s := New(Options{})
	s.SetItems([]Record{
		{"id": "1", "color": "red", "price": "10"},
		{"id": "2", "color": "Red, blue", "price": "25.5"},
		{"id": "3", "color": "green"},
		{"id": "4", "color": "blue,blue", "price": "n/a"},
	})
	snap := s.Snapshot()

	opts := snap.Options("Color")
	want := []Option{{"blue", 2}, {"red", 2}, {"green", 1}}
	if len(opts) != len(want) {
		t.Fatalf("Options() = %v, want %v", opts, want)
	}
	for i := range want {
		if opts[i] != want[i] {
			t.Fatalf("Options() = %v, want %v", opts, want)
		}
	}

	lo, hi, ok := snap.Bounds("price")
	if !ok || lo != 10 || hi != 25.5 {
		t.Errorf("Bounds(price) = %v, %v, %v", lo, hi, ok)
	}
	if _, _, ok := snap.Bounds("weight"); ok {
		t.Error("expected no bounds for a missing field")
	}
}

func TestSnapshot_ActiveTags(t *testing.T) {
	s := New(Options{})
	s.SetItems(colorRecords())
	s.Batch(func() {
		s.SetFilter("color", AnyOf("red", "blue"))
		s.SetFilter(RangeKey("price"), Between(12, 30))
		s.SetSearch("shirt")
	})

	tags := s.Snapshot().ActiveTags()
	if len(tags) != 4 {
		t.Fatalf("expected 4 tags, got %d: %+v", len(tags), tags)
	}
	if tags[0].Kind != TagOption || tags[0].Option != "red" || tags[0].Key != "color" {
		t.Errorf("unexpected first tag %+v", tags[0])
	}
	if tags[2].Kind != TagRange || tags[2].Label != "price: 12 – 30" {
		t.Errorf("unexpected range tag %+v", tags[2])
	}
	if tags[3].Kind != TagSearch || tags[3].Label != `"shirt"` {
		t.Errorf("unexpected search tag %+v", tags[3])
	}
}

func TestSnapshot_Counters(t *testing.T) {
	s := New(Options{Pagination: Pagination{Enabled: true, ItemsPerPage: 2}})
	if !s.Snapshot().Loading() {
		t.Error("expected Loading before the first SetItems")
	}

	s.SetItems(colorRecords())
	snap := s.Snapshot()
	if snap.Loading() {
		t.Error("expected Loading to clear after SetItems")
	}
	if snap.TotalPages() != 2 {
		t.Errorf("TotalPages() = %d, want 2", snap.TotalPages())
	}
	if !snap.HasMore() {
		t.Error("expected HasMore on page 1 of 2")
	}
	if got := len(snap.Visible()); got != 2 {
		t.Errorf("Visible() has %d items, want 2", got)
	}

	s.SetPage(2)
	snap = s.Snapshot()
	if snap.HasMore() {
		t.Error("expected no more pages on the last page")
	}
	equalIDs(t, snap.Visible(), "3")

	s.SetSearch("nothing matches this")
	snap = s.Snapshot()
	if snap.TotalPages() != 0 || len(snap.Visible()) != 0 {
		t.Errorf("expected empty result, got %d pages", snap.TotalPages())
	}
}
