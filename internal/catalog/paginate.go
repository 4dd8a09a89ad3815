package catalog

// Slice returns the items visible under p. In pagination mode that is the
// window of the current page; in load-more and auto-scroll modes it is every
// page loaded so far. Disabled pagination shows everything.
//
// Slice has no state and never returns memory shared with items.
func Slice(items []*Item, p Pagination) []*Item {
	if !p.Enabled || p.ItemsPerPage <= 0 {
		return clone(items)
	}
	page := max(p.CurrentPage, 1)

	start := 0
	if p.Mode == ModePagination || p.Mode == "" {
		start = (page - 1) * p.ItemsPerPage
	}
	end := page * p.ItemsPerPage

	start = min(start, len(items))
	end = min(end, len(items))
	return clone(items[start:end])
}

// TotalPages returns how many pages of perPage items cover total items.
func TotalPages(total, perPage int) int {
	if total <= 0 || perPage <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

func clone(items []*Item) []*Item {
	if items == nil {
		return nil
	}
	out := make([]*Item, len(items))
	copy(out, items)
	return out
}
