package gallery

// DefaultPageSize is the number of items shown per page.
const DefaultPageSize = 9

// Pager slices a fetched item list into fixed-size pages. Pages are
// 1-indexed and the current page is always clamped to the valid range, so
// navigation can never leave the pager in an out-of-bounds state.
type Pager struct {
	items    []Item
	page     int
	pageSize int
}

// NewPager creates a Pager over items, positioned on page 1.
func NewPager(items []Item, pageSize int) *Pager {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Pager{
		items:    items,
		page:     1,
		pageSize: pageSize,
	}
}

// Page returns the current page number.
func (p *Pager) Page() int {
	return p.page
}

// TotalPages returns ceil(len(items) / pageSize), never less than 1 so that
// the page invariant holds even for an empty list.
func (p *Pager) TotalPages() int {
	n := (len(p.items) + p.pageSize - 1) / p.pageSize
	if n < 1 {
		n = 1
	}
	return n
}

// Len returns the total number of items.
func (p *Pager) Len() int {
	return len(p.items)
}

// SetPage moves to page n, clamped to [1, TotalPages].
func (p *Pager) SetPage(n int) {
	if n < 1 {
		n = 1
	}
	if total := p.TotalPages(); n > total {
		n = total
	}
	p.page = n
}

// Next advances one page, clamped at the last page.
func (p *Pager) Next() {
	p.SetPage(p.page + 1)
}

// Prev moves back one page, clamped at page 1.
func (p *Pager) Prev() {
	p.SetPage(p.page - 1)
}

// Visible returns the slice of items on the current page. The result is
// fully determined by the item list and the page number.
func (p *Pager) Visible() []Item {
	start := (p.page - 1) * p.pageSize
	if start >= len(p.items) {
		return nil
	}
	end := start + p.pageSize
	if end > len(p.items) {
		end = len(p.items)
	}
	return p.items[start:end]
}
