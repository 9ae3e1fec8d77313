package stockpile

// nullSlot marks an unused sparse slot.
const nullSlot = ^uint32(0)

type page []uint32

// PagedSparseIndex maps entity indices to dense positions. The index space is
// split into fixed-size pages that are allocated on first use, so memory
// follows the number of touched pages rather than the highest index.
//
// Pages are never released on the hot path; Tidy reclaims pages that became
// entirely null.
type PagedSparseIndex struct {
	pages    []page
	pageSize uint32
	shift    uint32
}

// NewPagedSparseIndex returns an index using pages of pageSize slots.
// pageSize must be a power of two; see Config.SetPageSize.
func NewPagedSparseIndex(pageSize int) *PagedSparseIndex {
	if pageSize <= 0 || pageSize&(pageSize-1) != 0 {
		panic(ConfigError{Field: "page_size", Reason: "must be a positive power of two"})
	}
	shift := uint32(0)
	for 1<<shift < pageSize {
		shift++
	}
	return &PagedSparseIndex{
		pageSize: uint32(pageSize),
		shift:    shift,
	}
}

func (s *PagedSparseIndex) locate(i uint32) (int, int) {
	return int(i >> s.shift), int(i & (s.pageSize - 1))
}

// Contains reports whether i has a non-null slot.
func (s *PagedSparseIndex) Contains(i uint32) bool {
	p, off := s.locate(i)
	return p < len(s.pages) && s.pages[p] != nil && s.pages[p][off] != nullSlot
}

// Get returns the slot for i. The caller guarantees Contains(i); otherwise the
// result is either nullSlot or a panic on a missing page.
func (s *PagedSparseIndex) Get(i uint32) uint32 {
	p, off := s.locate(i)
	return s.pages[p][off]
}

// Lookup is the checked form of Get.
func (s *PagedSparseIndex) Lookup(i uint32) (uint32, bool) {
	p, off := s.locate(i)
	if p >= len(s.pages) || s.pages[p] == nil {
		return nullSlot, false
	}
	slot := s.pages[p][off]
	return slot, slot != nullSlot
}

// Set writes slot for i. The page must exist (see ReserveFor).
func (s *PagedSparseIndex) Set(i, slot uint32) {
	p, off := s.locate(i)
	s.pages[p][off] = slot
}

// ReserveFor makes sure the page holding i exists. It never shrinks.
func (s *PagedSparseIndex) ReserveFor(i uint32) {
	p, _ := s.locate(i)
	if p >= len(s.pages) {
		grown := make([]page, p+1, max(p+1, 2*len(s.pages)))
		copy(grown, s.pages)
		s.pages = grown
	}
	if s.pages[p] == nil {
		pg := make(page, s.pageSize)
		for k := range pg {
			pg[k] = nullSlot
		}
		s.pages[p] = pg
	}
}

// Erase nulls the slot for i. The page is kept.
func (s *PagedSparseIndex) Erase(i uint32) {
	p, off := s.locate(i)
	if p < len(s.pages) && s.pages[p] != nil {
		s.pages[p][off] = nullSlot
	}
}

// Tidy frees every page whose slots are all null and trims trailing empty
// page entries. It returns the number of pages freed.
func (s *PagedSparseIndex) Tidy() int {
	freed := 0
	for p, pg := range s.pages {
		if pg == nil {
			continue
		}
		empty := true
		for _, slot := range pg {
			if slot != nullSlot {
				empty = false
				break
			}
		}
		if empty {
			s.pages[p] = nil
			freed++
		}
	}
	last := len(s.pages)
	for last > 0 && s.pages[last-1] == nil {
		last--
	}
	clear(s.pages[last:])
	s.pages = s.pages[:last]
	return freed
}

// Pages returns the number of allocated pages.
func (s *PagedSparseIndex) Pages() int {
	n := 0
	for _, pg := range s.pages {
		if pg != nil {
			n++
		}
	}
	return n
}

// PageSize returns the number of slots per page.
func (s *PagedSparseIndex) PageSize() int {
	return int(s.pageSize)
}

// Clear drops every page.
func (s *PagedSparseIndex) Clear() {
	s.pages = nil
}
