package scrape

import "github.com/fwojciec/pinexport"

// Store holds records keyed by link in first-insertion order.
// Store is not safe for concurrent use.
type Store struct {
	index   map[string]int
	records []pinexport.Record
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{index: make(map[string]int)}
}

// Add inserts a record unless one with the same link is already present.
// Returns false if the link was already stored; the stored record is kept.
func (s *Store) Add(r pinexport.Record) bool {
	if _, ok := s.index[r.Link]; ok {
		return false
	}
	s.index[r.Link] = len(s.records)
	s.records = append(s.records, r)
	return true
}

// Len returns the number of distinct records.
func (s *Store) Len() int {
	return len(s.records)
}

// Records returns a copy of the stored records in insertion order.
func (s *Store) Records() []pinexport.Record {
	out := make([]pinexport.Record, len(s.records))
	copy(out, s.records)
	return out
}
