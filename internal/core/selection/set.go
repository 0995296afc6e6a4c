package selection

import "github.com/skykid17/smartlp-sub005/internal/core/record"

// Set is a duplicate-free set of IDs that remembers insertion order.
// The zero value is an empty set ready to use.
type Set struct {
	order []record.ID
	index map[record.ID]struct{}
}

// NewSet builds a set from ids, dropping duplicates and empty IDs.
func NewSet(ids ...record.ID) *Set {
	s := &Set{}
	s.Add(ids...)
	return s
}

// Add inserts ids not already present. It returns how many were added.
func (s *Set) Add(ids ...record.ID) int {
	if s.index == nil {
		s.index = make(map[record.ID]struct{}, len(ids))
	}

	added := 0
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := s.index[id]; ok {
			continue
		}
		s.index[id] = struct{}{}
		s.order = append(s.order, id)
		added++
	}
	return added
}

// Remove deletes ids from the set. It returns how many were removed.
func (s *Set) Remove(ids ...record.ID) int {
	removed := 0
	for _, id := range ids {
		if _, ok := s.index[id]; ok {
			delete(s.index, id)
			removed++
		}
	}
	if removed == 0 {
		return 0
	}

	kept := s.order[:0]
	for _, id := range s.order {
		if _, ok := s.index[id]; ok {
			kept = append(kept, id)
		}
	}
	s.order = kept
	return removed
}

// Has reports membership.
func (s *Set) Has(id record.ID) bool {
	_, ok := s.index[id]
	return ok
}

// Len returns the number of members.
func (s *Set) Len() int { return len(s.order) }

// IDs returns a copy of the members in insertion order.
func (s *Set) IDs() []record.ID {
	out := make([]record.ID, len(s.order))
	copy(out, s.order)
	return out
}

// IntersectCount returns |s ∩ other|.
func (s *Set) IntersectCount(other *Set) int {
	if other == nil {
		return 0
	}
	a, b := s, other
	if b.Len() < a.Len() {
		a, b = b, a
	}
	n := 0
	for _, id := range a.order {
		if b.Has(id) {
			n++
		}
	}
	return n
}
