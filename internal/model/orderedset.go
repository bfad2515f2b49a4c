package model

// OrderedSet is a string set that remembers insertion order.
type OrderedSet struct {
	items []string
	index map[string]struct{}
}

// NewOrderedSet creates a set seeded with items, skipping repeats.
func NewOrderedSet(items ...string) *OrderedSet {
	s := &OrderedSet{index: make(map[string]struct{}, len(items))}
	for _, it := range items {
		s.Add(it)
	}
	return s
}

// Add inserts item if absent and reports whether it was added.
func (s *OrderedSet) Add(item string) bool {
	if _, ok := s.index[item]; ok {
		return false
	}
	s.index[item] = struct{}{}
	s.items = append(s.items, item)
	return true
}

// Contains reports membership.
func (s *OrderedSet) Contains(item string) bool {
	_, ok := s.index[item]
	return ok
}

// Items returns the members in insertion order.
func (s *OrderedSet) Items() []string {
	return s.items
}

// Len returns the member count.
func (s *OrderedSet) Len() int {
	return len(s.items)
}
