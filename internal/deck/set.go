package deck

// IDSet is an append-only set of match ids that remembers insertion order.
type IDSet struct {
	order []string
	index map[string]struct{}
}

func NewIDSet() *IDSet {
	return &IDSet{index: make(map[string]struct{})}
}

// Add reports whether the id was new.
func (s *IDSet) Add(id string) bool {
	if _, ok := s.index[id]; ok {
		return false
	}
	s.index[id] = struct{}{}
	s.order = append(s.order, id)
	return true
}

func (s *IDSet) Has(id string) bool {
	_, ok := s.index[id]
	return ok
}

func (s *IDSet) Len() int { return len(s.order) }

// IDs returns a copy of the ids in insertion order.
func (s *IDSet) IDs() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
