package report

import "slices"

// Selection is an ordered set of record ids.
// It is not safe for concurrent use; [Orchestrator] guards its own.
type Selection struct {
	set   map[string]bool
	order []string
}

// NewSelection creates an empty selection.
func NewSelection() *Selection {
	return &Selection{set: make(map[string]bool)}
}

// Has reports whether id is selected.
func (s *Selection) Has(id string) bool { return s.set[id] }

// Len returns the number of selected ids.
func (s *Selection) Len() int { return len(s.order) }

// IDs returns the selected ids in the order they were selected.
func (s *Selection) IDs() []string { return slices.Clone(s.order) }

// Toggle flips id and reports whether it is now selected.
func (s *Selection) Toggle(id string) bool {
	if s.set[id] {
		s.remove(id)
		return false
	}
	s.add(id)
	return true
}

// AllSelected reports whether every id is selected. It is false for no ids.
func (s *Selection) AllSelected(ids []string) bool {
	if len(ids) == 0 {
		return false
	}
	for _, id := range ids {
		if !s.set[id] {
			return false
		}
	}
	return true
}

// ToggleAll deselects ids when all of them are selected, and selects all
// of them otherwise. Ids outside the given slice are left alone.
func (s *Selection) ToggleAll(ids []string) {
	if s.AllSelected(ids) {
		for _, id := range ids {
			s.remove(id)
		}
		return
	}
	for _, id := range ids {
		s.add(id)
	}
}

// Clear removes every id.
func (s *Selection) Clear() {
	clear(s.set)
	s.order = nil
}

func (s *Selection) add(id string) {
	if !s.set[id] {
		s.set[id] = true
		s.order = append(s.order, id)
	}
}

func (s *Selection) remove(id string) {
	if s.set[id] {
		delete(s.set, id)
		s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })
	}
}
