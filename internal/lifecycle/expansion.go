package lifecycle

import (
	"sort"

	"spikeradar/internal/model"
)

// ExpansionSet holds the alert ids currently shown in detail view. It belongs
// to the viewing session and is never stored on the alert itself.
type ExpansionSet map[model.AlertID]struct{}

// Toggle flips membership and reports whether id is now expanded.
func (s ExpansionSet) Toggle(id model.AlertID) bool {
	if _, ok := s[id]; ok {
		delete(s, id)
		return false
	}
	s[id] = struct{}{}
	return true
}

func (s ExpansionSet) Open(id model.AlertID) { s[id] = struct{}{} }

func (s ExpansionSet) Has(id model.AlertID) bool {
	_, ok := s[id]
	return ok
}

// IDs returns the members in lexical order.
func (s ExpansionSet) IDs() []model.AlertID {
	ids := make([]model.AlertID, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
