// Package lifecycle holds the in-memory alert working set and applies the
// viewer's pending → acted_on / dismissed transitions.
package lifecycle

import (
	"sync"

	"spikeradar/internal/model"
)

// Store is the single mutable alert resource of a session. All mutations are
// atomic and last-write-wins. Operations on unknown ids are no-ops: a background
// refresh may legitimately evict an alert a user is about to click.
type Store struct {
	mu        sync.RWMutex
	alerts    []model.Alert
	index     map[model.AlertID]int
	overrides map[model.AlertID]model.Status
	expanded  ExpansionSet
	onChange  func()
}

// NewStore returns an empty store. onChange, when set, runs after every
// mutation that altered state, outside the lock.
func NewStore(onChange func()) *Store {
	return &Store{
		index:     make(map[model.AlertID]int),
		overrides: make(map[model.AlertID]model.Status),
		expanded:  make(ExpansionSet),
		onChange:  onChange,
	}
}

// Ingest replaces the working set with a freshly fetched collection, keeping
// source order. Local overrides survive per MergeStatus; overrides for ids
// that no longer appear are dropped.
func (s *Store) Ingest(alerts []model.Alert) {
	s.mu.Lock()
	next := make([]model.Alert, len(alerts))
	index := make(map[model.AlertID]int, len(alerts))
	overrides := make(map[model.AlertID]model.Status)

	for i, alert := range alerts {
		if local, ok := s.overrides[alert.ID]; ok {
			alert.Status = MergeStatus(alert.Status, local)
			if alert.Status == local {
				overrides[alert.ID] = local
			}
		}
		next[i] = alert
		index[alert.ID] = i
	}

	s.alerts = next
	s.index = index
	s.overrides = overrides
	s.mu.Unlock()
	s.changed()
}

// Act moves a pending alert to acted_on and opens its detail view.
// It reports whether a transition happened.
func (s *Store) Act(id model.AlertID) bool {
	s.mu.Lock()
	ok := s.transitionLocked(id, model.StatusActedOn)
	if ok {
		s.expanded.Open(id)
	}
	s.mu.Unlock()
	if ok {
		s.changed()
	}
	return ok
}

// Dismiss moves a pending alert to dismissed. Expansion state is untouched.
func (s *Store) Dismiss(id model.AlertID) bool {
	s.mu.Lock()
	ok := s.transitionLocked(id, model.StatusDismissed)
	s.mu.Unlock()
	if ok {
		s.changed()
	}
	return ok
}

// ToggleExpand flips id in the expansion set and reports the new membership.
func (s *Store) ToggleExpand(id model.AlertID) bool {
	s.mu.Lock()
	open := s.expanded.Toggle(id)
	s.mu.Unlock()
	s.changed()
	return open
}

func (s *Store) transitionLocked(id model.AlertID, to model.Status) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}
	if s.alerts[i].Status.Terminal() {
		return false
	}
	s.alerts[i].Status = to
	s.overrides[id] = to
	return true
}

// PendingCount counts pending alerts at call time.
func (s *Store) PendingCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, alert := range s.alerts {
		if alert.Status == model.StatusPending {
			count++
		}
	}
	return count
}

// Len returns the number of alerts in the working set.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.alerts)
}

// Alerts returns a copy of the working set in display order.
func (s *Store) Alerts() []model.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Alert, len(s.alerts))
	copy(out, s.alerts)
	return out
}

// Alert looks up a single alert.
func (s *Store) Alert(id model.AlertID) (model.Alert, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return model.Alert{}, false
	}
	return s.alerts[i], true
}

// IsExpanded reports whether id is shown in detail view.
func (s *Store) IsExpanded(id model.AlertID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expanded.Has(id)
}

// Expanded lists expanded ids.
func (s *Store) Expanded() []model.AlertID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expanded.IDs()
}

func (s *Store) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}
