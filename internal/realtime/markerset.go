package realtime

import (
	"sync"

	"github.com/tmusial/convoy/internal/models"
)

// MarkerSet is a client-side view of a group's markers kept current by
// applying change events one row at a time, instead of re-fetching the
// whole list on every push. Concurrent edits to the same marker resolve
// as last event applied wins.
type MarkerSet struct {
	mu      sync.RWMutex
	markers map[string]*models.Marker
	order   []string
}

// NewMarkerSet builds a set primed with an initial fetch.
func NewMarkerSet(initial []*models.Marker) *MarkerSet {
	s := &MarkerSet{markers: make(map[string]*models.Marker, len(initial))}
	for _, m := range initial {
		s.markers[m.ID] = m
		s.order = append(s.order, m.ID)
	}
	return s
}

// Apply merges one change event into the set. Events for other tables
// are ignored. Unknown update targets are treated as inserts, since a
// subscriber may connect between its initial fetch and the insert event.
func (s *MarkerSet) Apply(ev Event) {
	if ev.Table != "markers" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev.Type {
	case EventInsert, EventUpdate:
		marker, ok := ev.Row.(*models.Marker)
		if !ok {
			return
		}
		if _, exists := s.markers[marker.ID]; !exists {
			s.order = append(s.order, marker.ID)
		}
		s.markers[marker.ID] = marker
	case EventDelete:
		if _, exists := s.markers[ev.RowID]; !exists {
			return
		}
		delete(s.markers, ev.RowID)
		for i, id := range s.order {
			if id == ev.RowID {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
}

// Snapshot returns the markers in insertion order.
func (s *MarkerSet) Snapshot() []*models.Marker {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Marker, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.markers[id])
	}
	return out
}

// Get returns the marker with the given ID, or nil.
func (s *MarkerSet) Get(id string) *models.Marker {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.markers[id]
}
