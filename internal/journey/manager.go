package journey

import (
	"sync"
	"time"

	"github.com/tmusial/convoy/internal/storage"
)

// Manager holds journey coordinators keyed by (group, user). Sessions
// are created lazily and torn down when the journey ends or the server
// shuts down.
type Manager struct {
	store    storage.Store
	routes   RouteService
	interval time.Duration

	mu       sync.Mutex
	sessions map[sessionKey]*Coordinator
}

type sessionKey struct {
	groupID string
	userID  string
}

// NewManager creates a manager that builds coordinators with the given
// recompute interval (DefaultInterval when zero).
func NewManager(store storage.Store, routes RouteService, interval time.Duration) *Manager {
	return &Manager{
		store:    store,
		routes:   routes,
		interval: interval,
		sessions: make(map[sessionKey]*Coordinator),
	}
}

// Coordinator returns the session for the pair, creating it when absent.
func (m *Manager) Coordinator(groupID, userID string) *Coordinator {
	key := sessionKey{groupID: groupID, userID: userID}

	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.sessions[key]; ok {
		return c
	}
	c := NewCoordinator(m.store, m.routes, groupID, userID, m.interval)
	m.sessions[key] = c
	return c
}

// End stops the session for the pair, if any, and forgets it.
func (m *Manager) End(groupID, userID string) {
	key := sessionKey{groupID: groupID, userID: userID}

	m.mu.Lock()
	c, ok := m.sessions[key]
	if ok {
		delete(m.sessions, key)
	}
	m.mu.Unlock()

	if ok {
		c.End()
	}
}

// EndGroup stops every session for the group. Called when a group is
// deleted or a member is removed.
func (m *Manager) EndGroup(groupID string) {
	m.mu.Lock()
	var stopping []*Coordinator
	for key, c := range m.sessions {
		if key.groupID == groupID {
			stopping = append(stopping, c)
			delete(m.sessions, key)
		}
	}
	m.mu.Unlock()

	for _, c := range stopping {
		c.End()
	}
}

// Shutdown ends all active sessions.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	stopping := make([]*Coordinator, 0, len(m.sessions))
	for _, c := range m.sessions {
		stopping = append(stopping, c)
	}
	m.sessions = make(map[sessionKey]*Coordinator)
	m.mu.Unlock()

	for _, c := range stopping {
		c.End()
	}
}
