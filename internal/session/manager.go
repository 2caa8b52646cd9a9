package session

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Manager is the registry of live sessions.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Coordinator
}

// NewManager builds an empty registry.
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Coordinator)}
}

// Create registers a new coordinator built from cfg. The session ID is
// generated when cfg.ID is empty.
func (m *Manager) Create(cfg Config) *Coordinator {
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}
	c := NewCoordinator(cfg)
	m.mu.Lock()
	m.sessions[c.id] = c
	m.mu.Unlock()
	return c
}

// Get returns the coordinator for id.
func (m *Manager) Get(id string) (*Coordinator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %q not found", id)
	}
	return c, nil
}

// Delete closes and removes the session with the given id.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	c, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		c.Close()
	}
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// CloseAll tears down every session. Used on shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	all := make([]*Coordinator, 0, len(m.sessions))
	for _, c := range m.sessions {
		all = append(all, c)
	}
	m.sessions = make(map[string]*Coordinator)
	m.mu.Unlock()
	for _, c := range all {
		c.Close()
	}
}
