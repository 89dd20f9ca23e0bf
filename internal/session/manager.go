package session

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionLimit    = errors.New("session limit reached")
)

const DefaultMaxSessions = 1000

// Manager keeps sessions in memory only.
type Manager struct {
	fetcher   Fetcher
	max       int
	timeframe string

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager(fetcher Fetcher, maxSessions int, timeframe string) *Manager {
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	return &Manager{
		fetcher:   fetcher,
		max:       maxSessions,
		timeframe: timeframe,
		sessions:  make(map[string]*Session),
	}
}

func (m *Manager) Create() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sessions) >= m.max {
		return nil, ErrSessionLimit
	}
	s := New(uuid.NewString(), m.fetcher, m.timeframe)
	m.sessions[s.ID()] = s
	return s, nil
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
