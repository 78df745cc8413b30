package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/jwebster45206/interact-engine/pkg/session"
	"github.com/jwebster45206/interact-engine/pkg/world"
)

// MockStorage is a mock implementation of Storage for testing
type MockStorage struct {
	mu        sync.RWMutex
	sessions  map[uuid.UUID]*session.Session
	worlds    map[string]*world.MemoryStore
	names     map[string]string // world name -> filename
	pingError error
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		sessions: make(map[uuid.UUID]*session.Session),
		worlds:   make(map[string]*world.MemoryStore),
		names:    make(map[string]string),
	}
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// AddWorld registers a world under a filename
func (m *MockStorage) AddWorld(filename, name string, store *world.MemoryStore) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.worlds[filename] = store
	m.names[name] = filename
}

func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

func (m *MockStorage) Close() error {
	return nil
}

func (m *MockStorage) SaveSession(ctx context.Context, id uuid.UUID, s *session.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = s
	return nil
}

func (m *MockStorage) LoadSession(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	return s, nil
}

func (m *MockStorage) DeleteSession(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *MockStorage) ListWorlds(ctx context.Context) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.names))
	for name, filename := range m.names {
		out[name] = filename
	}
	return out, nil
}

func (m *MockStorage) GetWorld(ctx context.Context, filename string) (*world.MemoryStore, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	store, ok := m.worlds[filename]
	if !ok {
		return nil, errors.New("world not found: " + filename)
	}
	return store, nil
}
