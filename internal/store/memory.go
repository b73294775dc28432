package store

import (
	"sync"
	"time"
)

// MemoryStore is an in-process TaskStore. It backs tests and deployments that
// do not need snapshots to survive restarts.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	snapshot  *Snapshot
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
	}
}

func (m *MemoryStore) Put(id string, snapshot *Snapshot, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[id] = memoryEntry{
		snapshot:  snapshot,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

func (m *MemoryStore) Get(id string) (*Snapshot, error) {
	m.mu.RLock()
	entry, ok := m.entries[id]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if time.Now().After(entry.expiresAt) {
		_ = m.Delete(id)
		return nil, nil
	}
	return entry.snapshot, nil
}

func (m *MemoryStore) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}
