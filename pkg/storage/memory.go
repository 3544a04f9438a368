package storage

import (
	"context"
	"errors"
	"slices"
	"sync"
)

// MemoryRepository keeps records in process memory. It backs tests, the
// offline console and STORAGE_BACKEND=memory.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[Kind]map[string][]byte
	order   map[Kind][]string
	pingErr error
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		records: make(map[Kind]map[string][]byte),
		order:   make(map[Kind][]string),
	}
}

// SetPingError makes Ping fail, for health check tests.
func (m *MemoryRepository) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingErr = err
}

func (m *MemoryRepository) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingErr
}

func (m *MemoryRepository) Close() error {
	return nil
}

func (m *MemoryRepository) Get(ctx context.Context, kind Kind, id string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.records[kind][id]
	if !ok {
		return nil, nil
	}
	return slices.Clone(data), nil
}

func (m *MemoryRepository) List(ctx context.Context, kind Kind) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := slices.Clone(m.order[kind])
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

func (m *MemoryRepository) Put(ctx context.Context, kind Kind, id string, record []byte) error {
	if id == "" {
		return errors.New("id cannot be empty")
	}
	if record == nil {
		return errors.New("record cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	recs, ok := m.records[kind]
	if !ok {
		recs = make(map[string][]byte)
		m.records[kind] = recs
	}
	if _, exists := recs[id]; !exists {
		m.order[kind] = append(m.order[kind], id)
	}
	recs[id] = slices.Clone(record)
	return nil
}

func (m *MemoryRepository) Delete(ctx context.Context, kind Kind, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[kind][id]; !ok {
		return false, nil
	}
	delete(m.records[kind], id)
	m.order[kind] = slices.DeleteFunc(m.order[kind], func(s string) bool { return s == id })
	return true, nil
}
