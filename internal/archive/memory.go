package archive

import (
	"context"
	"sort"
	"sync"
)

// memoryRepository is used when no DATABASE_URL is configured, and in tests.
type memoryRepository struct {
	mu sync.RWMutex

	nextID    int64
	byID      map[int64]*Record
	bySession map[string]*Record
}

func NewMemoryRepository() Repository {
	return &memoryRepository{
		byID:      make(map[int64]*Record),
		bySession: make(map[string]*Record),
	}
}

func (m *memoryRepository) Close() error { return nil }

func (m *memoryRepository) Insert(_ context.Context, rec *Record) (int64, error) {
	if rec == nil {
		return 0, ErrDuplicateGame
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.bySession[rec.SessionUUID]; exists {
		return 0, ErrDuplicateGame
	}

	m.nextID++
	cp := *rec
	cp.ID = m.nextID
	m.byID[cp.ID] = &cp
	m.bySession[cp.SessionUUID] = &cp
	return cp.ID, nil
}

func (m *memoryRepository) Get(_ context.Context, id int64) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (m *memoryRepository) GetBySession(_ context.Context, sessionUUID string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.bySession[sessionUUID]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (m *memoryRepository) Recent(_ context.Context, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = 10
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Record, 0, len(m.byID))
	for _, rec := range m.byID {
		cp := *rec
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].EndedAt.After(out[j].EndedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
