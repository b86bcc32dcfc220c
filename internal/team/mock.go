package team

import (
	"context"
	"sync"
)

// MockStore is an in-memory Store for testing. It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	EnsureTeamFunc func(ctx context.Context, key Key) (bool, error)

	Teams           map[Key]bool
	EnsureTeamCalls []Key
}

// NewMockStore creates an empty MockStore.
func NewMockStore() *MockStore {
	return &MockStore{Teams: make(map[Key]bool)}
}

func (m *MockStore) EnsureTeam(ctx context.Context, key Key) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EnsureTeamCalls = append(m.EnsureTeamCalls, key)
	if m.EnsureTeamFunc != nil {
		return m.EnsureTeamFunc(ctx, key)
	}
	if m.Teams[key] {
		return false, nil
	}
	m.Teams[key] = true
	return true, nil
}
