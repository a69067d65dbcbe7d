package lock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryLock is a process-local Locker for single-instance deployments.
type MemoryLock struct {
	mu     sync.Mutex
	leases map[string]lease
	now    func() time.Time
}

type lease struct {
	token   string
	expires time.Time
}

func NewMemoryLock() *MemoryLock {
	return &MemoryLock{
		leases: make(map[string]lease),
		now:    time.Now,
	}
}

func (m *MemoryLock) Lock(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if l, ok := m.leases[key]; ok && now.Before(l.expires) {
		return "", false, nil
	}

	token := uuid.NewString()
	m.leases[key] = lease{token: token, expires: now.Add(ttl)}

	return token, true, nil
}

func (m *MemoryLock) Unlock(_ context.Context, key, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if l, ok := m.leases[key]; ok && l.token == token {
		delete(m.leases, key)
	}

	return nil
}

func (m *MemoryLock) Close() error {
	return nil
}
