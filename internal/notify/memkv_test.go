package notify

import (
	"context"
	"sync"

	"github.com/mediakit/asset-console/internal/store"
)

// memKV is an in-memory store.KV for exercising the reconciliation stack
// without a database.
type memKV struct {
	mu     sync.Mutex
	values map[string]string
}

func newMemKV() *memKV {
	return &memKV{values: map[string]string{}}
}

func (m *memKV) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return "", store.ErrRecordNotFound
	}
	return v, nil
}

func (m *memKV) Set(_ context.Context, key string, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *memKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func (m *memKV) InitialMigration(_ context.Context) error {
	return nil
}
