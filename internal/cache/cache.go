package cache

import (
	"context"
	"errors"
	"sync"
)

// ListCache keeps a last-known-good list of ids per key.
type ListCache interface {
	Get(ctx context.Context, key string) ([]string, error)
	Set(ctx context.Context, key string, ids []string) error
	Delete(ctx context.Context, key string) error
}

var ErrCacheMiss = errors.New("cache miss")

// Memory is the in-process ListCache used when Redis is not configured.
type Memory struct {
	mu    sync.RWMutex
	lists map[string][]string
}

func NewMemory() *Memory { return &Memory{lists: map[string][]string{}} }

func (m *Memory) Get(_ context.Context, key string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids, ok := m.lists[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return append([]string(nil), ids...), nil
}

func (m *Memory) Set(_ context.Context, key string, ids []string) error {
	m.mu.Lock()
	m.lists[key] = append([]string{}, ids...)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.lists, key)
	m.mu.Unlock()
	return nil
}
