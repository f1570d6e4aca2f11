package docstore

import (
	"context"
	"sync"
)

// Memory is an in-process Store. Documents can be marked locked to make Put
// fail the way a file held by another program would.
type Memory struct {
	mu     sync.RWMutex
	docs   map[string][]byte
	locked map[string]bool
}

func NewMemory() *Memory {
	return &Memory{
		docs:   make(map[string][]byte),
		locked: make(map[string]bool),
	}
}

func (m *Memory) Get(ctx context.Context, name string) ([]byte, error) {
	n, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.docs[n]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (m *Memory) Put(ctx context.Context, name string, data []byte) error {
	n, err := cleanName(name)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locked[n] {
		return ErrLocked
	}
	m.docs[n] = append([]byte(nil), data...)
	return nil
}

// SetLocked marks a document as held by another writer.
func (m *Memory) SetLocked(name string, locked bool) {
	n, err := cleanName(name)
	if err != nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if locked {
		m.locked[n] = true
	} else {
		delete(m.locked, n)
	}
}
