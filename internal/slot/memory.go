package slot

import (
	"context"
	"sync"
)

type Memory struct {
	mu      sync.RWMutex
	payload []byte
	written bool
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Read(_ context.Context) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.written {
		return nil, ErrSlotEmpty
	}
	return append([]byte(nil), m.payload...), nil
}

func (m *Memory) Write(_ context.Context, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.payload = append([]byte(nil), payload...)
	m.written = true
	return nil
}

func (m *Memory) Close() error { return nil }
