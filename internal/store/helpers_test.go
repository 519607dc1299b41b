package store

import (
	"context"
	"errors"
	"sync"
)

// memorySnapshotter keeps the last saved snapshot in memory and can be told to fail
type memorySnapshotter struct {
	mu    sync.Mutex
	data  []byte
	saves int
	fail  error
}

func (m *memorySnapshotter) Load(context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.data...), nil
}

func (m *memorySnapshotter) Save(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.data = append([]byte(nil), data...)
	m.saves++
	return nil
}

func (m *memorySnapshotter) Close() error { return nil }

func (m *memorySnapshotter) setFail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = err
}

func (m *memorySnapshotter) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

var errDiskFull = errors.New("disk full")
