package storage

import (
	"context"
	"sync"
)

// Memory is an in-process KV. FailSet and FailRemove inject write errors.
type Memory struct {
	mu         sync.Mutex
	data       map[string]string
	FailSet    func(key string, attempt int) error
	FailRemove func(key string) error
	sets       int
}

func NewMemory() *Memory { return &Memory{data: map[string]string{}} }

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	if err := validKey(key); err != nil {
		return "", false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	if err := validKey(key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	if m.FailSet != nil {
		if err := m.FailSet(key, m.sets); err != nil {
			return err
		}
	}
	m.data[key] = value
	return nil
}

func (m *Memory) Remove(_ context.Context, key string) error {
	if err := validKey(key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailRemove != nil {
		if err := m.FailRemove(key); err != nil {
			return err
		}
	}
	delete(m.data, key)
	return nil
}

// SetCalls reports how many Set calls were attempted.
func (m *Memory) SetCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sets
}

// Raw stores value without going through the failure hooks.
func (m *Memory) Raw(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
}

var _ KV = (*Memory)(nil)
