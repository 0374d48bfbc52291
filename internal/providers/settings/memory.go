package settings

import (
	"context"
	"fmt"
	"sync"
)

// Memory keeps settings in process memory. Values are stored encoded so
// callers never share mutable state with the store.
type Memory struct {
	mu     sync.RWMutex
	values map[string][]byte
	subs   *subscribers

	// failWrites, when set, makes Update return it (tests only).
	failWrites error
}

// NewMemory creates an empty in-memory settings store
func NewMemory() *Memory {
	return &Memory{
		values: make(map[string][]byte),
		subs:   newSubscribers(),
	}
}

// Get decodes key into dst
func (m *Memory) Get(ctx context.Context, key string, dst any) (bool, error) {
	m.mu.RLock()
	raw, ok := m.values[key]
	m.mu.RUnlock()

	if !ok {
		return false, nil
	}
	if err := jsonAPI.Unmarshal(raw, dst); err != nil {
		return true, fmt.Errorf("failed to decode setting %s: %w", key, err)
	}
	return true, nil
}

// Update replaces key and notifies subscribers once
func (m *Memory) Update(ctx context.Context, key string, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	raw, err := jsonAPI.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode setting %s: %w", key, err)
	}

	m.mu.Lock()
	if m.failWrites != nil {
		err := m.failWrites
		m.mu.Unlock()
		return err
	}
	m.values[key] = raw
	m.mu.Unlock()

	m.subs.notify(ChangeEvent{Key: key, Source: SourceLocal})
	return nil
}

// Subscribe registers fn for changes to key
func (m *Memory) Subscribe(key string, fn func(ChangeEvent)) func() {
	return m.subs.add(key, fn)
}

// SetRaw stores an already-encoded JSON value without validation and
// notifies subscribers as an external change.
func (m *Memory) SetRaw(key string, raw []byte) {
	m.mu.Lock()
	m.values[key] = append([]byte(nil), raw...)
	m.mu.Unlock()

	m.subs.notify(ChangeEvent{Key: key, Source: SourceExternal})
}

// FailWrites makes subsequent updates fail with err; nil restores writes.
func (m *Memory) FailWrites(err error) {
	m.mu.Lock()
	m.failWrites = err
	m.mu.Unlock()
}
