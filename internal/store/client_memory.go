package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/MKhiriev/go-offline-sync/internal/logger"
)

// memoryStore keeps encoded JSON bytes in a map so that it behaves exactly
// like the sqlite store (values are copied on every Set and Get).
type memoryStore struct {
	mu     sync.RWMutex
	items  map[string][]byte
	closed bool
	logger *logger.Logger
}

// NewMemoryStore returns a volatile [DurableStore].
func NewMemoryStore(log *logger.Logger) DurableStore {
	if log == nil {
		log = logger.Nop()
	}
	return &memoryStore{items: make(map[string][]byte), logger: log}
}

func (m *memoryStore) Set(_ context.Context, key string, value any) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w (key=%s): %w", ErrEncodingValue, key, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrStoreClosed
	}
	m.items[key] = payload
	return nil
}

func (m *memoryStore) Get(ctx context.Context, key string, dst any) bool {
	found, err := m.Lookup(ctx, key, dst)
	return found && err == nil
}

func (m *memoryStore) Lookup(_ context.Context, key string, dst any) (bool, error) {
	m.mu.RLock()
	raw, ok := m.items[key]
	closed := m.closed
	m.mu.RUnlock()
	if closed {
		return false, ErrStoreClosed
	}
	if !ok {
		return false, nil
	}
	return decodeInto(m.logger, key, raw, dst), nil
}

func (m *memoryStore) Remove(_ context.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrStoreClosed
	}
	delete(m.items, key)
	return nil
}

func (m *memoryStore) Keys(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrStoreClosed
	}

	keys := make([]string, 0, len(m.items))
	for k := range m.items {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *memoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// setRaw stores bytes verbatim; tests use it to plant corrupt values.
func (m *memoryStore) setRaw(key string, raw []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = raw
}
