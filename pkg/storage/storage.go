// Package storage provides the key/value store the plugin uses in place of
// browser local storage.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"
)

// InitDataKey is the key holding the plugin start timestamp.
const InitDataKey = "pluginInitData"

// ErrNotFound is returned when a key has no value.
var ErrNotFound = errors.New("storage: key not found")

// Store is a string key/value store.
type Store interface {
	GetItem(ctx context.Context, key string) (string, error)
	SetItem(ctx context.Context, key, value string) error
}

// InitData is the value stored under InitDataKey.
type InitData struct {
	InitTime int64 `json:"initTime"`
}

// WriteInitData records now, in epoch milliseconds, under InitDataKey and
// returns the stored text.
func WriteInitData(ctx context.Context, store Store, now time.Time) (string, error) {
	raw, err := json.Marshal(InitData{InitTime: now.UnixMilli()})
	if err != nil {
		return "", fmt.Errorf("storage: encode init data: %w", err)
	}
	if err := store.SetItem(ctx, InitDataKey, string(raw)); err != nil {
		return "", err
	}
	return string(raw), nil
}

// ReadInitData returns the stored init data text. A missing key yields an
// empty string.
func ReadInitData(ctx context.Context, store Store) (string, error) {
	value, err := store.GetItem(ctx, InitDataKey)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return value, err
}

// Memory is an in-process Store.
type Memory struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{items: make(map[string]string)}
}

// GetItem implements Store.
func (m *Memory) GetItem(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.items[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return value, nil
}

// SetItem implements Store.
func (m *Memory) SetItem(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.items == nil {
		m.items = make(map[string]string)
	}
	m.items[key] = value
	return nil
}
