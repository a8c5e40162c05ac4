package kv

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// memoryEntry 单条内存记录，expiresAt 为零值表示不过期.
type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// memoryKV 进程内 KV 实现，支持 TTL，主要用于开发与测试.
type memoryKV struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

func newMemoryKV(_ context.Context, _ any) (KVStore, error) {
	return &memoryKV{entries: make(map[string]memoryEntry)}, nil
}

// Get 获取键的值，过期条目惰性删除.
func (m *memoryKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("key not found: %s", key)
	}

	if entry.expired(time.Now()) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()

		return nil, fmt.Errorf("key not found: %s", key)
	}

	out := make([]byte, len(entry.value))
	copy(out, entry.value)

	return out, nil
}

// Set 设置键的值.
func (m *memoryKV) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	entry := memoryEntry{value: make([]byte, len(value))}
	copy(entry.value, value)

	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}

	m.mu.Lock()
	m.entries[key] = entry
	m.mu.Unlock()

	return nil
}

// Delete 删除键.
func (m *memoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()

	return nil
}

// Exists 检查键是否存在且未过期.
func (m *memoryKV) Exists(_ context.Context, key string) (bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	return ok && !entry.expired(time.Now()), nil
}

// Keys 列出未过期的键，pattern 为空或 "*" 时返回全部.
func (m *memoryKV) Keys(_ context.Context, pattern string) ([]string, error) {
	now := time.Now()

	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.entries))

	for key, entry := range m.entries {
		if entry.expired(now) {
			continue
		}

		if pattern == "" || pattern == "*" || key == pattern {
			keys = append(keys, key)
		}
	}

	return keys, nil
}

// Close 内存实现无需释放资源.
func (m *memoryKV) Close() error { return nil }

func init() {
	RegisterKVFactory(KVTypeMemory, newMemoryKV)
}
