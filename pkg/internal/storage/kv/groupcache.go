package kv

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang/groupcache"

	"github.com/sujaykar/echovault/pkg/configs"
)

// groupcacheKV 基于 groupcache 的 KV 实现.
// groupcache 本身只读，写侧落在本地 backing map，读穿 Group 以获得跨节点填充.
// 条目 TTL 由 wrapTTL/unwrapTTL 惰性实现.
type groupcacheKV struct {
	mu      sync.RWMutex
	backing map[string][]byte
	group   *groupcache.Group
	pool    *groupcache.HTTPPool
}

func newGroupcacheKV(_ context.Context, config any) (KVStore, error) {
	cfg, ok := config.(*configs.KVGroupcacheConfig)
	if !ok {
		return nil, fmt.Errorf("invalid Groupcache config")
	}

	g := &groupcacheKV{backing: make(map[string][]byte)}

	g.group = groupcache.NewGroup(cfg.Name, cfg.CacheBytes, groupcache.GetterFunc(
		func(_ context.Context, key string, dest groupcache.Sink) error {
			g.mu.RLock()
			value, ok := g.backing[key]
			g.mu.RUnlock()

			if !ok {
				return fmt.Errorf("key not found: %s", key)
			}

			return dest.SetBytes(value)
		}))

	if len(cfg.Peers) > 0 {
		g.pool = groupcache.NewHTTPPoolOpts(cfg.Self, &groupcache.HTTPPoolOptions{})
		g.pool.Set(cfg.Peers...)
	}

	return g, nil
}

// Get 经缓存组读取键的值.
func (g *groupcacheKV) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte

	if err := g.group.Get(ctx, key, groupcache.AllocatingByteSliceSink(&data)); err != nil {
		return nil, fmt.Errorf("groupcache get %s: %w", key, err)
	}

	value, expired, err := unwrapTTL(data, time.Now())
	if err != nil {
		return nil, err
	}

	if expired {
		_ = g.Delete(ctx, key)
		return nil, fmt.Errorf("key not found: %s", key)
	}

	out := make([]byte, len(value))
	copy(out, value)

	return out, nil
}

// Set 写入本地 backing map，后续读取经缓存组填充.
func (g *groupcacheKV) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	encoded, err := wrapTTL(value, ttl)
	if err != nil {
		return err
	}

	stored := make([]byte, len(encoded))
	copy(stored, encoded)

	g.mu.Lock()
	g.backing[key] = stored
	g.mu.Unlock()

	return nil
}

// Delete 删除本地条目；缓存组内已填充的副本在 LRU 淘汰前可能仍可读.
func (g *groupcacheKV) Delete(_ context.Context, key string) error {
	g.mu.Lock()
	delete(g.backing, key)
	g.mu.Unlock()

	return nil
}

// Exists 检查本地 backing map 中键是否存在且未过期.
func (g *groupcacheKV) Exists(_ context.Context, key string) (bool, error) {
	g.mu.RLock()
	data, ok := g.backing[key]
	g.mu.RUnlock()

	if !ok {
		return false, nil
	}

	_, expired, err := unwrapTTL(data, time.Now())
	if err != nil {
		return false, err
	}

	return !expired, nil
}

// Keys 列出本地未过期的键.
func (g *groupcacheKV) Keys(_ context.Context, pattern string) ([]string, error) {
	now := time.Now()

	g.mu.RLock()
	defer g.mu.RUnlock()

	keys := make([]string, 0, len(g.backing))

	for key, data := range g.backing {
		if pattern != "" && pattern != "*" && key != pattern {
			continue
		}

		if _, expired, err := unwrapTTL(data, now); err == nil && !expired {
			keys = append(keys, key)
		}
	}

	return keys, nil
}

// Close groupcache 无显式关闭.
func (g *groupcacheKV) Close() error { return nil }

func init() {
	RegisterKVFactory(KVTypeGroupcache, newGroupcacheKV)
}
