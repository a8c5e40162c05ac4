package client

import (
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"golang.org/x/sync/singleflight"
)

// listEchoesKey 本地查询缓存键，提交成功后恰好失效一次.
const listEchoesKey = "listEchoes"

// queryCache 极简 TTL 查询缓存：键 -> 序列化后的值.
// 失效通过删除键实现，并发回源用 singleflight 合并.
type queryCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry
	group   singleflight.Group
}

type cacheEntry struct {
	data      []byte
	expiresAt time.Time
}

func newQueryCache(ttl time.Duration) *queryCache {
	return &queryCache{ttl: ttl, entries: make(map[string]cacheEntry)}
}

// get 反序列化命中值到 out，未命中或已过期返回 false.
func (q *queryCache) get(key string, out any) bool {
	q.mu.RLock()
	e, ok := q.entries[key]
	q.mu.RUnlock()

	if !ok || time.Now().After(e.expiresAt) {
		return false
	}

	return sonic.Unmarshal(e.data, out) == nil
}

// set 序列化并写入. 序列化失败只跳过缓存，不影响主流程.
func (q *queryCache) set(key string, v any) {
	b, err := sonic.Marshal(v)
	if err != nil {
		return
	}

	q.mu.Lock()
	q.entries[key] = cacheEntry{data: b, expiresAt: time.Now().Add(q.ttl)}
	q.mu.Unlock()
}

// invalidate 删除键.
func (q *queryCache) invalidate(key string) {
	q.mu.Lock()
	delete(q.entries, key)
	q.mu.Unlock()
}

// fetch 合并同键并发回源.
func (q *queryCache) fetch(key string, fn func() (any, error)) (any, error) {
	v, err, _ := q.group.Do(key, fn)

	return v, err
}
