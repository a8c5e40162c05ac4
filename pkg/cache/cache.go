// Package cache 在 KV 存储之上提供类型安全的对象缓存.
//
// 值经 sonic 序列化为 JSON 后写入底层 KV，读取时反序列化回原类型，
// TTL 透传给底层存储．线程安全性与底层 KV 实现一致．
//
// 基本用法:
//
//	c := cache.NewCache(kvStore)
//
//	// 缓存一份记录列表
//	err := cache.Set(ctx, c, "listEchoes:v1:alice", list, 5*time.Minute)
//
//	// 读取缓存，未命中时返回底层存储的错误
//	list, err := cache.Get[[]EchoInfo](ctx, c, "listEchoes:v1:alice")
//
//	// 读穿模式：未命中时调用 loader 并回填
//	list, err := cache.GetOrSet(ctx, c, key, loadFromDB, 5*time.Minute)
//
// 序列化失败、KV 读写失败均通过 error 返回；缓存未命中不视为业务错误，
// 调用方通常直接回源.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"

	"github.com/sujaykar/echovault/pkg/internal/storage/kv"
)

// Cache 绑定一个 KV 存储实例.
type Cache struct {
	store kv.KVStore
}

// NewCache 创建缓存实例.
func NewCache(store kv.KVStore) *Cache {
	return &Cache{store: store}
}

// Get 读取并反序列化缓存值.
func Get[T any](ctx context.Context, c *Cache, key string) (T, error) {
	var value T

	data, err := c.store.Get(ctx, key)
	if err != nil {
		return value, err
	}

	if err := sonic.Unmarshal(data, &value); err != nil {
		var zero T
		return zero, fmt.Errorf("decode cached value %s: %w", key, err)
	}

	return value, nil
}

// Set 序列化并写入缓存值.
func Set[T any](ctx context.Context, c *Cache, key string, value T, ttl time.Duration) error {
	data, err := sonic.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache value %s: %w", key, err)
	}

	return c.store.Set(ctx, key, data, ttl)
}

// GetOrSet 读取缓存，未命中时调用 loader 取值并回填.
// 回填失败不影响返回值，下次读取会再次回源.
func GetOrSet[T any](ctx context.Context, c *Cache, key string, loader func() (T, error), ttl time.Duration) (T, error) {
	if value, err := Get[T](ctx, c, key); err == nil {
		return value, nil
	}

	value, err := loader()
	if err != nil {
		var zero T
		return zero, err
	}

	_ = Set(ctx, c, key, value, ttl)

	return value, nil
}

// Delete 删除缓存键.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.store.Delete(ctx, key)
}

// Exists 检查缓存键是否存在.
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	return c.store.Exists(ctx, key)
}

// Clear 逐键清空缓存，底层存储不支持模式匹配时返回错误.
func (c *Cache) Clear(ctx context.Context) error {
	keys, err := c.store.Keys(ctx, "*")
	if err != nil {
		return err
	}

	for _, key := range keys {
		if err := c.store.Delete(ctx, key); err != nil {
			return err
		}
	}

	return nil
}
