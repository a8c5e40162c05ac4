package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/sujaykar/echovault/pkg/configs"
)

// natsKV 基于 NATS JetStream KV 的实现.
// bucket 无条目级 TTL，过期语义由 wrapTTL/unwrapTTL 惰性实现.
type natsKV struct {
	conn   *nats.Conn
	kv     nats.KeyValue
	bucket string
}

func newNATSKV(_ context.Context, config any) (KVStore, error) {
	cfg, ok := config.(*configs.KVNATSConfig)
	if !ok {
		return nil, fmt.Errorf("invalid NATS config")
	}

	var opts []nats.Option
	if cfg.User != "" {
		opts = append(opts, nats.UserInfo(cfg.User, cfg.Password))
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", cfg.URL, err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream context: %w", err)
	}

	kv, err := js.CreateKeyValue(&nats.KeyValueConfig{Bucket: cfg.Bucket})
	if err != nil {
		// bucket 已存在时直接复用
		kv, err = js.KeyValue(cfg.Bucket)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("open kv bucket %s: %w", cfg.Bucket, err)
		}
	}

	return &natsKV{conn: conn, kv: kv, bucket: cfg.Bucket}, nil
}

// liveValue 读取条目并处理惰性过期，过期条目被删除后按不存在处理.
func (n *natsKV) liveValue(key string) ([]byte, bool, error) {
	entry, err := n.kv.Get(key)
	if errors.Is(err, nats.ErrKeyNotFound) {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, fmt.Errorf("nats kv get %s: %w", key, err)
	}

	value, expired, err := unwrapTTL(entry.Value(), time.Now())
	if err != nil {
		return nil, false, err
	}

	if expired {
		_ = n.kv.Delete(key)
		return nil, false, nil
	}

	return value, true, nil
}

// Get 获取键的值.
func (n *natsKV) Get(_ context.Context, key string) ([]byte, error) {
	value, ok, err := n.liveValue(key)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, fmt.Errorf("key not found: %s", key)
	}

	return value, nil
}

// Set 设置键的值.
func (n *natsKV) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	encoded, err := wrapTTL(value, ttl)
	if err != nil {
		return err
	}

	if _, err := n.kv.Put(key, encoded); err != nil {
		return fmt.Errorf("nats kv put %s: %w", key, err)
	}

	return nil
}

// Delete 删除键.
func (n *natsKV) Delete(_ context.Context, key string) error {
	if err := n.kv.Delete(key); err != nil {
		return fmt.Errorf("nats kv delete %s: %w", key, err)
	}

	return nil
}

// Exists 检查键是否存在且未过期.
func (n *natsKV) Exists(_ context.Context, key string) (bool, error) {
	_, ok, err := n.liveValue(key)
	return ok, err
}

// Keys 列出未过期的键，仅支持精确匹配与全量列出.
func (n *natsKV) Keys(_ context.Context, pattern string) ([]string, error) {
	keys, err := n.kv.Keys()
	if err != nil {
		return nil, fmt.Errorf("nats kv keys: %w", err)
	}

	result := make([]string, 0, len(keys))

	for _, key := range keys {
		if pattern != "" && pattern != "*" && key != pattern {
			continue
		}

		if _, ok, err := n.liveValue(key); err == nil && ok {
			result = append(result, key)
		}
	}

	return result, nil
}

// Close 关闭 NATS 连接.
func (n *natsKV) Close() error {
	n.conn.Close()
	return nil
}

func init() {
	RegisterKVFactory(KVTypeNATS, newNATSKV)
}
