package kv_test

import (
	"context"
	crand "crypto/rand"
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sujaykar/echovault/pkg/configs"
	"github.com/sujaykar/echovault/pkg/internal/storage/kv"
)

func newMemory(t *testing.T) kv.KVStore {
	t.Helper()

	store, err := kv.NewKVStore(context.Background(), kv.KVTypeMemory, nil)
	if err != nil {
		t.Fatalf("NewKVStore(memory): %v", err)
	}

	return store
}

// TestNewKVStoreUnknownType 未注册的后端类型返回错误.
func TestNewKVStoreUnknownType(t *testing.T) {
	if _, err := kv.NewKVStore(context.Background(), kv.KVType("bogus"), nil); err == nil {
		t.Error("expected error for unregistered type")
	}
}

// TestRegisteredTypes 内存后端总是可用.
func TestRegisteredTypes(t *testing.T) {
	found := false

	for _, typ := range kv.GetRegisteredKVTypes() {
		if typ == kv.KVTypeMemory {
			found = true
			break
		}
	}

	if !found {
		t.Error("memory backend not registered")
	}
}

// TestMemoryRoundTrip 基本读写与幂等删除.
func TestMemoryRoundTrip(t *testing.T) {
	store := newMemory(t)
	ctx := context.Background()

	if _, err := store.Get(ctx, "echo:a"); err == nil {
		t.Error("expected error for missing key")
	}

	if err := store.Set(ctx, "echo:a", []byte("payload"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := store.Get(ctx, "echo:a")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if string(got) != "payload" {
		t.Errorf("value = %q, want payload", got)
	}

	if err := store.Delete(ctx, "echo:a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if err := store.Delete(ctx, "echo:a"); err != nil {
		t.Errorf("Delete again: %v", err)
	}

	exists, err := store.Exists(ctx, "echo:a")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}

	if exists {
		t.Error("key should not exist after delete")
	}
}

// TestMemoryTTL 过期条目读取与存在性判断均视为不存在.
func TestMemoryTTL(t *testing.T) {
	store := newMemory(t)
	ctx := context.Background()

	if err := store.Set(ctx, "echo:ttl", []byte("x"), 20*time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if _, err := store.Get(ctx, "echo:ttl"); err != nil {
		t.Fatalf("Get before expiry: %v", err)
	}

	time.Sleep(50 * time.Millisecond)

	if _, err := store.Get(ctx, "echo:ttl"); err == nil {
		t.Error("expected error after expiry")
	}

	exists, err := store.Exists(ctx, "echo:ttl")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}

	if exists {
		t.Error("expired key should not exist")
	}
}

// TestMemoryKeys 全量列出与精确匹配.
func TestMemoryKeys(t *testing.T) {
	store := newMemory(t)
	ctx := context.Background()

	for _, key := range []string{"echo:1", "echo:2", "resp:1"} {
		if err := store.Set(ctx, key, []byte("v"), 0); err != nil {
			t.Fatalf("Set %s: %v", key, err)
		}
	}

	all, err := store.Keys(ctx, "*")
	if err != nil {
		t.Fatalf("Keys(*): %v", err)
	}

	if len(all) != 3 {
		t.Errorf("Keys(*) = %d entries, want 3", len(all))
	}

	exact, err := store.Keys(ctx, "resp:1")
	if err != nil {
		t.Fatalf("Keys(resp:1): %v", err)
	}

	if len(exact) != 1 || exact[0] != "resp:1" {
		t.Errorf("Keys(resp:1) = %v, want [resp:1]", exact)
	}
}

// TestMemoryValueIsolation 存取双向都使用副本，调用方修改不影响存储.
func TestMemoryValueIsolation(t *testing.T) {
	store := newMemory(t)
	ctx := context.Background()

	original := []byte("immutable")
	if err := store.Set(ctx, "echo:iso", original, 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	original[0] = 'X'

	first, err := store.Get(ctx, "echo:iso")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if string(first) != "immutable" {
		t.Errorf("stored value affected by caller mutation: %q", first)
	}

	first[0] = 'Y'

	second, err := store.Get(ctx, "echo:iso")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if string(second) != "immutable" {
		t.Errorf("stored value affected by reader mutation: %q", second)
	}
}

// ---- 基准 ----

func BenchmarkMemoryKV(b *testing.B) {
	store, err := kv.NewKVStore(context.Background(), kv.KVTypeMemory, nil)
	if err != nil {
		b.Fatalf("NewKVStore(memory): %v", err)
	}

	benchStore(b, "memory", store)
	benchStoreParallel(b, "memory", store)
	_ = store.Close()
}

func BenchmarkGroupcacheKV(b *testing.B) {
	// 单机跑分，不配 Peers 就不会起 HTTP pool
	cfg := &configs.KVGroupcacheConfig{
		Name:       "kv-bench",
		CacheBytes: 16 << 20,
	}

	store, err := kv.NewKVStore(context.Background(), kv.KVTypeGroupcache, cfg)
	if err != nil {
		b.Fatalf("NewKVStore(groupcache): %v", err)
	}

	benchStore(b, "groupcache", store)
	benchStoreParallel(b, "groupcache", store)
	_ = store.Close()
}

// 需要外部 Redis 时设置 REDIS_BENCH_ADDR，例如 127.0.0.1:6379.
func BenchmarkRedisKV(b *testing.B) {
	addr := os.Getenv("REDIS_BENCH_ADDR")
	if addr == "" {
		b.Skip("set REDIS_BENCH_ADDR to enable")
	}

	store, err := kv.NewKVStore(context.Background(), kv.KVTypeRedis, &configs.KVRedisConfig{Addr: addr})
	if err != nil {
		b.Skipf("redis not available: %v", err)
		return
	}

	benchStore(b, "redis", store)
	benchStoreParallel(b, "redis", store)
	_ = store.Close()
}

// 需要外部 NATS 时设置 NATS_BENCH_URL，例如 nats://127.0.0.1:4222，
// NATS_BENCH_BUCKET 默认 echo-bench.
func BenchmarkNATSKV(b *testing.B) {
	url := os.Getenv("NATS_BENCH_URL")
	if url == "" {
		b.Skip("set NATS_BENCH_URL to enable")
	}

	bucket := os.Getenv("NATS_BENCH_BUCKET")
	if bucket == "" {
		bucket = "echo-bench"
	}

	store, err := kv.NewKVStore(context.Background(), kv.KVTypeNATS, &configs.KVNATSConfig{URL: url, Bucket: bucket})
	if err != nil {
		b.Skipf("nats not available: %v", err)
		return
	}

	benchStore(b, "nats", store)
	benchStoreParallel(b, "nats", store)
	_ = store.Close()
}

func benchPayload(b *testing.B, n int) []byte {
	b.Helper()

	buf := make([]byte, n)
	if _, err := crand.Read(buf); err != nil {
		b.Fatalf("rand: %v", err)
	}

	return buf
}

// benchStore 串行 Set/Get/Delete 基准.
func benchStore(b *testing.B, name string, store kv.KVStore) {
	ctx := context.Background()

	for _, size := range []int{32, 1024, 64 * 1024} {
		payload := benchPayload(b, size)

		for _, ttl := range []time.Duration{0, 5 * time.Second} {
			b.Run(fmt.Sprintf("%s/%dB/ttl=%s", name, size, ttl), func(b *testing.B) {
				b.ReportAllocs()

				for i := 0; b.Loop(); i++ {
					// NATS KV 的键不允许冒号，统一用连字符
					key := fmt.Sprintf("%s-bench-%d", name, i)
					if err := store.Set(ctx, key, payload, ttl); err != nil {
						b.Fatalf("Set: %v", err)
					}

					if _, err := store.Get(ctx, key); err != nil {
						b.Fatalf("Get: %v", err)
					}

					if err := store.Delete(ctx, key); err != nil {
						b.Fatalf("Delete: %v", err)
					}
				}
			})
		}
	}
}

// benchStoreParallel 并行 Set/Get/Delete 基准，负载固定 1KB.
func benchStoreParallel(b *testing.B, name string, store kv.KVStore) {
	ctx := context.Background()
	payload := benchPayload(b, 1024)

	var ctr uint64

	b.Run(name+"/parallel", func(b *testing.B) {
		b.ReportAllocs()
		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				key := fmt.Sprintf("%s-bench-p-%d", name, atomic.AddUint64(&ctr, 1))
				if err := store.Set(ctx, key, payload, 0); err != nil {
					b.Fatalf("Set: %v", err)
				}

				if _, err := store.Get(ctx, key); err != nil {
					b.Fatalf("Get: %v", err)
				}

				if err := store.Delete(ctx, key); err != nil {
					b.Fatalf("Delete: %v", err)
				}
			}
		})
	})
}
