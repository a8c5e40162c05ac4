package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sujaykar/echovault/pkg/cache"
)

// echoSummary 测试用的缓存值结构体.
type echoSummary struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	MediaType   string `json:"mediaType"`
}

// memStore 内存 KV 实现，记录最近一次写入的 TTL.
type memStore struct {
	data    map[string][]byte
	lastTTL time.Duration
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	if value, ok := m.data[key]; ok {
		return value, nil
	}

	return nil, errors.New("key not found")
}

func (m *memStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.data[key] = value
	m.lastTTL = ttl

	return nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *memStore) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m.data[key]
	return ok, nil
}

func (m *memStore) Keys(_ context.Context, _ string) ([]string, error) {
	keys := make([]string, 0, len(m.data))
	for key := range m.data {
		keys = append(keys, key)
	}

	return keys, nil
}

func (m *memStore) Close() error { return nil }

// TestSetGetRoundTrip 测试结构体值的写入与读取.
func TestSetGetRoundTrip(t *testing.T) {
	store := newMemStore()
	c := cache.NewCache(store)
	ctx := context.Background()

	rec := echoSummary{ID: "01ARZ3NDEKTSV4RRFFQ69G5FAV", DisplayName: "My Echo", MediaType: "audio/webm"}

	if err := cache.Set(ctx, c, "echo:"+rec.ID, rec, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if store.lastTTL != time.Minute {
		t.Errorf("ttl passed to store = %v, want 1m", store.lastTTL)
	}

	got, err := cache.Get[echoSummary](ctx, c, "echo:"+rec.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if got != rec {
		t.Errorf("got %+v, want %+v", got, rec)
	}
}

// TestGetMiss 未命中时透传底层存储的错误.
func TestGetMiss(t *testing.T) {
	c := cache.NewCache(newMemStore())

	if _, err := cache.Get[echoSummary](context.Background(), c, "echo:missing"); err == nil {
		t.Error("expected error for missing key")
	}
}

// TestGetCorruptEntry 无法反序列化的条目返回解码错误.
func TestGetCorruptEntry(t *testing.T) {
	store := newMemStore()
	store.data["echo:bad"] = []byte("{not json")

	c := cache.NewCache(store)

	if _, err := cache.Get[echoSummary](context.Background(), c, "echo:bad"); err == nil {
		t.Error("expected decode error for corrupt entry")
	}
}

// TestDeleteAndExists 测试删除后的存在性判断.
func TestDeleteAndExists(t *testing.T) {
	store := newMemStore()
	c := cache.NewCache(store)
	ctx := context.Background()

	if err := cache.Set(ctx, c, "echo:x", echoSummary{ID: "x"}, 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	exists, err := c.Exists(ctx, "echo:x")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}

	if !exists {
		t.Error("key should exist before delete")
	}

	if err := c.Delete(ctx, "echo:x"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	exists, err = c.Exists(ctx, "echo:x")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}

	if exists {
		t.Error("key should not exist after delete")
	}
}

// TestGetOrSetLoadsOnce 读穿模式下 loader 只在未命中时调用一次.
func TestGetOrSetLoadsOnce(t *testing.T) {
	c := cache.NewCache(newMemStore())
	ctx := context.Background()

	calls := 0
	loader := func() ([]echoSummary, error) {
		calls++
		return []echoSummary{{ID: "a"}, {ID: "b"}}, nil
	}

	first, err := cache.GetOrSet(ctx, c, "listEchoes:v1:alice", loader, time.Minute)
	if err != nil {
		t.Fatalf("GetOrSet: %v", err)
	}

	second, err := cache.GetOrSet(ctx, c, "listEchoes:v1:alice", loader, time.Minute)
	if err != nil {
		t.Fatalf("GetOrSet: %v", err)
	}

	if calls != 1 {
		t.Errorf("loader calls = %d, want 1", calls)
	}

	if len(first) != 2 || len(second) != 2 || first[0] != second[0] {
		t.Errorf("results differ: %+v vs %+v", first, second)
	}
}

// TestGetOrSetLoaderError loader 失败时错误原样返回且不写缓存.
func TestGetOrSetLoaderError(t *testing.T) {
	store := newMemStore()
	c := cache.NewCache(store)

	wantErr := errors.New("db unavailable")
	loader := func() (echoSummary, error) { return echoSummary{}, wantErr }

	_, err := cache.GetOrSet(context.Background(), c, "echo:fail", loader, 0)
	if !errors.Is(err, wantErr) {
		t.Fatalf("GetOrSet = %v, want %v", err, wantErr)
	}

	if len(store.data) != 0 {
		t.Errorf("store entries = %d, want 0", len(store.data))
	}
}

// TestClear 测试逐键清空.
func TestClear(t *testing.T) {
	store := newMemStore()
	c := cache.NewCache(store)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if err := cache.Set(ctx, c, "echo:"+id, echoSummary{ID: id}, 0); err != nil {
			t.Fatalf("Set %s: %v", id, err)
		}
	}

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	if len(store.data) != 0 {
		t.Errorf("store entries after clear = %d, want 0", len(store.data))
	}
}

// TestGenericValues 测试标量与切片类型的缓存.
func TestGenericValues(t *testing.T) {
	c := cache.NewCache(newMemStore())
	ctx := context.Background()

	if err := cache.Set(ctx, c, "total", 42, 0); err != nil {
		t.Fatalf("Set int: %v", err)
	}

	total, err := cache.Get[int](ctx, c, "total")
	if err != nil {
		t.Fatalf("Get int: %v", err)
	}

	if total != 42 {
		t.Errorf("total = %d, want 42", total)
	}

	ids := []string{"01A", "01B", "01C"}
	if err := cache.Set(ctx, c, "ids", ids, 0); err != nil {
		t.Fatalf("Set slice: %v", err)
	}

	got, err := cache.Get[[]string](ctx, c, "ids")
	if err != nil {
		t.Fatalf("Get slice: %v", err)
	}

	if len(got) != len(ids) {
		t.Fatalf("len = %d, want %d", len(got), len(ids))
	}

	for i := range ids {
		if got[i] != ids[i] {
			t.Errorf("ids[%d] = %s, want %s", i, got[i], ids[i])
		}
	}
}
