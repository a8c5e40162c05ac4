package kv

import (
	"bytes"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
)

// 无原生 TTL 的后端（NATS KV、groupcache、内存）共用的过期包装．
// 带前缀魔数的值携带过期时间戳，读取时惰性判断并剔除．
const ttlMagic = "EVTTL1:"

type expiringValue struct {
	V []byte `json:"v"`
	E int64  `json:"e,omitempty"` // unix 秒，0 表示不过期
}

// wrapTTL 在 ttl>0 时包装值，否则原样返回.
func wrapTTL(value []byte, ttl time.Duration) ([]byte, error) {
	if ttl <= 0 {
		return value, nil
	}

	ev := expiringValue{V: value, E: time.Now().Add(ttl).Unix()}

	b, err := sonic.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("encode ttl value: %w", err)
	}

	return append([]byte(ttlMagic), b...), nil
}

// unwrapTTL 解开包装并判断过期；未包装的值原样返回.
func unwrapTTL(b []byte, now time.Time) (value []byte, expired bool, err error) {
	if !bytes.HasPrefix(b, []byte(ttlMagic)) {
		return b, false, nil
	}

	var ev expiringValue
	if err := sonic.Unmarshal(b[len(ttlMagic):], &ev); err != nil {
		return nil, false, fmt.Errorf("decode ttl value: %w", err)
	}

	if ev.E > 0 && now.Unix() >= ev.E {
		return nil, true, nil
	}

	return ev.V, false, nil
}
