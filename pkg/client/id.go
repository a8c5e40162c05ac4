package client

import (
	crand "crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid"
)

// ulidEntropy 单调熵源，mutex 保护以支持并发调用.
var (
	ulidMu      sync.Mutex
	ulidEntropy = ulid.Monotonic(crand.Reader, 0)
)

// NewEchoID 生成按时间有序的 ULID 作为记录标识.
func NewEchoID() string {
	ulidMu.Lock()
	defer ulidMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), ulidEntropy).String()
}
