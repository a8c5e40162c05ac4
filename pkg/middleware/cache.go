package middleware

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/gin-gonic/gin"

	appcache "github.com/sujaykar/echovault/pkg/cache"
)

// 响应缓存默认值.
const (
	DefaultCacheTTL     = 30 * time.Second
	DefaultMaxBodyBytes = 1 << 20 // 1MB

	cacheBypassHeader = "X-Cache-Bypass"
	cacheKeyPrefix    = "resp:"
)

// CacheConfig 响应缓存中间件配置.
type CacheConfig struct {
	Cache *appcache.Cache // 必填，业务侧注入
	TTL   time.Duration   // 条目存活时间，默认 DefaultCacheTTL

	Methods     []string // 参与缓存的方法，默认 GET/HEAD
	StatusCodes []int    // 参与缓存的状态码，默认 200

	VaryHeaders []string                  // 参与缓存键的请求头
	KeyFunc     func(*gin.Context) string // 自定义缓存键，默认为 方法+路径+query+vary

	MaxBodyBytes int // 可缓存响应体上限，超出只透传不缓存；0 表示不限制
}

// DefaultCacheConfig 返回适用于只读元数据接口的默认配置.
func DefaultCacheConfig(c *appcache.Cache) CacheConfig {
	return CacheConfig{
		Cache:        c,
		TTL:          DefaultCacheTTL,
		Methods:      []string{http.MethodGet, http.MethodHead},
		StatusCodes:  []int{http.StatusOK},
		MaxBodyBytes: DefaultMaxBodyBytes,
	}
}

// CacheMiddleware 缓存只读响应并处理 If-None-Match 条件请求.
// 携带 X-Cache-Bypass 头的请求直接透传；响应头声明 no-store/private、
// 或响应体超过 MaxBodyBytes 时不写缓存；缓存读写失败均不影响主流程.
func CacheMiddleware(cfg CacheConfig) gin.HandlerFunc {
	if cfg.Cache == nil {
		panic("CacheMiddleware: Cache cannot be nil")
	}

	if cfg.TTL <= 0 {
		cfg.TTL = DefaultCacheTTL
	}

	if len(cfg.Methods) == 0 {
		cfg.Methods = []string{http.MethodGet, http.MethodHead}
	}

	if len(cfg.StatusCodes) == 0 {
		cfg.StatusCodes = []int{http.StatusOK}
	}

	if cfg.KeyFunc == nil {
		cfg.KeyFunc = func(c *gin.Context) string { return cacheKey(c, cfg.VaryHeaders) }
	}

	cacheableMethod := make(map[string]struct{}, len(cfg.Methods))
	for _, m := range cfg.Methods {
		cacheableMethod[strings.ToUpper(m)] = struct{}{}
	}

	cacheableStatus := make(map[int]struct{}, len(cfg.StatusCodes))
	for _, s := range cfg.StatusCodes {
		cacheableStatus[s] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := cacheableMethod[c.Request.Method]; !ok || c.GetHeader(cacheBypassHeader) != "" {
			c.Next()
			return
		}

		key := cfg.KeyFunc(c)

		if entry, err := appcache.Get[cachedResponse](c.Request.Context(), cfg.Cache, key); err == nil {
			respondCached(c, &entry)
			return
		}

		rec := &cacheRecorder{ResponseWriter: c.Writer, limit: cfg.MaxBodyBytes}
		c.Writer = rec

		c.Next()

		if _, ok := cacheableStatus[c.Writer.Status()]; ok {
			storeCached(c, cfg, key, rec)
		}
	}
}

// cachedResponse KV 中的条目布局，仅本中间件读写.
type cachedResponse struct {
	Status   int               `json:"st"`
	Header   map[string]string `json:"hd,omitempty"`
	Body     []byte            `json:"bd,omitempty"`
	ETag     string            `json:"et,omitempty"`
	StoredAt int64             `json:"at"` // unix nano，用于 Age 头
}

// cacheKey 由方法、路由、规整化 query 与 vary 头生成定长键.
func cacheKey(c *gin.Context, vary []string) string {
	var b strings.Builder

	b.WriteString(c.Request.Method)
	b.WriteByte(' ')

	path := c.FullPath()
	if path == "" {
		path = c.Request.URL.Path
	}

	b.WriteString(path)

	// query 键排序，保证键稳定
	if q := c.Request.URL.Query(); len(q) > 0 {
		names := make([]string, 0, len(q))
		for name := range q {
			names = append(names, name)
		}

		sort.Strings(names)

		for _, name := range names {
			b.WriteByte('&')
			b.WriteString(name)
			b.WriteByte('=')
			b.WriteString(strings.Join(q[name], ","))
		}
	}

	for _, h := range vary {
		b.WriteByte('\n')
		b.WriteString(h)
		b.WriteByte(':')
		b.WriteString(c.GetHeader(h))
	}

	return fmt.Sprintf("%s%x", cacheKeyPrefix, xxhash.Sum64String(b.String()))
}

// respondCached 以缓存条目响应，匹配 If-None-Match 时返回 304.
func respondCached(c *gin.Context, entry *cachedResponse) {
	h := c.Writer.Header()
	for k, v := range entry.Header {
		h.Set(k, v)
	}

	if entry.ETag != "" {
		h.Set("ETag", entry.ETag)
	}

	h.Set("Age", fmt.Sprintf("%.0f", time.Since(time.Unix(0, entry.StoredAt)).Seconds()))
	h.Set("X-Cache", "HIT")

	if entry.ETag != "" && c.GetHeader("If-None-Match") == entry.ETag {
		c.Status(http.StatusNotModified)
		c.Abort()

		return
	}

	c.Status(entry.Status)

	if c.Request.Method != http.MethodHead {
		_, _ = c.Writer.Write(entry.Body)
	}

	c.Abort()
}

// storeCached 将本次响应写入缓存，并补充 ETag / X-Cache 头.
func storeCached(c *gin.Context, cfg CacheConfig, key string, rec *cacheRecorder) {
	if rec.overflow || !allowStore(c.Writer.Header()) {
		return
	}

	header := make(map[string]string, len(c.Writer.Header()))

	for k, v := range c.Writer.Header() {
		if len(v) > 0 {
			header[k] = v[0]
		}
	}

	body := rec.body.Bytes()

	etag := c.Writer.Header().Get("ETag")
	if etag == "" {
		etag = fmt.Sprintf("%q", fmt.Sprintf("%x", xxhash.Sum64(body)))
		c.Writer.Header().Set("ETag", etag)
		header["ETag"] = etag
	}

	entry := cachedResponse{
		Status:   c.Writer.Status(),
		Header:   header,
		Body:     body,
		ETag:     etag,
		StoredAt: time.Now().UnixNano(),
	}

	// 异步写缓存，请求结束后上下文会被取消，故剥离取消信号
	ctx := context.WithoutCancel(c.Request.Context())

	go func() {
		_ = appcache.Set(ctx, cfg.Cache, key, entry, cfg.TTL)
	}()

	c.Writer.Header().Set("X-Cache", "MISS")
}

// allowStore 依据响应的 Cache-Control 判断是否允许缓存.
func allowStore(h http.Header) bool {
	cc := strings.ToLower(h.Get("Cache-Control"))
	return !strings.Contains(cc, "no-store") && !strings.Contains(cc, "private")
}

// cacheRecorder 复制响应体用于缓存，超过 limit 后放弃复制只透传.
type cacheRecorder struct {
	gin.ResponseWriter

	body     bytes.Buffer
	limit    int
	overflow bool
}

func (w *cacheRecorder) Write(b []byte) (int, error) {
	if !w.overflow {
		if w.limit > 0 && w.body.Len()+len(b) > w.limit {
			w.overflow = true
			w.body.Reset()
		} else {
			w.body.Write(b)
		}
	}

	return w.ResponseWriter.Write(b)
}
