package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/sujaykar/echovault/pkg/configs"
)

// RateLimitMiddleware 按配置构造限流中间件.
// key 维度支持 global、ip 与 header:<Header-Name>，默认按 ip.
func RateLimitMiddleware(cfg configs.RateLimitConfig) gin.HandlerFunc {
	if !cfg.Enabled || cfg.RPS <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	mode := strings.ToLower(strings.TrimSpace(cfg.Key))
	if mode == "global" || mode == "" {
		limiter := rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst)

		return func(c *gin.Context) {
			if !limiter.Allow() {
				tooManyRequests(c)

				return
			}

			c.Next()
		}
	}

	keyOf := clientIP
	if strings.HasPrefix(mode, "header:") {
		header := strings.TrimPrefix(mode, "header:")
		keyOf = func(c *gin.Context) string {
			if v := c.GetHeader(header); v != "" {
				return v
			}

			// 请求头缺失时退回 IP 维度
			return clientIP(c)
		}
	}

	pool := newLimiterPool(rate.Limit(cfg.RPS), cfg.Burst)

	return func(c *gin.Context) {
		key := keyOf(c)
		if key == "" {
			key = "unknown"
		}

		if !pool.get(key).Allow() {
			tooManyRequests(c)

			return
		}

		c.Next()
	}
}

func tooManyRequests(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
}

// limiterPool 按 key 维护独立的令牌桶.
type limiterPool struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

const maxTrackedKeys = 10000

func newLimiterPool(limit rate.Limit, burst int) *limiterPool {
	p := &limiterPool{
		limiters: make(map[string]*rate.Limiter),
		limit:    limit,
		burst:    burst,
	}

	go p.prune()

	return p
}

func (p *limiterPool) get(key string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	l, ok := p.limiters[key]
	if !ok {
		l = rate.NewLimiter(p.limit, p.burst)
		p.limiters[key] = l
	}

	return l
}

// prune 不逐个跟踪 key 的活跃时间，条目过多时整体重建.
func (p *limiterPool) prune() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		p.mu.Lock()
		if len(p.limiters) > maxTrackedKeys {
			p.limiters = make(map[string]*rate.Limiter)
		}
		p.mu.Unlock()
	}
}

func clientIP(c *gin.Context) string {
	if ip := c.ClientIP(); ip != "" {
		return ip
	}

	if host, _, err := net.SplitHostPort(c.Request.RemoteAddr); err == nil {
		return host
	}

	return c.Request.RemoteAddr
}
