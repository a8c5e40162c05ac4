package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sujaykar/echovault/pkg/configs"
)

// AuthMiddleware 做统一身份校验.
//   - 客户端自带 X-User-Id（匿名客户端本地生成并持久化）
//   - 其次取 oauth2-proxy 注入的 X-Auth-Request-Email / X-Forwarded-Email
//   - skip_paths 前缀命中的路径直接放行（如 /metrics、探活）
//   - dev_allow_query 打开时允许 ?user= 兜底，只用于本地联调.
func AuthMiddleware(conf configs.AuthConfig) gin.HandlerFunc {
	headers := []string{"X-User-Id", "X-Auth-Request-Email", "X-Forwarded-Email"}

	return func(c *gin.Context) {
		if !conf.Enabled || skipAuth(c.Request.URL.Path, conf.SkipPaths) {
			c.Next()

			return
		}

		var ident string

		for _, h := range headers {
			if ident = strings.TrimSpace(c.GetHeader(h)); ident != "" {
				break
			}
		}

		if ident == "" && conf.DevAllowQuery {
			ident = c.Query("user")
		}

		if ident == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})

			return
		}

		c.Next()
	}
}

func skipAuth(path string, prefixes []string) bool {
	for _, p := range prefixes {
		p = strings.TrimSpace(p)
		if p != "" && strings.HasPrefix(path, p) {
			return true
		}
	}

	return false
}
