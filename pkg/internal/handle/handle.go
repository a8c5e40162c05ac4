// Package handle 实现各 HTTP 端点的请求处理器.
package handle

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sujaykar/echovault/pkg/rule"
)

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}

	return ""
}

// checkUser 提取请求方标识：匿名客户端自带的 X-User-Id 优先，
// 其次是反向代理注入的邮箱头，本地联调允许 query 兜底.
func checkUser(c *gin.Context) (string, error) {
	user := firstNonEmpty(c.GetHeader("X-User-Id"), c.GetHeader("X-Auth-Request-Email"), c.Query("user"))

	// 非 release 模式给个测试默认值
	if user == "" && gin.Mode() != gin.ReleaseMode {
		user = "test-user"
	}

	// 标识由客户端生成，只约束非空与长度
	if err := rule.ValidateVar(user, "required,max=255"); err != nil {
		return "", err
	}

	return user, nil
}
