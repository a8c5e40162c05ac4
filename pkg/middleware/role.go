package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Role 请求方角色，数值越大权限越高.
type Role int

const (
	RoleUser Role = iota + 1
	RoleService
	RoleAdmin
)

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleService:
		return "service"
	default:
		return "user"
	}
}

type roleKey struct{}

const roleContextKey = "role"

// parseRole 解析角色名，未知值一律按普通用户处理.
func parseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return RoleAdmin
	case "service":
		return RoleService
	default:
		return RoleUser
	}
}

// RoleMiddleware 从 X-Role 读取角色，同时写入 gin.Context 与
// request context，handler 和 service 两侧都取得到.
func RoleMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		r := parseRole(c.GetHeader("X-Role"))

		c.Set(roleContextKey, r)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), roleKey{}, r))

		c.Next()
	}
}

// GetRole 返回当前请求的角色.
func GetRole(c *gin.Context) Role {
	if v, ok := c.Get(roleContextKey); ok {
		if r, ok := v.(Role); ok {
			return r
		}
	}

	if r, ok := c.Request.Context().Value(roleKey{}).(Role); ok {
		return r
	}

	return RoleUser
}

// RequireMinRole 拦截角色低于 minRole 的请求.
func RequireMinRole(minRole Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetRole(c) < minRole {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})

			return
		}

		c.Next()
	}
}
