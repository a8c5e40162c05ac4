package middleware

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSMiddleware 放开跨域限制，录音客户端与服务端不同源.
// 自定义身份头要显式列入允许列表，浏览器预检才会放行.
func CORSMiddleware() gin.HandlerFunc {
	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowWebSockets = true
	config.AllowFiles = true
	config.AddAllowHeaders("X-User-Id", "X-Role")

	return cors.New(config)
}
