// Package middleware 提供中间件
package middleware

import (
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

// MaxBytesMiddleware 限制请求体大小，超限的读取会在 handler 侧得到错误.
// maxBytes <= 0 时不做限制.
func MaxBytesMiddleware(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		c.Next()
	}
}

// GzipMiddleware 对 JSON 响应启用 gzip 压缩.
// 负载上传与下载为原始字节流，不参与压缩.
func GzipMiddleware() gin.HandlerFunc {
	return gzip.Gzip(gzip.DefaultCompression,
		gzip.WithExcludedPaths([]string{"/upload", "/download"}))
}
