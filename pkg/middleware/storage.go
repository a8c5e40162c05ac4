package middleware

import (
	"github.com/gin-gonic/gin"

	ctxPkg "github.com/sujaykar/echovault/pkg/context"
	"github.com/sujaykar/echovault/pkg/internal/storage"
)

// StorageMiddleware 把存储管理器注入 request context，
// handler 经 pkg/context 的 Get*Client 取用.
func StorageMiddleware(manager *storage.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(ctxPkg.WithStorageManager(c.Request.Context(), manager))
		c.Next()
	}
}
