package router

import (
	"github.com/gin-gonic/gin"

	appcache "github.com/sujaykar/echovault/pkg/cache"
	"github.com/sujaykar/echovault/pkg/configs"
	"github.com/sujaykar/echovault/pkg/internal/handle"
	"github.com/sujaykar/echovault/pkg/middleware"
)

// uploadFormOverhead 给 multipart 分隔符与表单头留的额外空间.
const uploadFormOverhead int64 = 64 << 10

// RegisterFileServerRoutes 注册文件服务路由. 这组路由直接挂在根路径上，
// 与既有客户端约定的 {baseURL}/upload/{echoID} 形式保持一致：
//
//	PUT    /upload/:echoID          -> UploadEcho
//	DELETE /upload/:echoID          -> DeleteUpload
//	GET    /upload/:echoID/progress -> UploadEchoProgress
//	GET    /download/:echoID        -> DownloadEcho
//	GET    /meta/:echoID            -> GetUploadMeta
//
// respCache 非 nil 时，/meta 响应走响应缓存（元数据写入后不变，适合短 TTL 缓存）.
func RegisterFileServerRoutes(e *gin.Engine, respCache *appcache.Cache) {
	cfg := configs.GetConfig().FileServer

	uploadRoutes := e.Group("/upload")
	if limit := cfg.MaxUploadSizeBytes(); limit > 0 {
		uploadRoutes.Use(middleware.MaxBytesMiddleware(limit + uploadFormOverhead))
	}

	{
		uploadRoutes.PUT("/:echoID", handle.UploadEcho)
		uploadRoutes.DELETE("/:echoID", handle.DeleteUpload)
		uploadRoutes.GET("/:echoID/progress", handle.UploadEchoProgress)
	}

	e.GET("/download/:echoID", handle.DownloadEcho)

	metaRoutes := e.Group("/meta")
	if respCache != nil {
		metaRoutes.Use(middleware.CacheMiddleware(middleware.DefaultCacheConfig(respCache)))
	}

	metaRoutes.GET("/:echoID", handle.GetUploadMeta)
}
