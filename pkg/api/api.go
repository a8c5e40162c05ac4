// Package api 汇总HTTP路由注册，将各业务路由组绑定到 gin 引擎.
package api

import (
	"github.com/gin-gonic/gin"

	appcache "github.com/sujaykar/echovault/pkg/cache"
	"github.com/sujaykar/echovault/pkg/internal/router"
	"github.com/sujaykar/echovault/pkg/middleware"
)

// RegisterGroup 注册全部路由到传入的 gin 引擎：
//   - /api/v1 下的回声记录、健康检查与调度管理（调度管理要求 admin 角色）
//   - 根路径下的文件服务（与既有客户端的 /upload /download /meta 约定一致）
//   - 调试模式下的 swagger 文档
//
// respCache 用于 /meta 响应缓存，可为 nil.
func RegisterGroup(e *gin.Engine, respCache *appcache.Cache) *gin.Engine {
	apiV1 := e.Group("/api/v1")
	{
		router.RegisterEchoesRoutes(apiV1)
		router.RegisterHealthCheckRoute(apiV1)

		adminRoutes := apiV1.Group("", middleware.RequireMinRole(middleware.RoleAdmin))
		router.RegisterSchedulerRoutes(adminRoutes)
	}

	router.RegisterFileServerRoutes(e, respCache)
	router.RegisterSwaggerRoute(e)

	return e
}
