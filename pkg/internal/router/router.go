// Package router 管理路由配置，用于设置HTTP服务的路由规则.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/sujaykar/echovault/pkg/internal/handle"
)

// RegisterEchoesRoutes 注册回声记录相关路由（假定上层会用 g := r.Group("/api/v1")）：
//
//	POST   /echoes              -> CreateEcho
//	GET    /echoes              -> ListEchoes
//	GET    /echoes/:echoID      -> GetEcho
//	DELETE /echoes/:echoID      -> DeleteEcho
//	PATCH  /echoes/:echoID/text -> UpdateEchoText
func RegisterEchoesRoutes(g *gin.RouterGroup) {
	echoesRoutes := g.Group("/echoes")
	{
		echoesRoutes.POST("", handle.CreateEcho)
		echoesRoutes.GET("", handle.ListEchoes)
		echoesRoutes.GET("/:echoID", handle.GetEcho)
		echoesRoutes.DELETE("/:echoID", handle.DeleteEcho)
		echoesRoutes.PATCH("/:echoID/text", handle.UpdateEchoText)
	}
}
