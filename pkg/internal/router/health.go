package router

import (
	"github.com/gin-gonic/gin"

	"github.com/sujaykar/echovault/pkg/internal/handle"
)

// RegisterHealthCheckRoute 注册聚合探活与各依赖组件的探活端点.
func RegisterHealthCheckRoute(g *gin.RouterGroup) {
	health := g.Group("/health")
	{
		health.GET("", handle.Health)
		health.GET("/db", handle.HealthDB)
		health.GET("/s3", handle.HealthS3)
		health.GET("/kv", handle.HealthKV)
		health.GET("/mq", handle.HealthMQ)
	}
}
