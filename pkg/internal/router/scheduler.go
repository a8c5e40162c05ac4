package router

import (
	"github.com/gin-gonic/gin"

	"github.com/sujaykar/echovault/pkg/internal/handle"
)

// RegisterSchedulerRoutes 注册调度管理端点，调用方负责加上管理员角色限制.
func RegisterSchedulerRoutes(g *gin.RouterGroup) {
	sched := g.Group("/scheduler")
	{
		sched.GET("/jobs", handle.SchedulerJobs)
		sched.POST("/jobs/stop", handle.SchedulerStopJobs)
		sched.DELETE("/jobs/:id", handle.SchedulerRemoveJob)
		sched.GET("/queue/waiting", handle.SchedulerQueueWaiting)
	}
}
