package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/sujaykar/echovault/pkg/scheduler"
)

type schedulerKey struct{}

// SchedulerMiddleware 把调度器句柄注入 request context，供管理端点取用.
func SchedulerMiddleware(sched *scheduler.Scheduler) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), schedulerKey{}, sched))
		c.Next()
	}
}

// GetScheduler 取出注入的调度器，未注入时返回 nil.
func GetScheduler(c *gin.Context) *scheduler.Scheduler {
	sched, _ := c.Request.Context().Value(schedulerKey{}).(*scheduler.Scheduler)

	return sched
}
