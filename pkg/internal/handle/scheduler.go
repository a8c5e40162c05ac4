package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sujaykar/echovault/pkg/middleware"
	"github.com/sujaykar/echovault/pkg/scheduler"
)

// schedulerFrom 取注入的调度器，取不到时写 503 并返回 nil.
func schedulerFrom(c *gin.Context) *scheduler.Scheduler {
	sched := middleware.GetScheduler(c)
	if sched == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "scheduler not available"})
	}

	return sched
}

// SchedulerJobs 列出全部定时任务及其运行状态.
func SchedulerJobs(c *gin.Context) {
	sched := schedulerFrom(c)
	if sched == nil {
		return
	}

	c.JSON(http.StatusOK, gin.H{"jobs": sched.GetJobInfos()})
}

// SchedulerStopJobs 停掉所有任务的后续调度.
func SchedulerStopJobs(c *gin.Context) {
	sched := schedulerFrom(c)
	if sched == nil {
		return
	}

	if err := sched.StopJobs(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "jobs stopped"})
}

// SchedulerRemoveJob 按任务 ID 移除单个任务.
func SchedulerRemoveJob(c *gin.Context) {
	sched := schedulerFrom(c)
	if sched == nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})

		return
	}

	if err := sched.RemoveJob(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "job removed"})
}

// SchedulerQueueWaiting 返回排队等待执行的任务数.
func SchedulerQueueWaiting(c *gin.Context) {
	sched := schedulerFrom(c)
	if sched == nil {
		return
	}

	c.JSON(http.StatusOK, gin.H{"waiting": sched.JobsWaitingInQueue()})
}
