// Package scheduler 基于 gocron/v2 封装定时任务调度，维护任务运行状态供管理接口查询.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sujaykar/echovault/pkg/log"
)

// refreshInterval 后台刷新 NextRun/LastRun 的间隔.
const refreshInterval = 10 * time.Second

// JobStatus 任务状态.
type JobStatus string

const (
	StatusScheduled JobStatus = "scheduled" // 等待下次调度
	StatusRunning   JobStatus = "running"   // 正在执行
	StatusError     JobStatus = "error"     // 上次执行出错
)

// JobInfo 单个任务的运行信息，管理接口以 JSON 返回.
type JobInfo struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	CronExpr    string    `json:"cron_expr"`
	NextRun     time.Time `json:"next_run"`
	LastRun     time.Time `json:"last_run"`
	LastSuccess time.Time `json:"last_success,omitempty"`
	Status      JobStatus `json:"status"`
	Error       string    `json:"error,omitempty"`
}

// trackedJob 调度器内部的任务登记项.
type trackedJob struct {
	job  gocron.Job
	info JobInfo
}

// Scheduler 定时任务调度器.
type Scheduler struct {
	mu     sync.RWMutex
	inner  gocron.Scheduler
	byName map[string]*trackedJob
	logger *zerolog.Logger
	cancel context.CancelFunc
}

// NewScheduler 创建调度器并启动后台状态刷新.
func NewScheduler() (*Scheduler, error) {
	inner, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	s := &Scheduler{
		inner:  inner,
		byName: make(map[string]*trackedJob),
		logger: log.Logger(),
		cancel: cancel,
	}

	go s.refreshLoop(ctx)

	return s, nil
}

// AddCron 以 cron 表达式注册命名任务，同名任务只能注册一次.
// 任务 panic 会被捕获并记入状态，不影响调度器本身.
func (s *Scheduler) AddCron(name string, cronExpr string, job func(ctx context.Context), ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byName[name]; exists {
		return fmt.Errorf("job %s already registered", name)
	}

	run := func(ctx context.Context) {
		s.markRunning(name)

		defer func() {
			if r := recover(); r != nil {
				s.markError(name, fmt.Sprintf("panic: %v", r))
				s.logger.Error().Str("job", name).Interface("panic", r).Msg("Job panicked")
			}
		}()

		job(ctx)
		s.markSuccess(name)
	}

	j, err := s.inner.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(run, ctx),
		gocron.WithName(name),
	)
	if err != nil {
		return err
	}

	nextRun, _ := j.NextRun()

	s.byName[name] = &trackedJob{
		job: j,
		info: JobInfo{
			ID:       j.ID().String(),
			Name:     name,
			CronExpr: cronExpr,
			NextRun:  nextRun,
			Status:   StatusScheduled,
		},
	}

	s.logger.Info().Str("job", name).Str("cron", cronExpr).Msg("Added cron job")

	return nil
}

// Start 启动调度器.
func (s *Scheduler) Start() {
	s.logger.Info().Msg("Starting scheduler")
	s.inner.Start()
}

// Shutdown 停止后台刷新并关闭调度器.
func (s *Scheduler) Shutdown() error {
	s.cancel()
	return s.inner.Shutdown()
}

// StopJobs 停止所有任务的执行.
func (s *Scheduler) StopJobs() error {
	return s.inner.StopJobs()
}

// JobsWaitingInQueue 返回队列中等待执行的任务数.
func (s *Scheduler) JobsWaitingInQueue() int {
	return s.inner.JobsWaitingInQueue()
}

// RemoveJob 按任务 ID 移除任务.
func (s *Scheduler) RemoveJob(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for name, t := range s.byName {
		if t.job.ID() == id {
			delete(s.byName, name)
			s.logger.Info().Str("job", name).Msg("Removed job")

			break
		}
	}

	return s.inner.RemoveJob(id)
}

// GetJobInfos 返回全部任务的运行信息.
func (s *Scheduler) GetJobInfos() []JobInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]JobInfo, 0, len(s.byName))
	for _, t := range s.byName {
		infos = append(infos, t.info)
	}

	return infos
}

// ---- 状态维护 ----

func (s *Scheduler) markRunning(name string) { s.setStatus(name, StatusRunning, "", false) }

func (s *Scheduler) markError(name, msg string) { s.setStatus(name, StatusError, msg, false) }

func (s *Scheduler) markSuccess(name string) { s.setStatus(name, StatusScheduled, "", true) }

func (s *Scheduler) setStatus(name string, status JobStatus, errMsg string, success bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.byName[name]
	if !ok {
		return
	}

	t.info.Status = status
	t.info.Error = errMsg

	if success {
		t.info.LastSuccess = time.Now()
	}
}

// refreshLoop 周期性刷新各任务的运行时间信息.
func (s *Scheduler) refreshLoop(ctx context.Context) {
	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.refreshRunTimes()
		}
	}
}

func (s *Scheduler) refreshRunTimes() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.byName {
		if next, err := t.job.NextRun(); err == nil {
			t.info.NextRun = next
		}

		if last, err := t.job.LastRun(); err == nil {
			t.info.LastRun = last
		}
	}
}
