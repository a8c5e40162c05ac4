// Package jobs 负责注册与实现业务定时任务（基于 scheduler）。
package jobs

import (
	"context"
	"fmt"

	"github.com/sujaykar/echovault/pkg/configs"
	ctxPkg "github.com/sujaykar/echovault/pkg/context"
	"github.com/sujaykar/echovault/pkg/internal/model"
	"github.com/sujaykar/echovault/pkg/internal/service"
	"github.com/sujaykar/echovault/pkg/internal/storage"
	"github.com/sujaykar/echovault/pkg/log"
	"github.com/sujaykar/echovault/pkg/scheduler"
)

// RegisterCronJobs 配置业务定时任务：
//   - 按 fileserver.sweep_cron（默认每 30 分钟）清理孤儿上传对象
//   - 按 fileserver.stats_cron（默认每小时整点）输出回声记录统计
func RegisterCronJobs(sched *scheduler.Scheduler, mgr *storage.Manager) error {
	if sched == nil {
		return fmt.Errorf("scheduler is nil")
	}

	if mgr == nil {
		return fmt.Errorf("storage manager is nil")
	}

	cfg := configs.GetConfig().FileServer

	// 将 storage manager 注入到 context，便于 service 使用
	baseCtx := ctxPkg.WithStorageManager(context.Background(), mgr)

	sweepCron := cfg.SweepCron
	if sweepCron == "" {
		sweepCron = configs.DefaultFSSweepCron
	}

	_ = sched.AddCron(JobUploadOrphanSweep, sweepCron, func(ctx context.Context) {
		runOrphanSweep(ctx)
	}, baseCtx)

	statsCron := cfg.StatsCron
	if statsCron == "" {
		statsCron = configs.DefaultFSStatsCron
	}

	_ = sched.AddCron(JobEchoStats, statsCron, func(ctx context.Context) {
		runEchoStats(ctx, mgr)
	}, baseCtx)

	return nil
}

// runOrphanSweep 清理超过保留期且没有对应回声记录的上传对象。
func runOrphanSweep(ctx context.Context) {
	l := log.Logger().With().Str("job", JobUploadOrphanSweep).Logger()

	svc := service.NewFileServerService(ctx)

	swept, err := svc.SweepOrphanUploads(ctx)
	if err != nil {
		l.Error().Err(err).Msg("orphan sweep failed")
		return
	}

	if swept > 0 {
		l.Info().Int("swept", swept).Msg("orphan uploads removed")
	}
}

// mediaTypeCount 单个媒体类型的记录数。
type mediaTypeCount struct {
	MediaType string
	Count     int64
}

// runEchoStats 输出回声记录总量、媒体类型分布与列表缓存键数。
func runEchoStats(ctx context.Context, mgr *storage.Manager) {
	l := log.Logger().With().Str("job", JobEchoStats).Logger()

	if mgr.GetDBClient() == nil || mgr.GetDBClient().GetDB() == nil {
		l.Warn().Msg("db not initialized, skip stats")
		return
	}

	dbx := mgr.GetDBClient().GetDB().WithContext(ctx)

	var total int64
	if err := dbx.Model(&model.Echo{}).Count(&total).Error; err != nil {
		l.Error().Err(err).Msg("count echoes failed")
		return
	}

	var perType []mediaTypeCount
	if err := dbx.Model(&model.Echo{}).
		Select("media_type, COUNT(*) AS count").
		Group("media_type").
		Order("count DESC").
		Limit(10).
		Scan(&perType).Error; err != nil {
		l.Error().Err(err).Msg("group by media type failed")
		return
	}

	ev := l.Info().Int64("total", total)
	for _, t := range perType {
		ev = ev.Int64("type:"+t.MediaType, t.Count)
	}

	if kvc := mgr.GetKVClient(); kvc != nil {
		if keys, err := kvc.Keys(ctx, service.ListCachePattern); err == nil {
			ev = ev.Int("list_cache_keys", len(keys))
		}
	}

	ev.Msg("echo stats")
}
