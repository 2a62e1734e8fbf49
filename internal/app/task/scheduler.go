/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-11-29 22:09:46
 * @LastEditTime: 2025-12-02 21:10:27
 * @LastEditors: 安知鱼
 */
package task

import (
	"log/slog"
	"os"

	"github.com/xyhcode/tidecms/pkg/service/moderation"

	"github.com/robfig/cron/v3"
)

// Scheduler 封装了 cron 实例和其依赖。
// 它是整个定时任务模块的核心协调者，负责任务的注册、启动和停止。
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
	// 在这里注入所有任务可能需要的 service 依赖
	moderationSvc *moderation.Service
}

// NewScheduler 是 Scheduler 的构造函数。
func NewScheduler(moderationSvc *moderation.Service) *Scheduler {
	slogHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	logger := slog.New(slogHandler).With("system", "cron")

	c := cron.New(
		cron.WithSeconds(),
		cron.WithChain(
			NewPanicRecoveryWrapper(logger),
			NewLoggingWrapper(logger),
			cron.DelayIfStillRunning(cron.DefaultLogger),
		),
	)

	return &Scheduler{
		cron:          c,
		logger:        logger,
		moderationSvc: moderationSvc,
	}
}

// RegisterJobs 在调度器中注册所有定义好的定时任务。
func (s *Scheduler) RegisterJobs() {
	s.logger.Info("Registering all periodic jobs...")

	// --- 任务1: 刷新评论状态统计缓存 ---
	statsJob := NewStatsRefreshJob(s.moderationSvc, s.logger)

	_, err := s.cron.AddJob("0 */5 * * * *", statsJob)
	if err != nil {
		s.logger.Error("Failed to add 'StatsRefreshJob'", slog.Any("error", err))
		os.Exit(1)
	}
	s.logger.Info("-> Successfully registered 'StatsRefreshJob'", "schedule", "every 5 minutes")

	s.logger.Info("All periodic jobs registered.")
}

// Start 启动 cron 调度器。
func (s *Scheduler) Start() {
	s.logger.Info("Cron scheduler started.")
	s.cron.Start()
}

// Stop 优雅地停止 cron 调度器。
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Cron scheduler gracefully stopped.")
}
