/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-12-01 21:40:12
 * @LastEditTime: 2025-12-02 21:02:45
 * @LastEditors: 安知鱼
 */
package task

import (
	"context"
	"log/slog"
	"time"

	"github.com/xyhcode/tidecms/pkg/service/moderation"
)

// StatsRefreshJob 定期重算评论状态统计并回填缓存。
// 正常情况下缓存已经由各个写路径同步失效，这个任务兜底发现并纠正偏差。
type StatsRefreshJob struct {
	moderationSvc *moderation.Service
	logger        *slog.Logger
}

// NewStatsRefreshJob 创建统计刷新任务实例
func NewStatsRefreshJob(moderationSvc *moderation.Service, logger *slog.Logger) *StatsRefreshJob {
	return &StatsRefreshJob{
		moderationSvc: moderationSvc,
		logger:        logger,
	}
}

// Run 执行统计刷新任务
func (j *StatsRefreshJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := j.moderationSvc.RefreshStats(ctx); err != nil {
		j.logger.Error("刷新评论统计失败", slog.Any("error", err))
		return
	}
}

// Name 返回任务名称
func (j *StatsRefreshJob) Name() string {
	return "StatsRefreshJob"
}
