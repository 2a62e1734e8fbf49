/*
 * @Description: 评论审核引擎：状态机流转、批量操作、站长回复与状态统计
 * @Author: 安知鱼
 * @Date: 2025-12-01 18:30:24
 * @LastEditTime: 2025-12-02 19:12:08
 * @LastEditors: 安知鱼
 */
package moderation

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/xyhcode/tidecms/internal/pkg/auth"
	"github.com/xyhcode/tidecms/internal/pkg/event"
	"github.com/xyhcode/tidecms/internal/pkg/parser"
	"github.com/xyhcode/tidecms/pkg/constant"
	"github.com/xyhcode/tidecms/pkg/domain/model"
	"github.com/xyhcode/tidecms/pkg/domain/repository"
	cdto "github.com/xyhcode/tidecms/pkg/handler/comment/dto"
	"github.com/xyhcode/tidecms/pkg/handler/moderation/dto"
	"github.com/xyhcode/tidecms/pkg/idgen"
	commentsvc "github.com/xyhcode/tidecms/pkg/service/comment"
	"github.com/xyhcode/tidecms/pkg/service/setting"
	"github.com/xyhcode/tidecms/pkg/service/utility"
)

// statsCacheKey 是状态统计的缓存键。
const statsCacheKey = "moderation:stats"

// statsCacheTTL 只是兜底，所有写操作都会主动失效缓存。
const statsCacheTTL = 10 * time.Minute

// StatusChangedEvent 是状态流转事件的载荷。
type StatusChangedEvent struct {
	CommentID uint
	From      model.Status
	To        model.Status
}

// Service 审核引擎的核心业务逻辑。
type Service struct {
	repo       repository.CommentRepository
	userRepo   repository.UserRepository
	settingSvc setting.SettingService
	cacheSvc   utility.CacheService
	bus        *event.EventBus
	commentSvc *commentsvc.Service
}

// NewService 是审核引擎的构造函数。
// 它会订阅评论的增删事件，保证统计缓存在任何写入后都被失效。
func NewService(
	repo repository.CommentRepository,
	userRepo repository.UserRepository,
	settingSvc setting.SettingService,
	cacheSvc utility.CacheService,
	bus *event.EventBus,
	commentSvc *commentsvc.Service,
) *Service {
	s := &Service{
		repo:       repo,
		userRepo:   userRepo,
		settingSvc: settingSvc,
		cacheSvc:   cacheSvc,
		bus:        bus,
		commentSvc: commentSvc,
	}

	invalidate := func(payload interface{}) {
		if err := s.cacheSvc.Delete(context.Background(), statsCacheKey); err != nil {
			log.Printf("[WARN] 失效统计缓存失败: %v", err)
		}
	}
	bus.Subscribe(event.CommentCreated, invalidate)
	bus.Subscribe(event.CommentDeleted, invalidate)
	bus.Subscribe(event.CommentStatusChanged, invalidate)

	return s
}

// Transition 将单条评论流转到目标状态。
// 流转本身是一次条件更新，并发下谁先写入谁生效，落后者收到冲突错误。
func (s *Service) Transition(ctx context.Context, publicID string, toRaw string) (*dto.StatusResponse, error) {
	id, entityType, err := idgen.DecodePublicID(publicID)
	if err != nil || entityType != idgen.EntityTypeComment {
		return nil, constant.ErrInvalidPublicID
	}
	to, ok := model.ParseStatus(toRaw)
	if !ok {
		return nil, fmt.Errorf("%w: 未知的评论状态 '%s'", constant.ErrBadRequest, toRaw)
	}

	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// 流转到当前状态是幂等操作
	if c.Status == to {
		return &dto.StatusResponse{ID: publicID, Status: string(to)}, nil
	}
	if !c.Status.CanTransition(to) {
		return nil, fmt.Errorf("%w: %s -> %s", constant.ErrInvalidTransition, c.Status, to)
	}

	updated, err := s.repo.UpdateStatusIf(ctx, id, c.Status, to)
	if err != nil {
		return nil, err
	}
	if !updated {
		// 条件更新没有命中：要么记录已被删除，要么状态被并发修改
		current, findErr := s.repo.FindByID(ctx, id)
		if findErr != nil {
			return nil, findErr
		}
		if current.Status == to {
			return &dto.StatusResponse{ID: publicID, Status: string(to)}, nil
		}
		return nil, fmt.Errorf("%w: 评论状态已被其他操作修改", constant.ErrConflict)
	}

	s.invalidateStats(ctx)
	s.bus.Publish(event.CommentStatusChanged, StatusChangedEvent{CommentID: id, From: c.Status, To: to})
	log.Printf("[DEBUG] 评论 %d 状态流转: %s -> %s", id, c.Status, to)

	return &dto.StatusResponse{ID: publicID, Status: string(to)}, nil
}

// BulkTransition 批量流转状态。每个ID独立处理，单条失败不会中断整批，
// 结果里逐条汇报成功与失败原因。重复的ID只处理一次。
func (s *Service) BulkTransition(ctx context.Context, publicIDs []string, toRaw string) (*dto.BulkResult, error) {
	if _, ok := model.ParseStatus(toRaw); !ok {
		return nil, fmt.Errorf("%w: 未知的评论状态 '%s'", constant.ErrBadRequest, toRaw)
	}

	result := &dto.BulkResult{
		Succeeded: []string{},
		Failed:    make(map[string]string),
	}
	for _, publicID := range dedupe(publicIDs) {
		if _, err := s.Transition(ctx, publicID, toRaw); err != nil {
			result.Failed[publicID] = err.Error()
			continue
		}
		result.Succeeded = append(result.Succeeded, publicID)
	}

	if len(result.Failed) > 0 {
		log.Printf("[WARN] 批量状态流转部分失败: 成功 %d 条, 失败 %d 条", len(result.Succeeded), len(result.Failed))
	}
	return result, nil
}

// BulkDelete 批量物理删除评论（级联删除各自的回复）。
// 与批量流转一致：逐条处理、逐条汇报。
func (s *Service) BulkDelete(ctx context.Context, publicIDs []string) (*dto.BulkResult, error) {
	result := &dto.BulkResult{
		Succeeded: []string{},
		Failed:    make(map[string]string),
	}
	for _, publicID := range dedupe(publicIDs) {
		id, entityType, err := idgen.DecodePublicID(publicID)
		if err != nil || entityType != idgen.EntityTypeComment {
			result.Failed[publicID] = constant.ErrInvalidPublicID.Error()
			continue
		}
		if _, err := s.commentSvc.DeleteWithReplies(ctx, id); err != nil {
			result.Failed[publicID] = err.Error()
			continue
		}
		result.Succeeded = append(result.Succeeded, publicID)
	}

	if len(result.Failed) > 0 {
		log.Printf("[WARN] 批量删除部分失败: 成功 %d 条, 失败 %d 条", len(result.Succeeded), len(result.Failed))
	}
	return result, nil
}

// StaffReply 以站长身份回复一条评论。
// 回复挂在目标评论所在楼的根评论下；按站点配置，可顺带通过仍在待审的目标评论。
func (s *Service) StaffReply(ctx context.Context, targetPublicID, content string, claims *auth.CustomClaims) (*cdto.Response, error) {
	if claims == nil {
		return nil, constant.ErrUnauthorized
	}
	userDBID, _, err := idgen.DecodePublicID(claims.UserID)
	if err != nil {
		return nil, constant.ErrInvalidToken
	}
	staff, err := s.userRepo.FindByID(ctx, userDBID)
	if err != nil {
		return nil, err
	}
	if !staff.IsAdmin() {
		return nil, constant.ErrForbidden
	}

	targetID, entityType, err := idgen.DecodePublicID(targetPublicID)
	if err != nil || entityType != idgen.EntityTypeComment {
		return nil, constant.ErrInvalidPublicID
	}
	target, err := s.repo.FindByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	// 垃圾评论和回收站里的评论不接受回复
	if target.Status == model.StatusSpam || target.Status == model.StatusTrash {
		return nil, fmt.Errorf("%w: 不能回复状态为 %s 的评论", constant.ErrInvalidTransition, target.Status)
	}

	safeHTML, err := parser.MarkdownToHTML(content)
	if err != nil {
		return nil, fmt.Errorf("markdown内容解析失败: %w", err)
	}

	// 回复始终挂在根评论下
	rootID := target.ID
	if target.ParentID != nil {
		rootID = *target.ParentID
	}

	// 站长回复的初始状态可配置，默认直接通过
	replyStatus := model.StatusApproved
	if raw := s.settingSvc.Get(constant.KeyCommentStaffReplyStatus.String()); raw != "" {
		if parsed, ok := model.ParseStatus(raw); ok {
			replyStatus = parsed
		} else {
			log.Printf("[WARN] 配置 %s 的值 '%s' 不是合法状态，回退为 approved", constant.KeyCommentStaffReplyStatus, raw)
		}
	}

	uid := staff.ID
	email := staff.Email
	params := &repository.CreateCommentParams{
		PostID:      target.PostID,
		ParentID:    &rootID,
		UserID:      &uid,
		AuthorKind:  model.AuthorRegistered,
		Name:        staff.Nickname,
		Email:       &email,
		Content:     content,
		ContentHTML: safeHTML,
		Status:      replyStatus,
		IsStaff:     true,
	}
	reply, err := s.repo.Create(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("保存站长回复失败: %w", err)
	}

	s.invalidateStats(ctx)
	s.bus.Publish(event.CommentCreated, reply.ID)

	// 站长亲自回复通常意味着目标评论没问题，按配置顺带通过
	if target.Status == model.StatusPending && s.settingSvc.GetBool(constant.KeyCommentApproveOnReply.String()) {
		if _, err := s.Transition(ctx, targetPublicID, string(model.StatusApproved)); err != nil {
			log.Printf("[WARN] 站长回复后自动通过评论 %d 失败: %v", target.ID, err)
		}
	}

	return s.commentSvc.ToResponse(reply, true), nil
}

// Stats 返回各状态的评论数量。
// postPublicID 不为空时只统计该文章下的评论，按文章过滤的统计直接查表不走缓存；
// 全站统计缓存在 Redis，所有写路径都会失效缓存，读到的数字与数据表保持一致。
func (s *Service) Stats(ctx context.Context, postPublicID string) (*model.StatusCounts, error) {
	if postPublicID != "" {
		postDBID, entityType, err := idgen.DecodePublicID(postPublicID)
		if err != nil || entityType != idgen.EntityTypePost {
			return nil, constant.ErrInvalidPublicID
		}
		return s.repo.CountByStatus(ctx, &postDBID)
	}

	if cached, err := s.cacheSvc.Get(ctx, statsCacheKey); err == nil && cached != "" {
		var counts model.StatusCounts
		if err := json.Unmarshal([]byte(cached), &counts); err == nil {
			return &counts, nil
		}
		log.Printf("[WARN] 统计缓存内容损坏，回退到实时统计: %s", cached)
	}

	counts, err := s.repo.CountByStatus(ctx, nil)
	if err != nil {
		return nil, err
	}
	s.cacheStats(ctx, counts)
	return counts, nil
}

// RefreshStats 重新统计并回填缓存，发现缓存与数据表不一致时告警。
// 由定时任务周期性调用。
func (s *Service) RefreshStats(ctx context.Context) error {
	counts, err := s.repo.CountByStatus(ctx, nil)
	if err != nil {
		return fmt.Errorf("实时统计失败: %w", err)
	}

	if cached, err := s.cacheSvc.Get(ctx, statsCacheKey); err == nil && cached != "" {
		var old model.StatusCounts
		if err := json.Unmarshal([]byte(cached), &old); err == nil && old != *counts {
			log.Printf("[WARN] 统计缓存与数据表不一致，已修正。缓存: %+v, 实际: %+v", old, *counts)
		}
	}

	s.cacheStats(ctx, counts)
	return nil
}

func (s *Service) cacheStats(ctx context.Context, counts *model.StatusCounts) {
	data, err := json.Marshal(counts)
	if err != nil {
		return
	}
	if err := s.cacheSvc.Set(ctx, statsCacheKey, string(data), statsCacheTTL); err != nil {
		log.Printf("[WARN] 写入统计缓存失败: %v", err)
	}
}

func (s *Service) invalidateStats(ctx context.Context) {
	if err := s.cacheSvc.Delete(ctx, statsCacheKey); err != nil {
		log.Printf("[WARN] 失效统计缓存失败: %v", err)
	}
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}
