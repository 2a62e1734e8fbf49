/*
 * @Description: 评论服务的核心业务逻辑
 * @Author: 安知鱼
 * @Date: 2025-08-12 10:20:41
 * @LastEditTime: 2025-12-02 18:05:33
 * @LastEditors: 安知鱼
 */
package comment

import (
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/xyhcode/tidecms/internal/pkg/auth"
	"github.com/xyhcode/tidecms/internal/pkg/event"
	"github.com/xyhcode/tidecms/internal/pkg/parser"
	"github.com/xyhcode/tidecms/pkg/constant"
	"github.com/xyhcode/tidecms/pkg/domain/model"
	"github.com/xyhcode/tidecms/pkg/domain/repository"
	"github.com/xyhcode/tidecms/pkg/handler/comment/dto"
	"github.com/xyhcode/tidecms/pkg/idgen"
	"github.com/xyhcode/tidecms/pkg/service/setting"
	"github.com/xyhcode/tidecms/pkg/service/utility"
)

// Service 评论服务的核心业务逻辑。
type Service struct {
	repo       repository.CommentRepository
	postRepo   repository.PostRepository
	userRepo   repository.UserRepository
	txManager  repository.TransactionManager
	settingSvc setting.SettingService
	cacheSvc   utility.CacheService
	bus        *event.EventBus
}

// NewService 是评论服务的构造函数。
func NewService(
	repo repository.CommentRepository,
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	txManager repository.TransactionManager,
	settingSvc setting.SettingService,
	cacheSvc utility.CacheService,
	bus *event.EventBus,
) *Service {
	return &Service{
		repo:       repo,
		postRepo:   postRepo,
		userRepo:   userRepo,
		txManager:  txManager,
		settingSvc: settingSvc,
		cacheSvc:   cacheSvc,
		bus:        bus,
	}
}

// Create 创建一条新评论。
// 游客和登录用户都可以评论；登录用户的昵称、邮箱以用户资料为准。
func (s *Service) Create(ctx context.Context, req *dto.CreateRequest, ip, ua string, claims *auth.CustomClaims) (*dto.Response, error) {
	postDBID, entityType, err := idgen.DecodePublicID(req.PostID)
	if err != nil || entityType != idgen.EntityTypePost {
		return nil, constant.ErrInvalidPublicID
	}

	post, err := s.postRepo.FindByID(ctx, postDBID)
	if err != nil {
		if errors.Is(err, constant.ErrNotFound) {
			return nil, fmt.Errorf("%w: 文章不存在", constant.ErrNotFound)
		}
		return nil, err
	}
	if !post.CommentsOpen {
		return nil, constant.ErrCommentsClosed
	}

	// 基于IP的发布频率限制
	if err := s.checkRateLimit(ctx, ip); err != nil {
		return nil, err
	}

	content := strings.TrimSpace(req.Content)
	maxLen := s.settingSvc.GetInt(constant.KeyCommentLimitLength.String(), 1000)
	if content == "" || len([]rune(content)) > maxLen {
		return nil, fmt.Errorf("%w: 评论内容长度需在 1-%d 字符之间", constant.ErrBadRequest, maxLen)
	}

	// 解析父评论。回复楼中楼时自动上提到所在楼的根评论，
	// 保证落库后的楼层深度不超过一层。
	parentDBID, err := s.resolveParent(ctx, req.ParentID, postDBID)
	if err != nil {
		return nil, err
	}

	safeHTML, err := parser.MarkdownToHTML(content)
	if err != nil {
		return nil, fmt.Errorf("markdown内容解析失败: %w", err)
	}

	// 组装作者信息
	author := model.Author{
		Kind:      model.AuthorGuest,
		Name:      req.Name,
		Email:     req.Email,
		Website:   req.Website,
		IP:        ip,
		UserAgent: ua,
	}
	var isStaff bool
	if claims != nil {
		userDBID, _, err := idgen.DecodePublicID(claims.UserID)
		if err != nil {
			return nil, constant.ErrInvalidToken
		}
		user, err := s.userRepo.FindByID(ctx, userDBID)
		if err != nil {
			return nil, fmt.Errorf("查询评论用户失败: %w", err)
		}
		uid := user.ID
		email := user.Email
		author.Kind = model.AuthorRegistered
		author.UserID = &uid
		author.Name = user.Nickname
		author.Email = &email
		if user.Website != "" {
			website := user.Website
			author.Website = &website
		}
		isStaff = user.IsAdmin()
	} else if author.Name == "" {
		return nil, fmt.Errorf("%w: 游客评论需要填写昵称", constant.ErrBadRequest)
	} else if req.Email != nil && *req.Email != "" {
		// 防止游客冒用注册用户的邮箱发布评论
		if existing, err := s.userRepo.FindByEmail(ctx, *req.Email); err == nil && existing != nil {
			return nil, fmt.Errorf("%w: 该邮箱属于注册用户，请登录后评论", constant.ErrForbidden)
		}
	}

	// 初始状态：站长直接通过；开启审核时游客评论进入待审队列
	status := model.StatusApproved
	if !isStaff && s.settingSvc.GetBool(constant.KeyCommentModerationEnabled.String()) {
		status = model.StatusPending
	}

	params := &repository.CreateCommentParams{
		PostID:      postDBID,
		ParentID:    parentDBID,
		UserID:      author.UserID,
		AuthorKind:  author.Kind,
		Name:        author.Name,
		Email:       author.Email,
		Website:     author.Website,
		IPAddress:   ip,
		UserAgent:   ua,
		Content:     content,
		ContentHTML: safeHTML,
		Status:      status,
		IsStaff:     isStaff,
	}

	newComment, err := s.repo.Create(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("保存评论失败: %w", err)
	}
	log.Printf("[DEBUG] 新评论已保存，ID: %d, 状态: %s", newComment.ID, newComment.Status)

	s.bus.Publish(event.CommentCreated, newComment.ID)

	return s.ToResponse(newComment, true), nil
}

// checkRateLimit 利用缓存的原子递增实现滑动窗口限流。
// 缓存不可用时放行并记录警告，不阻塞评论主流程。
func (s *Service) checkRateLimit(ctx context.Context, ip string) error {
	limit := s.settingSvc.GetInt(constant.KeyCommentLimitPerWindow.String(), 1)
	windowSec := s.settingSvc.GetInt(constant.KeyCommentLimitWindowSeconds.String(), 30)
	if limit <= 0 || windowSec <= 0 {
		return nil
	}

	cacheKey := fmt.Sprintf("comment:rate_limit:%s", ip)
	count, err := s.cacheSvc.Increment(ctx, cacheKey)
	if err != nil {
		log.Printf("警告：速率限制检查失败: %v", err)
		return nil
	}
	if count == 1 {
		s.cacheSvc.Expire(ctx, cacheKey, time.Duration(windowSec)*time.Second)
	}
	if count > int64(limit) {
		return constant.ErrRateLimited
	}
	return nil
}

// resolveParent 校验父评论并返回归并后的根评论ID。
func (s *Service) resolveParent(ctx context.Context, parentPublicID *string, postDBID uint) (*uint, error) {
	if parentPublicID == nil || *parentPublicID == "" {
		return nil, nil
	}

	pID, entityType, err := idgen.DecodePublicID(*parentPublicID)
	if err != nil || entityType != idgen.EntityTypeComment {
		return nil, fmt.Errorf("%w: 无效的父评论ID", constant.ErrBadRequest)
	}
	parent, err := s.repo.FindByID(ctx, pID)
	if err != nil {
		if errors.Is(err, constant.ErrNotFound) {
			return nil, fmt.Errorf("%w: 回复的父评论不存在", constant.ErrNotFound)
		}
		return nil, err
	}

	// 回复楼中楼：上提到所在楼的根评论
	if parent.ParentID != nil {
		rootID := *parent.ParentID
		root, err := s.repo.FindByID(ctx, rootID)
		if err != nil {
			return nil, fmt.Errorf("查询根评论失败: %w", err)
		}
		parent = root
	}

	if parent.PostID != postDBID {
		return nil, constant.ErrParentMismatch
	}
	if parent.Status == model.StatusTrash {
		return nil, fmt.Errorf("%w: 不能回复已进入回收站的评论", constant.ErrForbidden)
	}

	rootID := parent.ID
	return &rootID, nil
}

// ListByPost 返回某篇文章下已通过的评论，根评论分页，子评论挂在各自楼下。
func (s *Service) ListByPost(ctx context.Context, postPublicID string, page, pageSize int) (*dto.ListResponse, error) {
	postDBID, entityType, err := idgen.DecodePublicID(postPublicID)
	if err != nil || entityType != idgen.EntityTypePost {
		return nil, constant.ErrInvalidPublicID
	}
	if _, err := s.postRepo.FindByID(ctx, postDBID); err != nil {
		return nil, err
	}
	return s.listByPostDBID(ctx, postDBID, page, pageSize)
}

// ListByPostSlug 按文章别名返回评论列表，供主题端直接用页面路径查询。
func (s *Service) ListByPostSlug(ctx context.Context, slug string, page, pageSize int) (*dto.ListResponse, error) {
	post, err := s.postRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.listByPostDBID(ctx, post.ID, page, pageSize)
}

func (s *Service) listByPostDBID(ctx context.Context, postDBID uint, page, pageSize int) (*dto.ListResponse, error) {
	page, pageSize = s.normalizePage(page, pageSize)

	roots, total, err := s.repo.FindApprovedRoots(ctx, postDBID, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("查询评论列表失败: %w", err)
	}

	rootIDs := make([]uint, 0, len(roots))
	for _, c := range roots {
		rootIDs = append(rootIDs, c.ID)
	}
	children, err := s.repo.FindApprovedChildren(ctx, rootIDs)
	if err != nil {
		return nil, fmt.Errorf("查询子评论失败: %w", err)
	}

	childrenByParent := make(map[uint][]*dto.Response)
	for _, c := range children {
		resp := s.ToResponse(c, false)
		childrenByParent[*c.ParentID] = append(childrenByParent[*c.ParentID], resp)
	}

	list := make([]*dto.Response, 0, len(roots))
	for _, c := range roots {
		resp := s.ToResponse(c, false)
		resp.Children = childrenByParent[c.ID]
		list = append(list, resp)
	}

	return &dto.ListResponse{
		List:     list,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// ListChildren 分页返回某条根评论下已通过的回复。
func (s *Service) ListChildren(ctx context.Context, parentPublicID string, page, pageSize int) (*dto.ListResponse, error) {
	pID, entityType, err := idgen.DecodePublicID(parentPublicID)
	if err != nil || entityType != idgen.EntityTypeComment {
		return nil, constant.ErrInvalidPublicID
	}
	if _, err := s.repo.FindByID(ctx, pID); err != nil {
		return nil, err
	}

	page, pageSize = s.normalizePage(page, pageSize)

	children, total, err := s.repo.FindApprovedChildrenPaginated(ctx, pID, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("查询子评论失败: %w", err)
	}

	list := make([]*dto.Response, 0, len(children))
	for _, c := range children {
		list = append(list, s.ToResponse(c, false))
	}
	return &dto.ListResponse{
		List:     list,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// ListLatest 返回全站最新的已通过评论。
func (s *Service) ListLatest(ctx context.Context, limit int) ([]*dto.Response, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	comments, err := s.repo.FindLatestApproved(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("查询最新评论失败: %w", err)
	}
	list := make([]*dto.Response, 0, len(comments))
	for _, c := range comments {
		list = append(list, s.ToResponse(c, false))
	}
	return list, nil
}

// CountByPosts 批量返回多篇文章的已通过评论数，供文章列表页展示评论数角标。
func (s *Service) CountByPosts(ctx context.Context, postPublicIDs []string) (map[string]int64, error) {
	if len(postPublicIDs) == 0 {
		return map[string]int64{}, nil
	}

	idToPublic := make(map[uint]string, len(postPublicIDs))
	dbIDs := make([]uint, 0, len(postPublicIDs))
	for _, publicID := range postPublicIDs {
		dbID, entityType, err := idgen.DecodePublicID(publicID)
		if err != nil || entityType != idgen.EntityTypePost {
			return nil, constant.ErrInvalidPublicID
		}
		if _, seen := idToPublic[dbID]; seen {
			continue
		}
		idToPublic[dbID] = publicID
		dbIDs = append(dbIDs, dbID)
	}

	counts, err := s.repo.CountApprovedByPostIDs(ctx, dbIDs)
	if err != nil {
		return nil, fmt.Errorf("统计文章评论数失败: %w", err)
	}

	result := make(map[string]int64, len(dbIDs))
	for dbID, publicID := range idToPublic {
		result[publicID] = counts[dbID]
	}
	return result, nil
}

// GetByID 根据公共ID查找单条评论。
func (s *Service) GetByID(ctx context.Context, publicID string, adminView bool) (*dto.Response, error) {
	id, entityType, err := idgen.DecodePublicID(publicID)
	if err != nil || entityType != idgen.EntityTypeComment {
		return nil, constant.ErrInvalidPublicID
	}

	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !adminView && !c.IsApproved() {
		return nil, constant.ErrNotFound
	}
	return s.ToResponse(c, adminView), nil
}

// GetManyByIDs 根据一组公共ID查找多条评论，返回顺序与入参一致。
func (s *Service) GetManyByIDs(ctx context.Context, publicIDs []string, adminView bool) ([]*dto.Response, error) {
	ids, err := idgen.DecodePublicIDBatch(publicIDs)
	if err != nil {
		return nil, constant.ErrInvalidPublicID
	}

	comments, err := s.repo.FindManyByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("批量查询评论失败: %w", err)
	}

	list := make([]*dto.Response, 0, len(comments))
	for _, c := range comments {
		if !adminView && !c.IsApproved() {
			continue
		}
		list = append(list, s.ToResponse(c, adminView))
	}
	return list, nil
}

// AdminList 按条件分页查询评论，后台视图会带上邮箱、IP等敏感字段。
func (s *Service) AdminList(ctx context.Context, req *dto.AdminListRequest) (*dto.ListResponse, error) {
	page, pageSize := s.normalizePage(req.Page, req.PageSize)

	params := repository.AdminListParams{
		Page:     page,
		PageSize: pageSize,
		Author:   req.Author,
		Content:  req.Content,
	}
	if req.Status != nil {
		status, ok := model.ParseStatus(*req.Status)
		if !ok {
			return nil, fmt.Errorf("%w: 未知的评论状态 '%s'", constant.ErrBadRequest, *req.Status)
		}
		params.Status = &status
	}
	if req.PostID != nil && *req.PostID != "" {
		postDBID, entityType, err := idgen.DecodePublicID(*req.PostID)
		if err != nil || entityType != idgen.EntityTypePost {
			return nil, constant.ErrInvalidPublicID
		}
		params.PostID = &postDBID
	}

	comments, total, err := s.repo.FindWithConditions(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("查询评论列表失败: %w", err)
	}

	list := make([]*dto.Response, 0, len(comments))
	for _, c := range comments {
		list = append(list, s.ToResponse(c, true))
	}

	// 后台列表附带各状态数量，前端用同一份数据渲染筛选标签。
	// 列表按文章过滤时，标签数量也跟随该文章。
	stats, err := s.repo.CountByStatus(ctx, params.PostID)
	if err != nil {
		log.Printf("[WARN] 统计评论状态数量失败: %v", err)
		stats = nil
	}

	return &dto.ListResponse{
		List:     list,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		Stats:    stats,
	}, nil
}

// UpdateContent 更新评论正文并重新渲染 HTML。
func (s *Service) UpdateContent(ctx context.Context, publicID string, newContent string) (*dto.Response, error) {
	id, entityType, err := idgen.DecodePublicID(publicID)
	if err != nil || entityType != idgen.EntityTypeComment {
		return nil, constant.ErrInvalidPublicID
	}

	content := strings.TrimSpace(newContent)
	maxLen := s.settingSvc.GetInt(constant.KeyCommentLimitLength.String(), 1000)
	if content == "" || len([]rune(content)) > maxLen {
		return nil, fmt.Errorf("%w: 评论内容长度需在 1-%d 字符之间", constant.ErrBadRequest, maxLen)
	}

	safeHTML, err := parser.MarkdownToHTML(content)
	if err != nil {
		return nil, fmt.Errorf("markdown内容解析失败: %w", err)
	}

	updated, err := s.repo.UpdateContent(ctx, id, content, safeHTML)
	if err != nil {
		return nil, err
	}
	return s.ToResponse(updated, true), nil
}

// DeleteWithReplies 物理删除一条评论，并在同一事务中级联删除它的所有回复。
// 返回实际删除的条数。
func (s *Service) DeleteWithReplies(ctx context.Context, id uint) (int, error) {
	var deleted int
	err := s.txManager.Do(ctx, func(repos repository.Repositories) error {
		childIDs, err := repos.Comment.FindChildIDs(ctx, id)
		if err != nil {
			return fmt.Errorf("查询子评论失败: %w", err)
		}
		ids := append(childIDs, id)
		n, err := repos.Comment.DeleteByIDs(ctx, ids)
		if err != nil {
			return err
		}
		if n == 0 {
			return constant.ErrNotFound
		}
		deleted = n
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.Printf("[DEBUG] 已删除评论 %d 及其回复，共 %d 条", id, deleted)
	s.bus.Publish(event.CommentDeleted, id)
	return deleted, nil
}

// SetPostCommentsOpen 开关某篇文章的评论区。
func (s *Service) SetPostCommentsOpen(ctx context.Context, postPublicID string, open bool) error {
	postDBID, entityType, err := idgen.DecodePublicID(postPublicID)
	if err != nil || entityType != idgen.EntityTypePost {
		return constant.ErrInvalidPublicID
	}
	if _, err := s.postRepo.FindByID(ctx, postDBID); err != nil {
		return err
	}
	if err := s.postRepo.SetCommentsOpen(ctx, postDBID, open); err != nil {
		return fmt.Errorf("更新评论区开关失败: %w", err)
	}
	log.Printf("[DEBUG] 文章 %d 评论区开关已更新为 %t", postDBID, open)
	return nil
}

// normalizePage 规范分页参数，默认分页大小来自站点配置。
func (s *Service) normalizePage(page, pageSize int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = s.settingSvc.GetInt(constant.KeyCommentPageSize.String(), 10)
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}

// ToResponse 将领域模型转换为API响应结构。
// isAdminView 为 true 时附带邮箱、IP、原文等仅后台可见的字段。
func (s *Service) ToResponse(c *model.Comment, isAdminView bool) *dto.Response {
	if c == nil {
		return nil
	}
	publicID, _ := idgen.GeneratePublicID(c.ID, idgen.EntityTypeComment)
	postPublicID, _ := idgen.GeneratePublicID(c.PostID, idgen.EntityTypePost)

	var emailMD5 string
	if c.Author.Email != nil {
		emailMD5 = fmt.Sprintf("%x", md5.Sum([]byte(strings.ToLower(*c.Author.Email))))
	}

	var parentPublicID *string
	if c.ParentID != nil {
		pID, _ := idgen.GeneratePublicID(*c.ParentID, idgen.EntityTypeComment)
		parentPublicID = &pID
	}

	resp := &dto.Response{
		ID:          publicID,
		PostID:      postPublicID,
		CreatedAt:   c.CreatedAt,
		Name:        c.Author.Name,
		EmailMD5:    emailMD5,
		Website:     c.Author.Website,
		ContentHTML: c.ContentHTML,
		IsStaff:     c.IsStaff,
		ParentID:    parentPublicID,
	}

	if isAdminView {
		resp.Email = c.Author.Email
		resp.IPAddress = &c.Author.IP
		ua := c.Author.UserAgent
		resp.UserAgent = &ua
		resp.Content = &c.Content
		status := string(c.Status)
		resp.Status = &status
	}

	return resp
}
