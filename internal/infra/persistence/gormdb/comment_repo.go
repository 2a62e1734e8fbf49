/*
 * @Description: 评论仓储的 GORM 实现
 * @Author: 安知鱼
 * @Date: 2025-12-01 16:52:30
 * @LastEditTime: 2025-12-02 16:10:47
 * @LastEditors: 安知鱼
 */
package gormdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/xyhcode/tidecms/pkg/constant"
	"github.com/xyhcode/tidecms/pkg/domain/model"
	"github.com/xyhcode/tidecms/pkg/domain/repository"

	"gorm.io/gorm"
)

type commentRepo struct {
	db *gorm.DB
}

// NewCommentRepo 创建评论仓储。
func NewCommentRepo(db *gorm.DB) repository.CommentRepository {
	return &commentRepo{db: db}
}

func toDomainComment(e *commentEntity) *model.Comment {
	if e == nil {
		return nil
	}
	return &model.Comment{
		ID:       e.ID,
		PostID:   e.PostID,
		ParentID: e.ParentID,
		Author: model.Author{
			Kind:      model.AuthorKind(e.AuthorKind),
			UserID:    e.UserID,
			Name:      e.Name,
			Email:     e.Email,
			Website:   e.Website,
			IP:        e.IPAddress,
			UserAgent: e.UserAgent,
		},
		Content:     e.Content,
		ContentHTML: e.ContentHTML,
		Status:      model.Status(e.Status),
		IsStaff:     e.IsStaff,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func toDomainComments(entities []commentEntity) []*model.Comment {
	result := make([]*model.Comment, 0, len(entities))
	for i := range entities {
		result = append(result, toDomainComment(&entities[i]))
	}
	return result
}

func (r *commentRepo) Create(ctx context.Context, params *repository.CreateCommentParams) (*model.Comment, error) {
	e := &commentEntity{
		PostID:      params.PostID,
		ParentID:    params.ParentID,
		AuthorKind:  string(params.AuthorKind),
		UserID:      params.UserID,
		Name:        params.Name,
		Email:       params.Email,
		Website:     params.Website,
		IPAddress:   params.IPAddress,
		UserAgent:   params.UserAgent,
		Content:     params.Content,
		ContentHTML: params.ContentHTML,
		Status:      string(params.Status),
		IsStaff:     params.IsStaff,
	}
	if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
		return nil, fmt.Errorf("创建评论失败: %w", err)
	}
	return toDomainComment(e), nil
}

func (r *commentRepo) FindByID(ctx context.Context, id uint) (*model.Comment, error) {
	var e commentEntity
	err := r.db.WithContext(ctx).First(&e, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, constant.ErrNotFound
		}
		return nil, err
	}
	return toDomainComment(&e), nil
}

func (r *commentRepo) FindManyByIDs(ctx context.Context, ids []uint) ([]*model.Comment, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var entities []commentEntity
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&entities).Error; err != nil {
		return nil, err
	}

	// 按入参顺序返回
	byID := make(map[uint]*commentEntity, len(entities))
	for i := range entities {
		byID[entities[i].ID] = &entities[i]
	}
	result := make([]*model.Comment, 0, len(ids))
	for _, id := range ids {
		if e, ok := byID[id]; ok {
			result = append(result, toDomainComment(e))
		}
	}
	return result, nil
}

func (r *commentRepo) FindChildIDs(ctx context.Context, parentID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&commentEntity{}).
		Where("parent_id = ?", parentID).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *commentRepo) DeleteByIDs(ctx context.Context, ids []uint) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&commentEntity{})
	if res.Error != nil {
		return 0, fmt.Errorf("批量删除评论失败: %w", res.Error)
	}
	return int(res.RowsAffected), nil
}

func (r *commentRepo) FindApprovedRoots(ctx context.Context, postID uint, page, pageSize int) ([]*model.Comment, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&commentEntity{}).
		Where("post_id = ? AND parent_id IS NULL AND status = ?", postID, string(model.StatusApproved))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 同秒创建的评论靠 id 保证稳定顺序，分页时不会漏读或重读
	var entities []commentEntity
	err := query.
		Order("created_at DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&entities).Error
	if err != nil {
		return nil, 0, err
	}
	return toDomainComments(entities), total, nil
}

func (r *commentRepo) FindApprovedChildren(ctx context.Context, parentIDs []uint) ([]*model.Comment, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}
	var entities []commentEntity
	err := r.db.WithContext(ctx).
		Where("parent_id IN ? AND status = ?", parentIDs, string(model.StatusApproved)).
		Order("created_at ASC, id ASC").
		Find(&entities).Error
	if err != nil {
		return nil, err
	}
	return toDomainComments(entities), nil
}

func (r *commentRepo) FindApprovedChildrenPaginated(ctx context.Context, parentID uint, page, pageSize int) ([]*model.Comment, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&commentEntity{}).
		Where("parent_id = ? AND status = ?", parentID, string(model.StatusApproved))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entities []commentEntity
	err := query.
		Order("created_at ASC, id ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&entities).Error
	if err != nil {
		return nil, 0, err
	}
	return toDomainComments(entities), total, nil
}

func (r *commentRepo) FindLatestApproved(ctx context.Context, limit int) ([]*model.Comment, error) {
	var entities []commentEntity
	err := r.db.WithContext(ctx).
		Where("status = ?", string(model.StatusApproved)).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&entities).Error
	if err != nil {
		return nil, err
	}
	return toDomainComments(entities), nil
}

func (r *commentRepo) FindWithConditions(ctx context.Context, params repository.AdminListParams) ([]*model.Comment, int64, error) {
	query := r.db.WithContext(ctx).Model(&commentEntity{})

	if params.Status != nil {
		query = query.Where("status = ?", string(*params.Status))
	}
	if params.PostID != nil {
		query = query.Where("post_id = ?", *params.PostID)
	}
	if params.Author != nil && *params.Author != "" {
		keyword := "%" + *params.Author + "%"
		query = query.Where("name LIKE ? OR email LIKE ?", keyword, keyword)
	}
	if params.Content != nil && *params.Content != "" {
		query = query.Where("content LIKE ?", "%"+*params.Content+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entities []commentEntity
	err := query.
		Order("created_at DESC, id DESC").
		Offset((params.Page - 1) * params.PageSize).
		Limit(params.PageSize).
		Find(&entities).Error
	if err != nil {
		return nil, 0, err
	}
	return toDomainComments(entities), total, nil
}

// UpdateStatusIf 使用条件更新实现原子的状态流转。
// 只有当前状态仍为 expect 时才会写入，返回值表明是否真的更新了。
func (r *commentRepo) UpdateStatusIf(ctx context.Context, id uint, expect, to model.Status) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&commentEntity{}).
		Where("id = ? AND status = ?", id, string(expect)).
		Update("status", string(to))
	if res.Error != nil {
		return false, fmt.Errorf("更新评论状态失败: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *commentRepo) UpdateContent(ctx context.Context, id uint, content, contentHTML string) (*model.Comment, error) {
	res := r.db.WithContext(ctx).
		Model(&commentEntity{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"content":      content,
			"content_html": contentHTML,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("更新评论内容失败: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, constant.ErrNotFound
	}
	return r.FindByID(ctx, id)
}

// CountByStatus 单次 GROUP BY 统计各状态数量，保证与数据表一致。
// postID 不为空时只统计该文章下的评论。
func (r *commentRepo) CountByStatus(ctx context.Context, postID *uint) (*model.StatusCounts, error) {
	type row struct {
		Status string
		Count  int64
	}
	query := r.db.WithContext(ctx).
		Model(&commentEntity{}).
		Select("status, COUNT(*) AS count")
	if postID != nil {
		query = query.Where("post_id = ?", *postID)
	}
	var rows []row
	err := query.Group("status").Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("统计评论状态失败: %w", err)
	}

	counts := &model.StatusCounts{}
	for _, r := range rows {
		switch model.Status(r.Status) {
		case model.StatusPending:
			counts.Pending = r.Count
		case model.StatusApproved:
			counts.Approved = r.Count
		case model.StatusRejected:
			counts.Rejected = r.Count
		case model.StatusSpam:
			counts.Spam = r.Count
		case model.StatusTrash:
			counts.Trash = r.Count
		}
		counts.Total += r.Count
	}
	return counts, nil
}

func (r *commentRepo) CountApprovedByPostIDs(ctx context.Context, postIDs []uint) (map[uint]int64, error) {
	result := make(map[uint]int64, len(postIDs))
	if len(postIDs) == 0 {
		return result, nil
	}

	type row struct {
		PostID uint
		Count  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&commentEntity{}).
		Select("post_id, COUNT(*) AS count").
		Where("post_id IN ? AND status = ?", postIDs, string(model.StatusApproved)).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		result[r.PostID] = r.Count
	}
	return result, nil
}
