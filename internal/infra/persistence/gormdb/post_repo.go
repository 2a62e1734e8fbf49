/*
 * @Description: 文章投影仓储的 GORM 实现
 * @Author: 安知鱼
 * @Date: 2025-12-01 17:10:21
 * @LastEditTime: 2025-12-02 16:14:30
 * @LastEditors: 安知鱼
 */
package gormdb

import (
	"context"
	"errors"

	"github.com/xyhcode/tidecms/pkg/constant"
	"github.com/xyhcode/tidecms/pkg/domain/model"
	"github.com/xyhcode/tidecms/pkg/domain/repository"

	"gorm.io/gorm"
)

type postRepo struct {
	db *gorm.DB
}

// NewPostRepo 创建文章投影仓储。
func NewPostRepo(db *gorm.DB) repository.PostRepository {
	return &postRepo{db: db}
}

func toDomainPost(e *postEntity) *model.Post {
	if e == nil {
		return nil
	}
	return &model.Post{
		ID:           e.ID,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
		Slug:         e.Slug,
		Title:        e.Title,
		CommentsOpen: e.CommentsOpen,
	}
}

func (r *postRepo) FindByID(ctx context.Context, id uint) (*model.Post, error) {
	var e postEntity
	err := r.db.WithContext(ctx).First(&e, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, constant.ErrNotFound
		}
		return nil, err
	}
	return toDomainPost(&e), nil
}

func (r *postRepo) FindBySlug(ctx context.Context, slug string) (*model.Post, error) {
	var e postEntity
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, constant.ErrNotFound
		}
		return nil, err
	}
	return toDomainPost(&e), nil
}

func (r *postRepo) SetCommentsOpen(ctx context.Context, id uint, open bool) error {
	res := r.db.WithContext(ctx).
		Model(&postEntity{}).
		Where("id = ?", id).
		Update("comments_open", open)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return constant.ErrNotFound
	}
	return nil
}
