/*
 * @Description: 文章投影数据操作的契约
 * @Author: 安知鱼
 * @Date: 2025-08-12 09:40:05
 * @LastEditTime: 2025-12-02 14:22:40
 * @LastEditors: 安知鱼
 */
package repository

import (
	"context"

	"github.com/xyhcode/tidecms/pkg/domain/model"
)

// PostRepository 定义了文章投影的数据操作契约。
// 评论子系统只读写与评论相关的字段。
type PostRepository interface {
	FindByID(ctx context.Context, id uint) (*model.Post, error)
	FindBySlug(ctx context.Context, slug string) (*model.Post, error)
	// 开关某篇文章的评论区
	SetCommentsOpen(ctx context.Context, id uint, open bool) error
}
