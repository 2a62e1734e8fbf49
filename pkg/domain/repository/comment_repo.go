/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-08-11 17:58:48
 * @LastEditTime: 2025-12-02 14:20:11
 * @LastEditors: 安知鱼
 */
package repository

import (
	"context"

	"github.com/xyhcode/tidecms/pkg/domain/model"
)

// CreateCommentParams 是写入一条新评论所需的全部字段。
type CreateCommentParams struct {
	PostID     uint
	ParentID   *uint // 根评论的数据库ID，nil 表示本身是根评论
	UserID     *uint
	AuthorKind model.AuthorKind
	Name       string
	Email      *string
	Website    *string
	IPAddress  string
	UserAgent  string

	Content     string
	ContentHTML string

	Status  model.Status
	IsStaff bool
}

// AdminListParams 是后台评论列表的过滤条件。
type AdminListParams struct {
	Page     int
	PageSize int
	Status   *model.Status
	PostID   *uint
	Author   *string // 模糊匹配昵称或邮箱
	Content  *string // 模糊匹配评论正文
}

// CommentRepository 定义了评论数据的持久化操作接口。
type CommentRepository interface {
	// 创建一条新评论
	Create(ctx context.Context, params *CreateCommentParams) (*model.Comment, error)

	// 根据数据库ID查找单条评论
	FindByID(ctx context.Context, id uint) (*model.Comment, error)

	// 根据一组数据库ID查找多条评论，保持入参顺序
	FindManyByIDs(ctx context.Context, ids []uint) ([]*model.Comment, error)

	// 查找某条根评论下所有子评论的数据库ID
	FindChildIDs(ctx context.Context, parentID uint) ([]uint, error)

	// 根据ID列表批量物理删除评论，返回实际删除条数
	DeleteByIDs(ctx context.Context, ids []uint) (int, error)

	// 分页查找某文章下已通过的根评论，按创建时间降序
	FindApprovedRoots(ctx context.Context, postID uint, page, pageSize int) ([]*model.Comment, int64, error)

	// 查找一组根评论下所有已通过的子评论，按创建时间升序
	FindApprovedChildren(ctx context.Context, parentIDs []uint) ([]*model.Comment, error)

	// 根据父评论ID分页查找已通过的子评论
	FindApprovedChildrenPaginated(ctx context.Context, parentID uint, page, pageSize int) ([]*model.Comment, int64, error)

	// 查找全站最新的已通过评论
	FindLatestApproved(ctx context.Context, limit int) ([]*model.Comment, error)

	// --- 管理员方法 ---

	// 根据多种条件分页查询评论列表，按创建时间降序
	FindWithConditions(ctx context.Context, params AdminListParams) ([]*model.Comment, int64, error)

	// 条件更新评论状态：只有当前状态等于 expect 时才写入 to。
	// 返回是否实际更新了记录，用于区分并发冲突。
	UpdateStatusIf(ctx context.Context, id uint, expect, to model.Status) (bool, error)

	// 更新评论的内容（仅限管理员）
	UpdateContent(ctx context.Context, id uint, content, contentHTML string) (*model.Comment, error)

	// 统计各状态的评论数量（单次 GROUP BY）。
	// postID 不为空时只统计该文章下的评论。
	CountByStatus(ctx context.Context, postID *uint) (*model.StatusCounts, error)

	// 批量统计多篇文章下已通过的评论数量
	CountApprovedByPostIDs(ctx context.Context, postIDs []uint) (map[uint]int64, error)
}
