/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-08-12 10:05:33
 * @LastEditTime: 2025-12-02 17:10:24
 * @LastEditors: 安知鱼
 */
package dto

import (
	"time"

	"github.com/xyhcode/tidecms/pkg/domain/model"
)

// CreateRequest 定义了创建评论的API请求体。
type CreateRequest struct {
	// 评论所属文章的公共ID。
	PostID string `json:"post_id" binding:"required"`

	// 父评论的公共ID，用于实现回复功能。如果为顶级评论，则此项为 null。
	// 回复楼中楼时会被自动归并到所在楼的根评论下。
	ParentID *string `json:"parent_id"`

	// 评论者的昵称。已登录用户可不填，以用户资料为准。
	Name string `json:"name" binding:"omitempty,min=2,max=50"`

	// 评论者的邮箱，用于展示 Gravatar 头像。
	Email *string `json:"email" binding:"omitempty,email"`

	// 评论者的个人网站。
	Website *string `json:"website" binding:"omitempty,url"`

	// 评论的 Markdown 原文内容。
	Content string `json:"content" binding:"required,min=1,max=1000"`
}

// ListRequest 定义了公开评论列表的查询参数。
// post_id 和 post_slug 二选一，主题端可以直接用文章别名查询。
type ListRequest struct {
	PostID   string `form:"post_id"`
	PostSlug string `form:"post_slug"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// SetCommentsOpenRequest 定义了开关文章评论区的API请求体。
type SetCommentsOpenRequest struct {
	Open *bool `json:"open" binding:"required"`
}

// AdminListRequest 定义了管理员在后台查询评论列表时使用的参数。
type AdminListRequest struct {
	Page     int `form:"page"`
	PageSize int `form:"pageSize"`

	// 按评论状态筛选。
	Status *string `form:"status" binding:"omitempty,oneof=pending approved rejected spam trash"`

	// 按文章公共ID筛选。
	PostID *string `form:"post_id"`

	// 按昵称或邮箱模糊搜索。
	Author *string `form:"author"`

	// 按评论内容模糊搜索。
	Content *string `form:"content"`
}

// UpdateContentRequest 定义了更新评论内容的API请求体。
type UpdateContentRequest struct {
	Content string `json:"content" binding:"required,min=1,max=1000"` // 更新后的 Markdown 内容
}

// Response 定义了单条评论的API响应结构。
// 这个结构是为前端展示专门设计的。
type Response struct {
	ID          string      `json:"id"`
	PostID      string      `json:"post_id"`
	CreatedAt   time.Time   `json:"created_at"`
	Name        string      `json:"name"`
	EmailMD5    string      `json:"email_md5"`
	Website     *string     `json:"website,omitempty"`
	ContentHTML string      `json:"content_html"`
	IsStaff     bool        `json:"is_staff"`
	ParentID    *string     `json:"parent_id,omitempty"`
	Children    []*Response `json:"children,omitempty"`

	// --- 仅限管理员视图的字段 ---
	Email     *string `json:"email,omitempty"`
	IPAddress *string `json:"ip_address,omitempty"`
	UserAgent *string `json:"user_agent,omitempty"`
	Content   *string `json:"content,omitempty"` // Markdown原文
	Status    *string `json:"status,omitempty"`
}

// ListResponse 定义了评论列表的API响应结构。
type ListResponse struct {
	List     []*Response `json:"list"`
	Total    int64       `json:"total"` // 根评论总数（用于分页）
	Page     int         `json:"page"`
	PageSize int         `json:"pageSize"`

	// 各状态评论数量，仅后台列表返回，用于渲染状态筛选标签。
	Stats *model.StatusCounts `json:"stats,omitempty"`
}
