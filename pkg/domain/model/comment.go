/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-08-11 17:58:40
 * @LastEditTime: 2025-12-02 11:32:09
 * @LastEditors: 安知鱼
 */
package model

import "time"

// Status 定义了评论的审核状态，使用自定义字符串类型代替魔法值，更类型安全。
type Status string

const (
	StatusPending  Status = "pending"  // 待审核
	StatusApproved Status = "approved" // 已通过
	StatusRejected Status = "rejected" // 已驳回
	StatusSpam     Status = "spam"     // 垃圾评论
	StatusTrash    Status = "trash"    // 回收站
)

// AllStatuses 列出全部合法状态，供校验与统计使用。
var AllStatuses = []Status{StatusPending, StatusApproved, StatusRejected, StatusSpam, StatusTrash}

// transitions 是状态机的流转表。
// trash 是终态，只能通过物理删除离开；spam 可以被捞回待审。
var transitions = map[Status][]Status{
	StatusPending:  {StatusApproved, StatusRejected, StatusSpam, StatusTrash},
	StatusApproved: {StatusSpam, StatusTrash},
	StatusRejected: {StatusSpam, StatusTrash},
	StatusSpam:     {StatusPending, StatusTrash},
	StatusTrash:    {},
}

// IsValid 检查状态值是否合法。
func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransition 检查是否允许从当前状态流转到目标状态。
// 流转到自身视为允许（幂等操作）。
func (s Status) CanTransition(to Status) bool {
	if s == to {
		return true
	}
	for _, t := range transitions[s] {
		if t == to {
			return true
		}
	}
	return false
}

// ParseStatus 将外部输入解析为 Status，非法值返回 false。
func ParseStatus(raw string) (Status, bool) {
	s := Status(raw)
	return s, s.IsValid()
}

// AuthorKind 区分评论作者是游客还是注册用户。
type AuthorKind string

const (
	AuthorGuest      AuthorKind = "guest"
	AuthorRegistered AuthorKind = "registered"
)

// Author 代表了评论的作者信息
type Author struct {
	Kind      AuthorKind
	UserID    *uint   // 注册用户的数据库ID，游客为 nil
	Name      string  // 展示昵称，注册用户写入时从用户记录解析
	Email     *string // 指针类型，游客可以不填
	Website   *string
	IP        string
	UserAgent string
}

// Comment 是评论的核心领域模型。
type Comment struct {
	ID uint // 在领域内，我们使用数据库的 uint ID 作为其唯一标识。

	// --- 核心关联字段 ---
	PostID uint  // 评论所属文章
	Post   *Post // 关联的文章投影（按需填充）

	// --- 关系 ---
	ParentID *uint // nil 表示根评论；非 nil 一定指向同文章的根评论

	// --- 评论者信息 ---
	Author Author

	// --- 内容 ---
	Content     string // Markdown 原文
	ContentHTML string // 渲染并消毒后的 HTML

	// --- 元数据 ---
	Status    Status
	IsStaff   bool // 是否站长/管理组发布
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsApproved 检查评论是否已通过审核，只有通过的评论对外可见。
func (c *Comment) IsApproved() bool {
	return c.Status == StatusApproved
}

// IsTopLevel 检查是否为根评论。
func (c *Comment) IsTopLevel() bool {
	return c.ParentID == nil
}

// StatusCounts 是各状态的评论数量统计。
type StatusCounts struct {
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
	Spam     int64 `json:"spam"`
	Trash    int64 `json:"trash"`
	Total    int64 `json:"total"`
}
