/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-08-12 09:21:33
 * @LastEditTime: 2025-12-02 11:35:46
 * @LastEditors: 安知鱼
 */
package model

import "time"

// Post 是文章在评论子系统内的最小投影。
// 评论创建时只关心文章是否存在、是否开放评论。
type Post struct {
	ID           uint      `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Slug         string    `json:"slug"`
	Title        string    `json:"title"`
	CommentsOpen bool      `json:"comments_open"`
}
