/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-06-16 09:44:12
 * @LastEditTime: 2025-12-02 11:38:21
 * @LastEditors: 安知鱼
 */
package model

import "time"

// 用户组常量，1 号组固定为管理员组。
const (
	UserGroupAdmin uint = 1
	UserGroupUser  uint = 2
)

// 用户状态常量定义了用户的几种不同状态
const (
	UserStatusActive   = 1
	UserStatusInactive = 2
	UserStatusBanned   = 3
)

// User 是用户在评论子系统内需要的投影。
type User struct {
	ID          uint      `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Username    string    `json:"username"`
	Nickname    string    `json:"nickname"`
	Avatar      string    `json:"avatar"`
	Email       string    `json:"email"`
	Website     string    `json:"website"`
	UserGroupID uint      `json:"userGroupID"`
	Status      int       `json:"status"`
}

// IsAdmin 判断用户是否属于管理员组。
func (u *User) IsAdmin() bool {
	return u.UserGroupID == UserGroupAdmin
}
