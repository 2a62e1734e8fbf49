/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-12-02 23:40:12
 * @LastEditTime: 2025-12-02 23:40:12
 * @LastEditors: 安知鱼
 */
package dto

// UpdateRequest 定义了更新评论相关配置的API请求体。
// 键必须以 comment. 开头，其它配置项不对外开放。
type UpdateRequest struct {
	Settings map[string]string `json:"settings" binding:"required,min=1"`
}
