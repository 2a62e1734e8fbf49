/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-06-27 12:08:15
 * @LastEditTime: 2025-12-02 11:02:47
 * @LastEditors: 安知鱼
 */
package constant

import "errors"

// 定义业务逻辑相关的标准错误
var (
	// ErrNotFound 表示资源未找到，可以由 Handler 转换为 404
	ErrNotFound = errors.New("资源未找到")

	// ErrForbidden 表示无权访问，可以由 Handler 转换为 403
	ErrForbidden = errors.New("操作禁止")

	// ErrConflict 表示资源冲突，可以由 Handler 转换为 409
	ErrConflict = errors.New("资源冲突")

	// ErrInternalServer 表示服务器内部错误，可以由 Handler 转换为 500
	ErrInternalServer = errors.New("内部服务器错误")

	// ErrBadRequest 表示请求参数错误，可以由 Handler 转换为 400
	ErrBadRequest = errors.New("错误的请求")

	// ErrUnauthorized 表示未授权，可以由 Handler 转换为 401
	ErrUnauthorized = errors.New("未经授权的访问")

	// ErrInvalidToken 表示无效的令牌，可以由 Handler 转换为 401
	ErrInvalidToken = errors.New("无效令牌")

	// ErrInvalidPublicID 表示无效的公共ID，可以由 Handler 转换为 400
	ErrInvalidPublicID = errors.New("无效的公共ID")

	// ErrInvalidTransition 表示评论状态机不允许该状态流转，可以由 Handler 转换为 409
	ErrInvalidTransition = errors.New("不允许的状态流转")

	// ErrCommentsClosed 表示目标文章已关闭评论，可以由 Handler 转换为 403
	ErrCommentsClosed = errors.New("该文章已关闭评论")

	// ErrRateLimited 表示评论发布过于频繁，可以由 Handler 转换为 429
	ErrRateLimited = errors.New("评论太频繁了，请稍后再试")

	// ErrParentMismatch 表示父评论不属于同一篇文章
	ErrParentMismatch = errors.New("父评论与目标文章不匹配")
)
