/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-12-01 18:02:11
 * @LastEditTime: 2025-12-02 17:14:50
 * @LastEditors: 安知鱼
 */
package dto

// UpdateStatusRequest 定义了单条评论状态流转的API请求体。
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending approved rejected spam trash"`
}

// BulkStatusRequest 定义了批量状态流转的API请求体。
type BulkStatusRequest struct {
	IDs    []string `json:"ids" binding:"required,min=1"`
	Status string   `json:"status" binding:"required,oneof=pending approved rejected spam trash"`
}

// DeleteRequest 定义了批量删除评论的API请求体。
type DeleteRequest struct {
	IDs []string `json:"ids" binding:"required,min=1"`
}

// StaffReplyRequest 定义了站长回复的API请求体。
type StaffReplyRequest struct {
	Content string `json:"content" binding:"required,min=1,max=1000"`
}

// StatusResponse 是单条状态流转的响应。
type StatusResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// BulkResult 是批量操作的结果汇总。
// 每个ID独立处理，部分失败不会中断整批。
type BulkResult struct {
	Succeeded []string          `json:"succeeded"`
	Failed    map[string]string `json:"failed"` // 公共ID -> 失败原因
}
