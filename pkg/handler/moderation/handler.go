/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-12-01 19:05:40
 * @LastEditTime: 2025-12-02 20:01:15
 * @LastEditors: 安知鱼
 */
package moderation

import (
	"errors"
	"net/http"

	"github.com/xyhcode/tidecms/internal/pkg/auth"
	"github.com/xyhcode/tidecms/pkg/constant"
	"github.com/xyhcode/tidecms/pkg/handler/moderation/dto"
	"github.com/xyhcode/tidecms/pkg/response"
	"github.com/xyhcode/tidecms/pkg/service/moderation"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *moderation.Service
}

func NewHandler(svc *moderation.Service) *Handler {
	return &Handler{svc: svc}
}

// failWith 将业务错误映射为对应的HTTP状态码。
func failWith(c *gin.Context, err error) {
	switch {
	case errors.Is(err, constant.ErrNotFound):
		response.Fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, constant.ErrBadRequest), errors.Is(err, constant.ErrInvalidPublicID):
		response.Fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, constant.ErrInvalidTransition), errors.Is(err, constant.ErrConflict):
		response.Fail(c, http.StatusConflict, err.Error())
	case errors.Is(err, constant.ErrForbidden):
		response.Fail(c, http.StatusForbidden, err.Error())
	case errors.Is(err, constant.ErrUnauthorized), errors.Is(err, constant.ErrInvalidToken):
		response.Fail(c, http.StatusUnauthorized, err.Error())
	default:
		response.Fail(c, http.StatusInternalServerError, err.Error())
	}
}

// UpdateStatus
// @Summary      流转单条评论的状态
// @Description  将评论流转到目标状态，非法流转返回 409
// @Tags         评论管理
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id path string true "评论的公共ID"
// @Param        status_request body dto.UpdateStatusRequest true "目标状态"
// @Success      200 {object} response.Response{data=dto.StatusResponse} "成功响应"
// @Failure      404 {object} response.Response "评论不存在"
// @Failure      409 {object} response.Response "不允许的状态流转"
// @Router       /comments/{id}/status [put]
func (h *Handler) UpdateStatus(c *gin.Context) {
	publicID := c.Param("id")
	if publicID == "" {
		response.Fail(c, http.StatusBadRequest, "评论ID不能为空")
		return
	}

	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "请求参数无效: "+err.Error())
		return
	}

	result, err := h.svc.Transition(c.Request.Context(), publicID, req.Status)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, result, "状态更新成功")
}

// BulkUpdateStatus
// @Summary      批量流转评论状态
// @Description  批量将评论流转到目标状态，逐条处理并汇报每条的结果
// @Tags         评论管理
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        bulk_request body dto.BulkStatusRequest true "ID列表与目标状态"
// @Success      200 {object} response.Response{data=dto.BulkResult} "成功响应（可能包含部分失败）"
// @Failure      400 {object} response.Response "请求参数错误"
// @Router       /comments/batch/status [post]
func (h *Handler) BulkUpdateStatus(c *gin.Context) {
	var req dto.BulkStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "请求参数无效: "+err.Error())
		return
	}

	result, err := h.svc.BulkTransition(c.Request.Context(), req.IDs, req.Status)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, result, "批量操作完成")
}

// Delete
// @Summary      批量删除评论
// @Description  物理删除评论并级联删除各自的回复，逐条汇报结果
// @Tags         评论管理
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        delete_request body dto.DeleteRequest true "要删除的评论公共ID列表"
// @Success      200 {object} response.Response{data=dto.BulkResult} "成功响应（可能包含部分失败）"
// @Failure      400 {object} response.Response "请求参数错误"
// @Router       /comments [delete]
func (h *Handler) Delete(c *gin.Context) {
	var req dto.DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "请求参数无效: "+err.Error())
		return
	}

	result, err := h.svc.BulkDelete(c.Request.Context(), req.IDs)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, result, "批量删除完成")
}

// StaffReply
// @Summary      站长回复评论
// @Description  以当前管理员身份回复一条评论，回复会挂在目标评论所在楼的根评论下
// @Tags         评论管理
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id path string true "目标评论的公共ID"
// @Param        reply_request body dto.StaffReplyRequest true "回复内容"
// @Success      200 {object} response.Response "成功响应"
// @Failure      404 {object} response.Response "目标评论不存在"
// @Failure      409 {object} response.Response "目标评论状态不允许回复"
// @Router       /comments/{id}/reply [post]
func (h *Handler) StaffReply(c *gin.Context) {
	publicID := c.Param("id")
	if publicID == "" {
		response.Fail(c, http.StatusBadRequest, "评论ID不能为空")
		return
	}

	var req dto.StaffReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "请求参数无效: "+err.Error())
		return
	}

	var claims *auth.CustomClaims
	if userClaim, exists := c.Get(auth.ClaimsKey); exists {
		claims, _ = userClaim.(*auth.CustomClaims)
	}

	reply, err := h.svc.StaffReply(c.Request.Context(), publicID, req.Content, claims)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, reply, "回复发布成功")
}

// Stats
// @Summary      评论状态统计
// @Description  返回各状态的评论数量，统计值与数据表保持一致；可按文章过滤
// @Tags         评论管理
// @Security     BearerAuth
// @Produce      json
// @Param        post_id query string false "文章的公共ID，缺省时统计全站"
// @Success      200 {object} response.Response "成功响应"
// @Failure      400 {object} response.Response "文章ID不合法"
// @Router       /comments/stats [get]
func (h *Handler) Stats(c *gin.Context) {
	counts, err := h.svc.Stats(c.Request.Context(), c.Query("post_id"))
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, counts, "获取成功")
}
