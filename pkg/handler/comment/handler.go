/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-08-12 11:02:18
 * @LastEditTime: 2025-12-02 19:40:26
 * @LastEditors: 安知鱼
 */
package comment

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/xyhcode/tidecms/internal/pkg/auth"
	"github.com/xyhcode/tidecms/pkg/constant"
	"github.com/xyhcode/tidecms/pkg/handler/comment/dto"
	"github.com/xyhcode/tidecms/pkg/response"
	"github.com/xyhcode/tidecms/pkg/service/comment"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *comment.Service
}

func NewHandler(svc *comment.Service) *Handler {
	return &Handler{svc: svc}
}

// failWith 将业务错误映射为对应的HTTP状态码。
func failWith(c *gin.Context, err error) {
	switch {
	case errors.Is(err, constant.ErrNotFound):
		response.Fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, constant.ErrBadRequest), errors.Is(err, constant.ErrInvalidPublicID), errors.Is(err, constant.ErrParentMismatch):
		response.Fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, constant.ErrForbidden), errors.Is(err, constant.ErrCommentsClosed):
		response.Fail(c, http.StatusForbidden, err.Error())
	case errors.Is(err, constant.ErrRateLimited):
		response.Fail(c, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, constant.ErrConflict), errors.Is(err, constant.ErrInvalidTransition):
		response.Fail(c, http.StatusConflict, err.Error())
	case errors.Is(err, constant.ErrUnauthorized), errors.Is(err, constant.ErrInvalidToken):
		response.Fail(c, http.StatusUnauthorized, err.Error())
	default:
		response.Fail(c, http.StatusInternalServerError, err.Error())
	}
}

// Create
// @Summary      创建新评论
// @Description  为指定文章创建一条新评论，可以是根评论或回复
// @Tags         公开评论
// @Accept       json
// @Produce      json
// @Param        comment_request body dto.CreateRequest true "创建评论的请求体"
// @Success      201 {object} response.Response{data=dto.Response} "成功响应"
// @Failure      400 {object} response.Response "请求参数错误"
// @Failure      403 {object} response.Response "评论区已关闭"
// @Failure      429 {object} response.Response "评论太频繁"
// @Router       /public/comments [post]
func (h *Handler) Create(c *gin.Context) {
	var req dto.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "请求参数无效: "+err.Error())
		return
	}

	ip := c.ClientIP()
	ua := c.Request.UserAgent()

	var claims *auth.CustomClaims
	if userClaim, exists := c.Get(auth.ClaimsKey); exists {
		claims, _ = userClaim.(*auth.CustomClaims)
	}

	commentDTO, err := h.svc.Create(c.Request.Context(), &req, ip, ua, claims)
	if err != nil {
		failWith(c, err)
		return
	}

	response.SuccessWithStatus(c, http.StatusCreated, commentDTO, "评论发布成功")
}

// ListByPost
// @Summary      获取指定文章的评论列表（分页）
// @Description  分页获取指定文章下已通过的根评论，并附带其所有子评论
// @Tags         公开评论
// @Produce      json
// @Param        post_id query string false "文章的公共ID（与 post_slug 二选一）"
// @Param        post_slug query string false "文章别名（与 post_id 二选一）"
// @Param        page query int false "页码" default(1)
// @Param        page_size query int false "每页数量" default(10)
// @Success      200 {object} response.Response{data=dto.ListResponse} "成功响应"
// @Failure      400 {object} response.Response "请求参数错误"
// @Router       /public/comments [get]
func (h *Handler) ListByPost(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "请求参数无效: "+err.Error())
		return
	}

	var (
		listResponse *dto.ListResponse
		err          error
	)
	switch {
	case req.PostID != "":
		listResponse, err = h.svc.ListByPost(c.Request.Context(), req.PostID, req.Page, req.PageSize)
	case req.PostSlug != "":
		listResponse, err = h.svc.ListByPostSlug(c.Request.Context(), req.PostSlug, req.Page, req.PageSize)
	default:
		response.Fail(c, http.StatusBadRequest, "post_id 与 post_slug 至少提供一个")
		return
	}
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, listResponse, "获取成功")
}

// ListChildren
// @Summary      获取指定评论的子评论列表（分页）
// @Description  分页获取指定根评论下所有已通过的回复
// @Tags         公开评论
// @Produce      json
// @Param        id path string true "父评论的公共ID"
// @Param        page query int false "页码" default(1)
// @Param        page_size query int false "每页数量" default(10)
// @Success      200 {object} response.Response{data=dto.ListResponse} "成功响应"
// @Failure      400 {object} response.Response "请求参数错误"
// @Router       /public/comments/{id}/children [get]
func (h *Handler) ListChildren(c *gin.Context) {
	parentID := c.Param("id")
	if parentID == "" {
		response.Fail(c, http.StatusBadRequest, "父评论ID不能为空")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	childrenResponse, err := h.svc.ListChildren(c.Request.Context(), parentID, page, pageSize)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, childrenResponse, "获取成功")
}

// ListLatest
// @Summary      公开获取最新评论列表
// @Description  获取全站最新的已通过评论
// @Tags         公开评论
// @Produce      json
// @Param        limit query int false "数量上限" default(10)
// @Success      200 {object} response.Response{data=[]dto.Response} "成功响应"
// @Router       /public/comments/latest [get]
func (h *Handler) ListLatest(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	list, err := h.svc.ListLatest(c.Request.Context(), limit)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, list, "获取成功")
}

// CountByPosts
// @Summary      批量获取文章的评论数
// @Description  返回多篇文章各自已通过的评论数量，文章列表页用于展示角标
// @Tags         公开评论
// @Produce      json
// @Param        post_ids query string true "文章公共ID列表，逗号分隔"
// @Success      200 {object} response.Response{data=map[string]int64} "成功响应"
// @Failure      400 {object} response.Response "请求参数错误"
// @Router       /public/comments/counts [get]
func (h *Handler) CountByPosts(c *gin.Context) {
	raw := c.Query("post_ids")
	if raw == "" {
		response.Fail(c, http.StatusBadRequest, "post_ids 不能为空")
		return
	}

	counts, err := h.svc.CountByPosts(c.Request.Context(), strings.Split(raw, ","))
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, counts, "获取成功")
}

// AdminList
// @Summary      后台评论列表
// @Description  按状态、文章、作者、内容等条件分页查询评论
// @Tags         评论管理
// @Security     BearerAuth
// @Produce      json
// @Param        page query int false "页码" default(1)
// @Param        pageSize query int false "每页数量" default(10)
// @Param        status query string false "评论状态" Enums(pending, approved, rejected, spam, trash)
// @Param        post_id query string false "文章的公共ID"
// @Param        author query string false "按昵称或邮箱模糊搜索"
// @Param        content query string false "按内容模糊搜索"
// @Success      200 {object} response.Response{data=dto.ListResponse} "成功响应"
// @Failure      400 {object} response.Response "请求参数错误"
// @Router       /comments [get]
func (h *Handler) AdminList(c *gin.Context) {
	var req dto.AdminListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "请求参数无效: "+err.Error())
		return
	}

	listResponse, err := h.svc.AdminList(c.Request.Context(), &req)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, listResponse, "获取成功")
}

// AdminGet
// @Summary      后台查看单条评论
// @Description  获取一条评论的完整信息（含邮箱、IP等敏感字段）
// @Tags         评论管理
// @Security     BearerAuth
// @Produce      json
// @Param        id path string true "评论的公共ID"
// @Success      200 {object} response.Response{data=dto.Response} "成功响应"
// @Failure      404 {object} response.Response "评论不存在"
// @Router       /comments/{id} [get]
func (h *Handler) AdminGet(c *gin.Context) {
	publicID := c.Param("id")
	if publicID == "" {
		response.Fail(c, http.StatusBadRequest, "评论ID不能为空")
		return
	}

	commentDTO, err := h.svc.GetByID(c.Request.Context(), publicID, true)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, commentDTO, "获取成功")
}

// SetCommentsOpen
// @Summary      开关文章评论区
// @Description  开启或关闭某篇文章的评论功能
// @Tags         评论管理
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id path string true "文章的公共ID"
// @Param        open_request body dto.SetCommentsOpenRequest true "开关状态"
// @Success      200 {object} response.Response "成功响应"
// @Failure      404 {object} response.Response "文章不存在"
// @Router       /comments/post/{id}/open [put]
func (h *Handler) SetCommentsOpen(c *gin.Context) {
	postID := c.Param("id")
	if postID == "" {
		response.Fail(c, http.StatusBadRequest, "文章ID不能为空")
		return
	}

	var req dto.SetCommentsOpenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "请求参数无效: "+err.Error())
		return
	}

	if err := h.svc.SetPostCommentsOpen(c.Request.Context(), postID, *req.Open); err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, nil, "评论区开关已更新")
}

// UpdateContent
// @Summary      更新评论内容
// @Description  更新一条评论的 Markdown 内容并重新渲染
// @Tags         评论管理
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id path string true "评论的公共ID"
// @Param        update_request body dto.UpdateContentRequest true "更新内容的请求体"
// @Success      200 {object} response.Response{data=dto.Response} "成功响应"
// @Failure      404 {object} response.Response "评论不存在"
// @Router       /comments/{id} [put]
func (h *Handler) UpdateContent(c *gin.Context) {
	publicID := c.Param("id")
	if publicID == "" {
		response.Fail(c, http.StatusBadRequest, "评论ID不能为空")
		return
	}

	var req dto.UpdateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "请求参数无效: "+err.Error())
		return
	}

	updated, err := h.svc.UpdateContent(c.Request.Context(), publicID, req.Content)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, updated, "评论更新成功")
}
