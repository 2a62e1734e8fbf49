/*
 * @Description: 评论相关配置的后台接口
 * @Author: 安知鱼
 * @Date: 2025-12-02 23:40:12
 * @LastEditTime: 2025-12-02 23:40:12
 * @LastEditors: 安知鱼
 */
package setting

import (
	"net/http"
	"strings"

	"github.com/xyhcode/tidecms/pkg/constant"
	"github.com/xyhcode/tidecms/pkg/handler/setting/dto"
	"github.com/xyhcode/tidecms/pkg/response"
	setting_service "github.com/xyhcode/tidecms/pkg/service/setting"

	"github.com/gin-gonic/gin"
)

// commentSettingKeys 是后台可读写的评论配置键。
var commentSettingKeys = []constant.SettingKey{
	constant.KeyCommentModerationEnabled,
	constant.KeyCommentLimitPerWindow,
	constant.KeyCommentLimitWindowSeconds,
	constant.KeyCommentLimitLength,
	constant.KeyCommentPageSize,
	constant.KeyCommentStaffReplyStatus,
	constant.KeyCommentApproveOnReply,
}

type Handler struct {
	svc setting_service.SettingService
}

func NewHandler(svc setting_service.SettingService) *Handler {
	return &Handler{svc: svc}
}

// Get
// @Summary      获取评论相关配置
// @Description  返回评论审核、限流、站长回复等配置项的当前值
// @Tags         系统配置
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} response.Response{data=map[string]string} "成功响应"
// @Router       /settings [get]
func (h *Handler) Get(c *gin.Context) {
	settings := make(map[string]string, len(commentSettingKeys))
	for _, key := range commentSettingKeys {
		settings[key.String()] = h.svc.Get(key.String())
	}
	response.Success(c, settings, "获取成功")
}

// Update
// @Summary      更新评论相关配置
// @Description  更新一个或多个评论配置项，变更实时生效并发布配置变更事件
// @Tags         系统配置
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        update_request body dto.UpdateRequest true "要更新的配置键值对"
// @Success      200 {object} response.Response "成功响应"
// @Failure      400 {object} response.Response "请求参数错误"
// @Router       /settings [put]
func (h *Handler) Update(c *gin.Context) {
	var req dto.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "请求参数无效: "+err.Error())
		return
	}

	// 只允许修改评论相关配置，避免误改系统级键
	for key := range req.Settings {
		if !strings.HasPrefix(key, "comment.") {
			response.Fail(c, http.StatusBadRequest, "不支持的配置键: "+key)
			return
		}
	}

	if err := h.svc.UpdateSettings(c.Request.Context(), req.Settings); err != nil {
		response.Fail(c, http.StatusInternalServerError, "更新配置失败: "+err.Error())
		return
	}

	response.Success(c, nil, "配置更新成功")
}
