/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-11-28 11:02:44
 * @LastEditTime: 2025-12-02 20:40:18
 * @LastEditors: 安知鱼
 */
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/xyhcode/tidecms/internal/app/middleware"
	comment_handler "github.com/xyhcode/tidecms/pkg/handler/comment"
	moderation_handler "github.com/xyhcode/tidecms/pkg/handler/moderation"
	setting_handler "github.com/xyhcode/tidecms/pkg/handler/setting"
)

// NoCacheMiddleware 全局反缓存中间件，确保所有API响应都不会被CDN缓存
func NoCacheMiddleware() gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		c.Header("Cache-Control", "no-cache, no-store, must-revalidate, private, max-age=0")
		c.Header("Pragma", "no-cache")
		c.Header("Expires", "0")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")

		c.Next()
	})
}

// Router 封装了应用的所有路由和其依赖的处理器。
type Router struct {
	commentHandler    *comment_handler.Handler
	moderationHandler *moderation_handler.Handler
	settingHandler    *setting_handler.Handler
	mw                *middleware.Middleware
}

func NewRouter(
	commentHandler *comment_handler.Handler,
	moderationHandler *moderation_handler.Handler,
	settingHandler *setting_handler.Handler,
	mw *middleware.Middleware,
) *Router {
	return &Router{
		commentHandler:    commentHandler,
		moderationHandler: moderationHandler,
		settingHandler:    settingHandler,
		mw:                mw,
	}
}

// Setup 将所有路由注册到 gin 引擎上。
func (r *Router) Setup(engine *gin.Engine) {
	engine.Use(middleware.Cors())

	// 创建 /api 分组
	apiGroup := engine.Group("/api")
	// 应用全局反缓存中间件
	apiGroup.Use(NoCacheMiddleware())

	r.registerCommentRoutes(apiGroup)
	r.registerModerationRoutes(apiGroup)
	r.registerSettingRoutes(apiGroup)
}

func (r *Router) registerCommentRoutes(api *gin.RouterGroup) {
	// 公开的评论接口
	commentsPublic := api.Group("/public/comments")
	{
		commentsPublic.GET("", r.commentHandler.ListByPost)

		commentsPublic.GET("/latest", r.commentHandler.ListLatest)

		commentsPublic.GET("/counts", r.commentHandler.CountByPosts)

		commentsPublic.GET("/:id/children", r.commentHandler.ListChildren)

		commentsPublic.POST("", r.mw.JWTAuthOptional(), r.commentHandler.Create)
	}
}

func (r *Router) registerModerationRoutes(api *gin.RouterGroup) {
	// 管理员专属的评论接口
	commentsAdmin := api.Group("/comments").Use(r.mw.JWTAuth(), r.mw.AdminAuth())
	{
		commentsAdmin.GET("", r.commentHandler.AdminList)
		commentsAdmin.GET("/stats", r.moderationHandler.Stats)
		commentsAdmin.GET("/:id", r.commentHandler.AdminGet)
		commentsAdmin.DELETE("", r.moderationHandler.Delete)
		commentsAdmin.PUT("/:id", r.commentHandler.UpdateContent)
		commentsAdmin.PUT("/:id/status", r.moderationHandler.UpdateStatus)
		commentsAdmin.PUT("/post/:id/open", r.commentHandler.SetCommentsOpen)
		commentsAdmin.POST("/batch/status", r.moderationHandler.BulkUpdateStatus)
		commentsAdmin.POST("/:id/reply", r.moderationHandler.StaffReply)
	}
}

func (r *Router) registerSettingRoutes(api *gin.RouterGroup) {
	// 评论相关配置的后台接口
	settingsAdmin := api.Group("/settings").Use(r.mw.JWTAuth(), r.mw.AdminAuth())
	{
		settingsAdmin.GET("", r.settingHandler.Get)
		settingsAdmin.PUT("", r.settingHandler.Update)
	}
}
