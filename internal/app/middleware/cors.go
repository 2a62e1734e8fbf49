/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-11-28 10:30:15
 * @LastEditTime: 2025-11-28 10:30:15
 * @LastEditors: 安知鱼
 */
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

func Cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		// 只对 API 路由应用 CORS 头部
		if strings.HasPrefix(path, "/api/") {
			origin := c.Request.Header.Get("Origin")

			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-CSRF-Token, X-Requested-With")
			c.Header("Access-Control-Expose-Headers", "Authorization")
			c.Header("Access-Control-Allow-Credentials", "true")

			if c.Request.Method == http.MethodOptions {
				c.AbortWithStatus(http.StatusNoContent)
				return
			}
		}

		c.Next()
	}
}
