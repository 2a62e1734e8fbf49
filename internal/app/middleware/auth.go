/*
 * @Description: 认证相关中间件
 * @Author: 安知鱼
 * @Date: 2025-11-28 10:22:31
 * @LastEditTime: 2025-12-02 20:14:02
 * @LastEditors: 安知鱼
 */
package middleware

import (
	"net/http"
	"strings"

	"github.com/xyhcode/tidecms/internal/pkg/auth"
	"github.com/xyhcode/tidecms/pkg/domain/model"
	"github.com/xyhcode/tidecms/pkg/response"

	"github.com/gin-gonic/gin"
)

// Middleware 持有认证中间件所需的依赖。
type Middleware struct {
	jwtSecret []byte
}

func NewMiddleware(jwtSecret string) *Middleware {
	return &Middleware{jwtSecret: []byte(jwtSecret)}
}

// extractToken 从 Authorization 头中提取 Bearer Token。
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// JWTAuth 是强制认证中间件，解析失败则中断请求。
func (m *Middleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := extractToken(c)
		if tokenStr == "" {
			response.Fail(c, http.StatusUnauthorized, "请求未携带Token，无权限访问")
			c.Abort()
			return
		}

		claims, err := auth.ParseToken(tokenStr, m.jwtSecret)
		if err != nil {
			response.Fail(c, http.StatusUnauthorized, "Token无效或已过期")
			c.Abort()
			return
		}

		c.Set(auth.ClaimsKey, claims)
		c.Next()
	}
}

// JWTAuthOptional 是可选认证中间件。
// Token 存在且有效时注入用户信息，否则以游客身份继续。
func (m *Middleware) JWTAuthOptional() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := extractToken(c)
		if tokenStr != "" {
			if claims, err := auth.ParseToken(tokenStr, m.jwtSecret); err == nil {
				c.Set(auth.ClaimsKey, claims)
			}
		}
		c.Next()
	}
}

// AdminAuth 校验当前用户是否为管理员，必须在 JWTAuth 之后使用。
func (m *Middleware) AdminAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		userClaim, exists := c.Get(auth.ClaimsKey)
		if !exists {
			response.Fail(c, http.StatusUnauthorized, "无法获取用户信息")
			c.Abort()
			return
		}

		claims, ok := userClaim.(*auth.CustomClaims)
		if !ok || claims.UserGroupID != model.UserGroupAdmin {
			response.Fail(c, http.StatusForbidden, "权限不足，需要管理员身份")
			c.Abort()
			return
		}

		c.Next()
	}
}
