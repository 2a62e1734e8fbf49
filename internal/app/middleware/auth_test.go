/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-12-03 09:12:40
 * @LastEditTime: 2025-12-03 09:12:40
 * @LastEditors: 安知鱼
 */
package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/xyhcode/tidecms/internal/pkg/auth"
	"github.com/xyhcode/tidecms/pkg/domain/model"
	"github.com/xyhcode/tidecms/pkg/idgen"

	"github.com/gin-gonic/gin"
)

const testSecret = "middleware-test-secret"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := idgen.InitSqidsEncoderWithSeed("middleware-test-seed"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	mw := NewMiddleware(testSecret)
	r := gin.New()

	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	r.GET("/protected", mw.JWTAuth(), ok)
	r.GET("/admin", mw.JWTAuth(), mw.AdminAuth(), ok)
	r.GET("/optional", mw.JWTAuthOptional(), func(c *gin.Context) {
		if _, exists := c.Get(auth.ClaimsKey); exists {
			c.String(http.StatusOK, "user")
			return
		}
		c.String(http.StatusOK, "guest")
	})
	return r
}

func mintToken(t *testing.T, userID, groupID uint, secret string) string {
	t.Helper()
	token, err := auth.GenerateToken(userID, groupID, []byte(secret))
	if err != nil {
		t.Fatalf("生成Token失败: %v", err)
	}
	return token
}

func doGet(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	r := newTestRouter(t)

	t.Run("有效Token放行", func(t *testing.T) {
		token := mintToken(t, 1, model.UserGroupAdmin, testSecret)
		if w := doGet(r, "/protected", token); w.Code != http.StatusOK {
			t.Errorf("状态码 = %d，期望 200", w.Code)
		}
	})

	t.Run("缺少Token拒绝", func(t *testing.T) {
		if w := doGet(r, "/protected", ""); w.Code != http.StatusUnauthorized {
			t.Errorf("状态码 = %d，期望 401", w.Code)
		}
	})

	t.Run("密钥不匹配拒绝", func(t *testing.T) {
		token := mintToken(t, 1, model.UserGroupAdmin, "wrong-secret")
		if w := doGet(r, "/protected", token); w.Code != http.StatusUnauthorized {
			t.Errorf("状态码 = %d，期望 401", w.Code)
		}
	})

	t.Run("非Bearer头拒绝", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Basic abc123")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("状态码 = %d，期望 401", w.Code)
		}
	})
}

func TestAdminAuth(t *testing.T) {
	r := newTestRouter(t)

	t.Run("管理员放行", func(t *testing.T) {
		token := mintToken(t, 1, model.UserGroupAdmin, testSecret)
		if w := doGet(r, "/admin", token); w.Code != http.StatusOK {
			t.Errorf("状态码 = %d，期望 200", w.Code)
		}
	})

	t.Run("普通用户拒绝", func(t *testing.T) {
		token := mintToken(t, 2, model.UserGroupUser, testSecret)
		if w := doGet(r, "/admin", token); w.Code != http.StatusForbidden {
			t.Errorf("状态码 = %d，期望 403", w.Code)
		}
	})
}

func TestJWTAuthOptional(t *testing.T) {
	r := newTestRouter(t)

	t.Run("游客放行", func(t *testing.T) {
		w := doGet(r, "/optional", "")
		if w.Code != http.StatusOK || w.Body.String() != "guest" {
			t.Errorf("响应 = %d %q，期望 200 guest", w.Code, w.Body.String())
		}
	})

	t.Run("有效Token注入用户信息", func(t *testing.T) {
		token := mintToken(t, 2, model.UserGroupUser, testSecret)
		w := doGet(r, "/optional", token)
		if w.Code != http.StatusOK || w.Body.String() != "user" {
			t.Errorf("响应 = %d %q，期望 200 user", w.Code, w.Body.String())
		}
	})

	t.Run("无效Token按游客处理", func(t *testing.T) {
		w := doGet(r, "/optional", "not-a-token")
		if w.Code != http.StatusOK || w.Body.String() != "guest" {
			t.Errorf("响应 = %d %q，期望 200 guest", w.Code, w.Body.String())
		}
	})
}
