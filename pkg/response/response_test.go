/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-12-03 09:44:05
 * @LastEditTime: 2025-12-03 09:44:05
 * @LastEditors: 安知鱼
 */
package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func record(handler gin.HandlerFunc) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	handler(c)
	return w
}

func TestResponseEnvelope(t *testing.T) {
	t.Run("Success返回200", func(t *testing.T) {
		w := record(func(c *gin.Context) {
			Success(c, gin.H{"id": "abc"}, "操作成功")
		})
		if w.Code != http.StatusOK {
			t.Errorf("状态码 = %d，期望 200", w.Code)
		}
		var body Response
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("解析响应失败: %v", err)
		}
		if body.Code != http.StatusOK || body.Message != "操作成功" {
			t.Errorf("响应体 = %+v", body)
		}
	})

	t.Run("Fail的code同时作为HTTP状态码", func(t *testing.T) {
		w := record(func(c *gin.Context) {
			Fail(c, http.StatusConflict, "状态冲突")
		})
		if w.Code != http.StatusConflict {
			t.Errorf("状态码 = %d，期望 409", w.Code)
		}
		var body Response
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("解析响应失败: %v", err)
		}
		if body.Code != http.StatusConflict || body.Data != nil {
			t.Errorf("响应体 = %+v", body)
		}
	})

	t.Run("SuccessWithStatus自定义状态码", func(t *testing.T) {
		w := record(func(c *gin.Context) {
			SuccessWithStatus(c, http.StatusCreated, gin.H{"id": "abc"}, "创建成功")
		})
		if w.Code != http.StatusCreated {
			t.Errorf("状态码 = %d，期望 201", w.Code)
		}
	})
}
