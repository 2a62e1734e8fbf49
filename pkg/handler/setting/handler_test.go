/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-12-02 23:55:02
 * @LastEditTime: 2025-12-02 23:55:02
 * @LastEditors: 安知鱼
 */
package setting

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/xyhcode/tidecms/pkg/constant"
	"github.com/xyhcode/tidecms/pkg/response"

	"github.com/gin-gonic/gin"
)

type fakeSettings struct {
	values map[string]string
}

func (s *fakeSettings) LoadAllSettings(ctx context.Context) error { return nil }
func (s *fakeSettings) Get(key string) string                     { return s.values[key] }
func (s *fakeSettings) GetBool(key string) bool                   { return s.values[key] == "true" }
func (s *fakeSettings) GetInt(key string, fallback int) int {
	n, err := strconv.Atoi(s.values[key])
	if err != nil {
		return fallback
	}
	return n
}
func (s *fakeSettings) UpdateSettings(ctx context.Context, settingsToUpdate map[string]string) error {
	for k, v := range settingsToUpdate {
		s.values[k] = v
	}
	return nil
}

func newTestRouter(values map[string]string) (*gin.Engine, *fakeSettings) {
	gin.SetMode(gin.TestMode)
	svc := &fakeSettings{values: values}
	h := NewHandler(svc)

	engine := gin.New()
	engine.GET("/api/settings", h.Get)
	engine.PUT("/api/settings", h.Update)
	return engine, svc
}

func TestGetSettings(t *testing.T) {
	engine, _ := newTestRouter(map[string]string{
		constant.KeyCommentModerationEnabled.String(): "true",
		constant.KeyCommentPageSize.String():          "20",
	})

	req := httptest.NewRequest(http.MethodGet, "/api/settings", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("HTTP状态码 = %d，期望 200", w.Code)
	}

	var envelope struct {
		Code int               `json:"code"`
		Data map[string]string `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("响应不是合法的JSON: %v", err)
	}
	if envelope.Data[constant.KeyCommentModerationEnabled.String()] != "true" {
		t.Error("响应应包含审核开关的当前值")
	}
	if envelope.Data[constant.KeyCommentPageSize.String()] != "20" {
		t.Error("响应应包含分页大小的当前值")
	}
	if _, ok := envelope.Data[constant.KeyCommentStaffReplyStatus.String()]; !ok {
		t.Error("响应应包含全部评论配置键")
	}
}

func TestUpdateSettings(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{
			name:     "合法的评论配置键",
			body:     `{"settings":{"comment.moderation_enabled":"false"}}`,
			wantCode: http.StatusOK,
		},
		{
			name:     "非评论配置键被拒绝",
			body:     `{"settings":{"APP_NAME":"恶意修改"}}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "空配置被拒绝",
			body:     `{"settings":{}}`,
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, svc := newTestRouter(map[string]string{
				constant.KeyCommentModerationEnabled.String(): "true",
			})

			req := httptest.NewRequest(http.MethodPut, "/api/settings", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)

			if w.Code != tt.wantCode {
				t.Errorf("HTTP状态码 = %d，期望 %d", w.Code, tt.wantCode)
			}

			var envelope response.Response
			if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
				t.Fatalf("响应不是合法的JSON: %v", err)
			}

			if tt.wantCode == http.StatusOK {
				if svc.values[constant.KeyCommentModerationEnabled.String()] != "false" {
					t.Error("配置值应已更新")
				}
			} else if svc.values[constant.KeyCommentModerationEnabled.String()] != "true" {
				t.Error("非法请求不应修改任何配置")
			}
		})
	}
}
