/*
 * @Description: 统一的API响应封装
 * @Author: 安知鱼
 * @Date: 2025-12-01 15:38:12
 * @LastEditTime: 2025-12-03 09:40:26
 * @LastEditors: 安知鱼
 */
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 是所有接口共用的返回结构体。
// Code 与 HTTP 状态码保持一致，方便前端统一处理。
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// Success 以 200 返回成功响应
func Success(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: message,
		Data:    data,
	})
}

// Fail 返回失败响应，code 同时作为 HTTP 状态码
func Fail(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
		Data:    nil,
	})
}

// SuccessWithStatus 成功响应，但允许自定义状态码，比如创建资源时返回 201。
func SuccessWithStatus(c *gin.Context, code int, data interface{}, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
		Data:    data,
	})
}
