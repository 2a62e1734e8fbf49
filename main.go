/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-11-28 00:21:55
 * @LastEditTime: 2025-12-02 21:50:06
 * @LastEditors: 安知鱼
 */
package main

import (
	"log"
	"os"

	"github.com/xyhcode/tidecms/cmd/server"
)

// @title           TideCMS Comment API
// @version         1.0
// @description     TideCMS 评论与审核接口文档

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8091
// @BasePath  /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description 在请求头中添加 Bearer Token，格式为: Bearer {token}
func main() {
	// 调用位于 cmd/server 包中的 NewApp 函数来构建整个应用
	app, cleanup, err := server.NewApp()
	if err != nil {
		log.Fatalf("应用初始化失败: %v", err)
	}

	// 使用 defer 来确保 cleanup 函数在 main 退出时被调用
	defer cleanup()

	// 确保后台任务在程序退出时被停止
	defer app.Stop()

	if os.Getenv("TIDECMS_QUIET") == "" {
		app.PrintBanner()
	}

	// 启动应用
	if err := app.Run(); err != nil {
		log.Fatalf("应用运行失败: %v", err)
	}
}
