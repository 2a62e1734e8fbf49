/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-08-08 15:57:23
 * @LastEditTime: 2025-12-02 15:03:44
 * @LastEditors: 安知鱼
 */
package parser

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var mdParser goldmark.Markdown
var policy *bluemonday.Policy

func init() {
	// 初始化 Goldmark 解析器，评论内容只需要常用扩展
	mdParser = goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,           // 支持 GitHub Flavored Markdown
			extension.Linkify,       // 自动识别链接
			extension.Strikethrough, // 删除线
			extension.Table,         // 表格
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(), // 硬换行，评论里的单个换行应当生效
			html.WithUnsafe(),    // 信任所有原始 HTML，后续由 bluemonday 清理
		),
	)

	// 初始化 bluemonday 的安全策略
	// UGCPolicy 适用于用户生成的内容
	policy = bluemonday.UGCPolicy()
	// 允许代码高亮需要的 class 属性
	policy.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("code", "span")
	// 允许表格相关元素
	policy.AllowElements("table", "thead", "tbody", "tr", "th", "td")
}

// MarkdownToHTML 将 Markdown 字符串转换为安全的 HTML 字符串
func MarkdownToHTML(mdContent string) (string, error) {
	var buf bytes.Buffer
	if err := mdParser.Convert([]byte(mdContent), &buf); err != nil {
		return "", err
	}
	// 使用 bluemonday 清理 HTML，防止 XSS
	safeHTML := policy.Sanitize(buf.String())
	return safeHTML, nil
}
