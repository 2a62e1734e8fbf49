/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-06-21 17:18:09
 * @LastEditTime: 2025-12-02 11:08:31
 * @LastEditors: 安知鱼
 */
package constant

// SettingKey 为所有在应用中使用的配置键定义了类型安全的常量。
type SettingKey string

// String 方便地将 SettingKey 转换为 string 类型。
func (k SettingKey) String() string {
	return string(k)
}

const (
	// --- 站点基础配置 ---
	KeyAppName    SettingKey = "APP_NAME"
	KeySiteURL    SettingKey = "SITE_URL"
	KeyAppVersion SettingKey = "APP_VERSION"

	// --- 评论配置 ---
	KeyCommentModerationEnabled  SettingKey = "comment.moderation_enabled"    // 新评论是否进入待审队列
	KeyCommentLimitPerWindow     SettingKey = "comment.limit_per_window"      // 限流窗口内允许的评论条数
	KeyCommentLimitWindowSeconds SettingKey = "comment.limit_window_seconds"  // 限流窗口长度（秒）
	KeyCommentLimitLength        SettingKey = "comment.limit_length"          // 评论内容最大长度
	KeyCommentPageSize           SettingKey = "comment.page_size"             // 公开列表默认分页大小
	KeyCommentStaffReplyStatus   SettingKey = "comment.staff_reply_status"    // 站长回复的初始状态
	KeyCommentApproveOnReply     SettingKey = "comment.approve_on_staff_reply" // 站长回复时是否顺带通过目标评论
)

// DefaultSettings 是设置表为空时写入的初始值。
var DefaultSettings = map[SettingKey]string{
	KeyAppName:                   "TideCMS",
	KeySiteURL:                   "http://localhost:8091",
	KeyAppVersion:                "1.0.0",
	KeyCommentModerationEnabled:  "true",
	KeyCommentLimitPerWindow:     "1",
	KeyCommentLimitWindowSeconds: "30",
	KeyCommentLimitLength:        "1000",
	KeyCommentPageSize:           "10",
	KeyCommentStaffReplyStatus:   "approved",
	KeyCommentApproveOnReply:     "true",
}
