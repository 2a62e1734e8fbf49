/*
 * @Description: GORM 实体定义与自动迁移
 * @Author: 安知鱼
 * @Date: 2025-12-01 16:40:12
 * @LastEditTime: 2025-12-02 15:40:55
 * @LastEditors: 安知鱼
 */
package gormdb

import (
	"log"
	"time"

	"github.com/xyhcode/tidecms/pkg/constant"

	"gorm.io/gorm"
)

// commentEntity 是评论表的持久化结构。
type commentEntity struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time

	PostID   uint  `gorm:"not null;index"`
	ParentID *uint `gorm:"index"` // nil 表示根评论

	AuthorKind string  `gorm:"size:16;not null"`
	UserID     *uint   `gorm:"index"`
	Name       string  `gorm:"size:64;not null"`
	Email      *string `gorm:"size:255"`
	Website    *string `gorm:"size:255"`
	IPAddress  string  `gorm:"size:64"`
	UserAgent  string  `gorm:"size:512"`

	Content     string `gorm:"type:text;not null"`
	ContentHTML string `gorm:"type:text;not null"`

	Status  string `gorm:"size:16;not null;index"`
	IsStaff bool   `gorm:"not null;default:false"`
}

func (commentEntity) TableName() string { return "comments" }

// postEntity 是文章表在评论子系统内使用的投影。
type postEntity struct {
	ID           uint      `gorm:"primaryKey"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Slug         string `gorm:"uniqueIndex;size:255;not null"`
	Title        string `gorm:"size:255;not null"`
	CommentsOpen bool   `gorm:"not null;default:true"`
}

func (postEntity) TableName() string { return "posts" }

// userEntity 是用户表的持久化结构。
type userEntity struct {
	ID          uint      `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Username    string `gorm:"uniqueIndex;size:64;not null"`
	Nickname    string `gorm:"size:64"`
	Avatar      string `gorm:"size:255"`
	Email       string `gorm:"uniqueIndex;size:255;not null"`
	Website     string `gorm:"size:255"`
	UserGroupID uint   `gorm:"not null;default:2"`
	Status      int    `gorm:"not null;default:1"`
}

func (userEntity) TableName() string { return "users" }

// settingEntity 是键值配置表的持久化结构。
type settingEntity struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	ConfigKey string `gorm:"uniqueIndex;size:128;not null"`
	Value     string `gorm:"type:text"`
	Comment   string `gorm:"size:255"`
}

func (settingEntity) TableName() string { return "settings" }

// AutoMigrate 建表并写入缺失的默认配置项。
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&userEntity{},
		&postEntity{},
		&commentEntity{},
		&settingEntity{},
	); err != nil {
		return err
	}
	log.Println("✅ 数据库迁移完成。")

	return seedDefaultSettings(db)
}

// seedDefaultSettings 只补齐缺失的键，不覆盖已有值。
func seedDefaultSettings(db *gorm.DB) error {
	for key, value := range constant.DefaultSettings {
		var count int64
		if err := db.Model(&settingEntity{}).Where("config_key = ?", key.String()).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if err := db.Create(&settingEntity{ConfigKey: key.String(), Value: value}).Error; err != nil {
			return err
		}
		log.Printf("写入默认配置项: %s = %s", key, value)
	}
	return nil
}
