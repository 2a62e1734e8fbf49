/*
 * @Description: 事务管理器的 GORM 实现
 * @Author: 安知鱼
 * @Date: 2025-12-01 17:25:18
 * @LastEditTime: 2025-12-02 16:18:03
 * @LastEditors: 安知鱼
 */
package gormdb

import (
	"context"

	"github.com/xyhcode/tidecms/pkg/domain/repository"

	"gorm.io/gorm"
)

type txManager struct {
	db *gorm.DB
}

// NewTransactionManager 创建事务管理器。
func NewTransactionManager(db *gorm.DB) repository.TransactionManager {
	return &txManager{db: db}
}

// Do 在单个数据库事务中执行 fn，fn 中通过传入的 Repositories 访问数据。
// fn 返回错误时整个事务回滚。
func (m *txManager) Do(ctx context.Context, fn func(repos repository.Repositories) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.Repositories{
			Comment: NewCommentRepo(tx),
			Post:    NewPostRepo(tx),
			User:    NewUserRepo(tx),
			Setting: NewSettingRepo(tx),
		}
		return fn(repos)
	})
}
