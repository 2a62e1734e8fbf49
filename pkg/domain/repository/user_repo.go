/*
 * @Description: 用户数据操作的契约
 * @Author: 安知鱼
 * @Date: 2025-06-16 10:02:33
 * @LastEditTime: 2025-12-02 14:23:18
 * @LastEditors: 安知鱼
 */
package repository

import (
	"context"

	"github.com/xyhcode/tidecms/pkg/domain/model"
)

// UserRepository 定义了用户数据操作的契约
type UserRepository interface {
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}
