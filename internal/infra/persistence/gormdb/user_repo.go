/*
 * @Description: 用户仓储的 GORM 实现
 * @Author: 安知鱼
 * @Date: 2025-12-01 17:16:02
 * @LastEditTime: 2025-12-02 16:15:21
 * @LastEditors: 安知鱼
 */
package gormdb

import (
	"context"
	"errors"

	"github.com/xyhcode/tidecms/pkg/constant"
	"github.com/xyhcode/tidecms/pkg/domain/model"
	"github.com/xyhcode/tidecms/pkg/domain/repository"

	"gorm.io/gorm"
)

type userRepo struct {
	db *gorm.DB
}

// NewUserRepo 创建用户仓储。
func NewUserRepo(db *gorm.DB) repository.UserRepository {
	return &userRepo{db: db}
}

func toDomainUser(e *userEntity) *model.User {
	if e == nil {
		return nil
	}
	return &model.User{
		ID:          e.ID,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
		Username:    e.Username,
		Nickname:    e.Nickname,
		Avatar:      e.Avatar,
		Email:       e.Email,
		Website:     e.Website,
		UserGroupID: e.UserGroupID,
		Status:      e.Status,
	}
}

func (r *userRepo) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var e userEntity
	err := r.db.WithContext(ctx).First(&e, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, constant.ErrNotFound
		}
		return nil, err
	}
	return toDomainUser(&e), nil
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var e userEntity
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, constant.ErrNotFound
		}
		return nil, err
	}
	return toDomainUser(&e), nil
}
