/*
 * @Description: 配置仓储的 GORM 实现
 * @Author: 安知鱼
 * @Date: 2025-12-01 17:20:44
 * @LastEditTime: 2025-12-02 16:16:40
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

type settingRepo struct {
	db *gorm.DB
}

// NewSettingRepo 创建配置仓储。
func NewSettingRepo(db *gorm.DB) repository.SettingRepository {
	return &settingRepo{db: db}
}

func toDomainSetting(e *settingEntity) *model.Setting {
	if e == nil {
		return nil
	}
	return &model.Setting{
		ID:        e.ID,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
		ConfigKey: e.ConfigKey,
		Value:     e.Value,
		Comment:   e.Comment,
	}
}

func (r *settingRepo) FindByKey(ctx context.Context, key string) (*model.Setting, error) {
	var e settingEntity
	err := r.db.WithContext(ctx).Where("config_key = ?", key).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, constant.ErrNotFound
		}
		return nil, err
	}
	return toDomainSetting(&e), nil
}

func (r *settingRepo) Save(ctx context.Context, setting *model.Setting) error {
	e := settingEntity{
		ID:        setting.ID,
		ConfigKey: setting.ConfigKey,
		Value:     setting.Value,
		Comment:   setting.Comment,
	}
	return r.db.WithContext(ctx).Save(&e).Error
}

func (r *settingRepo) FindAll(ctx context.Context) ([]*model.Setting, error) {
	var entities []settingEntity
	if err := r.db.WithContext(ctx).Find(&entities).Error; err != nil {
		return nil, err
	}
	result := make([]*model.Setting, 0, len(entities))
	for i := range entities {
		result = append(result, toDomainSetting(&entities[i]))
	}
	return result, nil
}

func (r *settingRepo) Update(ctx context.Context, settingsToUpdate map[string]string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for key, value := range settingsToUpdate {
			res := tx.Model(&settingEntity{}).
				Where("config_key = ?", key).
				Update("value", value)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				// 不存在则插入
				if err := tx.Create(&settingEntity{ConfigKey: key, Value: value}).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}
