/*
 * @Description: 站点配置服务，带内存缓存
 * @Author: 安知鱼
 * @Date: 2025-06-21 18:10:35
 * @LastEditTime: 2025-12-02 16:50:28
 * @LastEditors: 安知鱼
 */
package setting

import (
	"context"
	"log"
	"strconv"
	"strings"
	"sync"

	"github.com/xyhcode/tidecms/internal/pkg/event"
	"github.com/xyhcode/tidecms/pkg/constant"
	"github.com/xyhcode/tidecms/pkg/domain/repository"
)

// SettingUpdatedEvent 定义了配置更新事件的数据结构
type SettingUpdatedEvent struct {
	Key   string
	Value string
}

// SettingService 定义了配置服务的接口
type SettingService interface {
	LoadAllSettings(ctx context.Context) error
	Get(key string) string
	GetBool(key string) bool
	GetInt(key string, fallback int) int
	UpdateSettings(ctx context.Context, settingsToUpdate map[string]string) error
}

// settingService 是 SettingService 接口的实现
type settingService struct {
	repo     repository.SettingRepository
	cache    map[string]string
	mu       sync.RWMutex
	eventBus *event.EventBus
}

// NewSettingService 是 settingService 的构造函数
func NewSettingService(repo repository.SettingRepository, bus *event.EventBus) SettingService {
	return &settingService{
		repo:     repo,
		cache:    make(map[string]string),
		eventBus: bus,
	}
}

// LoadAllSettings 从代码定义和数据库中加载所有配置项到内存缓存。
func (s *settingService) LoadAllSettings(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	newCache := make(map[string]string)
	for key, value := range constant.DefaultSettings {
		newCache[key.String()] = value
	}

	dbSettings, err := s.repo.FindAll(ctx)
	if err != nil {
		s.cache = newCache
		log.Printf("⚠️ 警告: 从数据库加载配置失败: %v。服务将使用代码中定义的默认配置。", err)
		return err
	}

	for _, dbSetting := range dbSettings {
		newCache[dbSetting.ConfigKey] = dbSetting.Value
	}

	s.cache = newCache

	log.Printf("所有站点配置已成功加载到缓存，共 %d 项。", len(s.cache))
	return nil
}

// UpdateSettings 更新一个或多个配置项，并发布变更事件
func (s *settingService) UpdateSettings(ctx context.Context, settingsToUpdate map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Update(ctx, settingsToUpdate); err != nil {
		return err
	}

	for key, value := range settingsToUpdate {
		s.cache[key] = value
		s.eventBus.Publish(event.SettingUpdated, SettingUpdatedEvent{
			Key:   key,
			Value: value,
		})
	}

	log.Printf("成功更新 %d 个站点配置项，并已发布变更事件。", len(settingsToUpdate))
	return nil
}

// Get 根据键获取配置值
func (s *settingService) Get(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cache[key]
}

// GetBool 根据键获取布尔类型的配置值
func (s *settingService) GetBool(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	valueStr := strings.ToLower(s.cache[key])
	b, _ := strconv.ParseBool(valueStr)
	return b
}

// GetInt 根据键获取整数类型的配置值，解析失败时返回 fallback
func (s *settingService) GetInt(key string, fallback int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, err := strconv.Atoi(s.cache[key])
	if err != nil {
		return fallback
	}
	return n
}
