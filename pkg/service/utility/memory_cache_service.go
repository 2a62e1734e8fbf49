/*
 * @Description: 内存缓存服务实现（用于 Redis 不可用时的降级方案）
 * @Author: 安知鱼
 * @Date: 2025-10-05 00:00:00
 * @LastEditTime: 2025-12-02 16:33:27
 * @LastEditors: 安知鱼
 */
package utility

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"sync"
	"time"
)

// cacheItem 缓存项结构
type cacheItem struct {
	value      string
	expiration time.Time
	hasExpiry  bool
}

// isExpired 检查是否过期
func (item *cacheItem) isExpired() bool {
	if !item.hasExpiry {
		return false
	}
	return time.Now().After(item.expiration)
}

// memoryCacheService 是基于内存的缓存服务实现
type memoryCacheService struct {
	mu     sync.Mutex
	data   map[string]*cacheItem
	ticker *time.Ticker
	done   chan bool
}

// NewMemoryCacheService 创建内存缓存服务实例
func NewMemoryCacheService() CacheService {
	svc := &memoryCacheService{
		data:   make(map[string]*cacheItem),
		ticker: time.NewTicker(1 * time.Minute), // 每分钟清理一次过期数据
		done:   make(chan bool),
	}

	// 启动后台清理任务
	go svc.cleanupExpired()

	return svc
}

// cleanupExpired 定期清理过期的缓存项
func (s *memoryCacheService) cleanupExpired() {
	for {
		select {
		case <-s.ticker.C:
			s.mu.Lock()
			for key, item := range s.data {
				if item.isExpired() {
					delete(s.data, key)
				}
			}
			s.mu.Unlock()
		case <-s.done:
			return
		}
	}
}

// Stop 停止清理任务
func (s *memoryCacheService) Stop() {
	s.ticker.Stop()
	s.done <- true
}

// Set 设置缓存
func (s *memoryCacheService) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	item := &cacheItem{
		value:     fmt.Sprintf("%v", value),
		hasExpiry: expiration > 0,
	}

	if expiration > 0 {
		item.expiration = time.Now().Add(expiration)
	}

	s.mu.Lock()
	s.data[key] = item
	s.mu.Unlock()
	return nil
}

// Get 获取缓存
func (s *memoryCacheService) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.data[key]
	if !ok {
		return "", nil // Key 不存在，返回空字符串
	}

	// 检查是否过期
	if item.isExpired() {
		delete(s.data, key)
		return "", nil
	}

	return item.value, nil
}

// Delete 删除缓存
func (s *memoryCacheService) Delete(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.data, key)
	}
	return nil
}

// Increment 原子递增，与 Redis 语义一致：不存在的键从 0 开始。
// 递增保留原有的过期时间。
func (s *memoryCacheService) Increment(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.data[key]
	if !ok || item.isExpired() {
		s.data[key] = &cacheItem{value: "1"}
		return 1, nil
	}

	n, err := strconv.ParseInt(item.value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("值 '%s' 不是整数，无法递增", item.value)
	}
	n++
	item.value = strconv.FormatInt(n, 10)
	return n, nil
}

// Expire 设置键的过期时间
func (s *memoryCacheService) Expire(ctx context.Context, key string, expiration time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item, ok := s.data[key]; ok && !item.isExpired() {
		item.hasExpiry = expiration > 0
		if expiration > 0 {
			item.expiration = time.Now().Add(expiration)
		}
	}
	return nil
}

// Scan 按照 glob 模式查找匹配的键
func (s *memoryCacheService) Scan(ctx context.Context, pattern string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var keys []string
	for key, item := range s.data {
		if item.isExpired() {
			continue
		}
		if ok, _ := path.Match(pattern, key); ok {
			keys = append(keys, key)
		}
	}
	return keys, nil
}
