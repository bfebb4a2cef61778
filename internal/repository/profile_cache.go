package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	"tutor-connect-go/internal/model"

	"github.com/go-redis/redis/v8"
)

// profileCacheTTL 是档案快照的过期时间。快照只是读路径的性能兜底，
// MySQL 永远是事实来源；写路径不更新快照，只作废它，变更事件流
// 的消费侧会再次作废一次以做最终对账。
const profileCacheTTL = 10 * time.Minute

// ProfileCache 是档案的 Redis 读穿透快照缓存。
type ProfileCache interface {
	Get(ctx context.Context, uid string) (*model.UserProfile, error)
	Set(ctx context.Context, profile *model.UserProfile) error
	Invalidate(ctx context.Context, uid string) error
}

type redisProfileCache struct {
	redisClient *redis.Client
}

// NewProfileCache 创建一个新的 ProfileCache 实例。
func NewProfileCache(redisClient *redis.Client) ProfileCache {
	return &redisProfileCache{redisClient: redisClient}
}

func profileCacheKey(uid string) string {
	return fmt.Sprintf("profile:%s", uid)
}

// Get 返回缓存的档案快照；未命中时返回 (nil, nil)。
func (c *redisProfileCache) Get(ctx context.Context, uid string) (*model.UserProfile, error) {
	jsonData, err := c.redisClient.Get(ctx, profileCacheKey(uid)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile snapshot: %w", err)
	}
	var profile model.UserProfile
	if err := json.Unmarshal([]byte(jsonData), &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile snapshot: %w", err)
	}
	return &profile, nil
}

// Set 写入档案快照并设置过期时间。
func (c *redisProfileCache) Set(ctx context.Context, profile *model.UserProfile) error {
	jsonData, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile snapshot: %w", err)
	}
	return c.redisClient.Set(ctx, profileCacheKey(profile.UID), jsonData, profileCacheTTL).Err()
}

// Invalidate 作废某个档案的快照。
func (c *redisProfileCache) Invalidate(ctx context.Context, uid string) error {
	return c.redisClient.Del(ctx, profileCacheKey(uid)).Err()
}
