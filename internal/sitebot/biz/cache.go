package biz

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kart-io/logger"
	goredis "github.com/redis/go-redis/v9"

	"github.com/vivekpraj/website-to-chatbot/internal/model"
	"github.com/vivekpraj/website-to-chatbot/pkg/component/redis"
)

// AnswerCacheConfig 回答缓存配置。
type AnswerCacheConfig struct {
	// Enabled 是否启用缓存。
	Enabled bool
	// TTL 缓存过期时间。
	TTL time.Duration
	// KeyPrefix 缓存键前缀。
	KeyPrefix string
}

// DefaultAnswerCacheConfig 返回默认缓存配置。
func DefaultAnswerCacheConfig() *AnswerCacheConfig {
	return &AnswerCacheConfig{
		Enabled:   true,
		TTL:       10 * time.Minute,
		KeyPrefix: "sitebot:answer:",
	}
}

// AnswerCache 基于 Redis 缓存对话回答。
// 键按 bot 和问题哈希派生，不同 bot 的同名问题互不干扰。
//
// 缓存是纯加速层：client 为 nil 或禁用时所有操作都是空操作，
// 读写失败不影响对话主流程。
type AnswerCache struct {
	rdb *redis.Client
	cfg *AnswerCacheConfig
}

// NewAnswerCache 创建回答缓存。cfg 为 nil 时使用默认配置。
func NewAnswerCache(client *redis.Client, cfg *AnswerCacheConfig) *AnswerCache {
	if cfg == nil {
		cfg = DefaultAnswerCacheConfig()
	}
	return &AnswerCache{rdb: client, cfg: cfg}
}

// enabled 判断缓存是否可用。
func (c *AnswerCache) enabled() bool {
	return c != nil && c.rdb != nil && c.cfg.Enabled
}

// key 生成缓存键：前缀 + SHA256(botID \n question)。
func (c *AnswerCache) key(botID, question string) string {
	sum := sha256.Sum256([]byte(botID + "\n" + question))
	return c.cfg.KeyPrefix + hex.EncodeToString(sum[:])
}

// Get 查询缓存的回答。未命中返回 (nil, nil)。
// 反序列化失败视为脏数据，删除后按未命中处理。
func (c *AnswerCache) Get(ctx context.Context, botID, question string) (*model.ChatResult, error) {
	if !c.enabled() {
		return nil, nil
	}

	key := c.key(botID, question)
	data, err := c.rdb.Client().Get(ctx, key).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("answer cache get: %w", err)
	}

	var result model.ChatResult
	if err := json.Unmarshal(data, &result); err != nil {
		logger.Warnw("corrupted answer cache entry, deleting",
			"key", key,
			"error", err.Error(),
		)
		_ = c.rdb.Client().Del(ctx, key).Err()
		return nil, nil
	}

	return &result, nil
}

// Set 写入回答缓存。
func (c *AnswerCache) Set(ctx context.Context, botID, question string, result *model.ChatResult) error {
	if !c.enabled() || result == nil {
		return nil
	}

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("answer cache marshal: %w", err)
	}

	if err := c.rdb.Client().Set(ctx, c.key(botID, question), data, c.cfg.TTL).Err(); err != nil {
		return fmt.Errorf("answer cache set: %w", err)
	}
	return nil
}

// Invalidate 删除一个 bot 某个问题的缓存。重建索引后由调用方
// 决定是否逐条失效；TTL 较短时通常直接等待过期。
func (c *AnswerCache) Invalidate(ctx context.Context, botID, question string) error {
	if !c.enabled() {
		return nil
	}
	return c.rdb.Client().Del(ctx, c.key(botID, question)).Err()
}
