package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"be4you/internal/pkg/metrics"

	"github.com/redis/go-redis/v9"
)

// Nil 透出 go-redis 的键不存在哨兵错误，调用方无需直接依赖 go-redis
var Nil = redis.Nil

// Client Redis 客户端封装，每次操作都会记录资源指标
type Client struct {
	*redis.Client
	service string
	metrics *metrics.ResourceMetrics
}

// NewClient 根据 URL 创建 Redis 客户端（如 redis://localhost:6379/0）并测试连接
func NewClient(ctx context.Context, redisURL, service string) (*Client, error) {
	if redisURL == "" {
		return nil, errors.New("empty redis url")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis connect failed: %w", err)
	}

	return Wrap(rdb, service, nil), nil
}

// Wrap 包装已有的 go-redis 客户端（测试中配合 miniredis 使用）
func Wrap(rdb *redis.Client, service string, m *metrics.ResourceMetrics) *Client {
	if service == "" {
		service = metrics.GetServiceName()
	}
	if m == nil {
		m = metrics.DefaultResourceMetrics
	}
	return &Client{
		Client:  rdb,
		service: service,
		metrics: m,
	}
}

// SetWithTTL 设置键值对，ttl 为 0 表示不过期
func (c *Client) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	start := time.Now()
	err := c.Set(ctx, key, value, ttl).Err()
	c.record("SET", err, time.Since(start))
	return err
}

// GetBytes 获取原始字节值，键不存在时返回 Nil
func (c *Client) GetBytes(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	result, err := c.Get(ctx, key).Bytes()
	c.record("GET", err, time.Since(start))
	return result, err
}

// DeleteKey 删除键，键不存在不视为错误
func (c *Client) DeleteKey(ctx context.Context, keys ...string) error {
	start := time.Now()
	err := c.Del(ctx, keys...).Err()
	c.record("DEL", err, time.Since(start))
	return err
}

func (c *Client) record(command string, err error, duration time.Duration) {
	switch {
	case err == nil:
		c.metrics.RecordRedisOperation(command, true, duration, c.service)
	case errors.Is(err, redis.Nil):
		c.metrics.RecordRedisOperation(command, true, duration, c.service)
		c.metrics.RecordRedisError("nil", c.service)
	default:
		c.metrics.RecordRedisOperation(command, false, duration, c.service)
		c.metrics.RecordRedisError("operation_error", c.service)
	}
}
