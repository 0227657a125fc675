package authstore

import (
	"context"
	"errors"
	"time"

	"be4you/internal/pkg/redis"
)

// RedisBackend 基于 Redis 的存储,适合多台机器共享同一登录态
type RedisBackend struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisBackend 创建 Redis 存储; ttl 为 0 表示不过期
func NewRedisBackend(client *redis.Client, ttl time.Duration) *RedisBackend {
	return &RedisBackend{
		client: client,
		prefix: "be4you:",
		ttl:    ttl,
	}
}

func (b *RedisBackend) Name() string { return "redis" }

func (b *RedisBackend) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := b.client.GetBytes(ctx, b.prefix+key)
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return data, err
}

func (b *RedisBackend) Save(ctx context.Context, key string, data []byte) error {
	return b.client.SetWithTTL(ctx, b.prefix+key, data, b.ttl)
}

func (b *RedisBackend) Remove(ctx context.Context, key string) error {
	return b.client.DeleteKey(ctx, b.prefix+key)
}

// Close 关闭底层连接
func (b *RedisBackend) Close() error {
	return b.client.Close()
}
