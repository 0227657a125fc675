package sessioncache

import (
	"context"
	"strings"
	"sync"
	"time"

	"be4you/internal/pkg/log"
	"be4you/internal/pkg/metrics"
)

// Session 描述 stub server 签发的登录会话。
type Session struct {
	Token  string
	UserID string
	Email  string
}

type entry struct {
	value     Session
	expiresAt time.Time
}

// Cache 提供线程安全的会话缓存,bearer token 到用户的映射。
type Cache struct {
	ttl     time.Duration
	metrics *metrics.SessionMetrics
	logger  log.Logger
	clock   func() time.Time
	mu      sync.RWMutex
	store   map[string]*entry
}

// New 返回默认 Cache 实例。
func New(ttl time.Duration, m *metrics.SessionMetrics, logger log.Logger) *Cache {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if m == nil {
		m = metrics.DefaultSessionMetrics
	}
	if logger == nil {
		logger = log.GetLogger()
	}
	return &Cache{
		ttl:     ttl,
		metrics: m,
		logger:  logger.With("component", "session_cache"),
		clock:   time.Now,
		store:   make(map[string]*entry),
	}
}

// Get 返回缓存的 Session,命中时会刷新 TTL。
func (c *Cache) Get(ctx context.Context, service, token string) (Session, bool) {
	service = NormalizeService(service)
	if token == "" {
		c.metrics.IncCacheMiss(service)
		return Session{}, false
	}

	now := c.clock()

	c.mu.Lock()
	value, ok := c.store[token]
	if ok && now.After(value.expiresAt) {
		delete(c.store, token)
		c.mu.Unlock()
		c.metrics.IncCacheEvicted(service, "expired")
		c.logger.InfoContext(ctx, "session cache expired",
			log.String("service", service),
			log.String("token_hash", HashToken(token)))
		return Session{}, false
	}
	if ok {
		value.expiresAt = now.Add(c.ttl)
	}
	c.mu.Unlock()

	if !ok {
		c.metrics.IncCacheMiss(service)
		c.logger.DebugContext(ctx, "session cache miss",
			log.String("service", service),
			log.String("token_hash", HashToken(token)))
		return Session{}, false
	}

	c.metrics.IncCacheHit(service)
	c.logger.DebugContext(ctx, "session cache hit",
		log.String("service", service),
		log.String("token_hash", HashToken(token)))
	return value.value, true
}

// Set 写入或刷新 Session。
func (c *Cache) Set(ctx context.Context, service string, session Session) {
	service = NormalizeService(service)
	if session.Token == "" {
		return
	}
	c.mu.Lock()
	c.store[session.Token] = &entry{
		value:     session,
		expiresAt: c.clock().Add(c.ttl),
	}
	c.mu.Unlock()
	c.logger.DebugContext(ctx, "session cache updated",
		log.String("service", service),
		log.String("token_hash", HashToken(session.Token)))
}

// Delete 主动剔除缓存（例如 logout）。
func (c *Cache) Delete(ctx context.Context, service, token, reason string) {
	service = NormalizeService(service)
	if token == "" {
		return
	}
	c.mu.Lock()
	_, ok := c.store[token]
	if ok {
		delete(c.store, token)
	}
	c.mu.Unlock()

	if ok {
		c.metrics.IncCacheEvicted(service, reason)
		c.logger.InfoContext(ctx, "session cache evicted",
			log.String("service", service),
			log.String("reason", reason),
			log.String("token_hash", HashToken(token)))
	}
}

// Sweep 清理所有已过期的会话,返回清理数量。由定时任务调用。
func (c *Cache) Sweep(ctx context.Context, service string) int {
	service = NormalizeService(service)
	now := c.clock()

	removed := 0
	c.mu.Lock()
	for token, e := range c.store {
		if now.After(e.expiresAt) {
			delete(c.store, token)
			removed++
		}
	}
	c.mu.Unlock()

	for i := 0; i < removed; i++ {
		c.metrics.IncCacheEvicted(service, "swept")
	}
	if removed > 0 {
		c.logger.InfoContext(ctx, "session cache swept",
			log.String("service", service),
			log.Int("removed", removed))
	}
	return removed
}

// Len 返回当前缓存条目数(含尚未清理的过期条目)。
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

// NormalizeService 确保 service label 不为空。
func NormalizeService(service string) string {
	service = strings.TrimSpace(service)
	if service == "" {
		return "unknown"
	}
	return service
}

// HashToken 返回 token 的短哈希,用于日志。
func HashToken(token string) string {
	return log.TokenHash(token)
}
