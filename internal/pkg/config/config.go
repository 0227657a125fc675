package config

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// 存储后端类型
const (
	StoreBackendFile   = "file"
	StoreBackendRedis  = "redis"
	StoreBackendMemory = "memory"
)

// Config 客户端及 stub server 的运行时配置
type Config struct {
	APIURL      string
	Environment string
	LogLevel    string

	HTTPTimeout     time.Duration
	NavigationDelay time.Duration

	StoreBackend string
	StoreDir     string
	StoreKey     string
	StoreTTL     time.Duration
	RedisURL     string

	NATSURL           string
	NATSNoticeSubject string

	StubListenAddr string
	StubSessionTTL time.Duration
}

// Load 从环境变量加载配置。API_URL 缺失不在这里报错，由 apiclient.New 统一返回配置错误。
func Load() Config {
	return Config{
		APIURL:      strings.TrimRight(os.Getenv("API_URL"), "/"),
		Environment: GetEnvOrDefault("ENVIRONMENT", "development"),
		LogLevel:    GetEnvOrDefault("LOG_LEVEL", "info"),

		HTTPTimeout:     GetDurationOrDefault("HTTP_TIMEOUT", 15*time.Second),
		NavigationDelay: GetDurationOrDefault("NAVIGATION_DELAY", 0),

		StoreBackend: strings.ToLower(GetEnvOrDefault("AUTH_STORE_BACKEND", StoreBackendFile)),
		StoreDir:     GetEnvOrDefault("AUTH_STORE_DIR", defaultStoreDir()),
		StoreKey:     GetEnvOrDefault("AUTH_STORE_KEY", "auth_data"),
		StoreTTL:     GetDurationOrDefault("AUTH_STORE_TTL", 0),
		RedisURL:     GetEnvOrDefault("REDIS_URL", "redis://localhost:6379/0"),

		NATSURL:           os.Getenv("NATS_URL"),
		NATSNoticeSubject: GetEnvOrDefault("NATS_NOTICE_SUBJECT", "be4you.notice"),

		StubListenAddr: GetEnvOrDefault("STUB_LISTEN_ADDR", ":8085"),
		StubSessionTTL: GetDurationOrDefault("STUB_SESSION_TTL", 30*time.Minute),
	}
}

// LogFields 返回适合写日志的配置快照（敏感字段已脱敏）
func (c Config) LogFields() map[string]any {
	return SanitizeConfigForLog(map[string]any{
		"api_url":       c.APIURL,
		"environment":   c.Environment,
		"store_backend": c.StoreBackend,
		"store_dir":     c.StoreDir,
		"redis_url":     redactURL(c.RedisURL),
		"nats_url":      redactURL(c.NATSURL),
		"http_timeout":  c.HTTPTimeout.String(),
	})
}

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "***REDACTED***"
	}
	return u.Redacted()
}

func defaultStoreDir() string {
	if dir, err := os.UserConfigDir(); err == nil && dir != "" {
		return filepath.Join(dir, "be4you")
	}
	return filepath.Join(os.TempDir(), "be4you")
}
