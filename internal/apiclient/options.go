package apiclient

import (
	"context"
	"net/http"
	"time"

	"be4you/internal/pkg/log"
	"be4you/internal/pkg/metrics"
	"be4you/internal/pkg/notify"
	"be4you/internal/pkg/response"
)

// Response 远端 API 的统一响应信封
type Response[T any] = response.Envelope[T]

// TokenStore 客户端对认证存储的最小依赖
type TokenStore interface {
	GetToken(ctx context.Context) (string, bool)
	ClearAuth(ctx context.Context)
}

// Navigator 会话过期后把用户流程重置到登录入口
type Navigator interface {
	ResetToLogin(ctx context.Context) error
}

// NavigatorFunc 函数适配器
type NavigatorFunc func(ctx context.Context) error

func (f NavigatorFunc) ResetToLogin(ctx context.Context) error {
	return f(ctx)
}

// Config 客户端配置
type Config struct {
	// BaseURL 所有 endpoint 的前缀,必填
	BaseURL string
	// Timeout 单次请求超时,<=0 时使用 15s
	Timeout time.Duration
	// NavigationDelay 会话过期后延迟多久重置导航,0 表示同步执行
	NavigationDelay time.Duration
}

// RequestOptions 单次请求参数
type RequestOptions struct {
	Method  string
	Body    []byte
	Headers map[string]string
	// SkipAuth 为 true 时不附带 Authorization 头(登录、注册等)
	SkipAuth bool
}

// Option Client 可选项
type Option func(*Client)

// WithNotifier 设置用户提示的投递方式
func WithNotifier(n notify.Notifier) Option {
	return func(c *Client) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithNavigator 设置会话过期后的导航重置
func WithNavigator(n Navigator) Option {
	return func(c *Client) {
		if n != nil {
			c.navigator = n
		}
	}
}

// WithLogger 设置 logger
func WithLogger(logger log.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics 设置指标收集器
func WithMetrics(m *metrics.ClientMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithHTTPClient 替换底层 http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithNavigationDelay 覆盖 Config.NavigationDelay
func WithNavigationDelay(d time.Duration) Option {
	return func(c *Client) {
		c.navDelay = d
	}
}
