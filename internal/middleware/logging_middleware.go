package middleware

import (
	"strings"
	"time"

	"be4you/internal/pkg/ctxkey"
	"be4you/internal/pkg/log"
	"be4you/internal/pkg/trace"

	"github.com/labstack/echo/v4"
)

// LoggingConfig 日志配置
type LoggingConfig struct {
	// SkipPaths 跳过日志记录的路径前缀
	SkipPaths []string

	// LogHeaders 是否记录请求头（敏感头会脱敏）
	LogHeaders bool

	// SensitiveHeaders 需要脱敏的 Header
	SensitiveHeaders []string
}

// DefaultLoggingConfig 默认日志配置。请求体从不记录,登录请求里有明文密码。
func DefaultLoggingConfig() *LoggingConfig {
	return &LoggingConfig{
		SkipPaths: []string{"/health", "/metrics"},
		SensitiveHeaders: []string{
			"Authorization",
			"Cookie",
		},
	}
}

// LoggingMiddleware 日志中间件
func LoggingMiddleware(logger log.Logger) echo.MiddlewareFunc {
	return LoggingMiddlewareWithConfig(logger, DefaultLoggingConfig())
}

// LoggingMiddlewareWithConfig 带配置的日志中间件
func LoggingMiddlewareWithConfig(logger log.Logger, config *LoggingConfig) echo.MiddlewareFunc {
	if config == nil {
		config = DefaultLoggingConfig()
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if shouldSkip(req.URL.Path, config.SkipPaths) {
				return next(c)
			}

			start := time.Now()

			err := next(c)

			// 认证中间件在 next 内部替换了 request context
			ctx := c.Request().Context()
			statusCode := c.Response().Status
			fields := []any{
				log.String("method", req.Method),
				log.String("path", req.URL.Path),
				log.String("client_ip", c.RealIP()),
				log.Int("status_code", statusCode),
				log.Int64("duration_ms", time.Since(start).Milliseconds()),
				log.Int64("response_size", c.Response().Size),
				log.String("trace_id", trace.GetTraceID(ctx)),
			}
			if userID := ctxkey.GetString(ctx, ctxkey.UserID); userID != "" {
				fields = append(fields, log.String("user_id", userID))
			}
			if config.LogHeaders {
				fields = append(fields, log.Any("headers", sanitizeHeaders(req.Header, config.SensitiveHeaders)))
			}

			switch {
			case err != nil:
				fields = append(fields, log.Any("error", err))
				logger.ErrorContext(ctx, "request failed", fields...)
			case statusCode >= 500:
				logger.ErrorContext(ctx, "request completed with server error", fields...)
			case statusCode >= 400:
				logger.WarnContext(ctx, "request completed with client error", fields...)
			default:
				logger.InfoContext(ctx, "request completed", fields...)
			}

			return err
		}
	}
}

func shouldSkip(path string, skipPaths []string) bool {
	for _, skipPath := range skipPaths {
		if strings.HasPrefix(path, skipPath) {
			return true
		}
	}
	return false
}

// sanitizeHeaders 脱敏敏感 Header
func sanitizeHeaders(headers map[string][]string, sensitiveHeaders []string) map[string]string {
	result := make(map[string]string, len(headers))
	for k, v := range headers {
		if len(v) == 0 {
			continue
		}
		result[k] = v[0]
		for _, sensitive := range sensitiveHeaders {
			if strings.EqualFold(k, sensitive) {
				result[k] = "***REDACTED***"
				break
			}
		}
	}
	return result
}
