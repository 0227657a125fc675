package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"be4you/internal/pkg/ctxkey"
	"be4you/internal/pkg/log"
	"be4you/internal/pkg/response"
	"be4you/internal/pkg/sessioncache"
)

// SessionLookup 根据 bearer token 查询会话
type SessionLookup interface {
	Get(ctx context.Context, service, token string) (sessioncache.Session, bool)
}

// CurrentUser 当前请求的用户信息
type CurrentUser struct {
	UserID string
	Email  string
	Token  string
}

const currentUserKey = "current_user"

// AuthMiddleware 认证中间件 - 校验 Authorization: Bearer <token>
// token 缺失、未知或已过期时返回 401,客户端据此判定会话过期
func AuthMiddleware(sessions SessionLookup, service string, logger log.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			token := BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if token == "" {
				logger.WarnContext(ctx, "missing bearer token",
					log.String("path", c.Request().URL.Path))
				return response.EchoUnauthorized(c, "Missing bearer token")
			}

			session, ok := sessions.Get(ctx, service, token)
			if !ok {
				logger.WarnContext(ctx, "unknown or expired bearer token",
					log.String("path", c.Request().URL.Path),
					log.String("token_hash", log.TokenHash(token)))
				return response.EchoUnauthorized(c, "Session expired")
			}

			ctx = ctxkey.WithValue(ctx, ctxkey.UserID, session.UserID)
			ctx = ctxkey.WithValue(ctx, ctxkey.SessionToken, token)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Set(currentUserKey, &CurrentUser{
				UserID: session.UserID,
				Email:  session.Email,
				Token:  token,
			})

			logger.DebugContext(ctx, "request authenticated",
				log.String("user_id", session.UserID))

			return next(c)
		}
	}
}

// GetCurrentUser 从 Echo Context 中获取当前用户
func GetCurrentUser(c echo.Context) (*CurrentUser, bool) {
	user, ok := c.Get(currentUserKey).(*CurrentUser)
	return user, ok && user != nil
}

// BearerToken 解析 Authorization 头,格式不符时返回空串
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
