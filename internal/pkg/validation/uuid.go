// Package validation 提供路由参数校验中间件
package validation

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"be4you/internal/pkg/response"
)

// IsValidUUID 检查字符串是否是有效的 UUID
func IsValidUUID(s string) bool {
	return uuid.Validate(s) == nil
}

// UUIDParamMiddleware 校验路径参数必须是 UUID,否则直接按资源不存在返回 404。
// resource 用于错误元数据,例如 "activity"。
func UUIDParamMiddleware(resource string, params ...string) echo.MiddlewareFunc {
	if len(params) == 0 {
		params = []string{"id"}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			for _, name := range params {
				value := c.Param(name)
				if value != "" && !IsValidUUID(value) {
					return response.EchoNotFound(c, resource, value)
				}
			}
			return next(c)
		}
	}
}
