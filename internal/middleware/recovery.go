package middleware

import (
	"fmt"

	"be4you/internal/pkg/log"
	"be4you/internal/pkg/response"
	"be4you/internal/pkg/xerrors"

	"github.com/labstack/echo/v4"
)

// RecoveryMiddleware 恢复中间件, panic 转为 500 信封
func RecoveryMiddleware(logger log.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					ctx := c.Request().Context()

					logger.ErrorContext(ctx, "handler panicked",
						log.Any("panic_value", r),
						log.String("path", c.Request().URL.Path),
						log.String("method", c.Request().Method),
					)

					appErr := xerrors.FromCode(xerrors.CodeInternalError).
						WithService("stub-api", "recovery").
						WithMetadata("panic_value", fmt.Sprintf("%v", r))

					err = response.EchoError(c, appErr)
				}
			}()

			return next(c)
		}
	}
}
