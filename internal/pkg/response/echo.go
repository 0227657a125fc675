// File: internal/pkg/response/echo.go
package response

import (
	"errors"
	"net/http"

	"be4you/internal/pkg/xerrors"

	"github.com/labstack/echo/v4"
)

// Echo 框架适配器 - stub server 的 handler 统一使用信封格式输出

// EchoOK Echo 成功响应
func EchoOK[T any](c echo.Context, statusCode int, data T) error {
	return c.JSON(statusCode, Success(data, statusCode))
}

// EchoError Echo 错误响应, HTTP 状态码由错误码推导
func EchoError(c echo.Context, err error) error {
	appErr := toAppError(err)
	status := xerrors.GetHTTPStatus(appErr.Code)
	return c.JSON(status, Failure[any](status, appErr))
}

// EchoErrorWithStatus 使用指定 HTTP 状态码输出错误信封
func EchoErrorWithStatus(c echo.Context, status int, err error) error {
	return c.JSON(status, Failure[any](status, toAppError(err)))
}

// EchoBadRequest Echo 400 错误响应
func EchoBadRequest(c echo.Context, message string) error {
	return EchoError(c, xerrors.NewValidationError("request", message))
}

// EchoUnauthorized Echo 401 错误响应
func EchoUnauthorized(c echo.Context, message string) error {
	appErr := xerrors.FromCode(xerrors.CodeInvalidToken)
	if message != "" {
		appErr.Message = message
	}
	return EchoError(c, appErr)
}

// EchoNotFound Echo 404 错误响应
func EchoNotFound(c echo.Context, resource, identifier string) error {
	return EchoError(c, xerrors.NewNotFoundError(resource, identifier))
}

// HTTPErrorHandler 替换 echo 默认的错误输出,保持信封格式
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	_ = EchoError(c, err)
}

func toAppError(err error) *xerrors.AppError {
	var appErr *xerrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		if s, ok := he.Message.(string); ok && s != "" {
			msg = s
		}
		switch he.Code {
		case http.StatusBadRequest:
			return xerrors.New(xerrors.CodeInvalidParams, msg)
		case http.StatusUnauthorized:
			return xerrors.New(xerrors.CodeInvalidToken, msg)
		case http.StatusForbidden:
			return xerrors.New(xerrors.CodePermissionDenied, msg)
		case http.StatusNotFound:
			return xerrors.New(xerrors.CodeResourceNotFound, msg)
		case http.StatusConflict:
			return xerrors.New(xerrors.CodeDuplicateResource, msg)
		default:
			return xerrors.New(xerrors.CodeInternalError, msg)
		}
	}

	return xerrors.NewWithError(xerrors.CodeInternalError, xerrors.CodeInternalError.Message(), err)
}
