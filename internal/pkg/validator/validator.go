package validator

import (
	"reflect"
	"strings"

	"be4you/internal/pkg/xerrors"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// CustomValidator wraps go-playground validator，同时服务 Echo 与客户端 service
type CustomValidator struct {
	validator *validator.Validate
}

// New creates a new custom validator instance
// 字段名使用 json tag，错误信息与线上字段名保持一致
func New() *CustomValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return &CustomValidator{validator: v}
}

// Validate implements echo.Validator interface
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(400, TranslateValidationError(err))
	}
	return nil
}

// Struct 校验结构体，失败时返回 CodeInvalidParams 的 AppError
func (cv *CustomValidator) Struct(i interface{}) *xerrors.AppError {
	err := cv.validator.Struct(i)
	if err == nil {
		return nil
	}
	details := TranslateValidationErrors(err)
	field := "request"
	if len(details) > 0 {
		field = details[0].Field
	}
	return xerrors.NewValidationError(field, TranslateValidationError(err)).
		WithMetadata("errors", details)
}
