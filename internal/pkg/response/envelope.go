package response

import (
	"be4you/internal/pkg/xerrors"
)

// EmptyData 表示成功响应中“无数据”。
type EmptyData struct{}

// Envelope 是远端 API 统一的响应信封
// 线上格式: {"isSuccess":bool,"data":any,"message":string|null,"statusCode":number}
type Envelope[T any] struct {
	IsSuccess  bool    `json:"isSuccess"`
	Data       T       `json:"data"`
	Message    *string `json:"message"`
	StatusCode int     `json:"statusCode,omitempty"`

	// Err 仅在 IsSuccess 为 false 时设置,不参与序列化
	Err error `json:"-"`
}

// Success 创建一个成功的信封
func Success[T any](data T, statusCode int) Envelope[T] {
	return Envelope[T]{
		IsSuccess:  true,
		Data:       data,
		StatusCode: statusCode,
	}
}

// Failure 创建一个失败的信封, message 取自 AppError
func Failure[T any](statusCode int, appErr *xerrors.AppError) Envelope[T] {
	if appErr == nil {
		appErr = xerrors.FromCode(xerrors.CodeInternalError)
	}
	msg := appErr.Message
	return Envelope[T]{
		IsSuccess:  false,
		Message:    &msg,
		StatusCode: statusCode,
		Err:        appErr,
	}
}

// Text 返回 message 文本,message 为 null 时返回空串
func (e Envelope[T]) Text() string {
	if e.Message == nil {
		return ""
	}
	return *e.Message
}

// Code 返回失败原因对应的错误码
func (e Envelope[T]) Code() xerrors.ErrorCode {
	if e.IsSuccess {
		return xerrors.CodeSuccess
	}
	return xerrors.CodeOf(e.Err)
}

// Recast 保留结果元信息,替换数据类型(失败信封或数据解码之后使用)
func Recast[T, U any](e Envelope[T], data U) Envelope[U] {
	return Envelope[U]{
		IsSuccess:  e.IsSuccess,
		Data:       data,
		Message:    e.Message,
		StatusCode: e.StatusCode,
		Err:        e.Err,
	}
}

// StringPtr 返回字符串指针
func StringPtr(s string) *string {
	return &s
}
