// File: internal/pkg/xerrors/codes.go
package xerrors

import "fmt"

// ErrorCode 错误码类型（类型安全）
type ErrorCode int

// IsValid 检查错误码是否在预定义列表中
func (c ErrorCode) IsValid() bool {
	_, exists := codeMessages[c]
	return exists
}

// String 返回错误码的字符串表示
func (c ErrorCode) String() string {
	if msg, ok := codeMessages[c]; ok {
		return fmt.Sprintf("%d (%s)", c, msg)
	}
	return fmt.Sprintf("%d (undefined code)", c)
}

// Message 返回错误码对应的消息
func (c ErrorCode) Message() string {
	if msg, ok := codeMessages[c]; ok {
		return msg
	}
	return "Unknown error"
}

// ToInt 转换为 int（用于 JSON 序列化等场景）
func (c ErrorCode) ToInt() int {
	return int(c)
}

// -----------------------------------------------------------------------------
// 业务错误码统一定义
// 按模块或领域对错误码进行分段，便于管理。
// -----------------------------------------------------------------------------
const (
	// 1xxxxx: 通用错误码
	CodeSuccess           ErrorCode = 100000 // 操作成功
	CodeInternalError     ErrorCode = 100001 // 内部错误
	CodeInvalidParams     ErrorCode = 100002 // 参数错误
	CodeInvalidRequest    ErrorCode = 100003 // 请求格式错误
	CodeConfigError       ErrorCode = 100004 // 配置缺失或无效
	CodeResourceNotFound  ErrorCode = 100404 // 资源不存在
	CodeDuplicateResource ErrorCode = 100409 // 资源已存在

	// 2xxxxx: 认证相关错误码
	CodeAuthenticationFailed ErrorCode = 200001 // 认证失败
	CodeInvalidToken         ErrorCode = 200002 // 无效令牌
	CodeInvalidCredentials   ErrorCode = 200004 // 凭据无效
	CodeSessionExpired       ErrorCode = 200007 // 会话过期

	// 3xxxxx: 权限相关错误码
	CodePermissionDenied ErrorCode = 300001 // 权限不足

	// 7xxxxx: 远端调用错误码（客户端视角）
	CodeTransportError    ErrorCode = 700001 // 网络/传输失败
	CodeServerError       ErrorCode = 700002 // 服务端返回失败
	CodeMalformedResponse ErrorCode = 700003 // 响应格式无效
	CodeStorageError      ErrorCode = 700004 // 本地存储失败
	CodeMessageQueueError ErrorCode = 700005 // 消息队列错误
)

// -----------------------------------------------------------------------------
// HTTP 状态码常量定义
// -----------------------------------------------------------------------------
const (
	HTTPStatusOK        = 200
	HTTPStatusCreated   = 201
	HTTPStatusNoContent = 204

	HTTPStatusBadRequest   = 400
	HTTPStatusUnauthorized = 401
	HTTPStatusForbidden    = 403
	HTTPStatusNotFound     = 404
	HTTPStatusConflict     = 409

	HTTPStatusInternalServerError = 500
	HTTPStatusServiceUnavailable  = 503
)

// -----------------------------------------------------------------------------
// 错误消息映射
// -----------------------------------------------------------------------------
var codeMessages = map[ErrorCode]string{
	CodeSuccess:           "Success",
	CodeInternalError:     "Internal error",
	CodeInvalidParams:     "Invalid parameters",
	CodeInvalidRequest:    "Invalid request format",
	CodeConfigError:       "Configuration error",
	CodeResourceNotFound:  "Resource not found",
	CodeDuplicateResource: "Resource already exists",

	CodeAuthenticationFailed: "Authentication failed",
	CodeInvalidToken:         "Invalid token",
	CodeInvalidCredentials:   "Invalid credentials",
	CodeSessionExpired:       "Session expired. Please log in again.",

	CodePermissionDenied: "Permission denied",

	CodeTransportError:    "Request failed",
	CodeServerError:       "Server returned an error",
	CodeMalformedResponse: "Invalid response format from server",
	CodeStorageError:      "Local storage error",
	CodeMessageQueueError: "Message queue error",
}

// GetHTTPStatus 根据业务错误码获取HTTP状态码
func GetHTTPStatus(code ErrorCode) int {
	switch {
	case code == CodeSuccess:
		return HTTPStatusOK
	case code == CodeInvalidParams || code == CodeInvalidRequest:
		return HTTPStatusBadRequest
	case code == CodeResourceNotFound:
		return HTTPStatusNotFound
	case code == CodeDuplicateResource:
		return HTTPStatusConflict
	case code >= 200000 && code < 300000:
		return HTTPStatusUnauthorized
	case code >= 300000 && code < 400000:
		return HTTPStatusForbidden
	case code >= 700000:
		return HTTPStatusServiceUnavailable
	default:
		return HTTPStatusInternalServerError
	}
}

// getCategoryByCode 根据错误码获取分类
func getCategoryByCode(code ErrorCode) string {
	switch {
	case code >= 100000 && code < 200000:
		return "system"
	case code >= 200000 && code < 300000:
		return "authentication"
	case code >= 300000 && code < 400000:
		return "authorization"
	case code >= 700000 && code < 800000:
		return "external"
	default:
		return "unknown"
	}
}

// getLevelByCode 根据错误码获取级别
func getLevelByCode(code ErrorCode) ErrorLevel {
	switch {
	case code == CodeSuccess:
		return LevelInfo
	case code == CodeSessionExpired:
		return LevelInfo
	case code >= 100002 && code <= 100003:
		return LevelWarn
	case code == CodeConfigError:
		return LevelCritical
	default:
		return LevelError
	}
}

// isRetryableByCode 根据错误码判断是否可重试
// 客户端内部从不自动重试，这里仅供调用方参考。
func isRetryableByCode(code ErrorCode) bool {
	retryableCodes := map[ErrorCode]bool{
		CodeTransportError:    true,
		CodeMessageQueueError: true,
	}
	return retryableCodes[code]
}
