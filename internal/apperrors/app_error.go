package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// 错误分类哨兵，通过 errors.Is 判断
var (
	ErrValidation          = errors.New("validation error")
	ErrAllocationExhausted = errors.New("code allocation exhausted")
	ErrNotFound            = errors.New("not found")
	ErrStorage             = errors.New("storage error")
)

// AppError 自定义错误类型
type AppError struct {
	Code    int
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCode 创建通用业务错误
func WithCode(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// BusinessError 封装业务逻辑错误（通用）
func BusinessError(code int, message string) *AppError {
	return WithCode(code, message)
}

// ValidationError 参数校验错误，未触达存储层
func ValidationError(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Message: message,
		Cause:   ErrValidation,
	}
}

// InvalidRequestErrorDefault 默认参数校验错误
func InvalidRequestErrorDefault() *AppError {
	return ValidationError("error.invalid_request")
}

// AllocationExhaustedError 短码重试次数耗尽
func AllocationExhaustedError(attempts int) *AppError {
	return &AppError{
		Code:    http.StatusServiceUnavailable,
		Message: "error.code_allocation_exhausted",
		Cause:   fmt.Errorf("%w after %d attempts", ErrAllocationExhausted, attempts),
	}
}

// NotFoundError 记录不存在
func NotFoundError(message string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Message: message,
		Cause:   ErrNotFound,
	}
}

// StorageError 封装存储层错误（非唯一约束冲突）
func StorageError(cause error) *AppError {
	return &AppError{
		Code:    http.StatusInternalServerError,
		Message: "error.storage",
		Cause:   fmt.Errorf("%w: %w", ErrStorage, cause),
	}
}

// SystemError 封装系统内部错误
func SystemError(cause error) *AppError {
	return &AppError{
		Code:    http.StatusInternalServerError,
		Message: "error.system",
		Cause:   cause,
	}
}

// SystemErrorDefault 默认系统内部错误
func SystemErrorDefault() *AppError {
	return WithCode(http.StatusInternalServerError, "error.system")
}

// UnauthorizedError 管理口令校验失败
func UnauthorizedError() *AppError {
	return WithCode(http.StatusUnauthorized, "error.unauthorized")
}

// ImportRowError 批量导入中单行无法处理，跳过后继续
type ImportRowError struct {
	Line        int    `json:"line"`
	AffiliateID string `json:"affiliate_id"`
	Delta       string `json:"delta"`
	Reason      string `json:"reason"`
}

func (e *ImportRowError) Error() string {
	return fmt.Sprintf("import row %d (affiliate_id=%q, delta=%q): %s", e.Line, e.AffiliateID, e.Delta, e.Reason)
}
