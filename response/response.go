package response

import (
	"time"
)

// Response 是一个通用的 API 响应结构
type Response[T any] struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Data      T      `json:"data,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// ListResponse 列表响应结构体
type ListResponse[T any] struct {
	Total int `json:"total"`
	List  []T `json:"list"`
}

// OK 构造一个成功的响应
func OK[T any](data T, message string) *Response[T] {
	return &Response[T]{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	}
}

// List 构造列表响应
func List[T any](items []T, message string) *Response[ListResponse[T]] {
	if items == nil {
		items = make([]T, 0)
	}
	return OK(ListResponse[T]{Total: len(items), List: items}, message)
}

// Error 构造一个失败的响应
func Error(message string) *Response[any] {
	return &Response[any]{
		Success:   false,
		Message:   message,
		Data:      nil,
		Timestamp: time.Now().UnixMilli(),
	}
}
