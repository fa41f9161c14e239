// Package errors 提供统一的错误处理框架
//
// 引擎的业务结果（冲突、修复失败）一律作为数据返回，不走 error 通道；
// 本包只用于 API 边界上的前置条件检查（无效参数、连接失败等）。
package errors

import (
	"errors"
	"fmt"
)

// Code 错误码
type Code string

const (
	// 通用错误码
	CodeUnknown      Code = "UNKNOWN"
	CodeInternal     Code = "INTERNAL_ERROR"
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeNotFound     Code = "NOT_FOUND"

	// 冲突引擎相关
	CodeInvalidAssignment Code = "INVALID_ASSIGNMENT"
	CodeInvalidTimeRange  Code = "INVALID_TIME_RANGE"
	CodeNilContext        Code = "NIL_CONTEXT"

	// 数据相关
	CodeDatabaseError Code = "DATABASE_ERROR"
)

// AppError 应用错误
type AppError struct {
	Code    Code                   `json:"code"`
	Message string                 `json:"message"`
	Details string                 `json:"details,omitempty"`
	Cause   error                  `json:"-"`
	Fields  map[string]interface{} `json:"fields,omitempty"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetails 添加详细信息
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// WithCause 添加原因
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithField 添加字段
func (e *AppError) WithField(key string, value interface{}) *AppError {
	if e.Fields == nil {
		e.Fields = make(map[string]interface{})
	}
	e.Fields[key] = value
	return e
}

// New 创建新错误
func New(code Code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap 包装错误
func Wrap(err error, code Code, message string) *AppError {
	return &AppError{Code: code, Message: message, Cause: err}
}

// Is 检查错误是否为特定类型
func Is(err error, code Code) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetCode 获取错误码
func GetCode(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// 预定义错误
var (
	ErrNilContext   = New(CodeNilContext, "排班上下文不能为空")
	ErrInvalidInput = New(CodeInvalidInput, "输入参数无效")
	ErrInternal     = New(CodeInternal, "内部错误")
)

// InvalidInput 创建输入无效错误
func InvalidInput(field, reason string) *AppError {
	return New(CodeInvalidInput, fmt.Sprintf("字段 '%s' 无效: %s", field, reason))
}

// InvalidAssignment 创建无效分配错误
func InvalidAssignment(id, reason string) *AppError {
	return New(CodeInvalidAssignment, fmt.Sprintf("分配 %s 无效: %s", id, reason))
}

// InvalidTimeRange 创建无效时间范围错误
func InvalidTimeRange(details string) *AppError {
	return New(CodeInvalidTimeRange, details)
}
