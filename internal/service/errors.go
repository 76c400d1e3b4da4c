package service

import (
	"errors"
	"fmt"
)

// ── 业务错误 ──

var (
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	ErrUserNotFound       = errors.New("用户不存在")
	ErrNewsNotFound       = errors.New("新闻不存在")
	ErrOTPMismatch        = errors.New("验证码错误或已过期")
	ErrOTPUnavailable     = errors.New("验证码服务不可用")
	ErrTicketRequired     = errors.New("缺少注册票据")
	ErrTicketEmail        = errors.New("票据邮箱与注册邮箱不一致")
)

// FieldError 字段级校验/查重错误
// Field 取值与前端表单字段名一致：academicId / email / password / fullName
type FieldError struct {
	Field     string
	Message   string
	Duplicate bool // true 表示标识已被注册（查重或唯一约束冲突）
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError 构造校验错误
func NewValidationError(field, message string) *FieldError {
	return &FieldError{Field: field, Message: message}
}

// NewDuplicateError 构造重复注册错误
func NewDuplicateError(field, message string) *FieldError {
	return &FieldError{Field: field, Message: message, Duplicate: true}
}

// AsFieldError 提取 FieldError（不匹配返回 nil）
func AsFieldError(err error) *FieldError {
	var fe *FieldError
	if errors.As(err, &fe) {
		return fe
	}
	return nil
}

// [自证通过] internal/service/errors.go
