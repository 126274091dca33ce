package service

import (
	"errors"

	"noticias/internal/constants"
)

// ErrInvalidCredentials 用户不存在或密码错误，对外不区分
var ErrInvalidCredentials = errors.New("invalid credentials")

// ValidationError 请求参数缺失或格式错误
type ValidationError struct {
	Code string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Code
}

var (
	errMissingCredentials = &ValidationError{Code: constants.ErrMissingCredentials}
	errMissingFields      = &ValidationError{Code: constants.ErrMissingFields}
)
