package repository

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrUserNotFound 用户不存在
var ErrUserNotFound = errors.New("user not found")

// StoreError 数据库层错误，仅记录日志，不返回给客户端
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func storeErr(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}

// withTimeout 为单条查询附加超时，超时后驱动中止查询并归还连接
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
