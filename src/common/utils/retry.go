package utils

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var ErrRetryTimeOver = errors.New("retry time over")

// Retry 通用重试函数
// @param ctx: 取消后立即停止重试
// @param attempts: 最大尝试次数
// @param sleep: 每次重试间隔时间
// @param fn: 需要执行的函数, 返回 error 表示失败需要重试
// @return error: 所有尝试都失败时返回 ErrRetryTimeOver 并附带最后一次错误
func Retry(ctx context.Context, attempts int, sleep time.Duration, fn func() error) error {
	var lastErr error
	for i := 0; i < attempts; i++ {
		if lastErr = fn(); lastErr == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), lastErr.Error())
		case <-time.After(sleep):
		}
	}

	if lastErr == nil {
		return ErrRetryTimeOver
	}
	return errors.Wrap(ErrRetryTimeOver, lastErr.Error())
}
