package service

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrTimeout 存储调用超时；errors.Is(err, context.DeadlineExceeded) 同样成立
var ErrTimeout = timeoutError{}

type timeoutError struct{}

func (timeoutError) Error() string { return "store call timed out" }

func (timeoutError) Is(target error) bool { return target == context.DeadlineExceeded }

// withTimeout 给一次存储调用加截止时间；超时统一转成 ErrTimeout
func withTimeout[T any](ctx context.Context, d time.Duration, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	cctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	v, err := fn(cctx)
	if err == nil {
		return v, nil
	}
	var zero T
	// 驱动可能把超时包装成别的错误，以 ctx 状态为准
	expired := errors.Is(cctx.Err(), context.DeadlineExceeded) && ctx.Err() == nil
	if expired || errors.Is(err, context.DeadlineExceeded) {
		storeTimeouts.WithLabelValues(op).Inc()
		return zero, fmt.Errorf("%s: %w", op, ErrTimeout)
	}
	return zero, fmt.Errorf("%s: %w", op, err)
}
