package store

import (
	"context"
	"strings"
	"time"
)

const (
	busyInitialBackoff = 30 * time.Millisecond
	busyMaxBackoff     = 500 * time.Millisecond
)

func isSQLiteBusyError(err error) bool {
	if err == nil {
		return false
	}
	// 按错误文本判断，两个驱动的错误类型不同
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "sqlite_busy") || strings.Contains(msg, "database is locked")
}

// withBusyRetry fn 返回 busy 错误时指数退避重试，直到成功、非 busy 错误或 ctx 结束。
// ctx 结束时返回最后一次的 busy 错误，便于诊断。
func withBusyRetry(ctx context.Context, fn func() error) error {
	backoff := busyInitialBackoff
	for {
		err := fn()
		if err == nil || !isSQLiteBusyError(err) {
			return err
		}
		if ctx.Err() != nil {
			return err
		}

		wait := backoff
		if wait > busyMaxBackoff {
			wait = busyMaxBackoff
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
		backoff *= 2
	}
}
