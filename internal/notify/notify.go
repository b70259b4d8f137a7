// Package notify 通过系统通知中心显示桌面通知。
package notify

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/gen2brain/beeep"
	"github.com/google/uuid"
)

// ErrDisabled 通知已在配置中关闭。
var ErrDisabled = errors.New("notifications are disabled")

// Notifier 显示一条桌面通知。
type Notifier interface {
	Notify(title, body string) (string, error)
}

// DesktopNotifier 基于 beeep 的跨平台实现：
// Windows 使用 toast，macOS 使用通知中心，Linux 使用 D-Bus。
type DesktopNotifier struct {
	mu       sync.RWMutex
	enabled  bool
	iconPath string
	logger   *slog.Logger

	// send 可在测试中替换
	send func(title, body, icon string) error
}

// NewDesktopNotifier 创建通知器。logger 为 nil 时使用 slog.Default()。
func NewDesktopNotifier(enabled bool, iconPath string, logger *slog.Logger) *DesktopNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &DesktopNotifier{
		enabled:  enabled,
		iconPath: iconPath,
		logger:   logger,
		send: func(title, body, icon string) error {
			return beeep.Notify(title, body, icon)
		},
	}
}

// SetEnabled 开启或关闭通知（配置热重载时调用）。
func (n *DesktopNotifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

// IsEnabled 返回通知是否开启。
func (n *DesktopNotifier) IsEnabled() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.enabled
}

// Notify 同步显示通知，返回本次通知的 ID。
func (n *DesktopNotifier) Notify(title, body string) (string, error) {
	n.mu.RLock()
	enabled := n.enabled
	icon := n.iconPath
	n.mu.RUnlock()

	if !enabled {
		return "", ErrDisabled
	}

	id := uuid.NewString()
	if err := n.send(title, body, icon); err != nil {
		n.logger.Warn("⚠️ 桌面通知发送失败", "id", id, "title", title, "error", err)
		return "", err
	}

	n.logger.Debug("🔔 桌面通知已发送", "id", id, "title", title)
	return id, nil
}
