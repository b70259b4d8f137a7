// Package commands 实现前端可调用的命令端点。
// 与宿主 GUI 框架无关：App 只负责把这些方法绑定到 Wails。
package commands

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"tiklay-desktop/internal/notify"
	"tiklay-desktop/internal/opener"
)

// BuildInfo 编译期常量。
type BuildInfo struct {
	Version string
	AppName string
}

// SystemInfo get_system_info 的返回结构，字段固定为四个。
type SystemInfo struct {
	Platform string `json:"platform"`
	Arch     string `json:"arch"`
	Version  string `json:"version"`
	AppName  string `json:"app_name"`
}

// Service 命令端点集合。
type Service struct {
	build    BuildInfo
	urls     opener.URLOpener
	notifier notify.Notifier
	logger   *slog.Logger

	mu      sync.RWMutex
	onShown func(id, title, body string)

	// 测试时可覆盖
	goos   string
	goarch string
}

// New 创建命令服务。
func New(build BuildInfo, urls opener.URLOpener, notifier notify.Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		build:    build,
		urls:     urls,
		notifier: notifier,
		logger:   logger,
		goos:     runtime.GOOS,
		goarch:   runtime.GOARCH,
	}
}

// Greet 返回问候语，纯函数。
func (s *Service) Greet(name string) string {
	return fmt.Sprintf("Hello, %s! You've been greeted from Rust!", name)
}

// OpenInBrowser 启动系统打开程序后立即返回，浏览器是否真正打开不会被观察到。
func (s *Service) OpenInBrowser(url string) error {
	if err := s.urls.OpenURL(url); err != nil {
		s.logger.Warn("⚠️ 打开浏览器失败", "url", url, "error", err)
		return fmt.Errorf("Failed to open browser: %v", err)
	}
	s.logger.Debug("🌐 已启动浏览器", "url", url)
	return nil
}

// SystemInfo 同一二进制内每次调用结果相同。
func (s *Service) SystemInfo() SystemInfo {
	return SystemInfo{
		Platform: s.goos,
		Arch:     s.goarch,
		Version:  s.build.Version,
		AppName:  s.build.AppName,
	}
}

// OnNotificationShown 注册通知显示成功后的回调，无论调用来自前端还是控制 API。
func (s *Service) OnNotificationShown(fn func(id, title, body string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onShown = fn
}

// ShowNotification 通过系统通知中心显示通知，返回通知 ID。
func (s *Service) ShowNotification(title, body string) (string, error) {
	id, err := s.notifier.Notify(title, body)
	if err != nil {
		return "", fmt.Errorf("Failed to show notification: %v", err)
	}

	s.mu.RLock()
	onShown := s.onShown
	s.mu.RUnlock()
	if onShown != nil {
		onShown(id, title, body)
	}
	return id, nil
}
