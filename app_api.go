// app_api.go - 暴露给前端的 API 方法 (Wails Bindings)
// 这些方法会被自动生成为 JavaScript 调用
//
// - 命令端点：Greet / OpenInBrowser / GetSystemInfo / ShowNotification
// - 辅助：版本、平台、对话框、网络状态、本地存储、打开路径、日志

package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	goruntime "runtime"
	"time"

	"tiklay-desktop/internal/commands"
	"tiklay-desktop/internal/logging"
	"tiklay-desktop/internal/store"
	"tiklay-desktop/internal/utils"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// 本地存储操作超时
const storageTimeout = 5 * time.Second

var errStoreUnavailable = errors.New("local storage is not available")

// ============================================================
// 命令端点
// ============================================================

// Greet 返回问候语
func (a *App) Greet(name string) string {
	return a.commands.Greet(name)
}

// OpenInBrowser 用系统默认浏览器打开 URL
func (a *App) OpenInBrowser(url string) error {
	return a.commands.OpenInBrowser(url)
}

// GetSystemInfo 返回平台、架构、版本和应用名
func (a *App) GetSystemInfo() commands.SystemInfo {
	return a.commands.SystemInfo()
}

// ShowNotification 显示桌面通知，成功后由 OnNotificationShown 推送给前端
func (a *App) ShowNotification(title, body string) error {
	_, err := a.commands.ShowNotification(title, body)
	return err
}

// ============================================================
// 应用信息
// ============================================================

func (a *App) GetAppVersion() string {
	return Version
}

func (a *App) GetPlatform() string {
	return goruntime.GOOS
}

// ============================================================
// 对话框
// ============================================================

// FileFilter 文件过滤器
type FileFilter struct {
	DisplayName string `json:"displayName"`
	Pattern     string `json:"pattern"` // 例如 "*.json;*.csv"
}

// SaveDialogOptions 保存对话框参数
type SaveDialogOptions struct {
	Title           string       `json:"title"`
	DefaultPath     string       `json:"defaultPath"`
	DefaultFilename string       `json:"defaultFilename"`
	Filters         []FileFilter `json:"filters"`
}

// OpenDialogOptions 打开对话框参数
type OpenDialogOptions struct {
	Title       string       `json:"title"`
	DefaultPath string       `json:"defaultPath"`
	Filters     []FileFilter `json:"filters"`
	Multiple    bool         `json:"multiple"`
}

// MessageBoxOptions 消息框参数
type MessageBoxOptions struct {
	Type          string   `json:"type"` // info, warning, error, question
	Title         string   `json:"title"`
	Message       string   `json:"message"`
	Buttons       []string `json:"buttons"`
	DefaultButton string   `json:"defaultButton"`
	CancelButton  string   `json:"cancelButton"`
}

func toWailsFilters(filters []FileFilter) []runtime.FileFilter {
	if len(filters) == 0 {
		return nil
	}
	out := make([]runtime.FileFilter, 0, len(filters))
	for _, f := range filters {
		out = append(out, runtime.FileFilter{DisplayName: f.DisplayName, Pattern: f.Pattern})
	}
	return out
}

// ShowSaveDialog 返回选择的路径，取消时为空
func (a *App) ShowSaveDialog(opts SaveDialogOptions) (string, error) {
	ctx, err := a.readyContext()
	if err != nil {
		return "", err
	}
	return runtime.SaveFileDialog(ctx, runtime.SaveDialogOptions{
		Title:            opts.Title,
		DefaultDirectory: opts.DefaultPath,
		DefaultFilename:  opts.DefaultFilename,
		Filters:          toWailsFilters(opts.Filters),
	})
}

// ShowOpenDialog 返回选择的文件列表，取消时为空
func (a *App) ShowOpenDialog(opts OpenDialogOptions) ([]string, error) {
	ctx, err := a.readyContext()
	if err != nil {
		return nil, err
	}

	dialog := runtime.OpenDialogOptions{
		Title:            opts.Title,
		DefaultDirectory: opts.DefaultPath,
		Filters:          toWailsFilters(opts.Filters),
	}

	if opts.Multiple {
		paths, err := runtime.OpenMultipleFilesDialog(ctx, dialog)
		if err != nil {
			return nil, err
		}
		return paths, nil
	}

	path, err := runtime.OpenFileDialog(ctx, dialog)
	if err != nil || path == "" {
		return []string{}, err
	}
	return []string{path}, nil
}

func dialogType(t string) runtime.DialogType {
	switch t {
	case "warning":
		return runtime.WarningDialog
	case "error":
		return runtime.ErrorDialog
	case "question":
		return runtime.QuestionDialog
	default:
		return runtime.InfoDialog
	}
}

// ShowMessageBox 返回被点击的按钮文本
func (a *App) ShowMessageBox(opts MessageBoxOptions) (string, error) {
	ctx, err := a.readyContext()
	if err != nil {
		return "", err
	}
	return runtime.MessageDialog(ctx, runtime.MessageDialogOptions{
		Type:          dialogType(opts.Type),
		Title:         opts.Title,
		Message:       opts.Message,
		Buttons:       opts.Buttons,
		DefaultButton: opts.DefaultButton,
		CancelButton:  opts.CancelButton,
	})
}

// ============================================================
// 网络状态
// ============================================================

// UpdateOnlineStatus 前端上报网络状态，广播给所有监听者
func (a *App) UpdateOnlineStatus(online bool) {
	if a.online.Swap(online) != online {
		a.logger.Info("🌐 网络状态变化", "online", online)
	}
	a.emitOnlineStatus(online)
}

// ============================================================
// 本地存储
// ============================================================

func (a *App) localStore() (store.LocalStore, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.store == nil {
		return nil, errStoreUnavailable
	}
	return a.store, nil
}

// SaveToLocalStorage 保存前端序列化后的 JSON 文本
func (a *App) SaveToLocalStorage(key, value string) error {
	s, err := a.localStore()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()

	if err := s.Set(ctx, store.DefaultNamespace, key, value); err != nil {
		a.logger.Error("❌ 保存本地数据失败", "key", key, "error", err)
		return fmt.Errorf("save %q: %w", key, err)
	}
	return nil
}

// GetFromLocalStorage 不存在时返回空字符串
func (a *App) GetFromLocalStorage(key string) (string, error) {
	s, err := a.localStore()
	if err != nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()

	record, err := s.Get(ctx, store.DefaultNamespace, key)
	if err != nil {
		return "", fmt.Errorf("load %q: %w", key, err)
	}
	if record == nil {
		return "", nil
	}
	return record.Value, nil
}

// RemoveFromLocalStorage 删除不存在的键不报错
func (a *App) RemoveFromLocalStorage(key string) error {
	s, err := a.localStore()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()

	if err := s.Delete(ctx, store.DefaultNamespace, key); err != nil {
		return fmt.Errorf("remove %q: %w", key, err)
	}
	return nil
}

// GetLocalStorageKeys 列出所有键
func (a *App) GetLocalStorageKeys() ([]string, error) {
	s, err := a.localStore()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()
	return s.Keys(ctx, store.DefaultNamespace)
}

// ============================================================
// 文件与日志
// ============================================================

// OpenPath 用系统默认程序打开文件或目录
func (a *App) OpenPath(path string) error {
	if err := a.paths.OpenPath(path); err != nil {
		a.logger.Warn("⚠️ 打开路径失败", "path", path, "error", err)
		return err
	}
	return nil
}

// OpenLogsFolder 打开日志目录
func (a *App) OpenLogsFolder() error {
	dir := utils.GetLogDir()
	a.mu.RLock()
	if a.config != nil && a.config.Logging.FilePath != "" {
		dir = filepath.Dir(a.config.Logging.FilePath)
	}
	a.mu.RUnlock()
	return a.OpenPath(dir)
}

// GetLogs 返回最近的日志，limit <= 0 时返回全部缓存
func (a *App) GetLogs(limit int) []logging.LogEntry {
	return a.logs.Broadcast.Recent(limit)
}
