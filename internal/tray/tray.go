package tray

import (
	"context"
	"fmt"
)

// DefaultID 托盘图标 ID。
const DefaultID = "main-tray"

// DefaultTooltip 托盘悬浮提示。
const DefaultTooltip = "Tiklay - Sistema de Gestión"

// Controller 表示托盘控制器。
type Controller interface {
	// SetTooltip 更新悬浮提示（配置热重载时使用）。
	SetTooltip(tooltip string)
	Stop()
}

// Options 托盘启动参数。
type Options struct {
	// ID 托盘图标标识。
	ID string

	// Icon 托盘图标内容（Windows 推荐 .ico 字节；其它平台使用 PNG）。
	Icon []byte

	// Tooltip 托盘悬浮提示文本。
	Tooltip string

	// Menu 右键菜单。
	Menu Menu

	// OnMenuClick 菜单项被点击时以菜单项 ID 调用。
	OnMenuClick func(id string)

	// OnTrayEvent 托盘图标事件（平台支持时触发）。
	OnTrayEvent func(kind EventKind)
}

// Start 校验菜单后启动系统托盘（平台相关实现）。
// 菜单构造失败属于启动期致命错误，由调用方决定退出。
func Start(ctx context.Context, opts Options) (Controller, error) {
	if err := opts.Menu.Validate(); err != nil {
		return nil, fmt.Errorf("build tray menu: %w", err)
	}
	if len(opts.Menu.Items()) == 0 {
		return nil, fmt.Errorf("build tray menu: no items")
	}
	if opts.ID == "" {
		opts.ID = DefaultID
	}
	if opts.Tooltip == "" {
		opts.Tooltip = DefaultTooltip
	}
	return start(ctx, opts)
}

// RouterOptions 把路由挂到 Options 的两个回调上。
func RouterOptions(opts Options, r *Router) Options {
	opts.OnMenuClick = func(id string) { r.HandleMenu(id) }
	opts.OnTrayEvent = func(kind EventKind) { r.HandleTray(kind) }
	return opts
}
