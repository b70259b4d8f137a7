// app_window.go - 托盘路由使用的窗口注册表（Wails 实现）

package main

import (
	"context"
	"sync/atomic"

	"tiklay-desktop/internal/tray"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// windowRegistry 只有一个主窗口，Wails 上下文就绪且未在退出时才可用
type windowRegistry struct {
	app *App
}

func (r *windowRegistry) Window(name string) (tray.Window, bool) {
	if name != tray.MainWindow {
		return nil, false
	}
	ctx := r.app.context()
	if ctx == nil || atomic.LoadInt32(&r.app.quitting) == 1 {
		return nil, false
	}
	return wailsWindow{ctx: ctx}, true
}

// wailsWindow Wails 的窗口操作不返回错误
type wailsWindow struct {
	ctx context.Context
}

func (w wailsWindow) Show() error {
	runtime.WindowShow(w.ctx)
	return nil
}

func (w wailsWindow) Hide() error {
	runtime.WindowHide(w.ctx)
	return nil
}

// Focus 先取消最小化，再短暂置顶把窗口带到前台
func (w wailsWindow) Focus() error {
	runtime.WindowUnminimise(w.ctx)
	runtime.WindowSetAlwaysOnTop(w.ctx, true)
	runtime.WindowSetAlwaysOnTop(w.ctx, false)
	return nil
}

func (w wailsWindow) Center() error {
	runtime.WindowCenter(w.ctx)
	return nil
}
