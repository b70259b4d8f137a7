// app_events.go - Wails 事件发射
// 将 Go 后端状态变化通知到前端

package main

// 事件名称常量
const (
	EventMenuAction          = "menu-action"
	EventExportData          = "export-data"
	EventImportData          = "import-data"
	EventOnlineStatusChanged = "online-status-changed"
	EventNotification        = "notification"
	EventConfigReloaded      = "config:reloaded"
)

// 应用菜单动作
const (
	MenuActionNewStudent = "new-student"
	MenuActionNewClass   = "new-class"
	MenuActionSyncNow    = "sync-now"
)

// emit 上下文未就绪时丢弃事件
func (a *App) emit(name string, data ...interface{}) {
	ctx := a.context()
	if ctx == nil {
		return
	}
	a.events(ctx, name, data...)
}

// emitMenuAction 发送应用菜单动作到前端
func (a *App) emitMenuAction(action string) {
	if a.logger != nil {
		a.logger.Debug("📡 [Wails Event] 菜单动作", "action", action)
	}
	a.emit(EventMenuAction, action)
}

// emitNotification 通知已显示，前端可同步展示
func (a *App) emitNotification(id, title, body string) {
	a.emit(EventNotification, map[string]string{
		"id":    id,
		"title": title,
		"body":  body,
	})
}

// emitOnlineStatus 广播网络状态
func (a *App) emitOnlineStatus(online bool) {
	a.emit(EventOnlineStatusChanged, online)
}

// emitConfigReloaded 通知前端配置已重载
func (a *App) emitConfigReloaded() {
	a.emit(EventConfigReloaded)
}
