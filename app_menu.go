// app_menu.go - 应用菜单（Archivo / Editar / Vista / Herramientas / Ayuda）

package main

import (
	"fmt"
	goruntime "runtime"

	"tiklay-desktop/internal/tray"

	"github.com/wailsapp/wails/v2/pkg/menu"
	"github.com/wailsapp/wails/v2/pkg/menu/keys"
	"github.com/wailsapp/wails/v2/pkg/runtime"
)

var dataFilters = []runtime.FileFilter{
	{DisplayName: "JSON Files", Pattern: "*.json"},
	{DisplayName: "CSV Files", Pattern: "*.csv"},
}

func (a *App) buildAppMenu() *menu.Menu {
	appMenu := menu.NewMenu()
	if goruntime.GOOS == "darwin" {
		appMenu.Append(menu.AppMenu())
	}

	file := appMenu.AddSubmenu("Archivo")
	file.AddText("Nuevo Estudiante", keys.CmdOrCtrl("n"), func(_ *menu.CallbackData) {
		a.emitMenuAction(MenuActionNewStudent)
	})
	file.AddText("Nueva Clase", keys.Combo("n", keys.CmdOrCtrlKey, keys.ShiftKey), func(_ *menu.CallbackData) {
		a.emitMenuAction(MenuActionNewClass)
	})
	file.AddSeparator()
	file.AddText("Sincronizar Ahora", keys.CmdOrCtrl("r"), func(_ *menu.CallbackData) {
		a.emitMenuAction(MenuActionSyncNow)
	})
	file.AddSeparator()
	file.AddText("Salir", keys.CmdOrCtrl("q"), func(_ *menu.CallbackData) {
		a.router.HandleMenu(tray.MenuQuit)
	})

	appMenu.Append(menu.EditMenu())

	// 缩放与开发者工具没有对应的运行时接口
	view := appMenu.AddSubmenu("Vista")
	view.AddText("Recargar", keys.Key("f5"), func(_ *menu.CallbackData) {
		a.reloadWindow(false)
	})
	view.AddText("Forzar recarga", keys.Combo("r", keys.CmdOrCtrlKey, keys.ShiftKey), func(_ *menu.CallbackData) {
		a.reloadWindow(true)
	})
	view.AddSeparator()
	view.AddText("Pantalla completa", keys.Key("f11"), func(_ *menu.CallbackData) {
		a.toggleFullscreen()
	})

	tools := appMenu.AddSubmenu("Herramientas")
	tools.AddText("Exportar Datos", nil, func(_ *menu.CallbackData) {
		a.exportData()
	})
	tools.AddText("Importar Datos", nil, func(_ *menu.CallbackData) {
		a.importData()
	})
	tools.AddSeparator()
	tools.AddText("Abrir carpeta de registros", nil, func(_ *menu.CallbackData) {
		_ = a.OpenLogsFolder()
	})

	help := appMenu.AddSubmenu("Ayuda")
	help.AddText("Acerca de Tiklay", nil, func(_ *menu.CallbackData) {
		a.showAbout()
	})

	return appMenu
}

// reloadWindow force 时重新加载整个前端应用
func (a *App) reloadWindow(force bool) {
	ctx, err := a.readyContext()
	if err != nil {
		return
	}
	if force {
		runtime.WindowReloadApp(ctx)
		return
	}
	runtime.WindowReload(ctx)
}

func (a *App) toggleFullscreen() {
	ctx, err := a.readyContext()
	if err != nil {
		return
	}
	if runtime.WindowIsFullscreen(ctx) {
		runtime.WindowUnfullscreen(ctx)
		return
	}
	runtime.WindowFullscreen(ctx)
}

// exportData 选择保存路径后交给前端写出数据
func (a *App) exportData() {
	ctx, err := a.readyContext()
	if err != nil {
		return
	}
	path, err := runtime.SaveFileDialog(ctx, runtime.SaveDialogOptions{
		Title:           "Exportar Datos",
		DefaultFilename: "tiklay-export.json",
		Filters:         dataFilters,
	})
	if err != nil {
		a.logger.Warn("⚠️ 导出对话框失败", "error", err)
		return
	}
	if path == "" {
		return
	}
	a.logger.Info("📤 导出数据", "path", path)
	a.emit(EventExportData, path)
}

// importData 选择文件后交给前端读取
func (a *App) importData() {
	ctx, err := a.readyContext()
	if err != nil {
		return
	}
	path, err := runtime.OpenFileDialog(ctx, runtime.OpenDialogOptions{
		Title:   "Importar Datos",
		Filters: dataFilters,
	})
	if err != nil {
		a.logger.Warn("⚠️ 导入对话框失败", "error", err)
		return
	}
	if path == "" {
		return
	}
	a.logger.Info("📥 导入数据", "path", path)
	a.emit(EventImportData, path)
}

func (a *App) showAbout() {
	ctx, err := a.readyContext()
	if err != nil {
		return
	}
	_, _ = runtime.MessageDialog(ctx, runtime.MessageDialogOptions{
		Type:    runtime.InfoDialog,
		Title:   "Acerca de Tiklay",
		Message: fmt.Sprintf("Tiklay - Sistema de Gestión\nVersión %s", Version),
	})
}
