package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tiklay-desktop/internal/tray"
	"tiklay-desktop/internal/utils"
)

func newTestApp(t *testing.T, extra string) *App {
	t.Helper()

	root := t.TempDir()
	utils.SetAppDataDir(root)
	t.Cleanup(func() { utils.SetAppDataDir("") })

	path := filepath.Join(root, "test.yaml")
	content := fmt.Sprintf(`
tray:
  enabled: false
logging:
  level: debug
  file_path: %q
storage:
  path: %q
%s`, filepath.Join(root, "logs", "app.log"), filepath.Join(root, "data", "test.db"), extra)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	app, err := NewApp(path)
	require.NoError(t, err)
	t.Cleanup(app.release)
	return app
}

func TestNewApp_Bootstrap(t *testing.T) {
	app := newTestApp(t, "")

	assert.NotNil(t, app.store)
	assert.NotNil(t, app.router)
	assert.Nil(t, app.control)
	assert.Contains(t, app.capabilities, "notification")
	assert.Contains(t, app.capabilities, "process")

	assert.Equal(t, "Hello, Ana! You've been greeted from Rust!", app.Greet("Ana"))

	info := app.GetSystemInfo()
	assert.Equal(t, AppName, info.AppName)
	assert.Equal(t, Version, info.Version)
	assert.Equal(t, app.GetPlatform(), info.Platform)

	logs := app.GetLogs(0)
	require.NotEmpty(t, logs)
}

func TestNewApp_ControlEnabled(t *testing.T) {
	app := newTestApp(t, "control:\n  enabled: true\n  port: 17399\n")

	require.NotNil(t, app.control)
	assert.Contains(t, app.capabilities, "control-api")
}

func TestNewApp_WritesDefaultConfig(t *testing.T) {
	root := t.TempDir()
	utils.SetAppDataDir(root)
	defer utils.SetAppDataDir("")

	app, err := NewApp("")
	require.NoError(t, err)
	defer app.release()

	assert.Equal(t, filepath.Join(root, "config.yaml"), app.configPath)
	_, err = os.Stat(app.configPath)
	require.NoError(t, err)
	assert.Equal(t, "Tiklay - Sistema de Gestión", app.config.Tray.Tooltip)
}

func TestNewApp_MissingConfig(t *testing.T) {
	utils.SetAppDataDir(t.TempDir())
	defer utils.SetAppDataDir("")

	_, err := NewApp(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLocalStorageBindings(t *testing.T) {
	app := newTestApp(t, "")

	v, err := app.GetFromLocalStorage("students")
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, app.SaveToLocalStorage("students", `[{"id":1}]`))
	require.NoError(t, app.SaveToLocalStorage("classes", `[]`))

	v, err = app.GetFromLocalStorage("students")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1}]`, v)

	keys, err := app.GetLocalStorageKeys()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"students", "classes"}, keys)

	require.NoError(t, app.RemoveFromLocalStorage("students"))
	require.NoError(t, app.RemoveFromLocalStorage("students"))

	v, err = app.GetFromLocalStorage("students")
	require.NoError(t, err)
	assert.Empty(t, v)

	assert.Error(t, app.SaveToLocalStorage("", "x"))
}

func TestLocalStorage_Unavailable(t *testing.T) {
	app := &App{}

	assert.ErrorIs(t, app.SaveToLocalStorage("k", "v"), errStoreUnavailable)
	_, err := app.GetFromLocalStorage("k")
	assert.ErrorIs(t, err, errStoreUnavailable)
	assert.ErrorIs(t, app.RemoveFromLocalStorage("k"), errStoreUnavailable)
}

func TestShowNotification_Disabled(t *testing.T) {
	app := newTestApp(t, "notifications:\n  enabled: false\n")

	err := app.ShowNotification("Hola", "Mundo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to show notification")
}

func TestDialogs_NotReady(t *testing.T) {
	app := newTestApp(t, "")

	_, err := app.ShowSaveDialog(SaveDialogOptions{Title: "x"})
	assert.ErrorIs(t, err, errNotReady)
	_, err = app.ShowOpenDialog(OpenDialogOptions{Title: "x"})
	assert.ErrorIs(t, err, errNotReady)
	_, err = app.ShowMessageBox(MessageBoxOptions{Message: "x"})
	assert.ErrorIs(t, err, errNotReady)
}

func TestWindowRegistry_BeforeStartup(t *testing.T) {
	app := newTestApp(t, "")

	_, ok := (&windowRegistry{app: app}).Window(tray.MainWindow)
	assert.False(t, ok)

	// 窗口不存在时 show/hide 静默无操作
	assert.True(t, app.router.HandleMenu(tray.MenuShow))
	assert.True(t, app.router.HandleMenu(tray.MenuHide))
	assert.True(t, app.router.HandleTray(tray.EventDoubleClick))
	assert.False(t, app.router.HandleMenu("settings"))
}

func TestQuit_ExitsWithZero(t *testing.T) {
	app := newTestApp(t, "")

	var codes []int
	app.exit = func(code int) { codes = append(codes, code) }

	require.True(t, app.router.HandleMenu(tray.MenuQuit))
	assert.Equal(t, []int{0}, codes)

	// 退出时已释放存储
	assert.ErrorIs(t, app.SaveToLocalStorage("k", "v"), errStoreUnavailable)
	_, ok := (&windowRegistry{app: app}).Window(tray.MainWindow)
	assert.False(t, ok)
}

func TestUpdateOnlineStatus(t *testing.T) {
	app := newTestApp(t, "")

	assert.True(t, app.online.Load())
	app.UpdateOnlineStatus(false)
	assert.False(t, app.online.Load())
	app.UpdateOnlineStatus(true)
	assert.True(t, app.online.Load())
}

func TestBuildAppMenu(t *testing.T) {
	app := newTestApp(t, "")

	m := app.buildAppMenu()
	var labels []string
	for _, item := range m.Items {
		if item.Label != "" {
			labels = append(labels, item.Label)
		}
	}
	assert.Subset(t, labels, []string{"Archivo", "Vista", "Herramientas", "Ayuda"})

	for _, item := range m.Items {
		switch item.Label {
		case "Archivo":
			require.NotNil(t, item.SubMenu)
			assert.Equal(t, "Nuevo Estudiante", item.SubMenu.Items[0].Label)
			assert.NotNil(t, item.SubMenu.Items[0].Accelerator)
		case "Vista":
			require.NotNil(t, item.SubMenu)
			var view []string
			for _, sub := range item.SubMenu.Items {
				if sub.Label != "" {
					view = append(view, sub.Label)
				}
			}
			assert.Equal(t, []string{"Recargar", "Forzar recarga", "Pantalla completa"}, view)
		}
	}

	// 窗口未就绪时视图操作静默忽略
	app.reloadWindow(false)
	app.reloadWindow(true)
	app.toggleFullscreen()
}

func TestRootCmd_Version(t *testing.T) {
	for _, args := range [][]string{{"version"}, {"--version"}} {
		var out bytes.Buffer
		cmd := newRootCmd()
		cmd.SetOut(&out)
		cmd.SetArgs(args)

		require.NoError(t, cmd.Execute())
		assert.Contains(t, out.String(), "Version: "+Version)
	}
}

type stubNotifier struct {
	err error
}

func (s *stubNotifier) Notify(title, body string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "n-1", nil
}

type emitted struct {
	name string
	data []interface{}
}

func TestNotificationEvent_FromControlAPI(t *testing.T) {
	app := newTestApp(t, "control:\n  enabled: true\n  port: 17398\n")

	var events []emitted
	app.events = func(_ context.Context, name string, data ...interface{}) {
		events = append(events, emitted{name: name, data: data})
	}
	app.wireServices(&stubNotifier{})
	require.NotNil(t, app.control)

	app.mu.Lock()
	app.ctx = context.Background()
	app.mu.Unlock()

	req := httptest.NewRequest(http.MethodPost, "/api/notify", strings.NewReader(`{"title":"Hola","body":"Mundo"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	app.control.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, events, 1)
	assert.Equal(t, EventNotification, events[0].name)
	require.Len(t, events[0].data, 1)
	assert.Equal(t, map[string]string{"id": "n-1", "title": "Hola", "body": "Mundo"}, events[0].data[0])

	// 前端绑定走同一条路径
	require.NoError(t, app.ShowNotification("Aviso", "Clase"))
	require.Len(t, events, 2)
	assert.Equal(t, EventNotification, events[1].name)
}

func TestNotificationEvent_NotEmittedOnFailure(t *testing.T) {
	app := newTestApp(t, "")

	var events []emitted
	app.events = func(_ context.Context, name string, data ...interface{}) {
		events = append(events, emitted{name: name, data: data})
	}
	app.wireServices(&stubNotifier{err: errors.New("boom")})

	app.mu.Lock()
	app.ctx = context.Background()
	app.mu.Unlock()

	assert.Error(t, app.ShowNotification("Hola", "Mundo"))
	assert.Empty(t, events)
}
