// app.go - Wails 应用核心结构
// 封装托盘、命令端点、本地存储和控制 API，提供生命周期管理

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"tiklay-desktop/config"
	"tiklay-desktop/internal/commands"
	"tiklay-desktop/internal/control"
	"tiklay-desktop/internal/logging"
	"tiklay-desktop/internal/notify"
	"tiklay-desktop/internal/opener"
	"tiklay-desktop/internal/store"
	"tiklay-desktop/internal/tray"
	"tiklay-desktop/internal/utils"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// App 是 Wails 应用的核心结构
// 它封装了所有业务组件，并暴露方法给前端调用
type App struct {
	// Wails 上下文
	ctx context.Context

	// 核心组件
	config        *config.Config
	configPath    string
	configWatcher *config.ConfigWatcher
	logs          *logging.Setup
	logger        *slog.Logger
	events        logging.Sink

	store    store.LocalStore
	notifier *notify.DesktopNotifier
	commands *commands.Service
	paths    opener.PathOpener

	router  *tray.Router
	tray    tray.Controller
	control *control.Server

	// 启动时记录的能力列表
	capabilities []string

	startTime time.Time

	// 并发控制
	mu          sync.RWMutex
	quitting    int32
	online      atomic.Bool
	releaseOnce sync.Once
	exit        func(code int)
}

// NewApp 按顺序完成：配置 → 日志 → 存储 → 服务
// 此阶段不依赖 Wails 上下文
func NewApp(configPath string) (*App, error) {
	a := &App{
		startTime: time.Now(),
		exit:      os.Exit,
		events:    logging.WailsSink,
	}
	a.online.Store(true)

	// 1. 加载配置
	cfg, path, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	a.config = cfg
	a.configPath = path

	// 2. 初始化日志
	a.logs = logging.New(logOptions(cfg.Logging), os.Stdout, logging.WailsSink)
	a.logger = a.logs.Logger
	slog.SetDefault(a.logger)

	a.logger.Info("🚀 Tiklay 桌面端启动中...",
		"version", Version,
		"config_file", a.configPath)

	// 3. 打开本地存储（失败不影响启动，相关接口返回错误）
	a.setupStore()

	// 4. 构建服务
	a.setupServices()

	return a, nil
}

// loadConfig 解析配置路径并加载。
// 未指定路径时使用应用目录下的 config.yaml，不存在则写入内置默认配置。
func loadConfig(configPath string) (*config.Config, string, error) {
	tempLogger := slog.Default()

	// 确保应用目录存在
	if err := utils.EnsureAppDirs(); err != nil {
		tempLogger.Warn("⚠️ 无法创建应用目录", "error", err)
	} else {
		tempLogger.Info("📁 应用目录已就绪",
			"appdir", utils.GetAppDataDir(),
			"data", utils.GetDataDir(),
			"logs", utils.GetLogDir())
	}

	if configPath == "" {
		configPath = utils.GetConfigPath()
		created, err := config.EnsureConfigFile(configPath, defaultConfigContent)
		if err != nil {
			// 无法落盘时直接使用内置配置
			tempLogger.Warn("⚠️ 无法写入默认配置，使用内置配置", "error", err)
			cfg, perr := config.Parse(defaultConfigContent)
			if perr != nil {
				return nil, "", fmt.Errorf("parse embedded config: %w", perr)
			}
			return cfg, "", nil
		}
		if created {
			tempLogger.Info("📝 已生成默认配置文件", "path", configPath)
		}
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, "", err
	}
	return cfg, configPath, nil
}

func logOptions(c config.LoggingConfig) logging.Options {
	return logging.Options{
		Level:           c.Level,
		FileEnabled:     c.FileEnabled,
		FilePath:        c.FilePath,
		MaxFileSize:     c.MaxFileSize,
		MaxFiles:        c.MaxFiles,
		CompressRotated: c.CompressRotated,
		RingSize:        1000,
	}
}

// setupStore 打开 SQLite 键值存储
func (a *App) setupStore() {
	s, err := store.Open(a.config.Storage.Driver, a.config.Storage.Path)
	if err != nil {
		a.logger.Error("❌ 本地存储初始化失败", "driver", a.config.Storage.Driver, "error", err)
		return
	}
	a.store = s
	a.logger.Info("💾 本地存储已就绪", "driver", a.config.Storage.Driver, "path", a.config.Storage.Path)
}

// setupServices 构建命令端点、托盘路由与控制 API
func (a *App) setupServices() {
	a.notifier = notify.NewDesktopNotifier(a.config.Notifications.Enabled, a.config.Notifications.IconPath, a.logger)
	a.wireServices(a.notifier)
}

func (a *App) wireServices(notifier notify.Notifier) {
	a.commands = commands.New(
		commands.BuildInfo{Version: Version, AppName: AppName},
		opener.Default(),
		notifier,
		a.logger,
	)
	a.commands.OnNotificationShown(a.emitNotification)
	a.paths = opener.NewPathOpener()
	a.router = tray.NewRouter(&windowRegistry{app: a}, a.exitProcess)

	if a.config.Control.Enabled {
		a.control = control.New(control.Options{
			Host:     a.config.Control.Host,
			Port:     a.config.Control.Port,
			MaxConns: a.config.Control.MaxConns,
			Token:    a.config.Control.Token,
		}, a.commands, a.router, a.logger)
	}

	// 原生能力：通知、对话框、文件系统、外部打开、系统信息、进程控制
	a.capabilities = []string{"notification", "dialog", "fs", "shell", "os", "process"}
	if a.control != nil {
		a.capabilities = append(a.capabilities, "control-api")
	}
}

// startup 在 Wails 应用启动时调用
func (a *App) startup(ctx context.Context) {
	a.mu.Lock()
	a.ctx = ctx
	a.mu.Unlock()

	// 1. 托盘（菜单构造失败属于致命错误）
	if a.config.Tray.Enabled {
		if err := a.setupTray(ctx); err != nil {
			a.logger.Error("❌ 托盘初始化失败", "error", err)
			a.release()
			a.exit(1)
			return
		}
	}

	// 2. 控制 API
	if a.control != nil {
		if err := a.control.Start(); err != nil {
			a.logger.Error("❌ 控制 API 启动失败", "error", err)
		}
	}

	// 3. 配置热重载
	a.setupConfigReload()

	a.logger.Info("🧩 已注册原生能力", "capabilities", strings.Join(a.capabilities, ","))
	a.logger.Info("✅ Tiklay 启动完成")
}

// setupTray 构建菜单并启动系统托盘
func (a *App) setupTray(ctx context.Context) error {
	labels := tray.Labels{
		Show: a.config.Tray.Labels.Show,
		Hide: a.config.Tray.Labels.Hide,
		Quit: a.config.Tray.Labels.Quit,
	}
	opts := tray.RouterOptions(tray.Options{
		ID:      a.config.Tray.ID,
		Icon:    trayIcon(),
		Tooltip: a.config.Tray.Tooltip,
		Menu:    tray.DefaultMenu(labels),
	}, a.router)

	ctrl, err := tray.Start(ctx, opts)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.tray = ctrl
	a.mu.Unlock()

	a.logger.Info("📌 系统托盘已启动", "id", opts.ID)
	return nil
}

// setupConfigReload 监听配置文件变化
func (a *App) setupConfigReload() {
	if a.configPath == "" {
		return
	}

	watcher, err := config.NewConfigWatcher(a.configPath, a.logger)
	if err != nil {
		a.logger.Warn("⚠️ 配置热重载不可用", "error", err)
		return
	}

	watcher.AddReloadCallback(func(newCfg *config.Config) {
		a.mu.Lock()
		a.config = newCfg
		trayCtrl := a.tray
		a.mu.Unlock()

		a.logs.SetLevel(newCfg.Logging.Level)
		a.notifier.SetEnabled(newCfg.Notifications.Enabled)
		if trayCtrl != nil {
			trayCtrl.SetTooltip(newCfg.Tray.Tooltip)
		}

		a.logger.Info("🔄 配置已重新加载")
		a.emitConfigReloaded()
	})

	a.mu.Lock()
	a.configWatcher = watcher
	a.mu.Unlock()

	a.logger.Info("🔄 配置热重载已启用")
}

// domReady 在前端 DOM 准备就绪时调用
func (a *App) domReady(ctx context.Context) {
	// 开始批量推送日志到前端
	a.logs.Broadcast.Emitter.Start(ctx)
	a.emitOnlineStatus(a.online.Load())
}

// beforeClose 在窗口关闭前调用，返回 true 阻止关闭
// 开启 hide_on_close 时 Wails 直接隐藏窗口，不会走到这里
func (a *App) beforeClose(ctx context.Context) bool {
	if !atomic.CompareAndSwapInt32(&a.quitting, 0, 1) {
		return false
	}

	// 注意：Quit 可能触发同步回调，避免在 BeforeClose 回调里阻塞 UI 线程。
	go runtime.Quit(ctx)
	return true
}

// shutdown 在 Wails 应用关闭时调用
func (a *App) shutdown(ctx context.Context) {
	atomic.StoreInt32(&a.quitting, 1)
	a.logger.Info("🛑 正在关闭 Tiklay...")

	if a.control != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := a.control.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("控制 API 关闭失败", "error", err)
		}
	}

	a.release()
}

// exitProcess 托盘“退出”：释放本地资源后立即以给定退出码结束进程
func (a *App) exitProcess(code int) {
	atomic.StoreInt32(&a.quitting, 1)
	a.logger.Info("👋 收到退出请求", "code", code)
	a.release()
	a.exit(code)
}

// release 释放托盘、配置监听、存储和日志，可重复调用
func (a *App) release() {
	a.releaseOnce.Do(func() {
		a.mu.Lock()
		trayCtrl := a.tray
		watcher := a.configWatcher
		s := a.store
		a.tray = nil
		a.configWatcher = nil
		a.store = nil
		a.mu.Unlock()

		if trayCtrl != nil {
			trayCtrl.Stop()
		}
		if watcher != nil {
			_ = watcher.Close()
		}
		if s != nil {
			if err := s.Close(); err != nil {
				a.logger.Error("本地存储关闭失败", "error", err)
			}
		}

		a.logger.Info("✅ Tiklay 已关闭")
		if err := a.logs.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "关闭日志文件失败: %v\n", err)
		}
	})
}

// context 返回 Wails 上下文，启动前为 nil
func (a *App) context() context.Context {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.ctx
}

var errNotReady = errors.New("application window is not ready")

// readyContext 对话框等需要窗口的操作使用
func (a *App) readyContext() (context.Context, error) {
	ctx := a.context()
	if ctx == nil || atomic.LoadInt32(&a.quitting) == 1 {
		return nil, errNotReady
	}
	return ctx, nil
}
