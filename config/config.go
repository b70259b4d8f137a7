package config

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"tiklay-desktop/internal/utils"
)

type Config struct {
	App           AppConfig           `yaml:"app"`
	Window        WindowConfig        `yaml:"window"`
	Tray          TrayConfig          `yaml:"tray"`
	Logging       LoggingConfig       `yaml:"logging"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Storage       StorageConfig       `yaml:"storage"`
	Control       ControlConfig       `yaml:"control"`
}

type AppConfig struct {
	Name  string `yaml:"name"`  // Display name used in dialogs and the About box
	Title string `yaml:"title"` // Main window title
}

type WindowConfig struct {
	Width       int  `yaml:"width"`
	Height      int  `yaml:"height"`
	MinWidth    int  `yaml:"min_width"`
	MinHeight   int  `yaml:"min_height"`
	StartHidden bool `yaml:"start_hidden"`  // Start minimised to tray
	HideOnClose bool `yaml:"hide_on_close"` // Closing the window hides it instead of quitting
}

// TrayConfig 托盘配置。菜单项 ID 固定，只有显示文本可配置。
type TrayConfig struct {
	Enabled bool       `yaml:"enabled"`
	ID      string     `yaml:"id"`
	Tooltip string     `yaml:"tooltip"`
	Labels  MenuLabels `yaml:"labels"`
}

type MenuLabels struct {
	Show string `yaml:"show"`
	Hide string `yaml:"hide"`
	Quit string `yaml:"quit"`
}

type LoggingConfig struct {
	Level           string `yaml:"level"`            // debug, info, warn, error
	FileEnabled     bool   `yaml:"file_enabled"`     // Enable file logging
	FilePath        string `yaml:"file_path"`        // Log file path, empty = <appdir>/logs/app.log
	MaxFileSize     string `yaml:"max_file_size"`    // Max file size (e.g., "10MB")
	MaxFiles        int    `yaml:"max_files"`        // Max number of rotated files to keep
	CompressRotated bool   `yaml:"compress_rotated"` // Compress rotated log files (brotli)
}

// NotificationsConfig 桌面通知配置
type NotificationsConfig struct {
	Enabled  bool   `yaml:"enabled"`
	IconPath string `yaml:"icon_path"` // 可选，通知图标文件路径
}

// StorageConfig 本地存储配置
type StorageConfig struct {
	Driver string `yaml:"driver"` // "sqlite" (modernc) 或 "sqlite3" (mattn, cgo)
	Path   string `yaml:"path"`   // 空 = <appdir>/data/tiklay.db
}

// ControlConfig 本地控制 API 配置（仅监听回环地址）
type ControlConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	MaxConns int    `yaml:"max_conns"`
	Token    string `yaml:"token,omitempty"` // Bearer token，空则不鉴权
}

// Default 返回全部默认值的配置。
func Default() *Config {
	c := &Config{
		Tray: TrayConfig{Enabled: true},
		Logging: LoggingConfig{
			FileEnabled:     true,
			CompressRotated: true,
		},
		Notifications: NotificationsConfig{Enabled: true},
	}
	c.setDefaults()
	return c
}

// Parse 在默认值之上解析 YAML，未出现的字段保留默认值。
func Parse(data []byte) (*Config, error) {
	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.setDefaults()

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// EnsureConfigFile 配置文件不存在时写入内置默认配置。返回是否新建。
func EnsureConfigFile(path string, defaultContent []byte) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to stat config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, defaultContent, 0o644); err != nil {
		return false, fmt.Errorf("failed to write config file: %w", err)
	}
	return true, nil
}

// setDefaults sets default values for configuration
func (c *Config) setDefaults() {
	if c.App.Name == "" {
		c.App.Name = "Tiklay"
	}
	if c.App.Title == "" {
		c.App.Title = "Tiklay - Sistema de Gestión"
	}

	if c.Window.Width == 0 {
		c.Window.Width = 1400
	}
	if c.Window.Height == 0 {
		c.Window.Height = 900
	}
	if c.Window.MinWidth == 0 {
		c.Window.MinWidth = 800
	}
	if c.Window.MinHeight == 0 {
		c.Window.MinHeight = 600
	}

	if c.Tray.ID == "" {
		c.Tray.ID = "main-tray"
	}
	if c.Tray.Tooltip == "" {
		c.Tray.Tooltip = "Tiklay - Sistema de Gestión"
	}
	if c.Tray.Labels.Show == "" {
		c.Tray.Labels.Show = "Mostrar Tiklay"
	}
	if c.Tray.Labels.Hide == "" {
		c.Tray.Labels.Hide = "Ocultar Tiklay"
	}
	if c.Tray.Labels.Quit == "" {
		c.Tray.Labels.Quit = "Salir"
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.FilePath == "" {
		c.Logging.FilePath = filepath.Join(utils.GetLogDir(), "app.log")
	}
	if c.Logging.MaxFileSize == "" {
		c.Logging.MaxFileSize = "10MB"
	}
	if c.Logging.MaxFiles == 0 {
		c.Logging.MaxFiles = 5
	}

	if c.Storage.Driver == "" {
		c.Storage.Driver = "sqlite"
	}
	if c.Storage.Path == "" {
		c.Storage.Path = filepath.Join(utils.GetDataDir(), "tiklay.db")
	}

	if c.Control.Host == "" {
		c.Control.Host = "127.0.0.1"
	}
	if c.Control.Port == 0 {
		c.Control.Port = 17321
	}
	if c.Control.MaxConns == 0 {
		c.Control.MaxConns = 16
	}
}

func (c *Config) validate() error {
	if c.Window.Width < c.Window.MinWidth || c.Window.Height < c.Window.MinHeight {
		return fmt.Errorf("window size %dx%d is smaller than minimum %dx%d",
			c.Window.Width, c.Window.Height, c.Window.MinWidth, c.Window.MinHeight)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid logging level: %q", c.Logging.Level)
	}
	if c.Logging.MaxFiles < 0 {
		return fmt.Errorf("logging.max_files must not be negative")
	}

	switch c.Storage.Driver {
	case "sqlite", "sqlite3":
	default:
		return fmt.Errorf("invalid storage driver: %q (want sqlite or sqlite3)", c.Storage.Driver)
	}

	if c.Control.Port < 1 || c.Control.Port > 65535 {
		return fmt.Errorf("invalid control port: %d", c.Control.Port)
	}
	if c.Control.MaxConns < 1 {
		return fmt.Errorf("control.max_conns must be positive")
	}
	if c.Control.Enabled {
		ip := net.ParseIP(c.Control.Host)
		if c.Control.Host != "localhost" && (ip == nil || !ip.IsLoopback()) {
			return fmt.Errorf("control.host must be a loopback address, got %q", c.Control.Host)
		}
	}

	return nil
}

// ConfigWatcher handles automatic configuration reloading
type ConfigWatcher struct {
	configPath    string
	config        *Config
	mutex         sync.RWMutex
	watcher       *fsnotify.Watcher
	logger        *slog.Logger
	callbacks     []func(*Config)
	lastModTime   time.Time
	debounceTimer *time.Timer
	debounce      time.Duration
}

// NewConfigWatcher creates a new configuration watcher
func NewConfigWatcher(configPath string, logger *slog.Logger) (*ConfigWatcher, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load initial config: %w", err)
	}

	fileInfo, err := os.Stat(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get file info: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	cw := &ConfigWatcher{
		configPath:  configPath,
		config:      config,
		watcher:     watcher,
		logger:      logger,
		lastModTime: fileInfo.ModTime(),
		debounce:    500 * time.Millisecond,
	}

	if err := watcher.Add(configPath); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch config file: %w", err)
	}

	go cw.watchLoop()

	return cw, nil
}

// GetConfig returns the current configuration (thread-safe)
func (cw *ConfigWatcher) GetConfig() *Config {
	cw.mutex.RLock()
	defer cw.mutex.RUnlock()
	return cw.config
}

func (cw *ConfigWatcher) log() *slog.Logger {
	cw.mutex.RLock()
	defer cw.mutex.RUnlock()
	return cw.logger
}

// AddReloadCallback adds a callback function that will be called when config is reloaded
func (cw *ConfigWatcher) AddReloadCallback(callback func(*Config)) {
	cw.mutex.Lock()
	defer cw.mutex.Unlock()
	cw.callbacks = append(cw.callbacks, callback)
}

func (cw *ConfigWatcher) watchLoop() {
	for {
		select {
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Chmod) {
				fileInfo, err := os.Stat(cw.configPath)
				if err != nil {
					cw.log().Warn(fmt.Sprintf("⚠️ 无法获取配置文件信息: %v", err))
					continue
				}

				cw.mutex.Lock()
				if !fileInfo.ModTime().After(cw.lastModTime) {
					cw.mutex.Unlock()
					continue
				}
				cw.lastModTime = fileInfo.ModTime()

				// 编辑器保存时可能连续触发多次写事件
				if cw.debounceTimer != nil {
					cw.debounceTimer.Stop()
				}
				cw.debounceTimer = time.AfterFunc(cw.debounce, func() {
					cw.log().Info(fmt.Sprintf("🔄 检测到配置文件变更，正在重新加载... - 文件: %s", cw.configPath))
					if err := cw.reloadConfig(); err != nil {
						cw.log().Error(fmt.Sprintf("❌ 配置文件重新加载失败: %v", err))
					} else {
						cw.log().Info("✅ 配置文件重新加载成功")
					}
				})
				cw.mutex.Unlock()
			}

			// 部分编辑器保存时先删除/重命名再创建
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				time.Sleep(100 * time.Millisecond)
				if _, err := os.Stat(cw.configPath); err == nil {
					_ = cw.watcher.Add(cw.configPath)
					cw.log().Info(fmt.Sprintf("🔄 重新监听配置文件: %s", cw.configPath))
				}
			}

		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			cw.log().Error(fmt.Sprintf("⚠️ 配置文件监听错误: %v", err))
		}
	}
}

// reloadConfig reloads the configuration from file
func (cw *ConfigWatcher) reloadConfig() error {
	newConfig, err := LoadConfig(cw.configPath)
	if err != nil {
		return err
	}

	cw.mutex.Lock()
	oldConfig := cw.config
	cw.config = newConfig
	callbacks := make([]func(*Config), len(cw.callbacks))
	copy(callbacks, cw.callbacks)
	cw.mutex.Unlock()

	for _, callback := range callbacks {
		callback(newConfig)
	}

	cw.logConfigChanges(oldConfig, newConfig)
	return nil
}

// logConfigChanges logs the key differences between old and new configurations
func (cw *ConfigWatcher) logConfigChanges(oldConfig, newConfig *Config) {
	logger := cw.log()

	if oldConfig.Logging.Level != newConfig.Logging.Level {
		logger.Info("📝 日志级别变更",
			"old_level", oldConfig.Logging.Level,
			"new_level", newConfig.Logging.Level)
	}

	if oldConfig.Tray.Tooltip != newConfig.Tray.Tooltip {
		logger.Info("🖱️ 托盘提示变更",
			"old_tooltip", oldConfig.Tray.Tooltip,
			"new_tooltip", newConfig.Tray.Tooltip)
	}

	if oldConfig.Notifications.Enabled != newConfig.Notifications.Enabled {
		logger.Info("🔔 桌面通知状态变更",
			"old_enabled", oldConfig.Notifications.Enabled,
			"new_enabled", newConfig.Notifications.Enabled)
	}

	if oldConfig.Tray.Labels != newConfig.Tray.Labels || oldConfig.Control != newConfig.Control ||
		oldConfig.Storage != newConfig.Storage || oldConfig.Window != newConfig.Window {
		logger.Warn("⚠️ 托盘菜单、窗口、存储或控制 API 配置已变更，需要重启应用后生效")
	}
}

// Close stops the configuration watcher
func (cw *ConfigWatcher) Close() error {
	cw.mutex.Lock()
	if cw.debounceTimer != nil {
		cw.debounceTimer.Stop()
	}
	cw.mutex.Unlock()
	return cw.watcher.Close()
}
