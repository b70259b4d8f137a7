package utils

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppDirName 应用目录名（Windows/macOS）。
const AppDirName = "Tiklay"

// appDataDir 可在测试中通过 SetAppDataDir 覆盖
var appDataDir string

// SetAppDataDir 覆盖应用数据目录，传空串恢复默认。
func SetAppDataDir(dir string) {
	appDataDir = dir
}

// GetAppDataDir 获取应用数据目录（跨平台）
// Windows: %APPDATA%\Tiklay
// macOS: ~/Library/Application Support/Tiklay
// Linux: $XDG_DATA_HOME/tiklay 或 ~/.local/share/tiklay
func GetAppDataDir() string {
	if appDataDir != "" {
		return appDataDir
	}
	return platformAppDataDir(runtime.GOOS, os.Getenv)
}

func platformAppDataDir(goos string, getenv func(string) string) string {
	homeDir, _ := os.UserHomeDir()

	switch goos {
	case "windows":
		baseDir := getenv("APPDATA")
		if baseDir == "" {
			baseDir = filepath.Join(getenv("USERPROFILE"), "AppData", "Roaming")
		}
		return filepath.Join(baseDir, AppDirName)

	case "darwin":
		return filepath.Join(homeDir, "Library", "Application Support", AppDirName)

	case "linux":
		if xdg := getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, "tiklay")
		}
		return filepath.Join(homeDir, ".local", "share", "tiklay")

	default:
		return filepath.Join(homeDir, ".tiklay")
	}
}

// GetDataDir 数据库目录。
func GetDataDir() string {
	return filepath.Join(GetAppDataDir(), "data")
}

// GetLogDir 日志目录。
func GetLogDir() string {
	return filepath.Join(GetAppDataDir(), "logs")
}

// GetConfigPath 用户配置文件路径。
func GetConfigPath() string {
	return filepath.Join(GetAppDataDir(), "config.yaml")
}

// EnsureAppDirs 创建应用目录、数据目录和日志目录。
func EnsureAppDirs() error {
	for _, dir := range []string{GetAppDataDir(), GetDataDir(), GetLogDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}
