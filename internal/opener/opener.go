// Package opener 负责用系统默认程序打开 URL 和本地路径。
// 各平台启动命令不同，统一收口在 Command 中，调用方只依赖 URLOpener 接口。
package opener

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
)

// ErrUnsupportedPlatform 当前平台没有已知的打开命令。
var ErrUnsupportedPlatform = errors.New("unsupported platform")

// URLOpener 在默认浏览器中打开 URL。
type URLOpener interface {
	OpenURL(url string) error
}

// Launcher 启动一个分离的系统进程（不等待、不追踪）。
type Launcher interface {
	Start(name string, args ...string) error
}

// ExecLauncher 基于 os/exec 的 Launcher 实现。
type ExecLauncher struct{}

// Start 启动进程后立即释放句柄，进程退出状态不会被观察到。
func (ExecLauncher) Start(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}

// Command 返回指定平台打开 url 所用的命令和参数。
//
// windows: cmd /c start "" <url>
// darwin:  open <url>
// 类 Unix:  xdg-open <url>
func Command(goos, url string) (string, []string, error) {
	switch goos {
	case "windows":
		// start 的第一个带引号参数是窗口标题，显式传空串避免 URL 被当成标题
		return "cmd", []string{"/c", "start", "", url}, nil
	case "darwin":
		return "open", []string{url}, nil
	case "linux", "freebsd", "openbsd", "netbsd", "dragonfly":
		return "xdg-open", []string{url}, nil
	default:
		return "", nil, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, goos)
	}
}

// platformOpener 按平台命令打开 URL。
type platformOpener struct {
	goos     string
	launcher Launcher
}

// New 创建指定平台的 URLOpener。launcher 为 nil 时使用 ExecLauncher。
func New(goos string, launcher Launcher) URLOpener {
	if launcher == nil {
		launcher = ExecLauncher{}
	}
	return &platformOpener{goos: goos, launcher: launcher}
}

// Default 返回当前运行平台的 URLOpener。
func Default() URLOpener {
	return New(runtime.GOOS, ExecLauncher{})
}

// OpenURL URL 原样交给系统打开命令，是否合法由打开程序自己判断。
func (o *platformOpener) OpenURL(url string) error {
	name, args, err := Command(o.goos, url)
	if err != nil {
		return err
	}
	return o.launcher.Start(name, args...)
}
