package opener

import (
	"fmt"
	"os"

	"github.com/skratchdot/open-golang/open"
)

// PathOpener 用系统默认程序打开本地文件或目录。
type PathOpener interface {
	OpenPath(path string) error
}

// DefaultPathOpener 基于 open-golang 的实现。
type DefaultPathOpener struct {
	// start 可在测试中替换
	start func(input string) error
}

// NewPathOpener 创建 DefaultPathOpener。
func NewPathOpener() *DefaultPathOpener {
	return &DefaultPathOpener{start: open.Start}
}

// OpenPath 打开前先确认路径存在，避免系统弹出“找不到文件”的对话框。
func (p *DefaultPathOpener) OpenPath(path string) error {
	if path == "" {
		return fmt.Errorf("path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	return p.start(path)
}
