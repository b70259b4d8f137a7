package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Options 日志初始化参数，与 config.LoggingConfig 对应。
type Options struct {
	Level           string
	FileEnabled     bool
	FilePath        string
	MaxFileSize     string
	MaxFiles        int
	CompressRotated bool
	RingSize        int
}

// Setup 日志组件集合，关闭时按顺序释放。
type Setup struct {
	Logger    *slog.Logger
	Level     *slog.LevelVar
	Broadcast *BroadcastHandler
	Rotator   *FileRotator
}

// New 创建 控制台/文件 -> 广播 的处理器链。
// 文件日志初始化失败只告警，不影响启动。
func New(opts Options, stdout io.Writer, sink Sink) *Setup {
	level := new(slog.LevelVar)
	level.Set(ParseLevel(opts.Level))

	var rotator *FileRotator
	if opts.FileEnabled && opts.FilePath != "" {
		maxSize, err := ParseSize(opts.MaxFileSize)
		if err != nil {
			fmt.Fprintf(os.Stderr, "警告：无法解析日志文件大小配置 '%s'，使用默认值 10MB: %v\n", opts.MaxFileSize, err)
			maxSize = 10 << 20
		}
		rotator, err = NewFileRotator(opts.FilePath, maxSize, opts.MaxFiles, opts.CompressRotated)
		if err != nil {
			fmt.Fprintf(os.Stderr, "警告：无法创建日志文件轮转器: %v\n", err)
			rotator = nil
		}
	}

	var file io.Writer
	if rotator != nil {
		file = rotator
	}

	console := NewConsoleHandler(stdout, file, level)
	broadcast := NewBroadcastHandler(console, opts.RingSize, NewEventEmitter(sink))

	return &Setup{
		Logger:    slog.New(broadcast),
		Level:     level,
		Broadcast: broadcast,
		Rotator:   rotator,
	}
}

// SetLevel 热更新日志级别。
func (s *Setup) SetLevel(level string) {
	s.Level.Set(ParseLevel(level))
}

// Close 停止前端推送并关闭日志文件。
func (s *Setup) Close() error {
	s.Broadcast.Emitter.Stop()
	if s.Rotator != nil {
		_ = s.Rotator.Sync()
		return s.Rotator.Close()
	}
	return nil
}
