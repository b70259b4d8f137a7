// Package logging 提供 slog 处理器：控制台/文件输出、日志轮转、前端日志广播。
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// ParseLevel 未知级别按 info 处理。
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func levelName(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return "ERROR"
	case l >= slog.LevelWarn:
		return "WARN"
	case l >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

// ConsoleHandler 输出 "[时间] [PID:n] [级别] 消息 k=v" 格式的单行日志。
type ConsoleHandler struct {
	level *slog.LevelVar
	out   io.Writer
	file  io.Writer

	mu    *sync.Mutex
	attrs []slog.Attr
	group string
}

// NewConsoleHandler file 为 nil 时只输出到 out。
func NewConsoleHandler(out io.Writer, file io.Writer, level *slog.LevelVar) *ConsoleHandler {
	if out == nil {
		out = os.Stdout
	}
	if level == nil {
		level = new(slog.LevelVar)
	}
	return &ConsoleHandler{
		level: level,
		out:   out,
		file:  file,
		mu:    &sync.Mutex{},
	}
}

func (h *ConsoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *ConsoleHandler) Handle(_ context.Context, r slog.Record) error {
	line := formatLine(r.Time, r.Level, formatMessage(r, h.attrs, h.group))

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.file != nil {
		if _, err := io.WriteString(h.file, line); err != nil {
			fmt.Fprintf(os.Stderr, "write log file: %v\n", err)
		}
	}
	_, err := io.WriteString(h.out, line)
	return err
}

func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &clone
}

func (h *ConsoleHandler) WithGroup(name string) slog.Handler {
	clone := *h
	if clone.group != "" {
		clone.group += "." + name
	} else {
		clone.group = name
	}
	return &clone
}

func formatLine(t time.Time, level slog.Level, message string) string {
	if t.IsZero() {
		t = time.Now()
	}
	return fmt.Sprintf("[%s] [PID:%d] [%s] %s\n",
		t.Format("2006-01-02 15:04:05.000"), os.Getpid(), levelName(level), message)
}

func formatMessage(r slog.Record, preset []slog.Attr, group string) string {
	var b strings.Builder
	b.WriteString(r.Message)

	write := func(a slog.Attr) bool {
		key := a.Key
		if group != "" {
			key = group + "." + key
		}
		fmt.Fprintf(&b, " %s=%v", key, a.Value)
		return true
	}
	for _, a := range preset {
		write(a)
	}
	r.Attrs(write)
	return b.String()
}
