package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/andybalholm/brotli"
)

// ParseSize 解析 "10MB"、"512KB"、"1GB" 或纯数字字节数。
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(strings.ToUpper(s))
	if s == "" {
		return 0, fmt.Errorf("empty size")
	}

	units := []struct {
		suffix string
		mult   int64
	}{
		{"GB", 1 << 30},
		{"MB", 1 << 20},
		{"KB", 1 << 10},
		{"B", 1},
	}

	mult := int64(1)
	for _, u := range units {
		if strings.HasSuffix(s, u.suffix) {
			mult = u.mult
			s = strings.TrimSpace(strings.TrimSuffix(s, u.suffix))
			break
		}
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("size must be positive: %d", n)
	}
	return n * mult, nil
}

// FileRotator 按大小轮转的日志文件写入器。
// 轮转后的文件命名为 app-20060102-150405.000.log，开启压缩时追加 .br。
type FileRotator struct {
	mu       sync.Mutex
	path     string
	maxSize  int64
	maxFiles int
	compress bool

	file *os.File
	size int64

	now func() time.Time
}

// NewFileRotator 打开（或创建）日志文件。
func NewFileRotator(path string, maxSize int64, maxFiles int, compress bool) (*FileRotator, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	r := &FileRotator{
		path:     path,
		maxSize:  maxSize,
		maxFiles: maxFiles,
		compress: compress,
		now:      time.Now,
	}
	if err := r.open(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *FileRotator) open() error {
	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("stat log file: %w", err)
	}
	r.file = f
	r.size = info.Size()
	return nil
}

// Write 写入前检查大小，超过上限先轮转。
func (r *FileRotator) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return 0, os.ErrClosed
	}

	if r.maxSize > 0 && r.size+int64(len(p)) > r.maxSize && r.size > 0 {
		if err := r.rotate(); err != nil {
			return 0, err
		}
	}

	n, err := r.file.Write(p)
	r.size += int64(n)
	return n, err
}

func (r *FileRotator) rotate() error {
	if err := r.file.Close(); err != nil {
		return fmt.Errorf("close log file: %w", err)
	}
	r.file = nil

	ext := filepath.Ext(r.path)
	base := strings.TrimSuffix(r.path, ext)
	backup := fmt.Sprintf("%s-%s%s", base, r.now().Format("20060102-150405.000"), ext)
	if err := os.Rename(r.path, backup); err != nil {
		return fmt.Errorf("rename log file: %w", err)
	}

	if r.compress {
		if err := compressFile(backup); err != nil {
			// 压缩失败保留未压缩的备份
			fmt.Fprintf(os.Stderr, "log compress failed: %v\n", err)
		}
	}

	r.prune(base, ext)
	return r.open()
}

// prune 只保留最新的 maxFiles 个备份。
func (r *FileRotator) prune(base, ext string) {
	if r.maxFiles <= 0 {
		return
	}
	matches, err := filepath.Glob(base + "-*" + ext + "*")
	if err != nil || len(matches) <= r.maxFiles {
		return
	}
	// 时间戳格式保证字典序即时间序
	sort.Strings(matches)
	for _, old := range matches[:len(matches)-r.maxFiles] {
		_ = os.Remove(old)
	}
}

func compressFile(path string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(path + ".br")
	if err != nil {
		return err
	}

	w := brotli.NewWriterLevel(dst, brotli.DefaultCompression)
	if _, err := io.Copy(w, src); err != nil {
		w.Close()
		dst.Close()
		os.Remove(path + ".br")
		return err
	}
	if err := w.Close(); err != nil {
		dst.Close()
		os.Remove(path + ".br")
		return err
	}
	if err := dst.Close(); err != nil {
		return err
	}
	src.Close()
	return os.Remove(path)
}

// Sync 刷盘。
func (r *FileRotator) Sync() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return nil
	}
	return r.file.Sync()
}

// Close 关闭当前日志文件。
func (r *FileRotator) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}
