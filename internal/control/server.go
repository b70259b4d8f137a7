// Package control 提供仅监听回环地址的本地控制 API。
// 脚本或第二个启动的实例可以通过它调用命令端点、唤起主窗口。
package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/net/netutil"

	"tiklay-desktop/internal/commands"
	"tiklay-desktop/internal/tray"
)

// Commands 控制 API 用到的命令端点。
type Commands interface {
	Greet(name string) string
	OpenInBrowser(url string) error
	SystemInfo() commands.SystemInfo
	ShowNotification(title, body string) (string, error)
}

// EventRouter 托盘事件路由。
type EventRouter interface {
	HandleMenu(id string) bool
	HandleTray(kind tray.EventKind) bool
}

// Options 服务器参数。
type Options struct {
	Host     string
	Port     int
	MaxConns int
	Token    string
}

// Server 本地控制 API 服务器。
type Server struct {
	opts   Options
	cmds   Commands
	router EventRouter
	logger *slog.Logger
	engine *gin.Engine

	mu       sync.Mutex
	srv      *http.Server
	listener net.Listener
}

// New 创建服务器（未监听）。
func New(opts Options, cmds Commands, router EventRouter, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		opts:   opts,
		cmds:   cmds,
		router: router,
		logger: logger,
	}
	s.engine = s.buildEngine()
	return s
}

// Handler 返回 HTTP 处理器（测试用）。
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Addr 返回实际监听地址，未启动时为空。
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Start 开始监听，服务在后台 goroutine 中运行。
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.srv != nil {
		return errors.New("control server already started")
	}

	addr := net.JoinHostPort(s.opts.Host, strconv.Itoa(s.opts.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	if s.opts.MaxConns > 0 {
		ln = netutil.LimitListener(ln, s.opts.MaxConns)
	}

	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.srv = srv
	s.listener = ln

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("❌ 控制 API 服务异常退出", "error", err)
		}
	}()

	s.logger.Info("🔌 控制 API 已启动", "addr", ln.Addr().String())
	return nil
}

// Shutdown 优雅关闭，超时后强制关闭。
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.srv = nil
	s.listener = nil
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	if err := srv.Shutdown(ctx); err != nil {
		_ = srv.Close()
		return err
	}
	return nil
}
