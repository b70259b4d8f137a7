package control

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tiklay-desktop/internal/tray"
)

// HeaderRequestID 请求 ID 响应头。
const HeaderRequestID = "X-Request-ID"

type greetRequest struct {
	Name string `json:"name"`
}

type openURLRequest struct {
	URL string `json:"url"`
}

type notifyRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (s *Server) buildEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestID(), s.accessLog())

	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api", s.auth())
	api.GET("/system-info", s.handleSystemInfo)
	api.POST("/greet", s.handleGreet)
	api.POST("/open-url", s.handleOpenURL)
	api.POST("/notify", s.handleNotify)
	api.POST("/menu/:id", s.handleMenu)
	api.POST("/tray/double-click", s.handleDoubleClick)

	return r
}

// requestID 沿用调用方传入的 X-Request-ID，否则生成新的 UUID。
func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("🔌 控制 API 请求",
			"request_id", c.GetString("request_id"),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

// auth 配置了 token 时要求 Authorization: Bearer <token>。
func (s *Server) auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.opts.Token == "" {
			c.Next()
			return
		}
		got := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if subtle.ConstantTimeCompare([]byte(got), []byte(s.opts.Token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

func (s *Server) handleSystemInfo(c *gin.Context) {
	c.JSON(http.StatusOK, s.cmds.SystemInfo())
}

func (s *Server) handleGreet(c *gin.Context) {
	var req greetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": s.cmds.Greet(req.Name)})
}

func (s *Server) handleOpenURL(c *gin.Context) {
	var req openURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.cmds.OpenInBrowser(req.URL); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleNotify(c *gin.Context) {
	var req notifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, err := s.cmds.ShowNotification(req.Title, req.Body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

// handleMenu 与点击托盘菜单项等价。quit 会先写出响应再退出进程。
func (s *Server) handleMenu(c *gin.Context) {
	id := c.Param("id")
	if id == tray.MenuQuit {
		c.JSON(http.StatusAccepted, gin.H{"handled": true})
		c.Writer.Flush()
		s.router.HandleMenu(id)
		return
	}
	if !s.router.HandleMenu(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown menu item: " + id})
		return
	}
	c.JSON(http.StatusOK, gin.H{"handled": true})
}

func (s *Server) handleDoubleClick(c *gin.Context) {
	s.router.HandleTray(tray.EventDoubleClick)
	c.JSON(http.StatusOK, gin.H{"handled": true})
}
