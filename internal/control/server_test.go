package control

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tiklay-desktop/internal/commands"
	"tiklay-desktop/internal/tray"
)

type fakeCommands struct {
	opened   []string
	openErr  error
	notified []string
}

func (f *fakeCommands) Greet(name string) string {
	return fmt.Sprintf("Hello, %s! You've been greeted from Rust!", name)
}

func (f *fakeCommands) OpenInBrowser(url string) error {
	f.opened = append(f.opened, url)
	return f.openErr
}

func (f *fakeCommands) SystemInfo() commands.SystemInfo {
	return commands.SystemInfo{Platform: "linux", Arch: "amd64", Version: "1.0.0", AppName: "tiklay"}
}

func (f *fakeCommands) ShowNotification(title, body string) (string, error) {
	f.notified = append(f.notified, title)
	return "n-1", nil
}

type fakeRouter struct {
	menus []string
	trays []tray.EventKind
}

func (f *fakeRouter) HandleMenu(id string) bool {
	f.menus = append(f.menus, id)
	return id == tray.MenuShow || id == tray.MenuHide || id == tray.MenuQuit
}

func (f *fakeRouter) HandleTray(kind tray.EventKind) bool {
	f.trays = append(f.trays, kind)
	return true
}

func newTestServer(token string) (*Server, *fakeCommands, *fakeRouter) {
	cmds := &fakeCommands{}
	router := &fakeRouter{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(Options{Host: "127.0.0.1", Token: token}, cmds, router, logger), cmds, router
}

func do(t *testing.T, s *Server, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealth_NoAuthRequired(t *testing.T) {
	s, _, _ := newTestServer("secret")

	w := do(t, s, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))
}

func TestRequestID_Propagated(t *testing.T) {
	s, _, _ := newTestServer("")

	w := do(t, s, http.MethodGet, "/api/health", "", map[string]string{HeaderRequestID: "abc"})
	assert.Equal(t, "abc", w.Header().Get(HeaderRequestID))
}

func TestAuth(t *testing.T) {
	s, _, _ := newTestServer("secret")

	w := do(t, s, http.MethodGet, "/api/system-info", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, s, http.MethodGet, "/api/system-info", "", map[string]string{"Authorization": "Bearer wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, s, http.MethodGet, "/api/system-info", "", map[string]string{"Authorization": "Bearer secret"})
	require.Equal(t, http.StatusOK, w.Code)

	var info map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, "linux", info["platform"])
	assert.Equal(t, "tiklay", info["app_name"])
}

func TestGreet(t *testing.T) {
	s, _, _ := newTestServer("")

	w := do(t, s, http.MethodPost, "/api/greet", `{"name":"Ana"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Hello, Ana! You've been greeted from Rust!")

	w = do(t, s, http.MethodPost, "/api/greet", `{bad`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOpenURL(t *testing.T) {
	s, cmds, _ := newTestServer("")

	w := do(t, s, http.MethodPost, "/api/open-url", `{"url":"https://example.com"}`, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"https://example.com"}, cmds.opened)

	cmds.openErr = errors.New("Failed to open browser: boom")
	w = do(t, s, http.MethodPost, "/api/open-url", `{"url":"https://example.com"}`, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to open browser")
}

func TestNotify(t *testing.T) {
	s, cmds, _ := newTestServer("")

	w := do(t, s, http.MethodPost, "/api/notify", `{"title":"Hola","body":"Mundo"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"n-1"`)
	assert.Equal(t, []string{"Hola"}, cmds.notified)

	w = do(t, s, http.MethodPost, "/api/notify", `{"title":`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMenuRoute(t *testing.T) {
	s, _, router := newTestServer("")

	w := do(t, s, http.MethodPost, "/api/menu/show", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, s, http.MethodPost, "/api/menu/unknown", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, s, http.MethodPost, "/api/menu/quit", "", nil)
	assert.Equal(t, http.StatusAccepted, w.Code)

	assert.Equal(t, []string{"show", "unknown", "quit"}, router.menus)
}

func TestDoubleClickRoute(t *testing.T) {
	s, _, router := newTestServer("")

	w := do(t, s, http.MethodPost, "/api/tray/double-click", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []tray.EventKind{tray.EventDoubleClick}, router.trays)
}

func TestStartAndShutdown(t *testing.T) {
	s, _, _ := newTestServer("")
	s.opts.Port = 0
	s.opts.MaxConns = 2

	require.NoError(t, s.Start())
	assert.Error(t, s.Start())

	addr := s.Addr()
	require.NotEmpty(t, addr)

	resp, err := http.Get("http://" + addr + "/api/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))
	assert.Empty(t, s.Addr())
	require.NoError(t, s.Shutdown(ctx))
}
