package commands

import (
	"encoding/json"
	"errors"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tiklay-desktop/internal/notify"
	"tiklay-desktop/internal/opener"
)

type fakeOpener struct {
	urls []string
	err  error
}

func (f *fakeOpener) OpenURL(url string) error {
	f.urls = append(f.urls, url)
	return f.err
}

type fakeNotifier struct {
	err error
}

func (f *fakeNotifier) Notify(title, body string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "n-1", nil
}

var testBuild = BuildInfo{Version: "1.0.0", AppName: "tiklay"}

func TestGreet(t *testing.T) {
	s := New(testBuild, &fakeOpener{}, &fakeNotifier{}, nil)
	assert.Equal(t, "Hello, World! You've been greeted from Rust!", s.Greet("World"))
	assert.Equal(t, s.Greet("Ana"), s.Greet("Ana"))
}

func TestSystemInfo(t *testing.T) {
	s := New(testBuild, &fakeOpener{}, &fakeNotifier{}, nil)

	info := s.SystemInfo()
	assert.Equal(t, runtime.GOOS, info.Platform)
	assert.Equal(t, runtime.GOARCH, info.Arch)
	assert.Equal(t, "1.0.0", info.Version)
	assert.Equal(t, "tiklay", info.AppName)
	assert.Equal(t, info, s.SystemInfo())

	raw, err := json.Marshal(info)
	require.NoError(t, err)
	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Len(t, fields, 4)
	for _, key := range []string{"platform", "arch", "version", "app_name"} {
		assert.Contains(t, fields, key)
	}
}

func TestOpenInBrowser(t *testing.T) {
	o := &fakeOpener{}
	s := New(testBuild, o, &fakeNotifier{}, nil)

	require.NoError(t, s.OpenInBrowser("https://tiklay.app"))
	assert.Equal(t, []string{"https://tiklay.app"}, o.urls)
}

func TestOpenInBrowser_SpawnFailure(t *testing.T) {
	o := &fakeOpener{err: errors.New("permission denied")}
	s := New(testBuild, o, &fakeNotifier{}, nil)

	err := s.OpenInBrowser("not a url")
	require.Error(t, err)
	assert.Equal(t, "Failed to open browser: permission denied", err.Error())
}

func TestOpenInBrowser_WithPlatformOpener(t *testing.T) {
	var gotName string
	var gotArgs []string
	l := launcherFunc(func(name string, args ...string) error {
		gotName, gotArgs = name, args
		return nil
	})
	s := New(testBuild, opener.New("darwin", l), &fakeNotifier{}, nil)

	require.NoError(t, s.OpenInBrowser("https://tiklay.app"))
	assert.Equal(t, "open", gotName)
	assert.Equal(t, []string{"https://tiklay.app"}, gotArgs)
}

func TestShowNotification(t *testing.T) {
	s := New(testBuild, &fakeOpener{}, &fakeNotifier{}, nil)
	id, err := s.ShowNotification("Hola", "Mundo")
	require.NoError(t, err)
	assert.Equal(t, "n-1", id)
}

func TestShowNotification_Rejected(t *testing.T) {
	s := New(testBuild, &fakeOpener{}, &fakeNotifier{err: notify.ErrDisabled}, nil)
	_, err := s.ShowNotification("Hola", "Mundo")
	require.Error(t, err)
	assert.Equal(t, "Failed to show notification: notifications are disabled", err.Error())
}

type launcherFunc func(name string, args ...string) error

func (f launcherFunc) Start(name string, args ...string) error { return f(name, args...) }

func TestShowNotification_OnShownHook(t *testing.T) {
	s := New(testBuild, &fakeOpener{}, &fakeNotifier{}, nil)

	var shown []string
	s.OnNotificationShown(func(id, title, body string) {
		shown = append(shown, id+"|"+title+"|"+body)
	})

	_, err := s.ShowNotification("Hola", "Mundo")
	require.NoError(t, err)
	assert.Equal(t, []string{"n-1|Hola|Mundo"}, shown)

	// 失败时不回调
	s.notifier = &fakeNotifier{err: notify.ErrDisabled}
	_, err = s.ShowNotification("Hola", "Mundo")
	require.Error(t, err)
	assert.Len(t, shown, 1)
}
