package config

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.True(t, cfg.Tray.Enabled)
	assert.Equal(t, "main-tray", cfg.Tray.ID)
	assert.Equal(t, "Tiklay - Sistema de Gestión", cfg.Tray.Tooltip)
	assert.Equal(t, MenuLabels{Show: "Mostrar Tiklay", Hide: "Ocultar Tiklay", Quit: "Salir"}, cfg.Tray.Labels)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.False(t, cfg.Control.Enabled)
	assert.True(t, cfg.Notifications.Enabled)
	require.NoError(t, cfg.validate())
}

func TestParse_KeepsDefaultsForMissingFields(t *testing.T) {
	cfg, err := Parse([]byte(`
logging:
  level: debug
tray:
  labels:
    quit: "Quit"
`))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.FileEnabled)
	assert.True(t, cfg.Tray.Enabled)
	assert.Equal(t, "Quit", cfg.Tray.Labels.Quit)
	assert.Equal(t, "Mostrar Tiklay", cfg.Tray.Labels.Show)
}

func TestParse_EmbeddedDefault(t *testing.T) {
	data, err := os.ReadFile("config.yaml")
	require.NoError(t, err)

	cfg, err := Parse(data)
	require.NoError(t, err)
	assert.True(t, cfg.Window.HideOnClose)
	assert.Equal(t, 17321, cfg.Control.Port)
}

func TestParse_Invalid(t *testing.T) {
	cases := map[string]string{
		"bad yaml":      "logging: [",
		"bad level":     "logging:\n  level: loud\n",
		"bad driver":    "storage:\n  driver: postgres\n",
		"bad port":      "control:\n  port: 70000\n",
		"public host":   "control:\n  enabled: true\n  host: 0.0.0.0\n",
		"window size":   "window:\n  width: 100\n",
		"negative keep": "logging:\n  max_files: -1\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestEnsureConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	created, err := EnsureConfigFile(path, []byte("logging:\n  level: warn\n"))
	require.NoError(t, err)
	assert.True(t, created)

	created, err = EnsureConfigFile(path, []byte("ignored"))
	require.NoError(t, err)
	assert.False(t, created)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestConfigWatcher_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: info\n"), 0o644))

	cw, err := NewConfigWatcher(path, nil)
	require.NoError(t, err)
	defer cw.Close()
	cw.mutex.Lock()
	cw.debounce = 10 * time.Millisecond
	cw.mutex.Unlock()

	var level atomic.Value
	cw.AddReloadCallback(func(c *Config) { level.Store(c.Logging.Level) })

	// 确保修改时间前进
	time.Sleep(20 * time.Millisecond)
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: debug\n"), 0o644))
	require.NoError(t, os.Chtimes(path, future, future))

	require.Eventually(t, func() bool {
		v, _ := level.Load().(string)
		return v == "debug"
	}, 3*time.Second, 20*time.Millisecond)
	assert.Equal(t, "debug", cw.GetConfig().Logging.Level)
}
