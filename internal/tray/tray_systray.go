//go:build !stub
// +build !stub

package tray

import (
	"context"
	"sync"

	"github.com/getlantern/systray"
)

type systrayController struct {
	opts      Options
	ctx       context.Context
	quitCh    chan struct{}
	once      sync.Once
	running   bool
	runningMu sync.Mutex
}

func (c *systrayController) SetTooltip(tooltip string) {
	c.runningMu.Lock()
	defer c.runningMu.Unlock()
	c.opts.Tooltip = tooltip
	if c.running && tooltip != "" {
		systray.SetTooltip(tooltip)
	}
}

func (c *systrayController) Stop() {
	c.once.Do(func() {
		c.runningMu.Lock()
		if c.running {
			systray.Quit()
			c.running = false
		}
		c.runningMu.Unlock()
		close(c.quitCh)
	})
}

func start(ctx context.Context, opts Options) (Controller, error) {
	ctrl := &systrayController{
		opts:   opts,
		ctx:    ctx,
		quitCh: make(chan struct{}),
	}

	// systray.Run 会阻塞，在单独的 goroutine 中运行
	go func() {
		ctrl.runningMu.Lock()
		ctrl.running = true
		ctrl.runningMu.Unlock()

		systray.Run(ctrl.onReady, ctrl.onExit)
	}()

	go func() {
		select {
		case <-ctx.Done():
			ctrl.Stop()
		case <-ctrl.quitCh:
		}
	}()

	return ctrl, nil
}

func (c *systrayController) onReady() {
	if len(c.opts.Icon) > 0 {
		systray.SetIcon(c.opts.Icon)
	}

	c.runningMu.Lock()
	systray.SetTooltip(c.opts.Tooltip)
	c.runningMu.Unlock()

	for _, entry := range c.opts.Menu.Entries {
		if entry.Separator {
			systray.AddSeparator()
			continue
		}
		if entry.Item == nil {
			continue
		}

		item := systray.AddMenuItem(entry.Item.Label, entry.Item.Label)
		if !entry.Item.Enabled {
			item.Disable()
		}
		go c.watchItem(entry.Item.ID, item)
	}
}

// watchItem 每个菜单项一个 goroutine，点击后回调菜单项 ID。
func (c *systrayController) watchItem(id string, item *systray.MenuItem) {
	for {
		select {
		case <-c.quitCh:
			return
		case <-item.ClickedCh:
			if c.opts.OnMenuClick != nil {
				c.opts.OnMenuClick(id)
			}
		}
	}
}

func (c *systrayController) onExit() {
	c.runningMu.Lock()
	c.running = false
	c.runningMu.Unlock()
}
