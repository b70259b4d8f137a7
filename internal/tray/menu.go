package tray

import (
	"errors"
	"fmt"
)

// 托盘菜单项 ID，固定不可配置。
const (
	MenuShow = "show"
	MenuHide = "hide"
	MenuQuit = "quit"
)

// ErrDuplicateMenuID 菜单内出现重复的菜单项 ID。
var ErrDuplicateMenuID = errors.New("duplicate menu item id")

// ErrEmptyMenuID 菜单项 ID 为空。
var ErrEmptyMenuID = errors.New("empty menu item id")

// MenuItem 托盘菜单项，启动时创建后不再修改。
type MenuItem struct {
	ID      string
	Label   string
	Enabled bool
}

// Entry 菜单中的一行：菜单项或分隔线。
type Entry struct {
	Item      *MenuItem
	Separator bool
}

// Menu 托盘右键菜单。
type Menu struct {
	Entries []Entry
}

// Labels 菜单显示文本。
type Labels struct {
	Show string `yaml:"show"`
	Hide string `yaml:"hide"`
	Quit string `yaml:"quit"`
}

// DefaultLabels 返回默认（西班牙语）菜单文本。
func DefaultLabels() Labels {
	return Labels{
		Show: "Mostrar Tiklay",
		Hide: "Ocultar Tiklay",
		Quit: "Salir",
	}
}

// DefaultMenu 显示 / 隐藏，分隔线，退出。空文本回退到默认值。
func DefaultMenu(labels Labels) Menu {
	def := DefaultLabels()
	if labels.Show == "" {
		labels.Show = def.Show
	}
	if labels.Hide == "" {
		labels.Hide = def.Hide
	}
	if labels.Quit == "" {
		labels.Quit = def.Quit
	}

	return Menu{Entries: []Entry{
		{Item: &MenuItem{ID: MenuShow, Label: labels.Show, Enabled: true}},
		{Item: &MenuItem{ID: MenuHide, Label: labels.Hide, Enabled: true}},
		{Separator: true},
		{Item: &MenuItem{ID: MenuQuit, Label: labels.Quit, Enabled: true}},
	}}
}

// Items 按顺序返回所有菜单项（不含分隔线）。
func (m Menu) Items() []MenuItem {
	items := make([]MenuItem, 0, len(m.Entries))
	for _, e := range m.Entries {
		if e.Item != nil {
			items = append(items, *e.Item)
		}
	}
	return items
}

// Validate 菜单项 ID 在菜单内必须唯一且非空。
func (m Menu) Validate() error {
	seen := make(map[string]struct{}, len(m.Entries))
	for i, e := range m.Entries {
		if e.Item == nil {
			continue
		}
		if e.Item.ID == "" {
			return fmt.Errorf("menu entry %d: %w", i, ErrEmptyMenuID)
		}
		if _, ok := seen[e.Item.ID]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateMenuID, e.Item.ID)
		}
		seen[e.Item.ID] = struct{}{}
	}
	return nil
}
