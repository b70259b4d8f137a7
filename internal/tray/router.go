package tray

// MainWindow 主窗口名称。
const MainWindow = "main"

// Window 宿主框架窗口的最小操作集合。
type Window interface {
	Show() error
	Hide() error
	Focus() error
	Center() error
}

// WindowRegistry 按名称查找窗口；窗口尚未创建或已关闭时返回 false。
type WindowRegistry interface {
	Window(name string) (Window, bool)
}

// Exiter 立即结束进程。
type Exiter func(code int)

// EventKind 托盘图标事件类型。
type EventKind int

const (
	EventClick EventKind = iota
	EventDoubleClick
	EventRightClick
)

func (k EventKind) String() string {
	switch k {
	case EventClick:
		return "click"
	case EventDoubleClick:
		return "double-click"
	case EventRightClick:
		return "right-click"
	default:
		return "unknown"
	}
}

// Action 路由表中的一个动作。
type Action func()

// Router 把托盘菜单点击和托盘图标事件分发到窗口操作。
// 不持有状态，每个事件到达即处理，后到的事件覆盖先前的效果。
type Router struct {
	windows WindowRegistry
	exit    Exiter

	menu map[string]Action
	tray map[EventKind]Action
}

// NewRouter 创建路由并注册默认的 show / hide / quit 与双击动作。
func NewRouter(windows WindowRegistry, exit Exiter) *Router {
	r := &Router{
		windows: windows,
		exit:    exit,
	}
	r.menu = map[string]Action{
		MenuShow: r.showMain,
		MenuHide: r.hideMain,
		MenuQuit: r.quit,
	}
	r.tray = map[EventKind]Action{
		EventDoubleClick: r.showMain,
	}
	return r
}

// HandleMenu 处理菜单点击，未知 ID 不做任何事并返回 false。
func (r *Router) HandleMenu(id string) bool {
	action, ok := r.menu[id]
	if !ok {
		return false
	}
	action()
	return true
}

// HandleTray 处理托盘图标事件，未注册的事件类型不做任何事并返回 false。
func (r *Router) HandleTray(kind EventKind) bool {
	action, ok := r.tray[kind]
	if !ok {
		return false
	}
	action()
	return true
}

// 窗口操作失败一律忽略：窗口可能在序列中途被销毁。
func (r *Router) showMain() {
	w, ok := r.windows.Window(MainWindow)
	if !ok {
		return
	}
	_ = w.Show()
	_ = w.Focus()
	_ = w.Center()
}

func (r *Router) hideMain() {
	w, ok := r.windows.Window(MainWindow)
	if !ok {
		return
	}
	_ = w.Hide()
}

func (r *Router) quit() {
	r.exit(0)
}
