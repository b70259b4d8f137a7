// main.go - Tiklay 桌面端入口
// 命令行解析（cobra）后启动 Wails 应用

package main

import (
	"embed"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/linux"
	"github.com/wailsapp/wails/v2/pkg/options/mac"
	"github.com/wailsapp/wails/v2/pkg/options/windows"
)

// 版本信息（-ldflags -X 注入）
var (
	Version   = "1.0.0"
	AppName   = "tiklay"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// 嵌入前端资源
//
//go:embed all:frontend/dist
var assets embed.FS

// 嵌入应用图标
//
//go:embed build/appicon.png
var icon []byte

// 嵌入默认配置文件
//
//go:embed config/config.yaml
var defaultConfigContent []byte

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath  string
		showVersion bool
	)

	root := &cobra.Command{
		Use:           AppName,
		Short:         "Tiklay - Sistema de Gestión (escritorio)",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if showVersion {
				printVersion(cmd.OutOrStdout())
				return nil
			}
			return run(configPath)
		},
	}

	root.Flags().StringVar(&configPath, "config", "", "配置文件路径（默认：应用目录/config.yaml）")
	root.Flags().BoolVar(&showVersion, "version", false, "显示版本信息")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "显示版本信息",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			printVersion(cmd.OutOrStdout())
		},
	})

	return root
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "Tiklay Desktop\n")
	fmt.Fprintf(w, "Version: %s\n", Version)
	fmt.Fprintf(w, "Commit: %s\n", Commit)
	fmt.Fprintf(w, "Built: %s\n", BuildTime)
}

// run 初始化应用并阻塞在 Wails 主循环上
func run(configPath string) error {
	app, err := NewApp(configPath)
	if err != nil {
		return err
	}

	cfg := app.config
	err = wails.Run(&options.App{
		Title:             cfg.App.Title,
		Width:             cfg.Window.Width,
		Height:            cfg.Window.Height,
		MinWidth:          cfg.Window.MinWidth,
		MinHeight:         cfg.Window.MinHeight,
		StartHidden:       cfg.Window.StartHidden,
		HideWindowOnClose: cfg.Window.HideOnClose && cfg.Tray.Enabled,

		// 资源服务器
		AssetServer: &assetserver.Options{
			Assets: assets,
		},

		// 背景色 (加载时显示)
		BackgroundColour: &options.RGBA{R: 255, G: 255, B: 255, A: 1},

		// 应用菜单
		Menu: app.buildAppMenu(),

		// 生命周期回调
		OnStartup:     app.startup,
		OnDomReady:    app.domReady,
		OnBeforeClose: app.beforeClose,
		OnShutdown:    app.shutdown,

		// 绑定到前端的方法
		Bind: []interface{}{
			app,
		},

		// macOS 配置
		Mac: &mac.Options{
			About: &mac.AboutInfo{
				Title:   cfg.App.Name,
				Message: fmt.Sprintf("%s\nVersión %s", cfg.App.Title, Version),
				Icon:    icon,
			},
		},

		// Windows 配置
		Windows: &windows.Options{
			WebviewIsTransparent: false,
			WindowIsTranslucent:  false,
			DisableWindowIcon:    false,
		},

		// Linux 配置
		Linux: &linux.Options{
			Icon:        icon,
			ProgramName: AppName,
		},
	})

	// 未进入主循环时 OnShutdown 不会被调用，这里兜底释放资源
	app.release()

	return err
}
