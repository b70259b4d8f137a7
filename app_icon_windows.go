//go:build windows

package main

import _ "embed"

// Windows 托盘需要 .ico
//
//go:embed build/windows/icon.ico
var trayIconICO []byte

func trayIcon() []byte {
	return trayIconICO
}
