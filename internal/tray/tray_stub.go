//go:build stub
// +build stub

package tray

import "context"

type noopController struct{}

func (noopController) SetTooltip(string) {}

func (noopController) Stop() {}

func start(_ context.Context, _ Options) (Controller, error) {
	return noopController{}, nil
}
