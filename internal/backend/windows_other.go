//go:build !windows

package backend

import (
	"context"
	"errors"

	"svcboard/internal/model"
)

var errNotWindows = errors.New("the windows backend is only available on Windows")

// Windows is unavailable on this platform.
type Windows struct{}

// NewWindows always fails outside Windows.
func NewWindows() (*Windows, error) {
	return nil, errNotWindows
}

func (w *Windows) ListItems(context.Context) ([]model.Item, error) { return nil, errNotWindows }
func (w *Windows) Start(context.Context, string) error             { return errNotWindows }
func (w *Windows) Stop(context.Context, string) error              { return errNotWindows }
func (w *Windows) Restart(context.Context, string) error           { return errNotWindows }
