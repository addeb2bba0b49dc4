package app

import (
	"context"
	"fmt"
	"time"

	"svcboard/internal/daemon"
)

// Ping contacts the daemon and returns its health response.
func (a *App) Ping(ctx context.Context, timeout time.Duration) (*daemon.PingResponse, error) {
	var resp *daemon.PingResponse
	err := a.withClient(ctx, timeout, func(ctx context.Context, client *daemon.Client) error {
		r, err := client.Ping(ctx)
		if err != nil {
			return fmt.Errorf("daemon ping RPC failed: %w", err)
		}
		resp = r
		return nil
	})
	return resp, err
}
