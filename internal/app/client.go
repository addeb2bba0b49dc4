package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"svcboard/internal/daemon"
)

const daemonConnectTimeout = 3 * time.Second

var (
	daemonIsRunning  = daemon.IsRunning
	dialDaemonClient = func(ctx context.Context) (daemon.ServiceBoardClient, io.Closer, error) {
		client, conn, err := daemon.Dial(ctx)
		if err != nil {
			return nil, nil, err
		}
		return client, conn, nil
	}
)

func resetDaemonDeps() {
	daemonIsRunning = daemon.IsRunning
	dialDaemonClient = func(ctx context.Context) (daemon.ServiceBoardClient, io.Closer, error) {
		client, conn, err := daemon.Dial(ctx)
		if err != nil {
			return nil, nil, err
		}
		return client, conn, nil
	}
}

func (a *App) withClient(ctx context.Context, timeout time.Duration, fn func(context.Context, *daemon.Client) error) error {
	if timeout <= 0 {
		return errors.New("timeout must be greater than 0")
	}
	if !daemonIsRunning() {
		return errors.New("daemon is not running")
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, conn, err := dialDaemonClient(ctx)
	if err != nil {
		return fmt.Errorf("connect to daemon: %w", err)
	}
	if conn != nil {
		defer conn.Close()
	}

	return fn(ctx, daemon.NewClient(client))
}

// connectDaemon opens a long-lived daemon client for use as a backend. The
// caller closes the returned closer.
func connectDaemon(ctx context.Context) (*daemon.Client, io.Closer, error) {
	if !daemonIsRunning() {
		return nil, nil, errors.New("daemon is not running")
	}
	dialCtx, cancel := context.WithTimeout(ctx, daemonConnectTimeout)
	defer cancel()

	client, conn, err := dialDaemonClient(dialCtx)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to daemon: %w", err)
	}
	if conn == nil {
		conn = nopCloser{}
	}
	return daemon.NewClient(client), conn, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
