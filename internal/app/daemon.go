package app

import (
	"errors"

	"svcboard/internal/config"
	"svcboard/internal/daemon"
)

// DaemonStatus represents current information about the daemon process.
type DaemonStatus struct {
	Running bool
	PID     int
}

// Status returns whether the daemon is running and its PID if known.
func (a *App) Status() (DaemonStatus, error) {
	if !daemonIsRunning() {
		return DaemonStatus{Running: false}, nil
	}
	pid, err := daemon.RunningPID()
	if err != nil {
		return DaemonStatus{Running: true}, err
	}
	return DaemonStatus{Running: true, PID: pid}, nil
}

// StopDaemon attempts to stop the running daemon.
func (a *App) StopDaemon(force bool) error {
	return daemon.StopRunningDaemon(force)
}

// DaemonHandle holds a running daemon instance.
type DaemonHandle struct {
	srv *daemon.Server
}

// Path returns the socket the daemon listens on.
func (h *DaemonHandle) Path() string {
	if h == nil || h.srv == nil {
		return ""
	}
	return h.srv.Path()
}

// Close stops the running daemon instance.
func (h *DaemonHandle) Close() error {
	if h == nil || h.srv == nil {
		return nil
	}
	return h.srv.Close()
}

// StartDaemon opens the local backend and serves it over the daemon socket.
// The memory backend keeps its state in the runtime dir between restarts.
func (a *App) StartDaemon() (*DaemonHandle, error) {
	if a.cfg.Backend == config.BackendDaemon {
		return nil, errors.New("the daemon cannot use the daemon backend; pick auto, systemd, windows or memory")
	}
	if err := daemon.EnsureRuntimeDir(); err != nil {
		return nil, err
	}
	b, err := backendOpen(a.localBackendOptions(daemon.SnapshotPath()))
	if err != nil {
		return nil, err
	}
	srv, err := daemon.StartDaemon(daemon.Options{
		Backend: b,
		Kind:    a.BackendKind(),
		Logger:  a.log,
	})
	if err != nil {
		return nil, err
	}
	return &DaemonHandle{srv: srv}, nil
}
