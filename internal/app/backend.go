package app

import (
	"context"
	"io"

	"svcboard/internal/backend"
	"svcboard/internal/config"
	"svcboard/internal/controller"
)

var backendOpen = backend.Open

// Session is a controller bound to an open backend. Close releases both.
type Session struct {
	*controller.Controller
	Kind   string
	closer io.Closer
}

// Close detaches the controller and releases the backend connection.
func (s *Session) Close() error {
	s.Controller.Close()
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

// BackendKind reports which backend OpenBackend would pick.
func (a *App) BackendKind() string {
	if a.cfg.Backend == config.BackendDaemon {
		return config.BackendDaemon
	}
	return backend.ResolveKind(a.cfg.Backend)
}

// OpenBackend builds the configured control backend. In daemon mode the
// backend is a gRPC client and the closer ends the connection.
func (a *App) OpenBackend(ctx context.Context) (controller.Backend, io.Closer, error) {
	if a.cfg.Backend == config.BackendDaemon {
		return connectDaemon(ctx)
	}
	b, err := backendOpen(a.localBackendOptions(""))
	if err != nil {
		return nil, nil, err
	}
	return b, nopCloser{}, nil
}

func (a *App) localBackendOptions(snapshot string) backend.Options {
	return backend.Options{
		Kind:           a.cfg.Backend,
		SystemdScope:   a.cfg.SystemdScope,
		CacheTTL:       a.cfg.CacheTTL,
		MemorySeed:     a.cfg.MemorySeed,
		MemoryLatency:  a.cfg.MemoryLatency,
		MemorySnapshot: snapshot,
		Logger:         a.log,
	}
}

// Open builds a controller over the configured backend and loads the first
// snapshot. A failed first refresh is not fatal: the session is returned
// with the banner set, together with the refresh error.
func (a *App) Open(ctx context.Context, onEvent func(controller.Event)) (*Session, error) {
	b, closer, err := a.OpenBackend(ctx)
	if err != nil {
		return nil, err
	}
	ctrl, err := controller.New(controller.Options{
		Backend:          b,
		OperationTimeout: a.cfg.OperationTimeout,
		BulkConcurrency:  a.cfg.BulkConcurrency,
		Logger:           a.log,
		OnEvent:          onEvent,
	})
	if err != nil {
		closer.Close()
		return nil, err
	}
	s := &Session{Controller: ctrl, Kind: a.BackendKind(), closer: closer}
	return s, ctrl.Refresh(ctx)
}
