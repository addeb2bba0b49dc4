//go:build windows

package backend

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/svc"
	"golang.org/x/sys/windows/svc/mgr"

	"svcboard/internal/catalog"
	"svcboard/internal/model"
	"svcboard/internal/svcerr"
)

const (
	scmWait     = 30 * time.Second
	scmPollStep = 500 * time.Millisecond
)

// Windows controls services through the Service Control Manager. A new SCM
// connection is made per call.
type Windows struct{}

// NewWindows returns the SCM backend.
func NewWindows() (*Windows, error) {
	return &Windows{}, nil
}

func connectSCM() (*mgr.Mgr, error) {
	m, err := mgr.Connect()
	if err != nil {
		return nil, &svcerr.Error{
			Kind:    svcerr.PermissionDenied,
			Message: "failed to connect to Service Control Manager; administrator privileges may be required",
			Err:     err,
		}
	}
	return m, nil
}

func openService(m *mgr.Mgr, name string) (*mgr.Service, error) {
	s, err := m.OpenService(name)
	if err != nil {
		if errors.Is(err, windows.ERROR_ACCESS_DENIED) {
			return nil, &svcerr.Error{Kind: svcerr.PermissionDenied, Service: name, Message: "access is denied", Err: err}
		}
		return nil, &svcerr.Error{Kind: svcerr.NotFound, Service: name, Message: "service not found", Err: err}
	}
	return s, nil
}

func (w *Windows) ListItems(ctx context.Context) ([]model.Item, error) {
	m, err := connectSCM()
	if err != nil {
		return nil, err
	}
	defer m.Disconnect()

	names, err := m.ListServices()
	if err != nil {
		return nil, svcerr.New(svcerr.SystemError, "", "failed to list services: %v", err)
	}

	var items []model.Item
	for _, name := range names {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		typ, ok := catalog.Detect(name)
		if !ok {
			continue
		}
		s, err := m.OpenService(name)
		if err != nil {
			continue
		}
		status, err := s.Query()
		if err != nil {
			s.Close()
			continue
		}
		display := name
		policy := model.PolicyManual
		if cfg, err := s.Config(); err == nil {
			if cfg.DisplayName != "" {
				display = cfg.DisplayName
			}
			policy = mapStartType(cfg.StartType)
		}
		s.Close()

		items = append(items, model.Item{
			ID:          name,
			DisplayName: display,
			Type:        typ,
			Status:      mapWindowsState(status.State),
			Policy:      policy,
		})
	}
	return items, nil
}

func (w *Windows) Start(ctx context.Context, id string) error {
	return w.withService(id, func(s *mgr.Service) error {
		return startService(ctx, s, id)
	})
}

func (w *Windows) Stop(ctx context.Context, id string) error {
	return w.withService(id, func(s *mgr.Service) error {
		return stopService(ctx, s, id)
	})
}

// Restart stops the service when it is up and then starts it.
func (w *Windows) Restart(ctx context.Context, id string) error {
	return w.withService(id, func(s *mgr.Service) error {
		status, err := s.Query()
		if err != nil {
			return svcerr.New(svcerr.SystemError, id, "failed to query service status: %v", err)
		}
		if status.State == svc.Running || status.State == svc.StartPending {
			if err := stopService(ctx, s, id); err != nil {
				return err
			}
		}
		return startService(ctx, s, id)
	})
}

func (w *Windows) withService(id string, fn func(*mgr.Service) error) error {
	m, err := connectSCM()
	if err != nil {
		return err
	}
	defer m.Disconnect()
	s, err := openService(m, id)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}

func startService(ctx context.Context, s *mgr.Service, id string) error {
	status, err := s.Query()
	if err != nil {
		return svcerr.New(svcerr.SystemError, id, "failed to query service status: %v", err)
	}
	switch status.State {
	case svc.Running:
		return svcerr.New(svcerr.InvalidState, id, "service is already running")
	case svc.StartPending:
		return svcerr.New(svcerr.InvalidState, id, "service is already starting")
	}
	if err := s.Start(); err != nil {
		return classifySCM(err, id, "failed to start service")
	}
	err = waitFor(ctx, scmWait, scmPollStep, func() (bool, error) {
		st, err := s.Query()
		if err != nil {
			return false, svcerr.New(svcerr.SystemError, id, "failed to query service status: %v", err)
		}
		if st.State == svc.Stopped {
			return false, svcerr.New(svcerr.SystemError, id, "service failed to start")
		}
		return st.State == svc.Running, nil
	})
	if errors.Is(err, context.DeadlineExceeded) {
		return svcerr.New(svcerr.Timeout, id, "service start timed out after %s", scmWait)
	}
	return err
}

func stopService(ctx context.Context, s *mgr.Service, id string) error {
	status, err := s.Query()
	if err != nil {
		return svcerr.New(svcerr.SystemError, id, "failed to query service status: %v", err)
	}
	switch status.State {
	case svc.Stopped:
		return svcerr.New(svcerr.InvalidState, id, "service is already stopped")
	case svc.StopPending:
		return svcerr.New(svcerr.InvalidState, id, "service is already stopping")
	}
	if _, err := s.Control(svc.Stop); err != nil {
		return classifySCM(err, id, "failed to stop service")
	}
	err = waitFor(ctx, scmWait, scmPollStep, func() (bool, error) {
		st, err := s.Query()
		if err != nil {
			return false, svcerr.New(svcerr.SystemError, id, "failed to query service status: %v", err)
		}
		return st.State == svc.Stopped, nil
	})
	if errors.Is(err, context.DeadlineExceeded) {
		return svcerr.New(svcerr.Timeout, id, "service stop timed out after %s", scmWait)
	}
	return err
}

func classifySCM(err error, id, what string) error {
	kind := svcerr.SystemError
	switch {
	case errors.Is(err, windows.ERROR_ACCESS_DENIED):
		kind = svcerr.PermissionDenied
	case errors.Is(err, windows.ERROR_SERVICE_DISABLED),
		errors.Is(err, windows.ERROR_SERVICE_ALREADY_RUNNING),
		errors.Is(err, windows.ERROR_SERVICE_NOT_ACTIVE):
		kind = svcerr.InvalidState
	case errors.Is(err, windows.ERROR_SERVICE_REQUEST_TIMEOUT):
		kind = svcerr.Timeout
	}
	return &svcerr.Error{Kind: kind, Service: id, Message: what + ": " + err.Error(), Err: err}
}

func mapWindowsState(state svc.State) model.Status {
	switch state {
	case svc.Running, svc.ContinuePending, svc.PausePending, svc.Paused:
		return model.StatusRunning
	case svc.StartPending:
		return model.StatusStarting
	case svc.StopPending:
		return model.StatusStopping
	default:
		return model.StatusStopped
	}
}

func mapStartType(t uint32) model.StartupPolicy {
	switch t {
	case mgr.StartAutomatic, windows.SERVICE_BOOT_START, windows.SERVICE_SYSTEM_START:
		return model.PolicyAutomatic
	case mgr.StartDisabled:
		return model.PolicyDisabled
	default:
		return model.PolicyManual
	}
}
