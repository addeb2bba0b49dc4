package main

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"svcboard/internal/app"
	"svcboard/internal/config"
	"svcboard/internal/controller"
	"svcboard/internal/daemon"
)

type stubController struct {
	pingFunc    func(ctx context.Context, timeout time.Duration) (*daemon.PingResponse, error)
	listFunc    func(ctx context.Context, params app.ListParams) (controller.View, error)
	controlFunc func(ctx context.Context, params app.ControlParams) (app.ControlResult, error)
	bulkFunc    func(ctx context.Context, params app.BulkParams) (controller.BulkResult, error)
}

func (s *stubController) Ping(ctx context.Context, timeout time.Duration) (*daemon.PingResponse, error) {
	if s.pingFunc != nil {
		return s.pingFunc(ctx, timeout)
	}
	return nil, errors.New("ping not implemented")
}

func (s *stubController) List(ctx context.Context, params app.ListParams) (controller.View, error) {
	if s.listFunc != nil {
		return s.listFunc(ctx, params)
	}
	panic("List not implemented")
}

func (s *stubController) Control(ctx context.Context, params app.ControlParams) (app.ControlResult, error) {
	if s.controlFunc != nil {
		return s.controlFunc(ctx, params)
	}
	panic("Control not implemented")
}

func (s *stubController) Bulk(ctx context.Context, params app.BulkParams) (controller.BulkResult, error) {
	if s.bulkFunc != nil {
		return s.bulkFunc(ctx, params)
	}
	panic("Bulk not implemented")
}

func (s *stubController) Config() config.Config { return config.Default() }

func (s *stubController) BackendKind() string { return "memory" }

func (s *stubController) Logger() zerolog.Logger { return zerolog.Nop() }

func (s *stubController) Open(ctx context.Context, onEvent func(controller.Event)) (*app.Session, error) {
	panic("Open not implemented")
}

func (s *stubController) Status() (app.DaemonStatus, error) {
	panic("Status not implemented")
}

func (s *stubController) StopDaemon(force bool) error {
	panic("StopDaemon not implemented")
}

func (s *stubController) StartDaemon() (*app.DaemonHandle, error) {
	panic("StartDaemon not implemented")
}

func withController(t *testing.T, stub controllerAPI) {
	t.Helper()
	origFactory := controllerFactory
	controllerFactory = func(config.Config, zerolog.Logger) (controllerAPI, error) {
		return stub, nil
	}
	t.Cleanup(func() {
		controllerFactory = origFactory
	})
}

func withPingOutput(t *testing.T) (*bytes.Buffer, func()) {
	t.Helper()
	buf := &bytes.Buffer{}
	origOut := cmdPing.OutOrStdout()
	cmdPing.SetOut(buf)
	return buf, func() {
		cmdPing.SetOut(origOut)
	}
}

func TestPingSuccess(t *testing.T) {
	withController(t, &stubController{
		pingFunc: func(ctx context.Context, timeout time.Duration) (*daemon.PingResponse, error) {
			if timeout != 2*time.Second {
				t.Fatalf("expected timeout 2s, got %v", timeout)
			}
			return &daemon.PingResponse{Ok: "pong", PID: 42, Backend: "systemd", Elevated: true}, nil
		},
	})
	buf, restore := withPingOutput(t)
	defer restore()

	oldTimeout := pingTimeoutSeconds
	pingTimeoutSeconds = 2
	t.Cleanup(func() { pingTimeoutSeconds = oldTimeout })

	if err := cmdPing.RunE(cmdPing, nil); err != nil {
		t.Fatalf("RunE error: %v", err)
	}
	if got := buf.String(); got != "pong (pid 42, backend systemd, elevated)\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestPingError(t *testing.T) {
	expected := errors.New("daemon down")
	withController(t, &stubController{
		pingFunc: func(ctx context.Context, timeout time.Duration) (*daemon.PingResponse, error) {
			return nil, expected
		},
	})
	oldTimeout := pingTimeoutSeconds
	pingTimeoutSeconds = 1
	t.Cleanup(func() { pingTimeoutSeconds = oldTimeout })

	err := cmdPing.RunE(cmdPing, nil)
	if !errors.Is(err, expected) {
		t.Fatalf("expected error %v, got %v", expected, err)
	}
}
