package app

import (
	"context"
	"errors"
	"io"
	"testing"

	"google.golang.org/grpc"

	"svcboard/internal/backend"
	"svcboard/internal/config"
	"svcboard/internal/controller"
	"svcboard/internal/daemon"
	"svcboard/internal/model"
)

type fakeConn struct {
	invoke func(ctx context.Context, method string, args interface{}, reply interface{}, opts ...grpc.CallOption) error
}

func (f *fakeConn) Invoke(ctx context.Context, method string, args interface{}, reply interface{}, opts ...grpc.CallOption) error {
	if f.invoke != nil {
		return f.invoke(ctx, method, args, reply, opts...)
	}
	return nil
}

func (f *fakeConn) NewStream(ctx context.Context, desc *grpc.StreamDesc, method string, opts ...grpc.CallOption) (grpc.ClientStream, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeConn) Close() error { return nil }

func stubDaemon(t *testing.T, running bool, dial func(context.Context) (daemon.ServiceBoardClient, io.Closer, error)) {
	t.Helper()
	resetDaemonDeps()
	daemonIsRunning = func() bool { return running }
	if dial == nil {
		dial = func(context.Context) (daemon.ServiceBoardClient, io.Closer, error) {
			return nil, nil, errors.New("dial not stubbed")
		}
	}
	dialDaemonClient = dial
	t.Cleanup(resetDaemonDeps)
}

// stubBackend makes every local backend a fresh memory backend holding items.
func stubBackend(t *testing.T, items ...model.Item) *backend.Memory {
	t.Helper()
	mem, err := backend.NewMemoryWith(0, items...)
	if err != nil {
		t.Fatal(err)
	}
	backendOpen = func(backend.Options) (controller.Backend, error) { return mem, nil }
	t.Cleanup(func() { backendOpen = backend.Open })
	return mem
}

func newTestApp(t *testing.T, mutate func(*config.Config)) *App {
	t.Helper()
	cfg := config.Default()
	cfg.Backend = config.BackendMemory
	cfg.CacheTTL = 0
	cfg.MemoryLatency = 0
	if mutate != nil {
		mutate(&cfg)
	}
	a, err := New(Options{Config: &cfg})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

func testItems() []model.Item {
	return []model.Item{
		{ID: "postgresql", DisplayName: "PostgreSQL", Status: model.StatusRunning, Policy: model.PolicyAutomatic},
		{ID: "redis-server", DisplayName: "Redis", Status: model.StatusStopped, Policy: model.PolicyManual},
		{ID: "mongod", DisplayName: "MongoDB", Status: model.StatusStopped, Policy: model.PolicyManual},
		{ID: "memcached", DisplayName: "Memcached", Status: model.StatusStopped, Policy: model.PolicyDisabled},
	}
}
