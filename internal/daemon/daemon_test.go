package daemon

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"svcboard/internal/backend"
	"svcboard/internal/model"
	"svcboard/internal/svcerr"
)

type fakeConn struct {
	invoke func(ctx context.Context, method string, args, reply any, opts ...grpc.CallOption) error
}

func (f *fakeConn) Invoke(ctx context.Context, method string, args, reply any, opts ...grpc.CallOption) error {
	if f.invoke != nil {
		return f.invoke(ctx, method, args, reply, opts...)
	}
	return nil
}

func (f *fakeConn) NewStream(ctx context.Context, desc *grpc.StreamDesc, method string, opts ...grpc.CallOption) (grpc.ClientStream, error) {
	return nil, errors.New("not implemented")
}

func shortSocketDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "sb")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

func TestSocketPathPrecedence(t *testing.T) {
	t.Setenv("SVCBOARD_SOCKET", "/custom/board.sock")
	t.Setenv("SVCBOARD_RUNTIME_DIR", "/ignored")
	if got := SocketPath(); got != "/custom/board.sock" {
		t.Fatalf("explicit socket: got %q", got)
	}

	t.Setenv("SVCBOARD_SOCKET", "")
	if got := SocketPath(); got != filepath.Join("/ignored", SocketBaseName) {
		t.Fatalf("runtime dir: got %q", got)
	}
	if got := PIDPath(); got != filepath.Join("/ignored", pidFileName) {
		t.Fatalf("pid path: got %q", got)
	}
}

func TestClientMapsStatusCodes(t *testing.T) {
	cases := map[codes.Code]svcerr.Kind{
		codes.PermissionDenied:   svcerr.PermissionDenied,
		codes.NotFound:           svcerr.NotFound,
		codes.DeadlineExceeded:   svcerr.Timeout,
		codes.FailedPrecondition: svcerr.InvalidState,
		codes.Internal:           svcerr.SystemError,
	}
	for code, want := range cases {
		conn := &fakeConn{invoke: func(ctx context.Context, method string, args, reply any, opts ...grpc.CallOption) error {
			if method != methodStop {
				t.Fatalf("unexpected method %s", method)
			}
			if req := args.(*ControlRequest); req.ID != "pg1" {
				t.Fatalf("unexpected request %+v", req)
			}
			return status.Error(code, "boom")
		}}
		err := NewClient(NewServiceBoardClient(conn)).Stop(context.Background(), "pg1")
		if !svcerr.Is(err, want) {
			t.Fatalf("%s: expected %v, got %v", code, want, err)
		}
		var typed *svcerr.Error
		if !errors.As(err, &typed) || typed.Service != "pg1" || typed.Message != "boom" {
			t.Fatalf("%s: unexpected error %#v", code, err)
		}
	}
}

func TestToStatusRoundTrip(t *testing.T) {
	for _, kind := range []svcerr.Kind{svcerr.PermissionDenied, svcerr.NotFound, svcerr.Timeout, svcerr.InvalidState, svcerr.SystemError} {
		err := fromStatus(toStatus(svcerr.New(kind, "x", "msg"), "x"), "x")
		if !svcerr.Is(err, kind) {
			t.Fatalf("%v lost in transit: %v", kind, err)
		}
	}
}

func TestClientListDecodesItems(t *testing.T) {
	conn := &fakeConn{invoke: func(ctx context.Context, method string, args, reply any, opts ...grpc.CallOption) error {
		resp, ok := reply.(*ListResponse)
		if !ok {
			t.Fatalf("unexpected reply type %T", reply)
		}
		resp.Items = []model.Item{{ID: "redis", Status: model.StatusRunning}}
		return nil
	}}
	items, err := NewClient(NewServiceBoardClient(conn)).ListItems(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || items[0].ID != "redis" {
		t.Fatalf("unexpected items %+v", items)
	}
}

func TestDaemonServesBackend(t *testing.T) {
	dir := shortSocketDir(t)
	t.Setenv("SVCBOARD_SOCKET", "")
	t.Setenv("SVCBOARD_RUNTIME_DIR", dir)

	mem, err := backend.NewMemoryWith(0,
		model.Item{ID: "pg1", Type: model.TypePostgreSQL, Status: model.StatusStopped, Policy: model.PolicyManual},
	)
	if err != nil {
		t.Fatal(err)
	}
	srv, err := StartDaemon(Options{Backend: mem, Kind: "memory", Logger: zerolog.Nop()})
	if err != nil {
		t.Fatalf("start daemon: %v", err)
	}
	t.Cleanup(func() { _ = srv.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rpc, conn, err := Dial(ctx)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	client := NewClient(rpc)

	pong, err := client.Ping(ctx)
	if err != nil || pong.Ok != "pong" || pong.Backend != "memory" {
		t.Fatalf("ping: %+v %v", pong, err)
	}
	if err := client.Start(ctx, "pg1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := client.Start(ctx, "pg1"); !svcerr.Is(err, svcerr.InvalidState) {
		t.Fatalf("expected invalid state, got %v", err)
	}
	if err := client.Stop(ctx, "missing"); !svcerr.Is(err, svcerr.NotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	items, err := client.ListItems(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || items[0].Status != model.StatusRunning {
		t.Fatalf("unexpected items %+v", items)
	}
	if !IsRunning() {
		t.Fatal("IsRunning should report the live daemon")
	}
	pid, err := RunningPID()
	if err != nil || pid != os.Getpid() {
		t.Fatalf("pid file: %d %v", pid, err)
	}
}
