package app

import (
	"context"
	"errors"
	"io"
	"testing"

	"google.golang.org/grpc"

	"svcboard/internal/catalog"
	"svcboard/internal/config"
	"svcboard/internal/daemon"
	"svcboard/internal/filter"
	"svcboard/internal/model"
)

func TestAppListRejectsUnknownSelector(t *testing.T) {
	app := newTestApp(t, nil)
	_, err := app.List(context.Background(), ListParams{Query: filter.Query{Selector: "nosuchdb"}})
	if err == nil || err.Error() != `unknown selector "nosuchdb"` {
		t.Fatalf("expected selector error, got %v", err)
	}
}

func TestAppListFiltersAndGroups(t *testing.T) {
	stubBackend(t, testItems()...)
	app := newTestApp(t, nil)

	view, err := app.List(context.Background(), ListParams{
		Query:   filter.Query{Selector: "cache_memory"},
		GroupBy: catalog.ByCategory,
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if view.Total != 4 || len(view.Items) != 2 {
		t.Fatalf("expected 2 of 4 items, got %d of %d", len(view.Items), view.Total)
	}
	if len(view.Groups) != 1 || view.Groups[0].Key != string(model.CategoryCache) {
		t.Fatalf("unexpected groups: %+v", view.Groups)
	}
}

func TestAppListDaemonNotRunning(t *testing.T) {
	stubDaemon(t, false, nil)
	app := newTestApp(t, func(c *config.Config) { c.Backend = config.BackendDaemon })
	_, err := app.List(context.Background(), ListParams{})
	if err == nil || err.Error() != "daemon is not running" {
		t.Fatalf("expected daemon not running error, got %v", err)
	}
}

func TestAppListDialError(t *testing.T) {
	stubDaemon(t, true, func(ctx context.Context) (daemon.ServiceBoardClient, io.Closer, error) {
		return nil, nil, errors.New("dial failed")
	})
	app := newTestApp(t, func(c *config.Config) { c.Backend = config.BackendDaemon })
	_, err := app.List(context.Background(), ListParams{})
	if err == nil || err.Error() != "connect to daemon: dial failed" {
		t.Fatalf("expected dial error, got %v", err)
	}
}

func TestAppListThroughDaemon(t *testing.T) {
	var methods []string
	stubDaemon(t, true, func(ctx context.Context) (daemon.ServiceBoardClient, io.Closer, error) {
		conn := &fakeConn{
			invoke: func(ctx context.Context, method string, args interface{}, reply interface{}, opts ...grpc.CallOption) error {
				methods = append(methods, method)
				resp, ok := reply.(*daemon.ListResponse)
				if !ok {
					t.Fatalf("unexpected reply type %T", reply)
				}
				resp.Items = []model.Item{
					{ID: "redis-server", DisplayName: "Redis", Status: model.StatusRunning, Policy: model.PolicyAutomatic},
				}
				return nil
			},
		}
		return daemon.NewServiceBoardClient(conn), conn, nil
	})

	app := newTestApp(t, func(c *config.Config) { c.Backend = config.BackendDaemon })
	view, err := app.List(context.Background(), ListParams{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(view.Items) != 1 || view.Items[0].Type != model.TypeRedis {
		t.Fatalf("unexpected items: %+v", view.Items)
	}
	if len(methods) != 1 || methods[0] != "/svcboard.v1.ServiceBoard/List" {
		t.Fatalf("unexpected calls: %v", methods)
	}
}

func TestAppListRefreshFailure(t *testing.T) {
	stubDaemon(t, true, func(ctx context.Context) (daemon.ServiceBoardClient, io.Closer, error) {
		conn := &fakeConn{
			invoke: func(ctx context.Context, method string, args interface{}, reply interface{}, opts ...grpc.CallOption) error {
				return errors.New("access is denied")
			},
		}
		return daemon.NewServiceBoardClient(conn), conn, nil
	})
	app := newTestApp(t, func(c *config.Config) { c.Backend = config.BackendDaemon })
	if _, err := app.List(context.Background(), ListParams{}); err == nil {
		t.Fatal("expected refresh error")
	}
}
