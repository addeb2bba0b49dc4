package app

import (
	"context"
	"errors"
	"testing"

	"svcboard/internal/config"
	"svcboard/internal/controller"
	"svcboard/internal/filter"
	"svcboard/internal/model"
	"svcboard/internal/svcerr"
)

func TestAppControlRequiresIDs(t *testing.T) {
	app := newTestApp(t, nil)
	_, err := app.Control(context.Background(), ControlParams{Action: model.ActionStart})
	if err == nil || err.Error() != "provide at least one service id" {
		t.Fatalf("expected id error, got %v", err)
	}
}

func TestAppControlRejectsUnknownAction(t *testing.T) {
	app := newTestApp(t, nil)
	_, err := app.Control(context.Background(), ControlParams{Action: "reload", IDs: []string{"x"}})
	if err == nil || err.Error() != `unknown action "reload"` {
		t.Fatalf("expected action error, got %v", err)
	}
}

func TestAppControlSuccess(t *testing.T) {
	mem := stubBackend(t, testItems()...)
	app := newTestApp(t, nil)

	res, err := app.Control(context.Background(), ControlParams{
		Action: model.ActionStart,
		IDs:    []string{"redis-server", "mongod"},
	})
	if err != nil {
		t.Fatalf("Control: %v", err)
	}
	if res.Successes != 2 || len(res.Events) != 2 {
		t.Fatalf("unexpected result %+v", res)
	}
	for _, id := range []string{"redis-server", "mongod"} {
		e, _ := mem.Registry().Get(id)
		if e.Status != model.StatusRunning {
			t.Fatalf("%s: expected running, got %s", id, e.Status)
		}
	}
}

func TestAppControlPartialFailure(t *testing.T) {
	stubBackend(t, testItems()...)
	app := newTestApp(t, nil)

	res, err := app.Control(context.Background(), ControlParams{
		Action: model.ActionStart,
		IDs:    []string{"redis-server", "memcached", "ghost"},
	})
	if err == nil || err.Error() != "partially successful: started 1/3 services" {
		t.Fatalf("expected partial error, got %v", err)
	}
	kinds := map[string]svcerr.Kind{}
	for _, ev := range res.Events {
		if ev.Kind == "failure" {
			kinds[ev.ID] = ev.Err.Kind
		}
	}
	if kinds["memcached"] != svcerr.InvalidState {
		t.Fatalf("disabled service: got %v", kinds["memcached"])
	}
	if kinds["ghost"] != svcerr.NotFound {
		t.Fatalf("unknown service: got %v", kinds["ghost"])
	}
}

func TestAppControlAllFail(t *testing.T) {
	mem := stubBackend(t, testItems()...)
	mem.FailNext("postgresql", errors.New("access is denied"))
	app := newTestApp(t, nil)

	res, err := app.Control(context.Background(), ControlParams{Action: model.ActionStop, IDs: []string{"postgresql"}})
	if err == nil || err.Error() != "no services were stopped (see output above)" {
		t.Fatalf("expected failure, got %v", err)
	}
	if res.Events[0].Err.Kind != svcerr.PermissionDenied {
		t.Fatalf("expected permission denied, got %v", res.Events[0].Err.Kind)
	}
}

func TestAppBulkStartFiltered(t *testing.T) {
	mem := stubBackend(t, testItems()...)
	app := newTestApp(t, nil)

	var events []controller.EventKind
	res, err := app.Bulk(context.Background(), BulkParams{
		Action:  model.ActionStart,
		Query:   filter.Query{Selector: string(model.TypeRedis)},
		OnEvent: func(ev controller.Event) { events = append(events, ev.Kind) },
	})
	if err != nil {
		t.Fatalf("Bulk: %v", err)
	}
	if res.Attempted != 1 || res.Succeeded != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	if e, _ := mem.Registry().Get("mongod"); e.Status != model.StatusStopped {
		t.Fatalf("filtered-out service changed: %s", e.Status)
	}
	if len(events) == 0 || events[len(events)-1] != controller.EventBulkFinished {
		t.Fatalf("expected bulk_finished last, got %v", events)
	}
}

func TestAppBulkRejectsRestart(t *testing.T) {
	app := newTestApp(t, nil)
	if _, err := app.Bulk(context.Background(), BulkParams{Action: model.ActionRestart}); err == nil {
		t.Fatal("expected error for restart bulk")
	}
}

func TestAppStartDaemonRejectsDaemonBackend(t *testing.T) {
	app := newTestApp(t, func(c *config.Config) { c.Backend = config.BackendDaemon })
	if _, err := app.StartDaemon(); err == nil {
		t.Fatal("expected error")
	}
}
