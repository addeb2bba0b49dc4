package backend

import (
	"context"
	"errors"
	"testing"
	"time"

	"svcboard/internal/model"
	"svcboard/internal/svcerr"
)

func newTestMemory(t *testing.T, items ...model.Item) *Memory {
	t.Helper()
	m, err := NewMemoryWith(0, items...)
	if err != nil {
		t.Fatalf("new memory backend: %v", err)
	}
	return m
}

func status(t *testing.T, m *Memory, id string) model.Status {
	t.Helper()
	e, ok := m.Registry().Get(id)
	if !ok {
		t.Fatalf("%s missing", id)
	}
	return e.Status
}

func TestMemoryTransitions(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory(t, model.Item{ID: "pg1", Status: model.StatusStopped, Policy: model.PolicyManual})

	if err := m.Start(ctx, "pg1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if got := status(t, m, "pg1"); got != model.StatusRunning {
		t.Fatalf("expected running, got %s", got)
	}
	if err := m.Restart(ctx, "pg1"); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if err := m.Stop(ctx, "pg1"); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if got := status(t, m, "pg1"); got != model.StatusStopped {
		t.Fatalf("expected stopped, got %s", got)
	}
}

func TestMemoryValidation(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory(t,
		model.Item{ID: "up", Status: model.StatusRunning},
		model.Item{ID: "down", Status: model.StatusStopped},
		model.Item{ID: "off", Status: model.StatusStopped, Policy: model.PolicyDisabled},
	)
	cases := []struct {
		name string
		call func() error
		want svcerr.Kind
	}{
		{"start running", func() error { return m.Start(ctx, "up") }, svcerr.InvalidState},
		{"stop stopped", func() error { return m.Stop(ctx, "down") }, svcerr.InvalidState},
		{"start disabled", func() error { return m.Start(ctx, "off") }, svcerr.InvalidState},
		{"restart disabled", func() error { return m.Restart(ctx, "off") }, svcerr.InvalidState},
		{"missing", func() error { return m.Start(ctx, "nope") }, svcerr.NotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.call(); !svcerr.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestMemoryShowsTransitionalStatus(t *testing.T) {
	m, err := NewMemoryWith(50*time.Millisecond, model.Item{ID: "redis", Status: model.StatusStopped})
	if err != nil {
		t.Fatal(err)
	}
	done := make(chan error, 1)
	go func() { done <- m.Start(context.Background(), "redis") }()

	deadline := time.After(time.Second)
	for status(t, m, "redis") != model.StatusStarting {
		select {
		case <-deadline:
			t.Fatal("never observed starting")
		case <-time.After(time.Millisecond):
		}
	}
	if err := <-done; err != nil {
		t.Fatalf("start: %v", err)
	}
}

func TestMemoryCancelRestoresStatus(t *testing.T) {
	m, err := NewMemoryWith(time.Second, model.Item{ID: "redis", Status: model.StatusStopped})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := m.Start(ctx, "redis"); !svcerr.Is(err, svcerr.Timeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
	if got := status(t, m, "redis"); got != model.StatusStopped {
		t.Fatalf("expected status restored, got %s", got)
	}
}

func TestMemoryFailNext(t *testing.T) {
	m := newTestMemory(t, model.Item{ID: "pg1", Status: model.StatusStopped})
	m.FailNext("pg1", errors.New("Access is denied."))
	if err := m.Start(context.Background(), "pg1"); !svcerr.Is(err, svcerr.PermissionDenied) {
		t.Fatalf("expected injected failure, got %v", err)
	}
	if got := status(t, m, "pg1"); got != model.StatusStopped {
		t.Fatalf("failed start must not change status, got %s", got)
	}
	if err := m.Start(context.Background(), "pg1"); err != nil {
		t.Fatalf("failure should only apply once: %v", err)
	}
}

func TestNewMemoryLoadsDemo(t *testing.T) {
	m, err := NewMemory(MemoryOptions{})
	if err != nil {
		t.Fatal(err)
	}
	items, err := m.ListItems(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != len(DemoItems()) {
		t.Fatalf("expected %d demo items, got %d", len(DemoItems()), len(items))
	}
}
