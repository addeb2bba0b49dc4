package rowstate

import (
	"errors"
	"testing"

	"svcboard/internal/model"
	"svcboard/internal/svcerr"
)

func TestBeginEntersPhase(t *testing.T) {
	tbl := NewTable()
	cases := map[model.Action]Phase{
		model.ActionStart:   Starting,
		model.ActionStop:    Stopping,
		model.ActionRestart: Restarting,
	}
	for action, want := range cases {
		id := string(action)
		got, err := tbl.Begin(id, action, model.PolicyManual)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", action, err)
		}
		if got != want || tbl.Get(id).Phase != want {
			t.Fatalf("%s: expected phase %s, got %s", action, want, got)
		}
		if got.Status() != action.Transitional() {
			t.Fatalf("%s: overlay %s does not match %s", action, got.Status(), action.Transitional())
		}
	}
}

func TestBeginWhileActiveIsNoop(t *testing.T) {
	tbl := NewTable()
	if _, err := tbl.Begin("pg1", model.ActionStart, model.PolicyAutomatic); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	phase, err := tbl.Begin("pg1", model.ActionStop, model.PolicyAutomatic)
	if !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	if phase != Starting || tbl.Get("pg1").Phase != Starting {
		t.Fatalf("phase changed to %s", tbl.Get("pg1").Phase)
	}
}

func TestDisabledPolicyRefusesStart(t *testing.T) {
	tbl := NewTable()
	for _, action := range []model.Action{model.ActionStart, model.ActionRestart} {
		phase, err := tbl.Begin("pg1", action, model.PolicyDisabled)
		if !svcerr.Is(err, svcerr.InvalidState) {
			t.Fatalf("%s: expected invalid state, got %v", action, err)
		}
		if phase != Idle || tbl.Get("pg1").Phase != Idle {
			t.Fatalf("%s: phase changed to %s", action, phase)
		}
		if tbl.Get("pg1").LastError == nil {
			t.Fatalf("%s: refusal should be surfaced on the row", action)
		}
	}
	if _, err := tbl.Begin("pg1", model.ActionStop, model.PolicyDisabled); err != nil {
		t.Fatalf("stop must not be refused by policy: %v", err)
	}
}

func TestSettleAlwaysReturnsIdle(t *testing.T) {
	tbl := NewTable()
	for _, settleErr := range []error{nil, errors.New("Access is denied.")} {
		if _, err := tbl.Begin("redis", model.ActionRestart, model.PolicyManual); err != nil {
			t.Fatalf("unexpected error %v", err)
		}
		tbl.Settle("redis", settleErr)
		row := tbl.Get("redis")
		if row.Phase != Idle {
			t.Fatalf("expected idle after settle, got %s", row.Phase)
		}
		if (settleErr == nil) != (row.LastError == nil) {
			t.Fatalf("last error mismatch: %v", row.LastError)
		}
	}
	if kind := tbl.Get("redis").LastError.Kind; kind != svcerr.PermissionDenied {
		t.Fatalf("expected permission denied, got %v", kind)
	}
}

func TestBeginClearsLastError(t *testing.T) {
	tbl := NewTable()
	tbl.Settle("a", errors.New("boom"))
	if _, err := tbl.Begin("a", model.ActionStart, model.PolicyManual); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if tbl.Get("a").LastError != nil {
		t.Fatal("expected error to be cleared")
	}
}

func TestDismissAndPrune(t *testing.T) {
	tbl := NewTable()
	tbl.Settle("gone", errors.New("x"))
	tbl.Settle("kept", errors.New("y"))
	if _, err := tbl.Begin("busy", model.ActionStop, model.PolicyManual); err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	if !tbl.Dismiss("kept") || tbl.Get("kept").LastError != nil {
		t.Fatal("dismiss did not clear the error")
	}
	if tbl.Dismiss("kept") {
		t.Fatal("second dismiss should report nothing to clear")
	}

	tbl.Prune(map[string]struct{}{"kept": {}})
	snap := tbl.Snapshot()
	if _, ok := snap["gone"]; ok {
		t.Fatal("row for removed item survived prune")
	}
	if _, ok := snap["busy"]; !ok {
		t.Fatal("in-flight row must survive until settled")
	}
}
