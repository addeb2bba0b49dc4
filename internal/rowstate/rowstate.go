// Package rowstate tracks the in-flight control operation of each row,
// independently from the status reported by the backend.
package rowstate

import (
	"errors"
	"sync"

	"svcboard/internal/model"
	"svcboard/internal/svcerr"
)

// ErrBusy is returned when a row already has an operation in flight.
var ErrBusy = errors.New("operation already in progress")

// Phase is the operation lifecycle of a row.
type Phase string

const (
	Idle       Phase = "idle"
	Starting   Phase = "starting"
	Stopping   Phase = "stopping"
	Restarting Phase = "restarting"
)

// Active reports whether a call is in flight.
func (p Phase) Active() bool {
	return p != Idle && p != ""
}

// Status is the transitional status to overlay while p is active.
func (p Phase) Status() model.Status {
	switch p {
	case Starting:
		return model.StatusStarting
	case Stopping:
		return model.StatusStopping
	case Restarting:
		return model.StatusRestarting
	default:
		return ""
	}
}

// PhaseFor maps an action to its active phase.
func PhaseFor(a model.Action) Phase {
	switch a {
	case model.ActionStart:
		return Starting
	case model.ActionStop:
		return Stopping
	case model.ActionRestart:
		return Restarting
	default:
		return Idle
	}
}

// Row is the state of one row.
type Row struct {
	Phase     Phase         `json:"phase"`
	LastError *svcerr.Error `json:"last_error,omitempty"`
}

// Table holds rows keyed by service identifier. Rows are created lazily.
type Table struct {
	mu   sync.Mutex
	rows map[string]*Row
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{rows: make(map[string]*Row)}
}

// Get returns a copy of the row for id; unknown ids are idle.
func (t *Table) Get(id string) Row {
	t.mu.Lock()
	defer t.mu.Unlock()
	if r, ok := t.rows[id]; ok {
		return *r
	}
	return Row{Phase: Idle}
}

// Begin moves an idle row into the phase for action. A row that is not idle
// yields ErrBusy; start and restart on a disabled service yield an
// InvalidState error. Neither case changes the phase. On success the previous
// error is cleared.
func (t *Table) Begin(id string, action model.Action, policy model.StartupPolicy) (Phase, error) {
	phase := PhaseFor(action)
	if phase == Idle {
		return Idle, svcerr.New(svcerr.InvalidState, id, "unknown action %q", action)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	row := t.rowLocked(id)
	if row.Phase.Active() {
		return row.Phase, ErrBusy
	}
	if policy == model.PolicyDisabled && action != model.ActionStop {
		err := svcerr.New(svcerr.InvalidState, id, "cannot %s a disabled service", action)
		row.LastError = err
		return row.Phase, err
	}
	row.Phase = phase
	row.LastError = nil
	return phase, nil
}

// Settle returns the row to idle and records err, if any, as its last error.
func (t *Table) Settle(id string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	row := t.rowLocked(id)
	row.Phase = Idle
	row.LastError = svcerr.Classify(err, id)
}

// Dismiss clears the last error of id.
func (t *Table) Dismiss(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	row, ok := t.rows[id]
	if !ok || row.LastError == nil {
		return false
	}
	row.LastError = nil
	return true
}

// Prune drops rows whose id is not in keep. Rows still in flight survive
// until they settle.
func (t *Table) Prune(keep map[string]struct{}) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, row := range t.rows {
		if _, ok := keep[id]; ok {
			continue
		}
		if row.Phase.Active() {
			continue
		}
		delete(t.rows, id)
	}
}

// Snapshot copies every tracked row.
func (t *Table) Snapshot() map[string]Row {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]Row, len(t.rows))
	for id, r := range t.rows {
		out[id] = *r
	}
	return out
}

// Len reports the number of tracked rows.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.rows)
}

func (t *Table) rowLocked(id string) *Row {
	row, ok := t.rows[id]
	if !ok {
		row = &Row{Phase: Idle}
		t.rows[id] = row
	}
	return row
}
