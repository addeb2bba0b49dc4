package controller

import (
	"svcboard/internal/model"
	"svcboard/internal/svcerr"
)

// EventKind tells observers what changed.
type EventKind string

const (
	EventRefreshed    EventKind = "refreshed"
	EventRowStarted   EventKind = "row_started"
	EventRowSettled   EventKind = "row_settled"
	EventBanner       EventKind = "banner"
	EventBulkStarted  EventKind = "bulk_started"
	EventBulkFinished EventKind = "bulk_finished"
	EventViewChanged  EventKind = "view_changed"
)

// Event is delivered to Options.OnEvent after the state change is visible
// through View.
type Event struct {
	Kind   EventKind     `json:"kind"`
	ID     string        `json:"id,omitempty"`
	Action model.Action  `json:"action,omitempty"`
	Err    *svcerr.Error `json:"error,omitempty"`
	Bulk   *BulkResult   `json:"bulk,omitempty"`

	// Targets is the number of selected services on bulk_started.
	Targets int `json:"targets,omitempty"`
}

// BulkResult summarizes a start-all, stop-all or group action.
type BulkResult struct {
	Action    model.Action             `json:"action"`
	Attempted int                      `json:"attempted"`
	Succeeded int                      `json:"succeeded"`
	Failed    int                      `json:"failed"`
	Skipped   int                      `json:"skipped"`
	Errors    map[string]*svcerr.Error `json:"errors,omitempty"`
}
