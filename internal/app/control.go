package app

import (
	"context"
	"errors"
	"fmt"

	"svcboard/internal/controller"
	"svcboard/internal/filter"
	"svcboard/internal/model"
	"svcboard/internal/svcerr"
)

// ControlParams names the action and its targets.
type ControlParams struct {
	Action model.Action
	IDs    []string
}

// ControlEvent describes one action taken during Control.
type ControlEvent struct {
	Kind string
	ID   string
	Err  *svcerr.Error
}

// ControlResult aggregates the command outcome.
type ControlResult struct {
	Events    []ControlEvent
	Successes int
}

// Control runs an action against each id in turn. Failures do not stop the
// remaining ids.
func (a *App) Control(ctx context.Context, params ControlParams) (ControlResult, error) {
	var result ControlResult
	if !params.Action.Valid() {
		return result, fmt.Errorf("unknown action %q", params.Action)
	}
	if len(params.IDs) == 0 {
		return result, errors.New("provide at least one service id")
	}

	s, err := a.Open(ctx, nil)
	if s == nil {
		return result, err
	}
	defer s.Close()
	if err != nil {
		return result, fmt.Errorf("list services: %w", err)
	}

	for _, id := range params.IDs {
		if err := s.Do(ctx, id, params.Action); err != nil {
			result.Events = append(result.Events, ControlEvent{
				Kind: "failure",
				ID:   id,
				Err:  svcerr.Classify(err, id),
			})
			continue
		}
		result.Events = append(result.Events, ControlEvent{Kind: "success", ID: id})
		result.Successes++
	}

	switch {
	case result.Successes == len(params.IDs):
		return result, nil
	case result.Successes == 0:
		return result, fmt.Errorf("no services were %s (see output above)", pastTense(params.Action))
	default:
		return result, fmt.Errorf("partially successful: %s %d/%d services", pastTense(params.Action), result.Successes, len(params.IDs))
	}
}

// BulkParams selects the bulk action and the view it applies to.
type BulkParams struct {
	Action model.Action
	Query  filter.Query
	// OnEvent observes row and bulk events while the batch runs.
	OnEvent func(controller.Event)
}

// Bulk runs start-all or stop-all over the services matching Query.
func (a *App) Bulk(ctx context.Context, params BulkParams) (controller.BulkResult, error) {
	if params.Action != model.ActionStart && params.Action != model.ActionStop {
		return controller.BulkResult{}, fmt.Errorf("bulk action must be start or stop, got %q", params.Action)
	}
	if !filter.Valid(params.Query.Selector) {
		return controller.BulkResult{}, fmt.Errorf("unknown selector %q", params.Query.Selector)
	}
	s, err := a.Open(ctx, params.OnEvent)
	if s == nil {
		return controller.BulkResult{}, err
	}
	defer s.Close()
	if err != nil {
		return controller.BulkResult{}, fmt.Errorf("list services: %w", err)
	}
	s.SetQuery(params.Query)
	if params.Action == model.ActionStart {
		return s.StartAll(ctx)
	}
	return s.StopAll(ctx)
}

func pastTense(a model.Action) string {
	switch a {
	case model.ActionStart:
		return "started"
	case model.ActionStop:
		return "stopped"
	default:
		return "restarted"
	}
}
