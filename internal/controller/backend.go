package controller

import (
	"context"

	"svcboard/internal/model"
)

// Backend is the service-control collaborator. ListItems must be safe to
// call repeatedly. Control calls fail with errors that svcerr can classify.
type Backend interface {
	ListItems(ctx context.Context) ([]model.Item, error)
	Start(ctx context.Context, id string) error
	Stop(ctx context.Context, id string) error
	Restart(ctx context.Context, id string) error
}

// Invoke runs action against b.
func Invoke(ctx context.Context, b Backend, action model.Action, id string) error {
	switch action {
	case model.ActionStart:
		return b.Start(ctx, id)
	case model.ActionStop:
		return b.Stop(ctx, id)
	case model.ActionRestart:
		return b.Restart(ctx, id)
	default:
		return errUnknownAction(action)
	}
}
