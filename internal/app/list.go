package app

import (
	"context"
	"fmt"

	"svcboard/internal/catalog"
	"svcboard/internal/controller"
	"svcboard/internal/filter"
)

// ListParams defines the query and grouping of a one-shot listing.
type ListParams struct {
	Query   filter.Query
	GroupBy catalog.GroupBy
}

// List loads the services once and returns the filtered, grouped view.
func (a *App) List(ctx context.Context, params ListParams) (controller.View, error) {
	if !filter.Valid(params.Query.Selector) {
		return controller.View{}, fmt.Errorf("unknown selector %q", params.Query.Selector)
	}
	s, err := a.Open(ctx, nil)
	if s == nil {
		return controller.View{}, err
	}
	defer s.Close()
	if err != nil {
		return controller.View{}, fmt.Errorf("list services: %w", err)
	}
	s.SetQuery(params.Query)
	s.SetGroupBy(params.GroupBy)
	return s.View(), nil
}
