package controller

import (
	"time"

	"svcboard/internal/catalog"
	"svcboard/internal/filter"
	"svcboard/internal/model"
	"svcboard/internal/rowstate"
	"svcboard/internal/svcerr"
)

// RowView is the interactive state of one visible row.
type RowView struct {
	Phase    rowstate.Phase `json:"phase"`
	Error    *svcerr.Error  `json:"error,omitempty"`
	Excluded bool           `json:"excluded,omitempty"`
}

// Busy reports whether the row controls should be disabled.
func (r RowView) Busy() bool {
	return r.Phase.Active()
}

// View is a read-only projection of the controller state.
type View struct {
	Query       filter.Query       `json:"query"`
	GroupBy     catalog.GroupBy    `json:"group_by"`
	Items       []model.Item       `json:"items"`
	Groups      []catalog.Group    `json:"groups"`
	Rows        map[string]RowView `json:"rows"`
	Counts      map[string]int     `json:"counts"`
	Total       int                `json:"total"`
	Banner      *svcerr.Error      `json:"banner,omitempty"`
	Processing  bool               `json:"processing"`
	Loaded      bool               `json:"loaded"`
	RefreshedAt time.Time          `json:"refreshed_at"`
}

// Row returns the state of id; unknown ids are idle.
func (v View) Row(id string) RowView {
	if r, ok := v.Rows[id]; ok {
		return r
	}
	return RowView{Phase: rowstate.Idle}
}

// View derives the filtered, grouped projection with transitional overlays
// applied. The snapshot itself is never touched.
func (c *Controller) View() View {
	rows := c.rows.Snapshot()

	c.mu.Lock()
	defer c.mu.Unlock()

	shown := make([]model.Item, len(c.items))
	for i, it := range c.items {
		shown[i] = overlay(it, rows[it.ID])
	}
	visible := filter.Apply(shown, c.query)

	v := View{
		Query:       c.query,
		GroupBy:     c.groupBy,
		Items:       visible,
		Groups:      catalog.Partition(visible, c.groupBy, c.expansion),
		Rows:        make(map[string]RowView, len(visible)),
		Counts:      filter.Counts(shown, c.query.Search),
		Total:       len(c.items),
		Banner:      c.banner,
		Processing:  c.processing,
		Loaded:      c.loaded,
		RefreshedAt: c.refreshedAt,
	}
	for _, it := range visible {
		r := rows[it.ID]
		if r.Phase == "" {
			r.Phase = rowstate.Idle
		}
		v.Rows[it.ID] = RowView{Phase: r.Phase, Error: r.LastError, Excluded: c.excluded[it.ID]}
	}
	return v
}

// SetQuery replaces the search term and selector.
func (c *Controller) SetQuery(q filter.Query) {
	c.mu.Lock()
	c.query = q.Normalized()
	c.mu.Unlock()
	c.emit(Event{Kind: EventViewChanged})
}

// Query returns the active query.
func (c *Controller) Query() filter.Query {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// SetGroupBy switches between type and category grouping.
func (c *Controller) SetGroupBy(by catalog.GroupBy) {
	c.mu.Lock()
	c.groupBy = by
	c.mu.Unlock()
	c.emit(Event{Kind: EventViewChanged})
}

// ToggleGroup flips the expansion of a group and returns the new state.
func (c *Controller) ToggleGroup(key string) bool {
	c.mu.Lock()
	expanded := c.expansion.Toggle(key)
	c.mu.Unlock()
	c.emit(Event{Kind: EventViewChanged})
	return expanded
}

// ToggleExcluded flips whether id takes part in bulk and group actions.
func (c *Controller) ToggleExcluded(id string) (bool, error) {
	c.mu.Lock()
	if _, ok := c.byID[id]; !ok {
		c.mu.Unlock()
		return false, svcerr.New(svcerr.NotFound, id, "service is not in the current list")
	}
	excluded := !c.excluded[id]
	if excluded {
		c.excluded[id] = true
	} else {
		delete(c.excluded, id)
	}
	c.mu.Unlock()
	c.emit(Event{Kind: EventViewChanged, ID: id})
	return excluded, nil
}

// DismissRow clears the inline error of id.
func (c *Controller) DismissRow(id string) bool {
	if !c.rows.Dismiss(id) {
		return false
	}
	c.emit(Event{Kind: EventViewChanged, ID: id})
	return true
}

// DismissBanner clears the global error.
func (c *Controller) DismissBanner() bool {
	c.mu.Lock()
	had := c.banner != nil
	c.banner = nil
	c.mu.Unlock()
	if had {
		c.emit(Event{Kind: EventViewChanged})
	}
	return had
}
