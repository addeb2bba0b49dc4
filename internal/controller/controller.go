// Package controller owns the service snapshot and reconciles it with the
// control backend after every operation.
package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"svcboard/internal/catalog"
	"svcboard/internal/filter"
	"svcboard/internal/model"
	"svcboard/internal/rowstate"
	"svcboard/internal/svcerr"
)

var (
	// ErrClosed is returned once Close has been called.
	ErrClosed = errors.New("controller closed")
	// ErrBusy is returned when a bulk operation is already running.
	ErrBusy = errors.New("bulk operation already in progress")
)

const defaultBulkConcurrency = 4

// Options configures a Controller.
type Options struct {
	Backend Backend
	// OperationTimeout bounds every control call; zero waits forever.
	OperationTimeout time.Duration
	// BulkConcurrency caps parallel calls in bulk operations.
	BulkConcurrency int
	Logger          zerolog.Logger
	OnEvent         func(Event)
}

// Controller is safe for concurrent use. Backend calls never run under its
// lock.
type Controller struct {
	backend Backend
	timeout time.Duration
	limit   int
	log     zerolog.Logger
	onEvent func(Event)

	rows *rowstate.Table

	mu          sync.Mutex
	items       []model.Item
	byID        map[string]int
	loaded      bool
	refreshedAt time.Time
	issued      uint64
	settled     uint64
	query       filter.Query
	groupBy     catalog.GroupBy
	expansion   catalog.Expansion
	excluded    map[string]bool
	banner      *svcerr.Error
	processing  bool
	closed      bool

	// lingering holds ids whose call timed out but has not returned yet.
	lingering map[string]struct{}
}

// New builds a controller; call Refresh to load the first snapshot.
func New(opts Options) (*Controller, error) {
	if opts.Backend == nil {
		return nil, errors.New("controller: backend is required")
	}
	limit := opts.BulkConcurrency
	if limit <= 0 {
		limit = defaultBulkConcurrency
	}
	return &Controller{
		backend:   opts.Backend,
		timeout:   opts.OperationTimeout,
		limit:     limit,
		log:       opts.Logger,
		onEvent:   opts.OnEvent,
		rows:      rowstate.NewTable(),
		byID:      make(map[string]int),
		query:     filter.Query{Selector: filter.All},
		expansion: make(catalog.Expansion),
		excluded:  make(map[string]bool),
		lingering: make(map[string]struct{}),
	}, nil
}

// Refresh replaces the snapshot with a fresh listing. A result older than
// one already settled, successfully or not, is dropped. On failure the
// previous snapshot stays and the banner is set.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.issued++
	seq := c.issued
	c.mu.Unlock()

	items, err := c.backend.ListItems(ctx)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if seq < c.settled {
		c.mu.Unlock()
		c.log.Debug().Uint64("seq", seq).Msg("discarding stale refresh")
		return nil
	}
	c.settled = seq
	if err != nil {
		banner := svcerr.Classify(err, "")
		c.banner = banner
		c.mu.Unlock()
		c.log.Error().Err(err).Str("kind", banner.Kind.String()).Msg("refresh failed")
		c.emit(Event{Kind: EventBanner, Err: banner})
		return banner
	}
	c.setItemsLocked(items)
	c.loaded = true
	c.refreshedAt = time.Now()
	c.banner = nil
	keep := make(map[string]struct{}, len(c.items))
	for _, it := range c.items {
		keep[it.ID] = struct{}{}
	}
	for id := range c.excluded {
		if _, ok := keep[id]; !ok {
			delete(c.excluded, id)
		}
	}
	count := len(c.items)
	c.mu.Unlock()

	c.rows.Prune(keep)
	c.log.Debug().Int("count", count).Msg("snapshot refreshed")
	c.emit(Event{Kind: EventRefreshed})
	return nil
}

func (c *Controller) setItemsLocked(items []model.Item) {
	c.items = make([]model.Item, 0, len(items))
	c.byID = make(map[string]int, len(items))
	for _, it := range items {
		if _, dup := c.byID[it.ID]; dup {
			c.log.Warn().Str("id", it.ID).Msg("duplicate service id in listing; keeping first")
			continue
		}
		it.Type = catalog.Classify(it)
		c.byID[it.ID] = len(c.items)
		c.items = append(c.items, it)
	}
}

// Start starts id and reconciles.
func (c *Controller) Start(ctx context.Context, id string) error {
	return c.run(ctx, id, model.ActionStart)
}

// Stop stops id and reconciles.
func (c *Controller) Stop(ctx context.Context, id string) error {
	return c.run(ctx, id, model.ActionStop)
}

// Restart restarts id and reconciles.
func (c *Controller) Restart(ctx context.Context, id string) error {
	return c.run(ctx, id, model.ActionRestart)
}

// Do runs any action against id.
func (c *Controller) Do(ctx context.Context, id string, action model.Action) error {
	if !action.Valid() {
		return errUnknownAction(action)
	}
	return c.run(ctx, id, action)
}

func (c *Controller) run(ctx context.Context, id string, action model.Action) error {
	dispatched, err := c.dispatch(ctx, id, action)
	if !dispatched {
		return err
	}
	if rerr := c.Refresh(ctx); errors.Is(rerr, ErrClosed) {
		return ErrClosed
	}
	return err
}

// dispatch is the optimistic protocol shared by every action: enter the
// active phase (which overlays the transitional status), call the backend,
// settle the row. dispatched is false when no backend call was made.
func (c *Controller) dispatch(ctx context.Context, id string, action model.Action) (dispatched bool, err error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false, ErrClosed
	}
	pos, ok := c.byID[id]
	var item model.Item
	if ok {
		item = c.items[pos]
	}
	_, lingering := c.lingering[id]
	c.mu.Unlock()
	if !ok {
		return false, svcerr.New(svcerr.NotFound, id, "service is not in the current list")
	}
	if lingering {
		return false, rowstate.ErrBusy
	}

	if _, err := c.rows.Begin(id, action, item.Policy); err != nil {
		if errors.Is(err, rowstate.ErrBusy) {
			return false, err
		}
		c.log.Warn().Str("id", id).Str("action", string(action)).Err(err).Msg("operation refused")
		c.emit(Event{Kind: EventRowSettled, ID: id, Action: action, Err: svcerr.Classify(err, id)})
		return false, err
	}
	c.emit(Event{Kind: EventRowStarted, ID: id, Action: action})

	callErr := c.call(ctx, action, id)

	if c.isClosed() {
		return true, ErrClosed
	}
	c.rows.Settle(id, callErr)
	if callErr == nil {
		c.log.Info().Str("id", id).Str("action", string(action)).Msg("operation finished")
		c.emit(Event{Kind: EventRowSettled, ID: id, Action: action})
		return true, nil
	}
	classified := svcerr.Classify(callErr, id)
	c.log.Error().Str("id", id).Str("action", string(action)).Str("kind", classified.Kind.String()).Err(callErr).Msg("operation failed")
	c.emit(Event{Kind: EventRowSettled, ID: id, Action: action, Err: classified})
	return true, classified
}

// call invokes the backend, giving up after the operation timeout even if
// the backend ignores its context. A call abandoned that way keeps id
// lingering until it returns, and dispatch refuses id meanwhile.
func (c *Controller) call(ctx context.Context, action model.Action, id string) error {
	if c.timeout <= 0 {
		return Invoke(ctx, c.backend, action, id)
	}
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- Invoke(callCtx, c.backend, action, id)
	}()
	select {
	case err := <-done:
		return err
	case <-callCtx.Done():
		c.linger(id, done)
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return svcerr.New(svcerr.Timeout, id, "%s did not complete within %s", action, c.timeout)
		}
		return callCtx.Err()
	}
}

func (c *Controller) linger(id string, done <-chan error) {
	c.mu.Lock()
	c.lingering[id] = struct{}{}
	c.mu.Unlock()
	go func() {
		<-done
		c.mu.Lock()
		delete(c.lingering, id)
		c.mu.Unlock()
		c.log.Debug().Str("id", id).Msg("abandoned call returned")
	}()
}

// StartAll starts every eligible stopped service in the filtered view.
func (c *Controller) StartAll(ctx context.Context) (BulkResult, error) {
	return c.bulk(ctx, model.ActionStart, nil)
}

// StopAll stops every eligible running service in the filtered view.
func (c *Controller) StopAll(ctx context.Context) (BulkResult, error) {
	return c.bulk(ctx, model.ActionStop, nil)
}

// RunGroup applies the group header action to the visible members of key
// and reports which action was chosen.
func (c *Controller) RunGroup(ctx context.Context, key string) (model.Action, BulkResult, error) {
	view := c.View()
	var group *catalog.Group
	for i := range view.Groups {
		if view.Groups[i].Key == key {
			group = &view.Groups[i]
			break
		}
	}
	if group == nil {
		return "", BulkResult{}, svcerr.New(svcerr.NotFound, "", "group %q is not in the current view", key)
	}
	action := group.HeaderAction(func(it model.Item) bool {
		return view.Rows[it.ID].Excluded || it.Policy == model.PolicyDisabled
	})
	by := view.GroupBy
	res, err := c.bulk(ctx, action, func(it model.Item) bool {
		return catalog.KeyOf(it, by) == key
	})
	return action, res, err
}

func (c *Controller) bulk(ctx context.Context, action model.Action, scope func(model.Item) bool) (BulkResult, error) {
	res := BulkResult{Action: action, Errors: make(map[string]*svcerr.Error)}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return res, ErrClosed
	}
	if c.processing {
		c.mu.Unlock()
		return res, ErrBusy
	}
	c.processing = true
	targets := c.eligibleLocked(action, scope)
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.processing = false
		c.mu.Unlock()
	}()

	c.log.Info().Str("action", string(action)).Int("targets", len(targets)).Msg("bulk operation started")
	c.emit(Event{Kind: EventBulkStarted, Action: action, Targets: len(targets)})

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(c.limit)
	for _, id := range targets {
		id := id
		g.Go(func() error {
			dispatched, err := c.dispatch(ctx, id, action)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case !dispatched:
				res.Skipped++
			case err != nil:
				res.Attempted++
				res.Failed++
				res.Errors[id] = svcerr.Classify(err, id)
			default:
				res.Attempted++
				res.Succeeded++
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := c.Refresh(ctx); errors.Is(err, ErrClosed) {
		return res, ErrClosed
	}

	c.log.Info().
		Str("action", string(action)).
		Int("attempted", res.Attempted).
		Int("failed", res.Failed).
		Int("skipped", res.Skipped).
		Msg("bulk operation finished")
	out := res
	c.emit(Event{Kind: EventBulkFinished, Action: action, Bulk: &out})
	return res, nil
}

// eligibleLocked selects targets from the filtered view: the status must be
// the one action changes, the policy must not be disabled, the operator must
// not have excluded it and no call may be in flight or lingering.
func (c *Controller) eligibleLocked(action model.Action, scope func(model.Item) bool) []string {
	want := model.StatusStopped
	if action == model.ActionStop {
		want = model.StatusRunning
	}
	var ids []string
	for _, it := range filter.Apply(c.items, c.query) {
		if scope != nil && !scope(it) {
			continue
		}
		if it.Status != want || it.Policy == model.PolicyDisabled || c.excluded[it.ID] {
			continue
		}
		if c.rows.Get(it.ID).Phase.Active() {
			continue
		}
		if _, ok := c.lingering[it.ID]; ok {
			continue
		}
		ids = append(ids, it.ID)
	}
	return ids
}

// Processing reports whether a bulk operation is running.
func (c *Controller) Processing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.processing
}

// Items returns a copy of the snapshot without overlays.
func (c *Controller) Items() []model.Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Item(nil), c.items...)
}

// Item looks up one service with its transitional overlay applied.
func (c *Controller) Item(id string) (model.Item, bool) {
	c.mu.Lock()
	pos, ok := c.byID[id]
	var it model.Item
	if ok {
		it = c.items[pos]
	}
	c.mu.Unlock()
	if !ok {
		return model.Item{}, false
	}
	return overlay(it, c.rows.Get(id)), true
}

// Poll refreshes every interval until ctx is done or the controller closes.
func (c *Controller) Poll(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.Refresh(ctx); errors.Is(err, ErrClosed) {
				return
			}
		}
	}
}

// Close detaches the controller. Operations still in flight finish on the
// backend but their results are dropped and no further events are sent.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

func (c *Controller) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Controller) emit(ev Event) {
	if c.onEvent == nil || c.isClosed() {
		return
	}
	c.onEvent(ev)
}

func overlay(it model.Item, row rowstate.Row) model.Item {
	if row.Phase.Active() {
		it.Status = row.Phase.Status()
	}
	return it
}

func errUnknownAction(action model.Action) error {
	return fmt.Errorf("unknown action %q", action)
}
