package registry

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"svcboard/internal/catalog"
	"svcboard/internal/model"
)

// Registry is a threadsafe in-memory catalog of services.
// Secondary indexes enable cheap queries by type and status.
type Registry struct {
	mu       sync.RWMutex
	byID     map[string]*Entry
	byType   map[model.ServiceType]map[string]struct{}
	byStatus map[model.Status]map[string]struct{}

	log zerolog.Logger

	// Where to snapshot. If empty, snapshotting is disabled.
	SnapshotPath string
}

// New loads snapshot if present and returns a ready registry.
func New(snapshotPath string, log zerolog.Logger) (*Registry, error) {
	r := &Registry{
		byID:         make(map[string]*Entry),
		byType:       make(map[model.ServiceType]map[string]struct{}),
		byStatus:     make(map[model.Status]map[string]struct{}),
		log:          log,
		SnapshotPath: snapshotPath,
	}
	if snapshotPath != "" {
		if err := r.loadSnapshot(snapshotPath); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Add registers a service. Returns whether an entry with the same ID already
// existed, in which case nothing changes.
func (r *Registry) Add(it model.Item) (bool, error) {
	id, err := normalizeID(it.ID)
	if err != nil {
		return false, err
	}
	it.ID = id
	if it.Type == "" || !it.Type.Known() {
		it.Type = catalog.Classify(it)
	}
	if it.Status == "" {
		it.Status = model.StatusStopped
	}
	if it.Policy == "" {
		it.Policy = model.PolicyManual
	}

	r.mu.Lock()
	if _, ok := r.byID[id]; ok {
		r.mu.Unlock()
		return true, nil
	}
	ts := now()
	e := &Entry{
		ID:          id,
		DisplayName: it.DisplayName,
		Type:        it.Type,
		Status:      it.Status,
		Policy:      it.Policy,
		Description: it.Description,
		AddedAt:     ts,
		ChangedAt:   ts,
	}
	r.indexLocked(e)
	r.mu.Unlock()

	r.maybeSave()
	return false, nil
}

// SetStatus updates the status of id. It reports whether anything changed.
func (r *Registry) SetStatus(id string, status model.Status) (bool, error) {
	r.mu.Lock()
	e := r.byID[id]
	if e == nil {
		r.mu.Unlock()
		return false, errNotFound(id)
	}
	if e.Status == status {
		r.mu.Unlock()
		return false, nil
	}
	delete(r.byStatus[e.Status], id)
	if len(r.byStatus[e.Status]) == 0 {
		delete(r.byStatus, e.Status)
	}
	e.Status = status
	e.ChangedAt = now()
	addIndex(r.byStatus, status, id)
	r.mu.Unlock()

	r.maybeSave()
	return true, nil
}

// SetPolicy updates the startup policy of id.
func (r *Registry) SetPolicy(id string, policy model.StartupPolicy) error {
	r.mu.Lock()
	e := r.byID[id]
	if e == nil {
		r.mu.Unlock()
		return errNotFound(id)
	}
	e.Policy = policy
	e.ChangedAt = now()
	r.mu.Unlock()

	r.maybeSave()
	return nil
}

// Remove deletes an entry by ID.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	e := r.byID[id]
	if e == nil {
		r.mu.Unlock()
		return false
	}
	delete(r.byID, id)
	delete(r.byType[e.Type], id)
	if len(r.byType[e.Type]) == 0 {
		delete(r.byType, e.Type)
	}
	delete(r.byStatus[e.Status], id)
	if len(r.byStatus[e.Status]) == 0 {
		delete(r.byStatus, e.Status)
	}
	r.mu.Unlock()

	r.maybeSave()
	return true
}

// Reset clears the registry.
func (r *Registry) Reset() {
	r.mu.Lock()
	r.byID = make(map[string]*Entry)
	r.byType = make(map[model.ServiceType]map[string]struct{})
	r.byStatus = make(map[model.Status]map[string]struct{})
	r.mu.Unlock()

	r.maybeSave()
}

// Get returns a copy of an entry by ID.
func (r *Registry) Get(id string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e := r.byID[id]
	if e == nil {
		return Entry{}, false
	}
	return *e, true
}

// Len reports the number of entries.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// List returns matching entries, sorted by ID asc.
func (r *Registry) List(f ListFilter) []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}

	if len(f.IDs) > 0 {
		set := toSet(f.IDs)
		ids = filterIDs(ids, func(id string) bool {
			_, ok := set[id]
			return ok
		})
	}
	if len(f.Types) > 0 {
		typeSet := make(map[string]struct{})
		for _, t := range f.Types {
			for id := range r.byType[t] {
				typeSet[id] = struct{}{}
			}
		}
		ids = filterIDs(ids, func(id string) bool {
			_, ok := typeSet[id]
			return ok
		})
	}
	if len(f.Statuses) > 0 {
		statusSet := make(map[string]struct{})
		for _, s := range f.Statuses {
			for id := range r.byStatus[s] {
				statusSet[id] = struct{}{}
			}
		}
		ids = filterIDs(ids, func(id string) bool {
			_, ok := statusSet[id]
			return ok
		})
	}
	if s := strings.ToLower(strings.TrimSpace(f.TextSearch)); s != "" {
		ids = filterIDs(ids, func(id string) bool {
			e := r.byID[id]
			return strings.Contains(strings.ToLower(e.ID), s) || strings.Contains(strings.ToLower(e.DisplayName), s)
		})
	}

	out := make([]Entry, 0, len(ids))
	for _, id := range ids {
		out = append(out, *r.byID[id])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *Registry) indexLocked(e *Entry) {
	r.byID[e.ID] = e
	addIndex(r.byType, e.Type, e.ID)
	addIndex(r.byStatus, e.Status, e.ID)
}

// maybeSave performs a best-effort snapshot write if a path is configured.
func (r *Registry) maybeSave() {
	if r.SnapshotPath == "" {
		return
	}
	if err := r.saveSnapshot(r.SnapshotPath); err != nil {
		r.log.Warn().Err(err).Str("path", r.SnapshotPath).Msg("registry snapshot failed")
	}
}

// --- helpers ---

func addIndex[K comparable](idx map[K]map[string]struct{}, key K, id string) {
	if _, ok := idx[key]; !ok {
		idx[key] = make(map[string]struct{})
	}
	idx[key][id] = struct{}{}
}

func toSet(xs []string) map[string]struct{} {
	m := make(map[string]struct{}, len(xs))
	for _, x := range xs {
		m[x] = struct{}{}
	}
	return m
}

func filterIDs(ids []string, keep func(string) bool) []string {
	dst := ids[:0]
	for _, id := range ids {
		if keep(id) {
			dst = append(dst, id)
		}
	}
	return dst
}

func errNotFound(id string) error {
	return fmt.Errorf("service %q not found", id)
}

func now() time.Time {
	return time.Now().UTC()
}
