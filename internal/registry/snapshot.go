package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"svcboard/internal/model"
)

// Snapshot schema versioning for forward-compatibility.
const snapshotVersion = 1

type snapshot struct {
	Version  int     `json:"version"`
	Services []Entry `json:"services"`
	Created  int64   `json:"created_unix"`
}

// Seed adds every service listed in a JSON file. The file is either a
// snapshot written by the registry or a bare array of services.
func (r *Registry) Seed(path string) (int, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	items, err := decodeSeed(b)
	if err != nil {
		return 0, fmt.Errorf("seed %s: %w", path, err)
	}
	added := 0
	for _, it := range items {
		existed, err := r.Add(it)
		if err != nil {
			return added, fmt.Errorf("seed %s: %w", path, err)
		}
		if !existed {
			added++
		}
	}
	return added, nil
}

func decodeSeed(b []byte) ([]model.Item, error) {
	var items []model.Item
	if err := json.Unmarshal(b, &items); err == nil {
		return items, nil
	}
	var s snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	items = make([]model.Item, 0, len(s.Services))
	for _, e := range s.Services {
		items = append(items, e.Item())
	}
	return items, nil
}

func (r *Registry) loadSnapshot(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	var s snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s.Version != snapshotVersion {
		r.log.Warn().Int("version", s.Version).Msg("unexpected snapshot version; loading anyway")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.byID = make(map[string]*Entry)
	r.byType = make(map[model.ServiceType]map[string]struct{})
	r.byStatus = make(map[model.Status]map[string]struct{})

	for i := range s.Services {
		// Store pointer to copy to avoid referencing slice backing array.
		e := s.Services[i]
		r.indexLocked(&e)
	}
	return nil
}

func (r *Registry) saveSnapshot(path string) error {
	tmp := path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}

	r.mu.RLock()
	s := snapshot{
		Version: snapshotVersion,
		Created: now().Unix(),
	}
	s.Services = make([]Entry, 0, len(r.byID))
	for _, e := range r.byID {
		s.Services = append(s.Services, *e)
	}
	r.mu.RUnlock()

	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
