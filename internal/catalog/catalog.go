// Package catalog partitions services into ordered, collapsible groups.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"svcboard/internal/model"
)

// GroupBy selects the grouping key.
type GroupBy int

const (
	ByType GroupBy = iota
	ByCategory
)

func (g GroupBy) String() string {
	if g == ByCategory {
		return "category"
	}
	return "type"
}

// MarshalText encodes the mode by name.
func (g GroupBy) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText.
func (g *GroupBy) UnmarshalText(b []byte) error {
	v, ok := ParseGroupBy(string(b))
	if !ok {
		return fmt.Errorf("unknown grouping %q", string(b))
	}
	*g = v
	return nil
}

// ParseGroupBy accepts "type" or "category".
func ParseGroupBy(s string) (GroupBy, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "type":
		return ByType, true
	case "category":
		return ByCategory, true
	default:
		return ByType, false
	}
}

// Expansion records per-group expand state for one session. Missing keys are
// expanded.
type Expansion map[string]bool

// Expanded reports the state of key.
func (e Expansion) Expanded(key string) bool {
	v, ok := e[key]
	return !ok || v
}

// Toggle flips key and returns the new state.
func (e Expansion) Toggle(key string) bool {
	next := !e.Expanded(key)
	e[key] = next
	return next
}

// Summary counts members by settled status.
type Summary struct {
	Running int `json:"running"`
	Stopped int `json:"stopped"`
}

// Group is one partition of the list.
type Group struct {
	Key      string       `json:"key"`
	Name     string       `json:"name"`
	Icon     string       `json:"icon"`
	Color    string       `json:"color"`
	Items    []model.Item `json:"items"`
	Summary  Summary      `json:"summary"`
	Expanded bool         `json:"expanded"`
}

// KeyOf returns the group key item falls under for the given mode.
func KeyOf(item model.Item, by GroupBy) string {
	t := Classify(item)
	if by == ByCategory {
		return string(t.Category())
	}
	return string(t)
}

// Partition groups items. Groups are ordered by name and members by display
// name then identifier; empty groups are never produced. A nil expansion
// treats every group as expanded.
func Partition(items []model.Item, by GroupBy, expansion Expansion) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, item := range items {
		key := KeyOf(item, by)
		pos, ok := index[key]
		if !ok {
			pos = len(groups)
			index[key] = pos
			groups = append(groups, newGroup(key, by, expansion))
		}
		g := &groups[pos]
		g.Items = append(g.Items, item)
		switch item.Status {
		case model.StatusRunning:
			g.Summary.Running++
		case model.StatusStopped:
			g.Summary.Stopped++
		}
	}

	for i := range groups {
		SortItems(groups[i].Items)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].Name != groups[j].Name {
			return groups[i].Name < groups[j].Name
		}
		return groups[i].Key < groups[j].Key
	})
	return groups
}

func newGroup(key string, by GroupBy, expansion Expansion) Group {
	g := Group{Key: key, Expanded: expansion.Expanded(key)}
	if by == ByCategory {
		info := model.Category(key).Info()
		g.Name, g.Icon, g.Color = info.Name, info.Icon, info.Color
		return g
	}
	info := model.ServiceType(key).Info()
	g.Name, g.Icon, g.Color = info.Name, info.Icon, info.Color
	return g
}

// SortItems orders items by display name, case-insensitively, then by ID.
func SortItems(items []model.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := strings.ToLower(items[i].Label()), strings.ToLower(items[j].Label())
		if a != b {
			return a < b
		}
		return items[i].ID < items[j].ID
	})
}

// HeaderAction picks what a group-wide toggle does: stop when something runs
// and running members are not outnumbered by stopped ones, start otherwise.
// Members for which skip returns true are left out of the count.
func (g Group) HeaderAction(skip func(model.Item) bool) model.Action {
	running, stopped := 0, 0
	for _, item := range g.Items {
		if skip != nil && skip(item) {
			continue
		}
		switch item.Status {
		case model.StatusRunning:
			running++
		case model.StatusStopped:
			stopped++
		}
	}
	if running > 0 && running >= stopped {
		return model.ActionStop
	}
	return model.ActionStart
}
