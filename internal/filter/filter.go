// Package filter derives the visible subset of the service list.
package filter

import (
	"strings"

	"svcboard/internal/catalog"
	"svcboard/internal/model"
)

// All is the selector that passes every item.
const All = "all"

// Query holds the search term and the type or category selector.
type Query struct {
	Search   string `json:"search"`
	Selector string `json:"selector"`
}

// Normalized trims the search term and maps an empty selector to All.
func (q Query) Normalized() Query {
	q.Search = strings.TrimSpace(q.Search)
	if q.Selector == "" {
		q.Selector = All
	}
	return q
}

// Apply returns the items matching q, preserving input order. Text matching
// runs first, the selector second. The input slice is never modified.
func Apply(items []model.Item, q Query) []model.Item {
	q = q.Normalized()
	out := make([]model.Item, 0, len(items))
	needle := strings.ToLower(q.Search)
	for _, item := range items {
		if !MatchText(item, needle) {
			continue
		}
		if !MatchSelector(item, q.Selector) {
			continue
		}
		out = append(out, item)
	}
	return out
}

// MatchText reports whether the lower-cased needle occurs in the display
// name, identifier or classification key. An empty needle matches.
func MatchText(item model.Item, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(item.DisplayName), needle) ||
		strings.Contains(strings.ToLower(item.ID), needle) ||
		strings.Contains(string(catalog.Classify(item)), needle)
}

// MatchSelector compares the selector with the item's type key and category
// key. The two key sets do not overlap.
func MatchSelector(item model.Item, selector string) bool {
	if selector == "" || selector == All {
		return true
	}
	t := catalog.Classify(item)
	return selector == string(t) || selector == string(t.Category())
}

// Counts returns, for the items matching search, how many fall under each
// selector value. The All entry holds the total.
func Counts(items []model.Item, search string) map[string]int {
	needle := strings.ToLower(strings.TrimSpace(search))
	counts := map[string]int{All: 0}
	for _, item := range items {
		if !MatchText(item, needle) {
			continue
		}
		t := catalog.Classify(item)
		counts[All]++
		counts[string(t)]++
		counts[string(t.Category())]++
	}
	return counts
}

// Valid reports whether selector names All, a known type or a category.
func Valid(selector string) bool {
	if selector == "" || selector == All {
		return true
	}
	if model.ServiceType(selector).Known() {
		return true
	}
	for _, c := range model.AllCategories {
		if string(c) == selector {
			return true
		}
	}
	return false
}
