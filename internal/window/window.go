// Package window computes which rows of a long list must be materialized for
// a given viewport.
package window

// Defaults used when the caller has no configured values.
const (
	DefaultThreshold = 100
	DefaultOverscan  = 5
)

// Params describes the list and the viewport. Heights and offsets share a unit
// (terminal lines in the TUI, pixels elsewhere).
type Params struct {
	Count           int
	ItemHeight      int
	ContainerHeight int
	ScrollOffset    int
	Overscan        int
	Threshold       int
}

// Result is the contiguous index range [Start, Start+Count) to materialize.
type Result struct {
	Start       int
	Count       int
	TotalHeight int
	ItemHeight  int
	Active      bool
}

// Slot is the placement of one materialized item inside the scroll track.
type Slot struct {
	Index  int
	Top    int
	Bottom int
}

// Compute returns the materialized range. Lists at or below the threshold are
// never windowed and cover [0, Count).
func Compute(p Params) Result {
	h := p.ItemHeight
	if h <= 0 {
		h = 1
	}
	if p.Count <= 0 {
		return Result{ItemHeight: h, Active: p.Count > p.Threshold}
	}
	res := Result{TotalHeight: p.Count * h, ItemHeight: h}
	if p.Count <= p.Threshold {
		res.Count = p.Count
		return res
	}
	res.Active = true

	offset := p.ScrollOffset
	if offset < 0 {
		offset = 0
	}
	container := p.ContainerHeight
	if container < 0 {
		container = 0
	}
	overscan := p.Overscan
	if overscan < 0 {
		overscan = 0
	}

	last := p.Count - 1
	start := offset / h
	end := ceilDiv(offset+container, h)
	if start > last {
		start = last
	}
	if end > last {
		end = last
	}
	if end < start {
		end = start
	}

	start -= overscan
	if start < 0 {
		start = 0
	}
	end += overscan
	if end > last {
		end = last
	}

	res.Start = start
	res.Count = end - start + 1
	return res
}

// End is the exclusive upper bound of the range.
func (r Result) End() int {
	return r.Start + r.Count
}

// Contains reports whether index is materialized.
func (r Result) Contains(index int) bool {
	return index >= r.Start && index < r.End()
}

// Slots lists the position of every materialized index.
func (r Result) Slots() []Slot {
	if r.Count <= 0 {
		return nil
	}
	h := r.ItemHeight
	if h <= 0 {
		h = 1
	}
	slots := make([]Slot, 0, r.Count)
	for i := r.Start; i < r.End(); i++ {
		slots = append(slots, Slot{Index: i, Top: i * h, Bottom: (i + 1) * h})
	}
	return slots
}

// ClampOffset keeps offset inside the scrollable extent.
func ClampOffset(offset, count, itemHeight, containerHeight int) int {
	if itemHeight <= 0 {
		itemHeight = 1
	}
	maxOffset := count*itemHeight - containerHeight
	if offset > maxOffset {
		offset = maxOffset
	}
	if offset < 0 {
		offset = 0
	}
	return offset
}

// EnsureVisible returns the smallest scroll adjustment that brings index
// fully into the viewport.
func EnsureVisible(offset, index, itemHeight, containerHeight int) int {
	if itemHeight <= 0 {
		itemHeight = 1
	}
	top := index * itemHeight
	bottom := top + itemHeight
	if top < offset {
		offset = top
	}
	if bottom > offset+containerHeight {
		offset = bottom - containerHeight
	}
	if offset < 0 {
		offset = 0
	}
	return offset
}

func ceilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
