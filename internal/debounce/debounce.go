// Package debounce delays a rapidly changing value until it has been quiet
// for a fixed interval.
package debounce

import (
	"sync"
	"time"

	bepdebounce "github.com/bep/debounce"
)

// Debouncer emits the last pushed value once no newer value arrived within
// the delay. The zero delay emits synchronously.
type Debouncer[T any] struct {
	delay time.Duration
	emit  func(T)
	run   func(func())

	mu      sync.Mutex
	gen     uint64
	stopped bool
}

// New returns a Debouncer calling emit with settled values.
func New[T any](delay time.Duration, emit func(T)) *Debouncer[T] {
	d := &Debouncer[T]{delay: delay, emit: emit}
	if delay > 0 {
		d.run = bepdebounce.New(delay)
	}
	return d
}

// Delay reports the configured quiescence interval.
func (d *Debouncer[T]) Delay() time.Duration {
	return d.delay
}

// Push schedules v, superseding any pending value.
func (d *Debouncer[T]) Push(v T) {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.gen++
	gen := d.gen
	d.mu.Unlock()

	if d.run == nil {
		d.emit(v)
		return
	}
	d.run(func() {
		d.mu.Lock()
		current := !d.stopped && gen == d.gen
		d.mu.Unlock()
		if current {
			d.emit(v)
		}
	})
}

// Stop drops any pending value; later pushes are ignored.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	d.stopped = true
	d.gen++
	d.mu.Unlock()
	if d.run != nil {
		d.run(func() {})
	}
}
