// Package backend provides the service-control implementations the
// controller talks to.
package backend

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"svcboard/internal/controller"
)

// Kinds accepted by Open.
const (
	KindAuto    = "auto"
	KindSystemd = "systemd"
	KindWindows = "windows"
	KindMemory  = "memory"
)

// Options selects and tunes a backend.
type Options struct {
	Kind string
	// SystemdScope is "system" or "user".
	SystemdScope  string
	CacheTTL      time.Duration
	MemorySeed    string
	MemoryLatency time.Duration
	// MemorySnapshot persists the simulated state between runs when set.
	MemorySnapshot string
	Logger         zerolog.Logger
}

// Open builds the backend described by opts, wrapped in a TTL cache when
// CacheTTL is positive.
func Open(opts Options) (controller.Backend, error) {
	kind := ResolveKind(opts.Kind)
	var (
		b   controller.Backend
		err error
	)
	switch kind {
	case KindSystemd:
		b, err = NewSystemd(opts.SystemdScope, nil)
	case KindWindows:
		b, err = NewWindows()
	case KindMemory:
		b, err = NewMemory(MemoryOptions{
			Seed:     opts.MemorySeed,
			Snapshot: opts.MemorySnapshot,
			Latency:  opts.MemoryLatency,
			Logger:   opts.Logger,
		})
	default:
		return nil, fmt.Errorf("unknown backend %q (expected auto, systemd, windows or memory)", opts.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", kind, err)
	}
	opts.Logger.Debug().Str("backend", kind).Dur("cache_ttl", opts.CacheTTL).Msg("backend ready")
	if opts.CacheTTL > 0 {
		return NewCached(b, opts.CacheTTL), nil
	}
	return b, nil
}

// ResolveKind maps "auto" and empty values to the platform default.
func ResolveKind(kind string) string {
	kind = strings.ToLower(strings.TrimSpace(kind))
	if kind != "" && kind != KindAuto {
		return kind
	}
	switch runtime.GOOS {
	case "linux":
		return KindSystemd
	case "windows":
		return KindWindows
	default:
		return KindMemory
	}
}

// waitFor polls probe until it reports done, ctx ends or timeout elapses.
func waitFor(ctx context.Context, timeout, every time.Duration, probe func() (bool, error)) error {
	deadline := time.Now().Add(timeout)
	for {
		done, err := probe()
		if err != nil || done {
			return err
		}
		if time.Now().After(deadline) {
			return context.DeadlineExceeded
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(every):
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

