package asr

import (
	"context"
	"errors"
	"sync"
	"time"

	"lingoflow/internal/lang"
)

// LoadObserverFunc receives the outcome of each backend load.
type LoadObserverFunc func(tier lang.QualityTier, success bool, duration time.Duration)

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLoadObserver wires load metrics.
func WithLoadObserver(observer LoadObserverFunc) RegistryOption {
	return func(r *Registry) {
		r.observer = observer
	}
}

// Registry owns the lifecycle of loaded model handles, keyed by quality
// tier. Handles are created lazily, cached for the process lifetime, and
// never evicted. Concurrent first requests for the same tier share a single
// backend load.
type Registry struct {
	backend  Backend
	observer LoadObserverFunc

	mu      sync.Mutex
	entries map[lang.QualityTier]*entry
}

type entry struct {
	done   chan struct{}
	handle Handle
	err    error
}

func NewRegistry(backend Backend, opts ...RegistryOption) *Registry {
	r := &Registry{
		backend: backend,
		entries: make(map[lang.QualityTier]*entry),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// GetOrLoad returns the cached handle for tier, loading it on first use.
// Only successful loads are cached: a failed load is reported to every
// caller waiting on it and the next call starts a fresh load.
func (r *Registry) GetOrLoad(ctx context.Context, tier lang.QualityTier) (Handle, error) {
	modelID, ok := lang.ModelForTier(tier)
	if !ok {
		return nil, &ModelLoadError{Tier: tier, Err: errUnsupportedTier}
	}

	r.mu.Lock()
	if e, ok := r.entries[tier]; ok {
		r.mu.Unlock()
		return e.wait(ctx)
	}
	e := &entry{done: make(chan struct{})}
	r.entries[tier] = e
	r.mu.Unlock()

	// The load is shared with later callers, so it must not die with the
	// first caller's context.
	started := time.Now()
	handle, err := r.backend.Load(context.WithoutCancel(ctx), modelID)
	if r.observer != nil {
		r.observer(tier, err == nil, time.Since(started))
	}
	if err != nil {
		r.mu.Lock()
		delete(r.entries, tier)
		r.mu.Unlock()
		e.err = &ModelLoadError{Tier: tier, ModelID: modelID, Err: err}
	} else {
		e.handle = handle
	}
	close(e.done)

	return e.wait(ctx)
}

func (e *entry) wait(ctx context.Context) (Handle, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-e.done:
		return e.handle, e.err
	}
}

var errUnsupportedTier = errors.New("unsupported quality tier")
