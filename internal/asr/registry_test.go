package asr

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"lingoflow/internal/lang"
)

type fakeHandle struct {
	id string
}

func (f *fakeHandle) Infer(_ context.Context, _ string, _ InferOptions) (InferResult, error) {
	return InferResult{}, nil
}

type fakeBackend struct {
	loads   atomic.Int64
	delay   time.Duration
	failErr error
}

func (f *fakeBackend) Load(_ context.Context, modelID string) (Handle, error) {
	f.loads.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.failErr != nil {
		return nil, f.failErr
	}
	return &fakeHandle{id: modelID}, nil
}

func TestGetOrLoadCachesHandle(t *testing.T) {
	backend := &fakeBackend{}
	registry := NewRegistry(backend)

	first, err := registry.GetOrLoad(context.Background(), lang.TierBalanced)
	if err != nil {
		t.Fatalf("GetOrLoad() error = %v", err)
	}
	second, err := registry.GetOrLoad(context.Background(), lang.TierBalanced)
	if err != nil {
		t.Fatalf("GetOrLoad() error = %v", err)
	}
	if first != second {
		t.Fatal("expected the cached handle on the second call")
	}
	if got := backend.loads.Load(); got != 1 {
		t.Fatalf("expected 1 backend load, got %d", got)
	}
}

func TestGetOrLoadSingleFlight(t *testing.T) {
	backend := &fakeBackend{delay: 50 * time.Millisecond}
	registry := NewRegistry(backend)

	const callers = 8
	handles := make([]Handle, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h, err := registry.GetOrLoad(context.Background(), lang.TierHigh)
			if err != nil {
				t.Errorf("GetOrLoad() error = %v", err)
				return
			}
			handles[i] = h
		}(i)
	}
	wg.Wait()

	if got := backend.loads.Load(); got != 1 {
		t.Fatalf("expected a single in-flight load, got %d", got)
	}
	for i := 1; i < callers; i++ {
		if handles[i] != handles[0] {
			t.Fatal("concurrent callers received different handles")
		}
	}
}

func TestGetOrLoadDoesNotCacheFailure(t *testing.T) {
	backend := &fakeBackend{failErr: errors.New("weights missing")}
	registry := NewRegistry(backend)

	_, err := registry.GetOrLoad(context.Background(), lang.TierFast)
	var loadErr *ModelLoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("expected *ModelLoadError, got %v", err)
	}
	if loadErr.ModelID != "base" {
		t.Fatalf("unexpected model id: %q", loadErr.ModelID)
	}

	backend.failErr = nil
	if _, err := registry.GetOrLoad(context.Background(), lang.TierFast); err != nil {
		t.Fatalf("expected retry after failed load, got %v", err)
	}
	if got := backend.loads.Load(); got != 2 {
		t.Fatalf("expected 2 backend loads, got %d", got)
	}
}

func TestGetOrLoadDifferentTiersLoadIndependently(t *testing.T) {
	backend := &fakeBackend{}
	registry := NewRegistry(backend)

	a, err := registry.GetOrLoad(context.Background(), lang.TierFastest)
	if err != nil {
		t.Fatalf("GetOrLoad() error = %v", err)
	}
	b, err := registry.GetOrLoad(context.Background(), lang.TierMaximum)
	if err != nil {
		t.Fatalf("GetOrLoad() error = %v", err)
	}
	if a == b {
		t.Fatal("tiers must not share a handle")
	}
	if got := backend.loads.Load(); got != 2 {
		t.Fatalf("expected 2 backend loads, got %d", got)
	}
}

func TestGetOrLoadRejectsUnknownTier(t *testing.T) {
	registry := NewRegistry(&fakeBackend{})
	_, err := registry.GetOrLoad(context.Background(), lang.QualityTier("turbo"))
	var loadErr *ModelLoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("expected *ModelLoadError, got %v", err)
	}
}

func TestGetOrLoadObserverSeesOutcome(t *testing.T) {
	var observed []bool
	registry := NewRegistry(&fakeBackend{}, WithLoadObserver(func(_ lang.QualityTier, success bool, _ time.Duration) {
		observed = append(observed, success)
	}))

	if _, err := registry.GetOrLoad(context.Background(), lang.TierBalanced); err != nil {
		t.Fatalf("GetOrLoad() error = %v", err)
	}
	// Cached path must not re-observe.
	if _, err := registry.GetOrLoad(context.Background(), lang.TierBalanced); err != nil {
		t.Fatalf("GetOrLoad() error = %v", err)
	}
	if len(observed) != 1 || !observed[0] {
		t.Fatalf("unexpected observations: %v", observed)
	}
}
