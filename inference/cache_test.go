package inference

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/automlhq/tabular/pkg/errors"
)

// fakeHandle records Run inputs and Close calls.
type fakeHandle struct {
	id      string
	dtype   DType
	out     *RawOutput
	runErr  error
	mu      sync.Mutex
	inputs  [][]float64
	closed  bool
}

func (f *fakeHandle) InputDType() DType { return f.dtype }

func (f *fakeHandle) Run(_ context.Context, in *Vector) (*RawOutput, error) {
	f.mu.Lock()
	f.inputs = append(f.inputs, append([]float64(nil), in.Values...))
	f.mu.Unlock()
	if f.runErr != nil {
		return nil, f.runErr
	}
	return f.out, nil
}

func (f *fakeHandle) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeHandle) lastInput() []float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.inputs) == 0 {
		return nil
	}
	return f.inputs[len(f.inputs)-1]
}

// countingLoader counts loads per model id.
type countingLoader struct {
	mu      sync.Mutex
	loads   map[string]int
	handles map[string]*fakeHandle
	err     error
}

func newCountingLoader() *countingLoader {
	return &countingLoader{loads: make(map[string]int), handles: make(map[string]*fakeHandle)}
}

func (l *countingLoader) load(_ context.Context, modelID string) (Handle, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	l.loads[modelID]++
	h := &fakeHandle{id: modelID, out: &RawOutput{Prediction: 1}}
	l.handles[modelID] = h
	return h, nil
}

func (l *countingLoader) count(modelID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loads[modelID]
}

func TestModelCacheHitReturnsSameHandle(t *testing.T) {
	loader := newCountingLoader()
	cache := NewModelCache(3)
	ctx := context.Background()

	h1, hit, err := cache.GetOrLoad(ctx, "m1", loader.load)
	if err != nil {
		t.Fatalf("GetOrLoad() error = %v", err)
	}
	if hit {
		t.Error("first load reported as a cache hit")
	}

	h2, hit, err := cache.GetOrLoad(ctx, "m1", loader.load)
	if err != nil {
		t.Fatalf("GetOrLoad() error = %v", err)
	}
	if !hit {
		t.Error("second lookup missed the cache")
	}
	if h1 != h2 {
		t.Error("cache hit returned a different handle")
	}
	if loader.count("m1") != 1 {
		t.Errorf("loads = %d, want 1", loader.count("m1"))
	}
}

func TestModelCacheEvictsLeastRecentlyUsed(t *testing.T) {
	loader := newCountingLoader()
	cache := NewModelCache(3)
	ctx := context.Background()

	for _, id := range []string{"m1", "m2", "m3"} {
		if _, _, err := cache.GetOrLoad(ctx, id, loader.load); err != nil {
			t.Fatalf("GetOrLoad(%s) error = %v", id, err)
		}
	}

	// Touch m1 so m2 becomes least recently used.
	if _, _, err := cache.GetOrLoad(ctx, "m1", loader.load); err != nil {
		t.Fatalf("GetOrLoad(m1) error = %v", err)
	}

	// A fourth model evicts m2.
	if _, _, err := cache.GetOrLoad(ctx, "m4", loader.load); err != nil {
		t.Fatalf("GetOrLoad(m4) error = %v", err)
	}
	if got := cache.Len(); got != 3 {
		t.Errorf("Len() = %d, want 3", got)
	}
	if !loader.handles["m2"].closed {
		t.Error("evicted handle was not closed")
	}

	// m1, m3, m4 are resident; none reload.
	for _, id := range []string{"m1", "m3", "m4"} {
		if _, hit, _ := cache.GetOrLoad(ctx, id, loader.load); !hit {
			t.Errorf("resident model %s missed the cache", id)
		}
	}

	// The evicted id loads exactly once more.
	if _, hit, err := cache.GetOrLoad(ctx, "m2", loader.load); err != nil || hit {
		t.Fatalf("GetOrLoad(m2) = hit %v, err %v; want miss, nil", hit, err)
	}
	if got := loader.count("m2"); got != 2 {
		t.Errorf("loads for evicted id = %d, want 2", got)
	}
}

func TestModelCacheLoaderFailure(t *testing.T) {
	loader := newCountingLoader()
	loader.err = errors.New("artifact fetch failed")
	cache := NewModelCache(3)

	_, _, err := cache.GetOrLoad(context.Background(), "m1", loader.load)
	var mue *errors.ModelUnavailableError
	if !errors.As(err, &mue) {
		t.Fatalf("GetOrLoad() error = %v, want *ModelUnavailableError", err)
	}
	if cache.Len() != 0 {
		t.Error("failed load left an entry in the cache")
	}
}

func TestModelCacheConcurrentAccess(t *testing.T) {
	loader := newCountingLoader()
	cache := NewModelCache(3)
	ids := []string{"m1", "m2", "m3", "m4", "m5"}

	var wg sync.WaitGroup
	var failures atomic.Int64
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				id := ids[(w+i)%len(ids)]
				if _, _, err := cache.GetOrLoad(context.Background(), id, loader.load); err != nil {
					failures.Add(1)
				}
			}
		}(w)
	}
	wg.Wait()

	if failures.Load() != 0 {
		t.Errorf("%d concurrent lookups failed", failures.Load())
	}
	if got := cache.Len(); got > 3 {
		t.Errorf("Len() = %d, want at most 3", got)
	}
}

func TestModelCacheInvalidate(t *testing.T) {
	loader := newCountingLoader()
	cache := NewModelCache(3)
	ctx := context.Background()

	if _, _, err := cache.GetOrLoad(ctx, "m1", loader.load); err != nil {
		t.Fatalf("GetOrLoad() error = %v", err)
	}
	cache.Invalidate("m1")

	if !loader.handles["m1"].closed {
		t.Error("invalidated handle was not closed")
	}
	if _, hit, _ := cache.GetOrLoad(ctx, "m1", loader.load); hit {
		t.Error("invalidated id still hit the cache")
	}
}
