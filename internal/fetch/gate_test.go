package fetch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/printforge/meshengine/internal/config"
	"github.com/printforge/meshengine/internal/engine"
)

func TestGateSerializesFetches(t *testing.T) {
	gate := NewGate()

	var inFlight, maxInFlight int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = gate.Do(context.Background(), func(ctx context.Context) ([]byte, error) {
				n := atomic.AddInt32(&inFlight, 1)
				for {
					m := atomic.LoadInt32(&maxInFlight)
					if n <= m || atomic.CompareAndSwapInt32(&maxInFlight, m, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&inFlight, -1)
				return nil, nil
			})
		}()
	}
	wg.Wait()

	if atomic.LoadInt32(&maxInFlight) != 1 {
		t.Errorf("expected at most 1 in-flight fetch, saw %d", maxInFlight)
	}
}

func TestGateReleasedOnError(t *testing.T) {
	gate := NewGate()

	_, err := gate.Do(context.Background(), func(ctx context.Context) ([]byte, error) {
		return nil, errors.New("boom")
	})
	if err == nil {
		t.Fatal("expected error from fetch")
	}

	// The slot must be free again
	if !gate.TryAcquire() {
		t.Error("gate still held after failed fetch")
	}
	gate.Release()
}

func TestGateHonorsCancel(t *testing.T) {
	gate := NewGate()
	if !gate.TryAcquire() {
		t.Fatal("fresh gate should be free")
	}
	defer gate.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := gate.Acquire(ctx); err == nil {
		t.Error("expected context error while gate is held")
		gate.Release()
	}
}

func batchRunner(maxPerRun, pacingMs int) *Runner {
	cfg := config.Default()
	return NewRunner(
		engine.New(cfg),
		engine.NewMemoryCache(),
		NewGate(),
		config.BatchConfig{MaxPerRun: maxPerRun, PacingMs: pacingMs},
	)
}

func TestRunnerCapsPerRun(t *testing.T) {
	r := batchRunner(3, 0)

	var fetched int32
	fetch := func(ctx context.Context, key string) ([]byte, float64, error) {
		atomic.AddInt32(&fetched, 1)
		return []byte("junk"), 1.0, nil
	}

	outcomes := r.Process(context.Background(),
		[]string{"a", "b", "c", "d", "e"}, fetch)

	if len(outcomes) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(outcomes))
	}
	if fetched != 3 {
		t.Errorf("expected 3 fetches, got %d", fetched)
	}
}

func TestRunnerUsesCache(t *testing.T) {
	r := batchRunner(3, 0)

	fetch := func(ctx context.Context, key string) ([]byte, float64, error) {
		return []byte("junk"), 1.0, nil
	}

	first := r.Process(context.Background(), []string{"a"}, fetch)
	if len(first) != 1 || first[0].Result == nil {
		t.Fatal("expected a result on first run")
	}

	var fetchedAgain bool
	second := r.Process(context.Background(), []string{"a"},
		func(ctx context.Context, key string) ([]byte, float64, error) {
			fetchedAgain = true
			return nil, 0, errors.New("should not be called")
		})

	if fetchedAgain {
		t.Error("cache hit must skip the fetch")
	}
	if second[0].Result != first[0].Result {
		t.Error("cache hit must return the stored result")
	}
}

func TestRunnerStopsOnCancel(t *testing.T) {
	r := batchRunner(3, 50)

	ctx, cancel := context.WithCancel(context.Background())
	var calls int32
	fetch := func(ctx context.Context, key string) ([]byte, float64, error) {
		atomic.AddInt32(&calls, 1)
		cancel() // cancel during the first fetch
		return []byte("junk"), 1.0, nil
	}

	outcomes := r.Process(ctx, []string{"a", "b", "c"}, fetch)
	if len(outcomes) != 1 {
		t.Errorf("expected processing to stop after cancel, got %d outcomes", len(outcomes))
	}
	if calls != 1 {
		t.Errorf("expected a single fetch, got %d", calls)
	}
}

func TestRunnerReportsFetchErrors(t *testing.T) {
	r := batchRunner(3, 0)

	fetch := func(ctx context.Context, key string) ([]byte, float64, error) {
		return nil, 0, errors.New("origin unavailable")
	}

	outcomes := r.Process(context.Background(), []string{"a"}, fetch)
	if len(outcomes) != 1 {
		t.Fatalf("expected 1 outcome, got %d", len(outcomes))
	}
	if outcomes[0].Err == nil {
		t.Error("fetch error must surface in the outcome")
	}
	if outcomes[0].Result != nil {
		t.Error("failed fetch must not produce a result")
	}
}
