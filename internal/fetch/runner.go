package fetch

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/printforge/meshengine/internal/config"
	"github.com/printforge/meshengine/internal/engine"
	"github.com/printforge/meshengine/internal/logger"
)

// FetchFunc retrieves the raw bytes of one file plus its size in
// megabytes. Implementations talk to whatever transport the caller
// uses; the runner only sees bytes.
type FetchFunc func(ctx context.Context, key string) ([]byte, float64, error)

// Outcome is the per-file result of a batch run.
type Outcome struct {
	Key    string
	Result *engine.Result
	Err    error
}

// Runner processes pending files strictly one at a time with a fixed
// pacing delay, capped per invocation so a large backlog drains over
// several runs instead of one long synchronous burst.
type Runner struct {
	engine *engine.Engine
	cache  engine.Cache
	gate   *Gate
	cfg    config.BatchConfig
}

// NewRunner wires a batch runner onto an engine, cache and fetch gate
func NewRunner(e *engine.Engine, cache engine.Cache, gate *Gate, cfg config.BatchConfig) *Runner {
	return &Runner{engine: e, cache: cache, gate: gate, cfg: cfg}
}

// Process analyzes up to MaxPerRun of the pending keys. Fresh cache
// hits are returned without fetching. The context cancels both waiting
// at the gate and the pacing sleeps.
func (r *Runner) Process(ctx context.Context, pending []string, fetch FetchFunc) []Outcome {
	if len(pending) > r.cfg.MaxPerRun && r.cfg.MaxPerRun > 0 {
		pending = pending[:r.cfg.MaxPerRun]
	}

	outcomes := make([]Outcome, 0, len(pending))
	for i, key := range pending {
		if i > 0 {
			if err := pace(ctx, r.cfg.Pacing()); err != nil {
				break
			}
		}
		outcomes = append(outcomes, r.processOne(ctx, key, fetch))
	}
	return outcomes
}

func (r *Runner) processOne(ctx context.Context, key string, fetch FetchFunc) Outcome {
	if cached, ok := r.cache.Get(key); ok && !engine.Stale(cached) {
		logger.Log.Debug("cache hit", zap.String("key", key))
		return Outcome{Key: key, Result: cached}
	}

	data, sizeMB, err := r.fetchGated(ctx, key, fetch)
	if err != nil {
		logger.Log.Warn("fetch failed", zap.String("key", key), zap.Error(err))
		return Outcome{Key: key, Err: err}
	}

	result := r.engine.AnalyzeCached(r.cache, key, data, sizeMB)
	logger.Log.Info("analyzed file",
		zap.String("key", key),
		zap.String("status", string(result.Status)))
	return Outcome{Key: key, Result: result}
}

func (r *Runner) fetchGated(ctx context.Context, key string, fetch FetchFunc) ([]byte, float64, error) {
	if err := r.gate.Acquire(ctx); err != nil {
		return nil, 0, err
	}
	defer r.gate.Release()
	return fetch(ctx, key)
}

// pace sleeps for the configured delay, aborting early on cancel
func pace(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
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
