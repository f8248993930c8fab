package services

import (
	"context"
	"sync/atomic"

	"github.com/logvault/backend/internal/cache"
	"github.com/logvault/backend/internal/index"
	"github.com/logvault/backend/internal/logger"
)

// Reconciler is the one-shot startup task that repairs the remote
// index document and rebuilds the cache projection from it. It runs
// off the request path: the service is reachable (with an empty cache)
// before reconciliation completes, and a failed or panicking
// reconciliation never takes the process down.
type Reconciler struct {
	index *index.Store
	cache *cache.Projection

	ready atomic.Bool
	done  chan struct{}
}

func NewReconciler(idx *index.Store, proj *cache.Projection) *Reconciler {
	return &Reconciler{
		index: idx,
		cache: proj,
		done:  make(chan struct{}),
	}
}

// Start launches reconciliation in the background and returns
// immediately.
func (r *Reconciler) Start(ctx context.Context) {
	go r.run(ctx)
}

// Ready reports whether reconciliation has completed successfully.
// The health endpoint surfaces this; a false value with a closed Done
// channel means reconciliation failed and the cache may be empty.
func (r *Reconciler) Ready() bool {
	return r.ready.Load()
}

// Done is closed when the reconciliation attempt finishes, regardless
// of outcome. Tests await it instead of racing the background task.
func (r *Reconciler) Done() <-chan struct{} {
	return r.done
}

func (r *Reconciler) run(ctx context.Context) {
	defer close(r.done)
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("reconciler panicked", map[string]interface{}{
				"panic":     rec,
				"component": "reconciler",
			})
		}
	}()

	if err := r.index.EnsureConsistency(ctx); err != nil {
		logger.WithError(err, "reconciler").Error("index consistency repair failed")
		return
	}

	records, err := r.index.Load(ctx)
	if err != nil {
		logger.WithError(err, "reconciler").Error("index load failed, cache stays empty")
		return
	}

	r.cache.ReplaceAll(records)
	r.ready.Store(true)
	logger.Info("cache rebuilt from index", map[string]interface{}{
		"records":   len(records),
		"component": "reconciler",
	})
}
