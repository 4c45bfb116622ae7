package registry

import (
	"context"
	"fmt"
	"time"
)

// initialSync loads every live offering from the store on startup.
func (r *registryImpl) initialSync(ctx context.Context) error {
	start := time.Now()

	ipos, err := r.store.ActiveIPOs(ctx)
	if err != nil {
		return fmt.Errorf("initial sync: %w", err)
	}
	r.state.replaceAll(ipos)

	r.logger.Info("initial sync complete", "ipos", len(ipos), "duration", time.Since(start))
	return nil
}

// reconciliationLoop periodically refreshes the cache from the store.
func (r *registryImpl) reconciliationLoop(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.ReconcileInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.reconcile(ctx)
		}
	}
}

// reconcile replaces the cache with a fresh store snapshot. The database is
// the source of truth; scrape paths emit their own events, so a refresh
// never does.
func (r *registryImpl) reconcile(ctx context.Context) {
	start := time.Now()

	ipos, err := r.store.ActiveIPOs(ctx)
	if err != nil {
		r.logger.Error("reconciliation failed", "err", err)
		return
	}
	r.state.replaceAll(ipos)

	r.logger.Debug("reconciliation complete", "ipos", len(ipos), "duration", time.Since(start))
}
