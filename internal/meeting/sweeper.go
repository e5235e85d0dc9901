package meeting

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper periodically reclaims expired meeting records. It runs inside the
// server process because the store is in-memory; stopping the context stops
// the loop.
type Sweeper struct {
	store    *Store
	interval time.Duration
	logger   *zap.Logger
}

// NewSweeper creates a sweeper for the given store.
func NewSweeper(store *Store, interval time.Duration, logger *zap.Logger) *Sweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &Sweeper{store: store, interval: interval, logger: logger}
}

// Run sweeps on a fixed interval until the context is cancelled.
func (sw *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(sw.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			sw.logger.Info("retention sweeper stopping")
			return
		case <-ticker.C:
			if n := sw.store.Sweep(); n > 0 {
				sw.logger.Info("retention sweep", zap.Int("reclaimed", n))
			}
		}
	}
}
