package workers

import (
	"context"
	"log/slog"
	"time"

	"game-lab/contract"
)

// BroadcastWorker drives the fixed tick. The period does not depend on command volume:
// commands landing between two ticks are coalesced into one push per subscriber.
type BroadcastWorker struct {
	flusher  contract.Flusher
	interval time.Duration
	log      *slog.Logger
}

var _ contract.Worker = (*BroadcastWorker)(nil)

func NewBroadcastWorker(flusher contract.Flusher, interval time.Duration, log *slog.Logger) *BroadcastWorker {
	return &BroadcastWorker{flusher: flusher, interval: interval, log: log}
}

func (w *BroadcastWorker) Run(ctx context.Context) error {
	w.log.Info("Starting broadcast worker", "tick", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.flusher.Flush(ctx); err != nil && ctx.Err() == nil {
				w.log.Warn("Tick flush failed", "error", err)
			}
		}
	}
}
