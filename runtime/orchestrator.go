package runtime

import (
	"context"
	"log/slog"
	"time"

	"game-lab/contract"
	"game-lab/observability"
	"game-lab/runtime/workers"
)

// Orchestrator starts the long-lived workers around the engine: the broadcast
// tick and the heartbeat. Room workers are started by the engine itself on the
// same supervisor.
type Orchestrator struct {
	log               *slog.Logger
	supervisor        contract.ISupervisor
	flusher           contract.Flusher
	monitoring        *observability.MonitoringManager
	tickInterval      time.Duration
	heartbeatInterval time.Duration
}

func NewOrchestrator(log *slog.Logger, supervisor contract.ISupervisor, flusher contract.Flusher,
	monitoring *observability.MonitoringManager, tickInterval, heartbeatInterval time.Duration) *Orchestrator {
	return &Orchestrator{
		log:               log,
		supervisor:        supervisor,
		flusher:           flusher,
		monitoring:        monitoring,
		tickInterval:      tickInterval,
		heartbeatInterval: heartbeatInterval,
	}
}

// Start blocks until ctx is canceled and every supervised worker returned.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.supervisor.Add(workers.NewBroadcastWorker(o.flusher, o.tickInterval, o.log))
	if o.heartbeatInterval > 0 {
		o.supervisor.Add(workers.NewHeartbeatWorker(o.log, o.heartbeatInterval, o.monitoring))
	}
	o.log.Info("Starting orchestrator and all supervised workers", "tick", o.tickInterval)
	o.supervisor.Run(ctx)
	return nil
}

func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown")
	o.supervisor.Stop()
}
