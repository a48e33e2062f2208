package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"game-lab/contract"
	"game-lab/observability"

	"github.com/shirou/gopsutil/process"
)

// HeartbeatWorker samples the server's own process and feeds the monitoring snapshot.
type HeartbeatWorker struct {
	log        *slog.Logger
	interval   time.Duration
	monitoring *observability.MonitoringManager
}

var _ contract.Worker = (*HeartbeatWorker)(nil)

func NewHeartbeatWorker(log *slog.Logger, interval time.Duration, monitoring *observability.MonitoringManager) *HeartbeatWorker {
	return &HeartbeatWorker{log: log, interval: interval, monitoring: monitoring}
}

func (w *HeartbeatWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			rss, cpu, status, err := selfStats(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}
			w.monitoring.UpdateProcess(rss, cpu, status)
			stats := w.monitoring.GetLatest()
			w.log.Debug("Heartbeat",
				"rooms_live", stats.RoomsLive,
				"connections", stats.Connections,
				"rss", rss,
				"cpu", cpu,
			)
		}
	}
}

// selfStats retrieves memory, CPU and OS status of the given process.
func selfStats(p *process.Process) (uint64, float64, string, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, "", err
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, "", err
	}
	status, err := p.Status()
	if err != nil {
		return 0, 0, "", err
	}
	return memInfo.RSS, cpuPercent, status, nil
}
