package observability

import (
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// MonitoringStats is the snapshot served on /debug/stats.
type MonitoringStats struct {
	// --- ROOMS ---
	RoomsLive      int64  `json:"rooms_live"`
	RoomsLoaded    uint64 `json:"rooms_loaded"`
	RoomsCreated   uint64 `json:"rooms_created"`
	ReplayFailures uint64 `json:"replay_failures"`
	UnusableRooms  uint64 `json:"unusable_rooms"`

	// --- COMMANDS ---
	CommandsApplied  uint64 `json:"commands_applied"`
	CommandsRejected uint64 `json:"commands_rejected"`
	CallerErrors     uint64 `json:"caller_errors"`
	Appends          uint64 `json:"appends"`
	AppendFailures   uint64 `json:"append_failures"`

	// --- BROADCAST ---
	Ticks         uint64 `json:"ticks"`
	Pushes        uint64 `json:"pushes"`
	DroppedFrames uint64 `json:"dropped_frames"`
	Connections   int64  `json:"connections"`

	// --- SYSTEM ---
	AllocMemMb    uint64    `json:"alloc_mem_mb"`
	NumGC         uint32    `json:"num_gc"`
	Goroutines    int       `json:"goroutines"`
	ProcessRSS    uint64    `json:"process_rss"`
	ProcessCPU    float64   `json:"process_cpu"`
	ProcessStatus string    `json:"process_status"`
	LastHeartbeat time.Time `json:"last_heartbeat"`
}

// MonitoringManager aggregates runtime counters. Counters are lock-free,
// process stats pushed by the heartbeat are guarded by mu.
type MonitoringManager struct {
	log *slog.Logger

	roomsLive        int64
	roomsLoaded      uint64
	roomsCreated     uint64
	replayFailures   uint64
	unusableRooms    uint64
	commandsApplied  uint64
	commandsRejected uint64
	callerErrors     uint64
	appends          uint64
	appendFailures   uint64
	ticks            uint64
	pushes           uint64
	droppedFrames    uint64
	connections      int64

	mu            sync.RWMutex
	processRSS    uint64
	processCPU    float64
	processStatus string
	lastHeartbeat time.Time
}

func NewMonitoringManager(log *slog.Logger) *MonitoringManager {
	return &MonitoringManager{log: log}
}

func (mm *MonitoringManager) RoomOpened() { atomic.AddInt64(&mm.roomsLive, 1) }
func (mm *MonitoringManager) RoomClosed() { atomic.AddInt64(&mm.roomsLive, -1) }
func (mm *MonitoringManager) IncrRoomsLoaded() { atomic.AddUint64(&mm.roomsLoaded, 1) }
func (mm *MonitoringManager) IncrRoomsCreated() { atomic.AddUint64(&mm.roomsCreated, 1) }
func (mm *MonitoringManager) IncrReplayFailures() { atomic.AddUint64(&mm.replayFailures, 1) }
func (mm *MonitoringManager) IncrUnusableRooms() { atomic.AddUint64(&mm.unusableRooms, 1) }
func (mm *MonitoringManager) IncrApplied() { atomic.AddUint64(&mm.commandsApplied, 1) }
func (mm *MonitoringManager) IncrRejected() { atomic.AddUint64(&mm.commandsRejected, 1) }
func (mm *MonitoringManager) IncrCallerErrors() { atomic.AddUint64(&mm.callerErrors, 1) }
func (mm *MonitoringManager) IncrAppends() { atomic.AddUint64(&mm.appends, 1) }
func (mm *MonitoringManager) IncrAppendFailures() { atomic.AddUint64(&mm.appendFailures, 1) }
func (mm *MonitoringManager) IncrTicks() { atomic.AddUint64(&mm.ticks, 1) }
func (mm *MonitoringManager) IncrPushes(n int) { atomic.AddUint64(&mm.pushes, uint64(n)) }
func (mm *MonitoringManager) IncrDroppedFrames() { atomic.AddUint64(&mm.droppedFrames, 1) }
func (mm *MonitoringManager) ConnectionOpened() { atomic.AddInt64(&mm.connections, 1) }
func (mm *MonitoringManager) ConnectionClosed() { atomic.AddInt64(&mm.connections, -1) }

// UpdateProcess records the self stats collected by the heartbeat.
func (mm *MonitoringManager) UpdateProcess(rss uint64, cpu float64, status string) {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	mm.processRSS = rss
	mm.processCPU = cpu
	mm.processStatus = status
	mm.lastHeartbeat = time.Now()
}

func (mm *MonitoringManager) GetLatest() MonitoringStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	mm.mu.RLock()
	defer mm.mu.RUnlock()
	return MonitoringStats{
		RoomsLive:        atomic.LoadInt64(&mm.roomsLive),
		RoomsLoaded:      atomic.LoadUint64(&mm.roomsLoaded),
		RoomsCreated:     atomic.LoadUint64(&mm.roomsCreated),
		ReplayFailures:   atomic.LoadUint64(&mm.replayFailures),
		UnusableRooms:    atomic.LoadUint64(&mm.unusableRooms),
		CommandsApplied:  atomic.LoadUint64(&mm.commandsApplied),
		CommandsRejected: atomic.LoadUint64(&mm.commandsRejected),
		CallerErrors:     atomic.LoadUint64(&mm.callerErrors),
		Appends:          atomic.LoadUint64(&mm.appends),
		AppendFailures:   atomic.LoadUint64(&mm.appendFailures),
		Ticks:            atomic.LoadUint64(&mm.ticks),
		Pushes:           atomic.LoadUint64(&mm.pushes),
		DroppedFrames:    atomic.LoadUint64(&mm.droppedFrames),
		Connections:      atomic.LoadInt64(&mm.connections),
		AllocMemMb:       m.Alloc / 1024 / 1024,
		NumGC:            m.NumGC,
		Goroutines:       runtime.NumGoroutine(),
		ProcessRSS:       mm.processRSS,
		ProcessCPU:       mm.processCPU,
		ProcessStatus:    mm.processStatus,
		LastHeartbeat:    mm.lastHeartbeat,
	}
}
