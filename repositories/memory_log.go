package repositories

import (
	"context"
	"sync"
	"time"

	"game-lab/contract"
	"game-lab/domain"
)

// MemoryLog is a volatile EventLog for tests and LOG_BACKEND=memory.
type MemoryLog struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID][]domain.LogEntry
}

var _ contract.EventLog = (*MemoryLog)(nil)

func NewMemoryLog() *MemoryLog {
	return &MemoryLog{rooms: make(map[domain.RoomID][]domain.LogEntry)}
}

func (m *MemoryLog) Append(ctx context.Context, roomID domain.RoomID, at time.Time, record []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	entries := m.rooms[roomID]
	m.rooms[roomID] = append(entries, domain.LogEntry{
		RoomID: roomID,
		Seq:    uint64(len(entries)),
		Time:   time.UnixMilli(at.UnixMilli()).UTC(),
		Record: append([]byte(nil), record...),
	})
	return nil
}

func (m *MemoryLog) Load(ctx context.Context, roomID domain.RoomID) ([]domain.LogEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.LogEntry(nil), m.rooms[roomID]...), nil
}
