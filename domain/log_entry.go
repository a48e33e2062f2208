package domain

import (
	"encoding/json"
	"time"
)

// LogEntry is one ordered record of a room's durable log.
// Entry 0 is always the creation record, every later entry is a command record.
type LogEntry struct {
	RoomID RoomID
	Seq    uint64
	Time   time.Time
	Record []byte
}

type RecordKind string

const (
	RecordCreation RecordKind = "create"
	RecordCommand  RecordKind = "command"
)

// CreationRecord persists the seed and the creation arguments of a room.
type CreationRecord struct {
	Seed int64
	User User
	Args json.RawMessage
}

// CommandRecord persists one modifying command. Correlation ids are never persisted.
type CommandRecord struct {
	Method string
	User   User
	Args   json.RawMessage
}
