//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"game-lab/domain"
	"reflect"
	"time"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventLog is the append-only durable record store of every room.
// Append is ordered per room and must keep that order across restarts.
// Load returns an empty slice for a room that was never created.
type EventLog interface {
	Append(ctx context.Context, roomID domain.RoomID, at time.Time, record []byte) error
	Load(ctx context.Context, roomID domain.RoomID) ([]domain.LogEntry, error)
}

// Pusher delivers an encoded projection to every connection a user holds in a room.
// Delivery is fire-and-forget.
type Pusher interface {
	Push(roomID domain.RoomID, userID string, payload []byte)
}

// EventSink is one physical connection able to receive encoded frames.
type EventSink interface {
	Consume(ctx context.Context, payload []byte) error
}

// IRegistry multiplexes the physical connections of logical users per room.
type IRegistry interface {
	Push(roomID domain.RoomID, userID string, payload []byte)
	Subscribe(roomID domain.RoomID, userID string, sink EventSink) bool
	Unsubscribe(roomID domain.RoomID, userID string, sink EventSink) bool
}

// Flusher is driven by the broadcast tick.
type Flusher interface {
	Flush(ctx context.Context) error
}
