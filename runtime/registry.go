package runtime

import (
	"context"
	"log/slog"
	"sync"

	"game-lab/contract"
	"game-lab/domain"
)

type Set map[contract.EventSink]struct{}

type connectionKey struct {
	roomID domain.RoomID
	userID string
}

// Registry multiplexes physical connections: one logical user in one room
// may hold several sinks, and every push reaches all of them.
type Registry struct {
	mu          sync.RWMutex
	log         *slog.Logger
	connections map[connectionKey]Set
}

var (
	_ contract.IRegistry = (*Registry)(nil)
	_ contract.Pusher    = (*Registry)(nil)
)

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		log:         log,
		connections: make(map[connectionKey]Set),
	}
}

// GetSinks returns a copy of the sinks held by the user in the room.
func (r *Registry) GetSinks(roomID domain.RoomID, userID string) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sinks := r.connections[connectionKey{roomID, userID}]
	if len(sinks) == 0 {
		return nil
	}
	out := make([]contract.EventSink, 0, len(sinks))
	for sink := range sinks {
		out = append(out, sink)
	}
	return out
}

// Push delivers the payload to every connection of the user. Sinks are expected
// not to block; a failing sink is logged and skipped.
func (r *Registry) Push(roomID domain.RoomID, userID string, payload []byte) {
	for _, sink := range r.GetSinks(roomID, userID) {
		if err := sink.Consume(context.Background(), payload); err != nil {
			r.log.Debug("Push dropped", "room_id", roomID, "user_id", userID, "error", err)
		}
	}
}

// Subscribe adds a connection and reports whether it is the first one of the user in the room.
func (r *Registry) Subscribe(roomID domain.RoomID, userID string, sink contract.EventSink) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := connectionKey{roomID, userID}
	sinks, ok := r.connections[key]
	if !ok {
		sinks = make(Set)
		r.connections[key] = sinks
	}
	sinks[sink] = struct{}{}
	return !ok
}

// Unsubscribe removes a connection and reports whether it was the last one.
// Empty sets are deleted so the map does not grow with departed users.
func (r *Registry) Unsubscribe(roomID domain.RoomID, userID string, sink contract.EventSink) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := connectionKey{roomID, userID}
	sinks, ok := r.connections[key]
	if !ok {
		return false
	}
	delete(sinks, sink)
	if len(sinks) == 0 {
		delete(r.connections, key)
		return true
	}
	return false
}
