package projection

import (
	"encoding/json"
	"sync"
)

// Response is the outcome of one command as seen by the client.
// Reason is nil when the command succeeded or was rejected without text.
type Response struct {
	CorrelationID string
	Reason        *string
}

// Timeline keeps the latest state received by a client and the ordered
// responses resolved so far.
type Timeline struct {
	mu        sync.RWMutex
	Owner     string
	latest    json.RawMessage
	frames    int
	Responses []Response
}

func NewTimeline(owner string) *Timeline {
	return &Timeline{Owner: owner}
}

// Consume applies one frame and returns the responses it carried.
func (t *Timeline) Consume(env Envelope) []Response {
	t.mu.Lock()
	defer t.mu.Unlock()
	if env.State != nil {
		t.latest = append(t.latest[:0], env.State...)
		t.frames++
	}
	var resolved []Response
	for id, reason := range env.Responses {
		resolved = append(resolved, Response{CorrelationID: id, Reason: reason})
	}
	t.Responses = append(t.Responses, resolved...)
	return resolved
}

func (t *Timeline) Latest() json.RawMessage {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append(json.RawMessage(nil), t.latest...)
}

func (t *Timeline) Frames() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.frames
}
