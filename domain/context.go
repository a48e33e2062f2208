package domain

import (
	"math/rand"
	"time"
)

// Stream is the stateful pseudo-random generator of a room.
// It is seeded once at creation and advances across every command of the room,
// so it must only be used from the goroutine that owns the room.
type Stream struct {
	seed int64
	rng  *rand.Rand
}

func NewStream(seed int64) *Stream {
	return &Stream{seed: seed, rng: rand.New(rand.NewSource(seed))}
}

func (s *Stream) Seed() int64 {
	return s.seed
}

// Context is handed to exactly one command execution.
type Context struct {
	stream *Stream
	now    time.Time
}

// NewContext freezes the logical time of a command.
// Live commands use the time they were received; replay restores the logged time.
func NewContext(stream *Stream, now time.Time) *Context {
	return &Context{stream: stream, now: now}
}

// Rand returns a float in [0,1).
func (c *Context) Rand() float64 {
	return c.stream.rng.Float64()
}

// RandInt returns a full-range integer.
func (c *Context) RandInt() int64 {
	return int64(c.stream.rng.Uint64())
}

// RandIntn returns an integer uniformly distributed in [0, limit).
// It returns 0 when limit is not positive.
func (c *Context) RandIntn(limit int) int {
	if limit <= 0 {
		return 0
	}
	return int(c.Rand() * float64(limit))
}

func (c *Context) Time() time.Time {
	return c.now
}
