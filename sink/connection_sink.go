package sink

import (
	"context"
	"sync"

	"game-lab/contract"
	"game-lab/errors"
	"game-lab/observability"
)

// ConnectionSink buffers the frames of one physical connection until its
// write pump sends them. Consume never blocks: when the buffer is full the
// frame is dropped, the next tick supersedes it anyway.
type ConnectionSink struct {
	frames     chan []byte
	done       chan struct{}
	closeOnce  sync.Once
	monitoring *observability.MonitoringManager
}

var _ contract.EventSink = (*ConnectionSink)(nil)

func NewConnectionSink(bufferSize int, monitoring *observability.MonitoringManager) *ConnectionSink {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &ConnectionSink{
		frames:     make(chan []byte, bufferSize),
		done:       make(chan struct{}),
		monitoring: monitoring,
	}
}

func (s *ConnectionSink) Consume(_ context.Context, payload []byte) error {
	select {
	case <-s.done:
		return errors.ErrSinkClosed
	default:
	}
	select {
	case s.frames <- payload:
		return nil
	default:
		s.monitoring.IncrDroppedFrames()
		return errors.ErrSinkFull
	}
}

// Frames is drained by the write pump.
func (s *ConnectionSink) Frames() <-chan []byte {
	return s.frames
}

// Done is closed once the connection is gone.
func (s *ConnectionSink) Done() <-chan struct{} {
	return s.done
}

func (s *ConnectionSink) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}
