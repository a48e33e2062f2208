package sink

import (
	"context"
	"log/slog"
	"testing"

	"game-lab/errors"
	"game-lab/observability"
	"game-lab/projection"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func TestConnectionSink_Drops_When_Full(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	monitoring := observability.NewMonitoringManager(logs.GetLoggerFromLevel(slog.LevelDebug))
	s := NewConnectionSink(2, monitoring)

	req.NoError(s.Consume(ctx, []byte("1")))
	req.NoError(s.Consume(ctx, []byte("2")))
	req.ErrorIs(s.Consume(ctx, []byte("3")), errors.ErrSinkFull)
	req.Equal(uint64(1), monitoring.GetLatest().DroppedFrames)

	req.Equal([]byte("1"), <-s.Frames())
	req.NoError(s.Consume(ctx, []byte("4")))
	req.Equal([]byte("2"), <-s.Frames())
	req.Equal([]byte("4"), <-s.Frames())

	s.Close()
	s.Close()
	req.ErrorIs(s.Consume(ctx, []byte("5")), errors.ErrSinkClosed)
	<-s.Done()
}

func TestTimelineSink(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	s := NewTimelineSink("user-a")

	frame, err := projection.EncodeFrame(map[string]int{"pot": 10}, nil)
	req.NoError(err)
	req.NoError(s.Consume(ctx, frame))

	reason := "Not your turn"
	frame, err = projection.EncodeFrame(map[string]int{"pot": 20}, map[string]*string{"c1": &reason})
	req.NoError(err)
	req.NoError(s.Consume(ctx, frame))

	req.Equal(2, s.Frames())
	req.JSONEq(`{"pot":20}`, string(s.Latest()))
	req.Len(s.Responses, 1)
	req.Equal("c1", s.Responses[0].CorrelationID)
	req.Equal(reason, *s.Responses[0].Reason)

	req.Error(s.Consume(ctx, []byte("not json")))
}
