package sink

import (
	"context"

	"game-lab/contract"
	"game-lab/projection"
)

// TimelineSink feeds pushed frames into a local timeline, the way a client sees them.
type TimelineSink struct {
	*projection.Timeline
}

var _ contract.EventSink = (*TimelineSink)(nil)

func NewTimelineSink(owner string) *TimelineSink {
	return &TimelineSink{Timeline: projection.NewTimeline(owner)}
}

func (t *TimelineSink) Consume(_ context.Context, payload []byte) error {
	env, err := projection.DecodeEnvelope(payload)
	if err != nil {
		return err
	}
	t.Timeline.Consume(env)
	return nil
}
