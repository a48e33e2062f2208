package runtime

import (
	"context"
	"fmt"

	"game-lab/contract"
	"game-lab/domain"
	"game-lab/errors"
	"game-lab/repositories"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

func (e *Engine[S]) load(ctx context.Context, roomID domain.RoomID) (state S, stream *domain.Stream, err error) {
	ctx, span := e.tracer.Start(ctx, "engine.replay", trace.WithAttributes(attribute.String("room.id", roomID.String())))
	defer func() { endSpan(span, err) }()

	entries, err := e.eventLog.Load(ctx, roomID)
	if err != nil {
		return state, nil, fmt.Errorf("%w: load %s: %v", errors.ErrPersistence, roomID, err)
	}
	if len(entries) == 0 {
		return state, nil, fmt.Errorf("%w: %s", errors.ErrRoomNotFound, roomID)
	}

	state, stream, err = Replay(e.logic, entries)
	if err != nil {
		e.monitoring.IncrReplayFailures()
		e.log.Error("Replay failed", "room_id", roomID, "entries", len(entries), "error", err)
		return state, nil, err
	}
	span.SetAttributes(attribute.Int("log.entries", len(entries)))
	e.monitoring.IncrRoomsLoaded()
	e.log.Info("Room loaded", "room_id", roomID, "entries", len(entries))
	return state, stream, nil
}

// Replay rebuilds a room from its ordered log: entry 0 through Create, every later
// entry through Decode and Execute, all on one stream seeded from the creation record.
// Each command runs with the time recorded in its entry. A logged command that is
// rejected or panics means the log and the logic disagree.
func Replay[S any](logic contract.Logic[S], entries []domain.LogEntry) (state S, stream *domain.Stream, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", errors.ErrReplayInconsistency, r)
		}
	}()

	for i, entry := range entries {
		if entry.Seq != uint64(i) {
			return state, nil, fmt.Errorf("%w: expected entry %d, got %d", errors.ErrReplayInconsistency, i, entry.Seq)
		}
		record, err := repositories.DecodeRecord(entry.Record)
		if err != nil {
			return state, nil, fmt.Errorf("%w: entry %d: %v", errors.ErrReplayInconsistency, i, err)
		}

		if i == 0 {
			creation, ok := record.(domain.CreationRecord)
			if !ok {
				return state, nil, fmt.Errorf("%w: entry 0 is not a creation record", errors.ErrReplayInconsistency)
			}
			stream = domain.NewStream(creation.Seed)
			state, err = logic.Create(creation.User, domain.NewContext(stream, entry.Time), creation.Args)
			if err != nil {
				return state, nil, fmt.Errorf("%w: create: %v", errors.ErrReplayInconsistency, err)
			}
			continue
		}

		command, ok := record.(domain.CommandRecord)
		if !ok {
			return state, nil, fmt.Errorf("%w: entry %d is not a command record", errors.ErrReplayInconsistency, i)
		}
		cmd, err := logic.Decode(command.Method, command.Args)
		if err != nil {
			return state, nil, fmt.Errorf("%w: entry %d: %v", errors.ErrReplayInconsistency, i, err)
		}
		result := logic.Execute(state, command.User, domain.NewContext(stream, entry.Time), cmd)
		if !result.IsModified() {
			return state, nil, fmt.Errorf("%w: entry %d (%s) rejected: %q",
				errors.ErrReplayInconsistency, i, command.Method, result.Reason())
		}
	}
	return state, stream, nil
}
