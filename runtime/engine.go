// Package runtime hosts authoritative rooms: it routes commands to the domain
// logic, persists what changed, reloads rooms from their log and drives the
// per-tick broadcast. It contains no game rules.
package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"game-lab/contract"
	"game-lab/domain"
	"game-lab/errors"
	"game-lab/observability"
	"game-lab/repositories"
	"game-lab/runtime/workers"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const defaultMailboxSize = 64

type EngineConfig struct {
	MailboxSize int
	// Clock defaults to time.Now. Times are truncated to the millisecond,
	// the precision kept by the event log.
	Clock func() time.Time
}

// Engine owns the table of live rooms. Each live room is a RoomWorker started
// under the supervisor; the engine itself never touches room state.
type Engine[S any] struct {
	log        *slog.Logger
	logic      contract.Logic[S]
	eventLog   contract.EventLog
	pusher     contract.Pusher
	supervisor contract.ISupervisor
	monitoring *observability.MonitoringManager
	tracer     trace.Tracer
	config     EngineConfig

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.RWMutex
	rooms    map[domain.RoomID]*workers.RoomWorker[S]
	stopping map[domain.RoomID]<-chan struct{}
	closed   bool
	loads    singleflight.Group
}

var _ contract.Flusher = (*Engine[any])(nil)

// NewEngine binds the engine lifetime to ctx: canceling it stops every room worker.
func NewEngine[S any](
	ctx context.Context,
	log *slog.Logger,
	logic contract.Logic[S],
	eventLog contract.EventLog,
	pusher contract.Pusher,
	supervisor contract.ISupervisor,
	monitoring *observability.MonitoringManager,
	config EngineConfig,
) *Engine[S] {
	if config.MailboxSize <= 0 {
		config.MailboxSize = defaultMailboxSize
	}
	if config.Clock == nil {
		config.Clock = time.Now
	}
	engineCtx, cancel := context.WithCancel(ctx)
	return &Engine[S]{
		log:        log,
		logic:      logic,
		eventLog:   eventLog,
		pusher:     pusher,
		supervisor: supervisor,
		monitoring: monitoring,
		tracer:     observability.Tracer(),
		config:     config,
		ctx:        engineCtx,
		cancel:     cancel,
		rooms:      make(map[domain.RoomID]*workers.RoomWorker[S]),
		stopping:   make(map[domain.RoomID]<-chan struct{}),
	}
}

func (e *Engine[S]) now() time.Time {
	return time.UnixMilli(e.config.Clock().UnixMilli()).UTC()
}

// CreateRoom builds a fresh state and makes it durable before handing out its id.
func (e *Engine[S]) CreateRoom(ctx context.Context, user domain.User, args json.RawMessage) (roomID domain.RoomID, err error) {
	ctx, span := e.tracer.Start(ctx, "engine.create_room", trace.WithAttributes(attribute.String("user.id", user.ID)))
	defer func() { endSpan(span, err) }()

	if e.isClosed() {
		return "", errors.ErrEngineClosed
	}
	seed, err := domain.NewSeed()
	if err != nil {
		return "", err
	}
	stream := domain.NewStream(seed)
	at := e.now()

	state, err := e.create(user, domain.NewContext(stream, at), args)
	if err != nil {
		return "", err
	}
	record, err := repositories.EncodeCreation(domain.CreationRecord{Seed: seed, User: user, Args: args})
	if err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrMalformedArgs, err)
	}

	roomID = domain.NewRoomID()
	if err := e.eventLog.Append(ctx, roomID, at, record); err != nil {
		e.monitoring.IncrAppendFailures()
		return "", fmt.Errorf("%w: %v", errors.ErrPersistence, err)
	}
	e.monitoring.IncrAppends()
	e.monitoring.IncrRoomsCreated()

	if _, err := e.start(roomID, state, stream); err != nil {
		return "", err
	}
	span.SetAttributes(attribute.String("room.id", roomID.String()))
	e.log.Info("Room created", "room_id", roomID, "user_id", user.ID)
	return roomID, nil
}

func (e *Engine[S]) create(user domain.User, ctx *domain.Context, args json.RawMessage) (state S, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: create: %v", errors.ErrDomainPanic, r)
		}
	}()
	return e.logic.Create(user, ctx, args)
}

// Dispatch decodes and runs one command. Unknown methods and malformed arguments are
// returned as caller errors without touching the room; a domain rejection is not an error.
func (e *Engine[S]) Dispatch(ctx context.Context, roomID domain.RoomID, user domain.User,
	correlationID, method string, args json.RawMessage) (result domain.Result, err error) {
	ctx, span := e.tracer.Start(ctx, "engine.dispatch", trace.WithAttributes(
		attribute.String("room.id", roomID.String()),
		attribute.String("user.id", user.ID),
		attribute.String("command.method", method),
	))
	defer func() { endSpan(span, err) }()

	worker, err := e.room(ctx, roomID)
	if err != nil {
		return domain.Result{}, err
	}
	cmd, err := e.logic.Decode(method, args)
	if err != nil {
		e.monitoring.IncrCallerErrors()
		return domain.Result{}, err
	}

	at := e.now()
	result, err = worker.Dispatch(ctx, user, correlationID, cmd, args, at)
	if errors.Is(err, errors.ErrRoomStopped) {
		// Evicted before the command ran: the reloaded worker gets it.
		if worker, err = e.room(ctx, roomID); err != nil {
			return domain.Result{}, err
		}
		result, err = worker.Dispatch(ctx, user, correlationID, cmd, args, at)
	}
	if err != nil {
		return domain.Result{}, err
	}
	span.SetAttributes(attribute.Bool("command.modified", result.IsModified()))
	return result, nil
}

// Subscribe loads the room if needed and registers one more connection of the user.
// sink is the new connection: when the user is already subscribed it receives
// the current snapshot from the room worker. It may be nil.
func (e *Engine[S]) Subscribe(ctx context.Context, roomID domain.RoomID, user domain.User, sink contract.EventSink) (domain.Subscription, error) {
	worker, err := e.room(ctx, roomID)
	if err != nil {
		return domain.Subscription{}, err
	}
	sub, err := worker.Subscribe(ctx, user, sink)
	if errors.Is(err, errors.ErrRoomStopped) {
		if worker, err = e.room(ctx, roomID); err != nil {
			return domain.Subscription{}, err
		}
		sub, err = worker.Subscribe(ctx, user, sink)
	}
	return sub, err
}

// Unsubscribe never loads a room: a room that is not live has no subscription.
func (e *Engine[S]) Unsubscribe(ctx context.Context, roomID domain.RoomID, user domain.User) error {
	e.mu.RLock()
	worker, ok := e.rooms[roomID]
	e.mu.RUnlock()
	if !ok {
		return nil
	}
	_, err := worker.Unsubscribe(ctx, user)
	if errors.Is(err, errors.ErrRoomStopped) {
		return nil
	}
	return err
}

// Flush is one broadcast tick over every live room. Rooms flush in parallel,
// each one on its own worker so no tick observes a half-applied command.
func (e *Engine[S]) Flush(ctx context.Context) (err error) {
	ctx, span := e.tracer.Start(ctx, "engine.flush")
	defer func() { endSpan(span, err) }()

	e.mu.RLock()
	live := lo.Values(e.rooms)
	e.mu.RUnlock()

	g, gctx := errgroup.WithContext(ctx)
	for _, worker := range live {
		g.Go(func() error {
			_, err := worker.Flush(gctx)
			if errors.Is(err, errors.ErrRoomStopped) {
				return nil
			}
			return err
		})
	}
	err = g.Wait()
	e.monitoring.IncrTicks()
	span.SetAttributes(attribute.Int("rooms.live", len(live)))
	return err
}

// Project returns the projection of a live or loadable room for one viewer.
func (e *Engine[S]) Project(ctx context.Context, roomID domain.RoomID, user domain.User) (any, error) {
	worker, err := e.room(ctx, roomID)
	if err != nil {
		return nil, err
	}
	var view any
	err = worker.Inspect(ctx, func(state S) {
		view = e.logic.Project(state, user)
	})
	return view, err
}

// Evict drops a live room; the next access reloads it from the log once the
// evicted worker has finished the command it was running.
// It is the way back for a room marked unusable.
func (e *Engine[S]) Evict(roomID domain.RoomID) bool {
	e.mu.Lock()
	worker, ok := e.rooms[roomID]
	if ok {
		delete(e.rooms, roomID)
		e.stopping[roomID] = worker.Done()
	}
	e.mu.Unlock()
	if !ok {
		return false
	}
	worker.Stop()
	e.monitoring.RoomClosed()
	e.log.Info("Room evicted", "room_id", roomID)
	return true
}

// Rooms lists the live rooms.
func (e *Engine[S]) Rooms() []domain.RoomID {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return lo.Keys(e.rooms)
}

// Close stops every room worker. Later calls fail with ErrEngineClosed.
func (e *Engine[S]) Close() {
	e.mu.Lock()
	e.closed = true
	live := e.rooms
	e.rooms = make(map[domain.RoomID]*workers.RoomWorker[S])
	e.mu.Unlock()

	for _, worker := range live {
		worker.Stop()
		e.monitoring.RoomClosed()
	}
	e.cancel()
}

func (e *Engine[S]) isClosed() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.closed
}

// room returns the live worker or loads the room from its log.
// Concurrent loads of one room collapse into a single replay.
func (e *Engine[S]) room(ctx context.Context, roomID domain.RoomID) (*workers.RoomWorker[S], error) {
	if err := roomID.Validate(); err != nil {
		return nil, err
	}
	e.mu.RLock()
	worker, ok := e.rooms[roomID]
	closed := e.closed
	e.mu.RUnlock()
	if closed {
		return nil, errors.ErrEngineClosed
	}
	if ok {
		return worker, nil
	}

	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := e.loads.Do(string(roomID), func() (any, error) {
		e.mu.RLock()
		worker, ok := e.rooms[roomID]
		e.mu.RUnlock()
		if ok {
			return worker, nil
		}
		if err := e.awaitEviction(roomID); err != nil {
			return nil, err
		}
		state, stream, err := e.load(loadCtx, roomID)
		if err != nil {
			return nil, err
		}
		return e.start(roomID, state, stream)
	})
	if err != nil {
		return nil, err
	}
	return v.(*workers.RoomWorker[S]), nil
}

// awaitEviction blocks until an evicted worker of the room is done, so that
// the reload reads every record it appended.
func (e *Engine[S]) awaitEviction(roomID domain.RoomID) error {
	e.mu.RLock()
	done, ok := e.stopping[roomID]
	e.mu.RUnlock()
	if !ok {
		return nil
	}
	select {
	case <-done:
	case <-e.ctx.Done():
		return errors.ErrEngineClosed
	}
	e.mu.Lock()
	if e.stopping[roomID] == done {
		delete(e.stopping, roomID)
	}
	e.mu.Unlock()
	return nil
}

func (e *Engine[S]) start(roomID domain.RoomID, state S, stream *domain.Stream) (*workers.RoomWorker[S], error) {
	worker := workers.NewRoomWorker[S](roomID, state, stream, e.logic, e.eventLog, e.pusher,
		e.monitoring, e.log, e.config.MailboxSize)

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil, errors.ErrEngineClosed
	}
	e.rooms[roomID] = worker
	e.mu.Unlock()

	e.supervisor.Start(e.ctx, worker)
	e.monitoring.RoomOpened()
	return worker, nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
