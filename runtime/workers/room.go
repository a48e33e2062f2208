package workers

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
	"game-lab/projection"
	"game-lab/repositories"
)

type subscriber struct {
	user domain.User
	refs int
}

// RoomWorker is the single goroutine owning one room.
// State, stream, subscriptions, pending responses and the changed flag are
// only touched from Run, every other goroutine talks to it through the mailbox.
type RoomWorker[S any] struct {
	roomID     domain.RoomID
	logic      contract.Logic[S]
	eventLog   contract.EventLog
	pusher     contract.Pusher
	monitoring *observability.MonitoringManager
	log        *slog.Logger

	state       S
	stream      *domain.Stream
	subscribers map[string]*subscriber
	pending     map[string]map[string]*string
	changed     bool
	broken      error

	mailbox  chan roomMessage[S]
	mu       sync.RWMutex
	stopped  bool
	quit     chan struct{}
	quitOnce sync.Once
	done     chan struct{}
}

// roomMessage is answered exactly once: by handle when the worker runs it,
// by reject when the worker stops before reaching it.
type roomMessage[S any] interface {
	handle(ctx context.Context, w *RoomWorker[S])
	reject(err error)
}

type outcome[R any] struct {
	value R
	err   error
}

// answer keeps the first outcome of a message and drops any later one.
func answer[R any](reply chan outcome[R], value R, err error) {
	select {
	case reply <- outcome[R]{value: value, err: err}:
	default:
	}
}

var _ contract.Worker = (*RoomWorker[any])(nil)

func NewRoomWorker[S any](
	roomID domain.RoomID,
	state S,
	stream *domain.Stream,
	logic contract.Logic[S],
	eventLog contract.EventLog,
	pusher contract.Pusher,
	monitoring *observability.MonitoringManager,
	log *slog.Logger,
	mailboxSize int,
) *RoomWorker[S] {
	return &RoomWorker[S]{
		roomID:      roomID,
		logic:       logic,
		eventLog:    eventLog,
		pusher:      pusher,
		monitoring:  monitoring,
		log:         log.With("room_id", roomID),
		state:       state,
		stream:      stream,
		subscribers: make(map[string]*subscriber),
		pending:     make(map[string]map[string]*string),
		mailbox:     make(chan roomMessage[S], mailboxSize),
		quit:        make(chan struct{}),
		done:        make(chan struct{}),
	}
}

func (w *RoomWorker[S]) RoomID() domain.RoomID {
	return w.roomID
}

// Run processes the mailbox in arrival order until the context is canceled or Stop is called.
func (w *RoomWorker[S]) Run(ctx context.Context) error {
	w.log.Debug("Room worker started")
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping room worker")
			w.shutdown()
			return ctx.Err()
		case <-w.quit:
			w.log.Debug("Room worker evicted")
			w.shutdown()
			return nil
		case msg := <-w.mailbox:
			w.handle(ctx, msg)
		}
	}
}

// handle answers the message before letting a panic reach the supervisor.
func (w *RoomWorker[S]) handle(ctx context.Context, msg roomMessage[S]) {
	defer func() {
		if r := recover(); r != nil {
			msg.reject(fmt.Errorf("%w: %v", errors.ErrWorkerPanic, r))
			panic(r)
		}
	}()
	msg.handle(ctx, w)
}

// shutdown refuses any further message and rejects the queued ones.
func (w *RoomWorker[S]) shutdown() {
	w.Stop()
	w.mu.Lock()
	w.stopped = true
	w.mu.Unlock()
	for {
		select {
		case msg := <-w.mailbox:
			msg.reject(errors.ErrRoomStopped)
		default:
			close(w.done)
			return
		}
	}
}

// Stop ends Run after the message being handled. Messages still queued are
// rejected with ErrRoomStopped and never run.
func (w *RoomWorker[S]) Stop() {
	w.quitOnce.Do(func() { close(w.quit) })
}

// Done is closed once Run has stopped and every queued message was answered.
func (w *RoomWorker[S]) Done() <-chan struct{} {
	return w.done
}

// send enqueues a message and waits for its reply.
// ErrRoomStopped means the message never ran. Once enqueued, a message runs
// to completion even if the caller gives up.
func send[S any, R any](ctx context.Context, w *RoomWorker[S], msg roomMessage[S], reply chan outcome[R]) (R, error) {
	var zero R
	if err := w.enqueue(ctx, msg); err != nil {
		return zero, err
	}
	select {
	case r := <-reply:
		return r.value, r.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// enqueue holds the read lock so that shutdown drains every message that got in.
func (w *RoomWorker[S]) enqueue(ctx context.Context, msg roomMessage[S]) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.stopped {
		return errors.ErrRoomStopped
	}
	select {
	case w.mailbox <- msg:
		return nil
	case <-w.quit:
		return errors.ErrRoomStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// --- dispatch ---

type dispatchMsg[S any] struct {
	user          domain.User
	correlationID string
	cmd           domain.Command
	args          json.RawMessage
	at            time.Time
	reply         chan outcome[domain.Result]
}

// Dispatch executes an already decoded command. at is the logical time of the command.
func (w *RoomWorker[S]) Dispatch(ctx context.Context, user domain.User, correlationID string,
	cmd domain.Command, args json.RawMessage, at time.Time) (domain.Result, error) {
	reply := make(chan outcome[domain.Result], 1)
	msg := &dispatchMsg[S]{user: user, correlationID: correlationID, cmd: cmd, args: args, at: at, reply: reply}
	return send[S](ctx, w, msg, reply)
}

func (m *dispatchMsg[S]) handle(ctx context.Context, w *RoomWorker[S]) {
	result, err := w.dispatch(ctx, m)
	answer(m.reply, result, err)
}

func (m *dispatchMsg[S]) reject(err error) {
	answer(m.reply, domain.Result{}, err)
}

func (w *RoomWorker[S]) dispatch(ctx context.Context, m *dispatchMsg[S]) (domain.Result, error) {
	if w.broken != nil {
		return domain.Result{}, fmt.Errorf("%w: %v", errors.ErrRoomUnusable, w.broken)
	}

	result, err := w.execute(m.user, domain.NewContext(w.stream, m.at), m.cmd)
	if err != nil {
		w.markBroken(err)
		return domain.Result{}, err
	}

	if result.IsModified() {
		if err := w.append(ctx, m); err != nil {
			w.monitoring.IncrAppendFailures()
			w.markBroken(err)
			return domain.Result{}, err
		}
		w.monitoring.IncrAppends()
		w.monitoring.IncrApplied()
		w.changed = true
	} else {
		w.monitoring.IncrRejected()
	}
	w.respond(m.user.ID, m.correlationID, result.Response())
	return result, nil
}

func (w *RoomWorker[S]) execute(user domain.User, ctx *domain.Context, cmd domain.Command) (result domain.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: %v", errors.ErrDomainPanic, cmd.Method(), r)
		}
	}()
	return w.logic.Execute(w.state, user, ctx, cmd), nil
}

// append persists the command before the room is flagged as changed.
// It ignores the caller context: an accepted command is never canceled halfway.
func (w *RoomWorker[S]) append(ctx context.Context, m *dispatchMsg[S]) error {
	record, err := repositories.EncodeCommand(domain.CommandRecord{Method: m.cmd.Method(), User: m.user, Args: m.args})
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrPersistence, err)
	}
	if err := w.eventLog.Append(context.WithoutCancel(ctx), w.roomID, m.at, record); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrPersistence, err)
	}
	return nil
}

// markBroken freezes the room: live state may have diverged from the log.
func (w *RoomWorker[S]) markBroken(err error) {
	if w.broken == nil {
		w.monitoring.IncrUnusableRooms()
	}
	w.broken = err
	w.changed = false
	w.pending = make(map[string]map[string]*string)
	w.log.Error("Room is unusable until reloaded", "error", err)
}

func (w *RoomWorker[S]) respond(userID, correlationID string, response *string) {
	responses, ok := w.pending[userID]
	if !ok {
		responses = make(map[string]*string)
		w.pending[userID] = responses
	}
	responses[correlationID] = response
}

// --- subscriptions ---

type subscribeMsg[S any] struct {
	user  domain.User
	sink  contract.EventSink
	reply chan outcome[domain.Subscription]
}

// Subscribe registers one more connection of the user. The first connection is
// pushed the current state through the pusher. A later one is handed its
// snapshot through sink, when given, from the worker so that it is ordered with the ticks.
func (w *RoomWorker[S]) Subscribe(ctx context.Context, user domain.User, sink contract.EventSink) (domain.Subscription, error) {
	reply := make(chan outcome[domain.Subscription], 1)
	return send[S](ctx, w, &subscribeMsg[S]{user: user, sink: sink, reply: reply}, reply)
}

func (m *subscribeMsg[S]) handle(ctx context.Context, w *RoomWorker[S]) {
	if w.broken != nil {
		answer(m.reply, domain.Subscription{}, fmt.Errorf("%w: %v", errors.ErrRoomUnusable, w.broken))
		return
	}
	snapshot, err := w.frame(m.user, nil)
	if err != nil {
		answer(m.reply, domain.Subscription{}, err)
		return
	}
	sub, ok := w.subscribers[m.user.ID]
	if ok {
		sub.refs++
		if m.sink != nil {
			if err := m.sink.Consume(ctx, snapshot); err != nil {
				w.log.Debug("Snapshot dropped", "user_id", m.user.ID, "error", err)
			} else {
				w.monitoring.IncrPushes(1)
			}
		}
		answer(m.reply, domain.Subscription{Snapshot: snapshot}, nil)
		return
	}
	w.subscribers[m.user.ID] = &subscriber{user: m.user, refs: 1}
	w.pusher.Push(w.roomID, m.user.ID, snapshot)
	w.monitoring.IncrPushes(1)
	w.log.Debug("User subscribed", "user_id", m.user.ID)
	answer(m.reply, domain.Subscription{First: true, Snapshot: snapshot}, nil)
}

func (m *subscribeMsg[S]) reject(err error) {
	answer(m.reply, domain.Subscription{}, err)
}

type unsubscribeMsg[S any] struct {
	user  domain.User
	reply chan outcome[bool]
}

// Unsubscribe drops one connection of the user and reports whether it was the last one.
func (w *RoomWorker[S]) Unsubscribe(ctx context.Context, user domain.User) (bool, error) {
	reply := make(chan outcome[bool], 1)
	return send[S](ctx, w, &unsubscribeMsg[S]{user: user, reply: reply}, reply)
}

func (m *unsubscribeMsg[S]) handle(_ context.Context, w *RoomWorker[S]) {
	sub, ok := w.subscribers[m.user.ID]
	if !ok {
		answer(m.reply, false, nil)
		return
	}
	sub.refs--
	if sub.refs > 0 {
		answer(m.reply, false, nil)
		return
	}
	delete(w.subscribers, m.user.ID)
	delete(w.pending, m.user.ID)
	w.log.Debug("User unsubscribed", "user_id", m.user.ID)
	answer(m.reply, true, nil)
}

func (m *unsubscribeMsg[S]) reject(err error) {
	answer(m.reply, false, err)
}

// --- broadcast ---

type flushMsg[S any] struct {
	reply chan outcome[int]
}

// Flush pushes to every subscriber when the room changed or holds responses,
// then clears both. It returns the number of pushes.
func (w *RoomWorker[S]) Flush(ctx context.Context) (int, error) {
	reply := make(chan outcome[int], 1)
	return send[S](ctx, w, &flushMsg[S]{reply: reply}, reply)
}

func (m *flushMsg[S]) handle(_ context.Context, w *RoomWorker[S]) {
	answer(m.reply, w.flush(), nil)
}

func (m *flushMsg[S]) reject(err error) {
	answer(m.reply, 0, err)
}

func (w *RoomWorker[S]) flush() int {
	if w.broken != nil || (!w.changed && len(w.pending) == 0) {
		return 0
	}
	pushed := 0
	for userID, sub := range w.subscribers {
		payload, err := w.frame(sub.user, w.pending[userID])
		if err != nil {
			w.log.Error("Cannot encode projection", "user_id", userID, "error", err)
			continue
		}
		w.pusher.Push(w.roomID, userID, payload)
		pushed++
	}
	w.changed = false
	w.pending = make(map[string]map[string]*string)
	w.monitoring.IncrPushes(pushed)
	return pushed
}

func (w *RoomWorker[S]) frame(user domain.User, responses map[string]*string) (payload []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: projection: %v", errors.ErrDomainPanic, r)
		}
	}()
	return projection.EncodeFrame(w.logic.Project(w.state, user), responses)
}

// --- inspection ---

type inspectMsg[S any] struct {
	fn    func(state S)
	reply chan outcome[struct{}]
}

// Inspect runs fn on the worker goroutine. fn must not mutate or retain the state.
func (w *RoomWorker[S]) Inspect(ctx context.Context, fn func(state S)) error {
	reply := make(chan outcome[struct{}], 1)
	_, err := send[S](ctx, w, &inspectMsg[S]{fn: fn, reply: reply}, reply)
	return err
}

func (m *inspectMsg[S]) handle(_ context.Context, w *RoomWorker[S]) {
	m.fn(w.state)
	answer(m.reply, struct{}{}, nil)
}

func (m *inspectMsg[S]) reject(err error) {
	answer(m.reply, struct{}{}, err)
}
