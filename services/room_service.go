//go:generate go run go.uber.org/mock/mockgen -source=room_service.go -destination=../mocks/mock_room_service.go -package=mocks
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"game-lab/contract"
	"game-lab/domain"
	"game-lab/errors"
	"game-lab/projection"

	"github.com/go-playground/validator/v10"
)

// RoomEngine is the part of runtime.Engine the transport needs, whatever the room state type.
type RoomEngine interface {
	CreateRoom(ctx context.Context, user domain.User, args json.RawMessage) (domain.RoomID, error)
	Dispatch(ctx context.Context, roomID domain.RoomID, user domain.User, correlationID, method string, args json.RawMessage) (domain.Result, error)
	Subscribe(ctx context.Context, roomID domain.RoomID, user domain.User, sink contract.EventSink) (domain.Subscription, error)
	Unsubscribe(ctx context.Context, roomID domain.RoomID, user domain.User) error
}

type IRoomService interface {
	CreateRoom(ctx context.Context, user domain.User, args json.RawMessage) (domain.RoomID, error)
	Connect(ctx context.Context, roomID domain.RoomID, user domain.User, sink contract.EventSink) error
	Disconnect(ctx context.Context, roomID domain.RoomID, user domain.User, sink contract.EventSink)
	HandleFrame(ctx context.Context, roomID domain.RoomID, user domain.User, raw []byte) []byte
}

type RoomService struct {
	log      *slog.Logger
	engine   RoomEngine
	registry contract.IRegistry
	validate *validator.Validate
}

func NewRoomService(log *slog.Logger, engine RoomEngine, registry contract.IRegistry) *RoomService {
	return &RoomService{
		log:      log,
		engine:   engine,
		registry: registry,
		validate: validator.New(),
	}
}

func (s *RoomService) CreateRoom(ctx context.Context, user domain.User, args json.RawMessage) (domain.RoomID, error) {
	return s.engine.CreateRoom(ctx, user, args)
}

// Connect attaches one more physical connection of the user to the room.
// The sink is registered before the engine is told, so the first push reaches it.
// A later connection of an already subscribed user is handed the current
// snapshot by the room worker, in order with the ticks.
func (s *RoomService) Connect(ctx context.Context, roomID domain.RoomID, user domain.User, sink contract.EventSink) error {
	s.registry.Subscribe(roomID, user.ID, sink)
	if _, err := s.engine.Subscribe(ctx, roomID, user, sink); err != nil {
		s.registry.Unsubscribe(roomID, user.ID, sink)
		return err
	}
	return nil
}

func (s *RoomService) Disconnect(ctx context.Context, roomID domain.RoomID, user domain.User, sink contract.EventSink) {
	s.registry.Unsubscribe(roomID, user.ID, sink)
	if err := s.engine.Unsubscribe(ctx, roomID, user); err != nil {
		s.log.Warn("Unsubscribe failed", "room_id", roomID, "user_id", user.ID, "error", err)
	}
}

// HandleFrame runs one command frame. It returns an error frame for the sending
// connection when the command could not be dispatched, nil otherwise: the
// outcome of a dispatched command travels with the next tick.
func (s *RoomService) HandleFrame(ctx context.Context, roomID domain.RoomID, user domain.User, raw []byte) []byte {
	var request projection.Request
	if err := json.Unmarshal(raw, &request); err != nil {
		return s.errorFrame(fmt.Errorf("%w: %v", errors.ErrMalformedArgs, err), "")
	}
	if err := s.validate.Struct(request); err != nil {
		return s.errorFrame(fmt.Errorf("%w: %v", errors.ErrMalformedArgs, err), request.CorrelationID)
	}

	_, err := s.engine.Dispatch(ctx, roomID, user, request.CorrelationID, request.Method, request.Args)
	if err != nil {
		if !errors.IsCallerError(err) {
			s.log.Error("Dispatch failed", "room_id", roomID, "user_id", user.ID, "method", request.Method, "error", err)
		}
		return s.errorFrame(err, request.CorrelationID)
	}
	return nil
}

func (s *RoomService) errorFrame(err error, correlationID string) []byte {
	frame, encodeErr := projection.EncodeError(errors.Code(err), err.Error(), correlationID)
	if encodeErr != nil {
		s.log.Error("Cannot encode error frame", "error", encodeErr)
		return nil
	}
	return frame
}
