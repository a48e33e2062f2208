package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"game-lab/auth"
	"game-lab/contract"
	"game-lab/domain"
	"game-lab/errors"
	"game-lab/mocks"
	"game-lab/projection"
	"game-lab/runtime"
	"game-lab/sink"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var alice = domain.User{ID: "alice", Name: "Alice"}

func newRoomService(t *testing.T) (*RoomService, *mocks.MockRoomEngine, *runtime.Registry) {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	engine := mocks.NewMockRoomEngine(gomock.NewController(t))
	registry := runtime.NewRegistry(log)
	return NewRoomService(log, engine, registry), engine, registry
}

func TestRoomService_Connect_First_Connection(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	service, engine, registry := newRoomService(t)
	roomID := domain.NewRoomID()
	conn := sink.NewTimelineSink(alice.ID)

	frame, err := projection.EncodeFrame(map[string]int{"pot": 0}, nil)
	req.NoError(err)

	// The engine pushes through the registry, so the sink must already be there
	engine.EXPECT().Subscribe(ctx, roomID, alice, conn).
		DoAndReturn(func(_ context.Context, roomID domain.RoomID, user domain.User, _ contract.EventSink) (domain.Subscription, error) {
			registry.Push(roomID, user.ID, frame)
			return domain.Subscription{First: true, Snapshot: frame}, nil
		})

	req.NoError(service.Connect(ctx, roomID, alice, conn))
	req.Equal(1, conn.Frames())
	req.Len(registry.GetSinks(roomID, alice.ID), 1)
}

func TestRoomService_Connect_Second_Connection_Is_Left_To_The_Room(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	service, engine, registry := newRoomService(t)
	roomID := domain.NewRoomID()
	first, second := sink.NewTimelineSink(alice.ID), sink.NewTimelineSink(alice.ID)

	frame, err := projection.EncodeFrame(map[string]int{"pot": 30}, nil)
	req.NoError(err)
	engine.EXPECT().Subscribe(ctx, roomID, alice, first).Return(domain.Subscription{First: true, Snapshot: frame}, nil)
	// The room worker hands the snapshot to the new sink, the service must not replay it
	engine.EXPECT().Subscribe(ctx, roomID, alice, second).Return(domain.Subscription{Snapshot: frame}, nil)

	req.NoError(service.Connect(ctx, roomID, alice, first))
	req.NoError(service.Connect(ctx, roomID, alice, second))

	req.Equal(0, first.Frames())
	req.Equal(0, second.Frames())
	req.Len(registry.GetSinks(roomID, alice.ID), 2)
}

func TestRoomService_Connect_Unknown_Room(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	service, engine, registry := newRoomService(t)
	roomID := domain.NewRoomID()

	engine.EXPECT().Subscribe(ctx, roomID, alice, gomock.Any()).Return(domain.Subscription{}, errors.ErrRoomNotFound)

	err := service.Connect(ctx, roomID, alice, sink.NewTimelineSink(alice.ID))
	req.ErrorIs(err, errors.ErrRoomNotFound)
	req.Empty(registry.GetSinks(roomID, alice.ID))
}

func TestRoomService_Disconnect(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	service, engine, registry := newRoomService(t)
	roomID := domain.NewRoomID()
	conn := sink.NewTimelineSink(alice.ID)

	engine.EXPECT().Subscribe(ctx, roomID, alice, conn).Return(domain.Subscription{First: true}, nil)
	engine.EXPECT().Unsubscribe(ctx, roomID, alice).Return(nil)

	req.NoError(service.Connect(ctx, roomID, alice, conn))
	service.Disconnect(ctx, roomID, alice, conn)
	req.Empty(registry.GetSinks(roomID, alice.ID))
}

func TestRoomService_HandleFrame(t *testing.T) {
	ctx := context.Background()
	roomID := domain.NewRoomID()

	tests := []struct {
		description string
		raw         string
		setup       func(engine *mocks.MockRoomEngine)
		code        string
		correlation string
	}{
		{
			description: "Should dispatch a well formed command without answering",
			raw:         `{"method":"call","correlationId":"c1"}`,
			setup: func(engine *mocks.MockRoomEngine) {
				engine.EXPECT().Dispatch(ctx, roomID, alice, "c1", "call", gomock.Nil()).Return(domain.Modified(), nil)
			},
		},
		{
			description: "Should not answer a domain rejection, it travels with the tick",
			raw:         `{"method":"raise","correlationId":"c2","args":{"raiseAmount":5}}`,
			setup: func(engine *mocks.MockRoomEngine) {
				engine.EXPECT().Dispatch(ctx, roomID, alice, "c2", "raise", json.RawMessage(`{"raiseAmount":5}`)).
					Return(domain.Unmodified("Not your turn"), nil)
			},
		},
		{
			description: "Should answer an unknown method",
			raw:         `{"method":"dance","correlationId":"c3"}`,
			setup: func(engine *mocks.MockRoomEngine) {
				engine.EXPECT().Dispatch(ctx, roomID, alice, "c3", "dance", gomock.Any()).
					Return(domain.Result{}, fmt.Errorf("%w: %q", errors.ErrUnknownMethod, "dance"))
			},
			code:        "unknown_method",
			correlation: "c3",
		},
		{
			description: "Should answer a frame that is not json",
			raw:         `hello`,
			setup:       func(engine *mocks.MockRoomEngine) {},
			code:        "malformed_args",
		},
		{
			description: "Should answer a frame without correlation id",
			raw:         `{"method":"call"}`,
			setup:       func(engine *mocks.MockRoomEngine) {},
			code:        "malformed_args",
		},
		{
			description: "Should answer when the room is unusable",
			raw:         `{"method":"call","correlationId":"c4"}`,
			setup: func(engine *mocks.MockRoomEngine) {
				engine.EXPECT().Dispatch(ctx, roomID, alice, "c4", "call", gomock.Any()).
					Return(domain.Result{}, errors.ErrRoomUnusable)
			},
			code:        "room_unusable",
			correlation: "c4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			req := require.New(t)
			service, engine, _ := newRoomService(t)
			tt.setup(engine)

			answer := service.HandleFrame(ctx, roomID, alice, []byte(tt.raw))
			if tt.code == "" {
				req.Nil(answer)
				return
			}
			env, err := projection.DecodeEnvelope(answer)
			req.NoError(err)
			req.NotNil(env.Error)
			req.Equal(tt.code, env.Error.Code)
			req.Equal(tt.correlation, env.Error.CorrelationID)
			req.Nil(env.State)
		})
	}
}

func TestAuthService_LoginAnonymous(t *testing.T) {
	req := require.New(t)
	service := NewAuthService(auth.NewTokenIssuer("secret", time.Hour))

	token, user, err := service.LoginAnonymous()
	req.NoError(err)
	req.NotEmpty(token.String())
	req.NotEmpty(user.ID)
	req.NotEmpty(user.Name)

	authenticated, err := service.Authenticate(token.String())
	req.NoError(err)
	req.Equal(user, authenticated)

	_, err = service.Authenticate("forged")
	req.ErrorIs(err, errors.ErrInvalidToken)
}
