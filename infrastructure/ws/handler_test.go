package ws_test

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"game-lab/auth"
	"game-lab/contract"
	"game-lab/domain"
	"game-lab/errors"
	"game-lab/infrastructure/ws"
	"game-lab/mocks"
	"game-lab/observability"
	"game-lab/projection"
	"game-lab/services"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	url        string
	token      string
	user       domain.User
	rooms      *mocks.MockIRoomService
	monitoring *observability.MonitoringManager
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := slog.Default()
	authService := services.NewAuthService(auth.NewTokenIssuer("ws-test-secret-0123456789", time.Hour))
	token, user, err := authService.LoginAnonymous()
	require.NoError(t, err)

	rooms := mocks.NewMockIRoomService(ctrl)
	monitoring := observability.NewMonitoringManager(log)
	handler := ws.NewHandler(log, authService, rooms, monitoring, ws.HandlerConfig{BufferSize: 4})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /rooms/{roomId}/ws", handler.Handle)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return fixture{
		url:        "ws" + strings.TrimPrefix(server.URL, "http") + "/rooms/room-1/ws",
		token:      token.String(),
		user:       user,
		rooms:      rooms,
		monitoring: monitoring,
	}
}

func (f fixture) dial(t *testing.T, token string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(f.url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(token)))
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) projection.Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	env, err := projection.DecodeEnvelope(payload)
	require.NoError(t, err)
	return env
}

func TestHandler_Rejects_Bad_Token(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	conn := f.dial(t, "garbage")
	env := readEnvelope(t, conn)
	req.NotNil(env.Error)
	req.Equal("unauthenticated", env.Error.Code)

	_, _, err := conn.ReadMessage()
	req.True(websocket.IsCloseError(err, websocket.ClosePolicyViolation))
}

func TestHandler_Rejects_Invalid_Room_Id_Before_Upgrade(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	url := strings.Replace(f.url, "/rooms/room-1/", "/rooms/a:b/", 1)
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	req.ErrorIs(err, websocket.ErrBadHandshake)
	req.NotNil(resp)
	defer resp.Body.Close()
	req.Equal(http.StatusBadRequest, resp.StatusCode)
}

func TestHandler_Rejects_Unknown_Room(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.rooms.EXPECT().Connect(gomock.Any(), domain.RoomID("room-1"), f.user, gomock.Any()).
		Return(fmt.Errorf("%w: room-1", errors.ErrRoomNotFound))

	conn := f.dial(t, f.token)
	env := readEnvelope(t, conn)
	req.NotNil(env.Error)
	req.Equal("room_not_found", env.Error.Code)
}

func TestHandler_Session(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	ctx := context.Background()

	disconnected := make(chan struct{})
	sinks := make(chan contract.EventSink, 1)
	f.rooms.EXPECT().Connect(gomock.Any(), domain.RoomID("room-1"), f.user, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ domain.RoomID, _ domain.User, s contract.EventSink) error {
			sinks <- s
			frame, err := projection.EncodeFrame(map[string]int{"turn": 1}, nil)
			req.NoError(err)
			return s.Consume(ctx, frame)
		})
	request, err := projection.EncodeRequest("move", "c1", map[string]int{"x": 1})
	req.NoError(err)
	gomock.InOrder(
		f.rooms.EXPECT().HandleFrame(gomock.Any(), domain.RoomID("room-1"), f.user, request).Return(nil),
		f.rooms.EXPECT().HandleFrame(gomock.Any(), domain.RoomID("room-1"), f.user, []byte("nonsense")).
			DoAndReturn(func(context.Context, domain.RoomID, domain.User, []byte) []byte {
				frame, _ := projection.EncodeError("malformed_args", "not a request", "")
				return frame
			}),
	)
	detached := make(chan contract.EventSink, 1)
	f.rooms.EXPECT().Disconnect(gomock.Any(), domain.RoomID("room-1"), f.user, gomock.Any()).
		Do(func(_ context.Context, _ domain.RoomID, _ domain.User, s contract.EventSink) {
			detached <- s
			close(disconnected)
		})

	conn := f.dial(t, f.token)
	attached := <-sinks

	// 1. The snapshot consumed during Connect is the first frame
	env := readEnvelope(t, conn)
	req.Nil(env.Error)
	req.JSONEq(`{"turn":1}`, string(env.State))

	// 2. Commands are handed over as-is, error answers come back on the socket
	req.NoError(conn.WriteMessage(websocket.TextMessage, request))
	req.NoError(conn.WriteMessage(websocket.TextMessage, []byte("nonsense")))
	env = readEnvelope(t, conn)
	req.NotNil(env.Error)
	req.Equal("malformed_args", env.Error.Code)

	// 3. Pushes after Connect go through the same connection
	frame, err := projection.EncodeFrame(map[string]int{"turn": 2}, map[string]*string{"c1": nil})
	req.NoError(err)
	req.NoError(attached.Consume(ctx, frame))
	env = readEnvelope(t, conn)
	req.JSONEq(`{"turn":2}`, string(env.State))
	req.Contains(env.Responses, "c1")
	req.Equal(int64(1), f.monitoring.GetLatest().Connections)

	// 4. Closing the socket detaches the connection
	req.NoError(conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	select {
	case <-disconnected:
		req.Same(attached, <-detached)
	case <-time.After(2 * time.Second):
		req.Fail("Disconnect was not called")
	}
	req.Eventually(func() bool {
		return f.monitoring.GetLatest().Connections == 0
	}, time.Second, 10*time.Millisecond)
}
