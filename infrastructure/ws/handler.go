package ws

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"game-lab/domain"
	"game-lab/errors"
	"game-lab/observability"
	"game-lab/projection"
	"game-lab/services"
	"game-lab/sink"

	"github.com/gorilla/websocket"
)

const (
	authTimeout         = 10 * time.Second
	maxMessageBytes     = 64 * 1024
	defaultPingInterval = 30 * time.Second
	defaultWriteTimeout = 10 * time.Second
)

type HandlerConfig struct {
	PingInterval time.Duration
	WriteTimeout time.Duration
	BufferSize   int
}

// Handler serves one room connection: the first text frame is the bearer
// token, every later frame is a command.
type Handler struct {
	log        *slog.Logger
	auth       services.IAuthService
	rooms      services.IRoomService
	monitoring *observability.MonitoringManager
	upgrader   websocket.Upgrader
	config     HandlerConfig
}

func NewHandler(
	log *slog.Logger,
	auth services.IAuthService,
	rooms services.IRoomService,
	monitoring *observability.MonitoringManager,
	config HandlerConfig,
) *Handler {
	if config.PingInterval <= 0 {
		config.PingInterval = defaultPingInterval
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = defaultWriteTimeout
	}
	return &Handler{
		log:        log,
		auth:       auth,
		rooms:      rooms,
		monitoring: monitoring,
		config:     config,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	roomID := domain.RoomID(r.PathValue("roomId"))
	if err := roomID.Validate(); err != nil {
		http.Error(w, err.Error(), errors.HTTPStatus(err))
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("Upgrade failed", "room_id", roomID, "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageBytes)

	user, err := h.authenticate(conn)
	if err != nil {
		h.reject(conn, err)
		return
	}
	log := h.log.With("room_id", roomID, "user_id", user.ID)

	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()

	connection := sink.NewConnectionSink(h.config.BufferSize, h.monitoring)
	if err := h.rooms.Connect(ctx, roomID, user, connection); err != nil {
		log.Info("Connection refused", "error", err)
		h.reject(conn, err)
		return
	}
	h.monitoring.ConnectionOpened()
	log.Debug("Connection opened")

	pumpDone := make(chan struct{})
	go func() {
		defer close(pumpDone)
		h.writePump(conn, connection)
	}()

	h.readPump(ctx, conn, roomID, user, connection)

	connection.Close()
	<-pumpDone
	h.rooms.Disconnect(ctx, roomID, user, connection)
	h.monitoring.ConnectionClosed()
	log.Debug("Connection closed")
}

func (h *Handler) authenticate(conn *websocket.Conn) (domain.User, error) {
	_ = conn.SetReadDeadline(time.Now().Add(authTimeout))
	messageType, token, err := conn.ReadMessage()
	if err != nil {
		return domain.User{}, errors.ErrUnauthenticated
	}
	if messageType != websocket.TextMessage {
		return domain.User{}, errors.ErrUnauthenticated
	}
	return h.auth.Authenticate(string(token))
}

// reject answers with an error frame then closes the socket.
func (h *Handler) reject(conn *websocket.Conn, err error) {
	frame, encodeErr := projection.EncodeError(errors.Code(err), err.Error(), "")
	deadline := time.Now().Add(h.config.WriteTimeout)
	_ = conn.SetWriteDeadline(deadline)
	if encodeErr == nil {
		_ = conn.WriteMessage(websocket.TextMessage, frame)
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, errors.Code(err)), deadline)
}

// readPump dispatches command frames until the socket fails or misses a pong.
func (h *Handler) readPump(ctx context.Context, conn *websocket.Conn, roomID domain.RoomID, user domain.User, connection *sink.ConnectionSink) {
	pongWait := 2 * h.config.PingInterval
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Debug("Connection lost", "room_id", roomID, "user_id", user.ID, "error", err)
			}
			return
		}
		if answer := h.rooms.HandleFrame(ctx, roomID, user, payload); answer != nil {
			_ = connection.Consume(ctx, answer)
		}
	}
}

// writePump is the only writer of the socket.
func (h *Handler) writePump(conn *websocket.Conn, connection *sink.ConnectionSink) {
	ticker := time.NewTicker(h.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-connection.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(h.config.WriteTimeout))
			return
		case frame := <-connection.Frames():
			_ = conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				_ = conn.Close()
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(h.config.WriteTimeout)); err != nil {
				_ = conn.Close()
				return
			}
		}
	}
}
