// Package api exposes the room runtime over HTTP: anonymous login, room
// creation, the room WebSocket and the runtime counters.
package api

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"game-lab/auth"
	"game-lab/errors"
	"game-lab/observability"
	"game-lab/services"
)

const maxCreateBodyBytes = 1 << 20

type Server struct {
	log        *slog.Logger
	auth       services.IAuthService
	rooms      services.IRoomService
	socket     http.HandlerFunc
	monitoring *observability.MonitoringManager
}

func NewServer(
	log *slog.Logger,
	auth services.IAuthService,
	rooms services.IRoomService,
	socket http.HandlerFunc,
	monitoring *observability.MonitoringManager,
) *Server {
	return &Server{log: log, auth: auth, rooms: rooms, socket: socket, monitoring: monitoring}
}

type loginResponse struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
	Name   string `json:"name"`
}

type createRoomResponse struct {
	RoomID string `json:"roomId"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	authenticated := auth.Middleware(s.auth.Authenticate, s.writeError)

	mux.HandleFunc("POST /login/anonymous", s.loginAnonymous)
	mux.Handle("POST /rooms", authenticated(http.HandlerFunc(s.createRoom)))
	mux.Handle("POST /new", authenticated(http.HandlerFunc(s.createRoom)))
	mux.HandleFunc("GET /rooms/{roomId}/ws", s.socket)
	mux.HandleFunc("GET /debug/stats", s.stats)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

func (s *Server) loginAnonymous(w http.ResponseWriter, _ *http.Request) {
	token, user, err := s.auth.LoginAnonymous()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.log.Debug("Anonymous login", "user_id", user.ID, "name", user.Name)
	s.writeJSON(w, http.StatusOK, loginResponse{Token: token.String(), UserID: user.ID, Name: user.Name})
}

// createRoom forwards the raw body as creation arguments. An empty body means no arguments.
func (s *Server) createRoom(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		s.writeError(w, errors.ErrUnauthenticated)
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxCreateBodyBytes))
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: %v", errors.ErrMalformedArgs, err))
		return
	}
	var args json.RawMessage
	if len(body) > 0 {
		if !json.Valid(body) {
			s.writeError(w, fmt.Errorf("%w: body is not json", errors.ErrMalformedArgs))
			return
		}
		args = body
	}

	roomID, err := s.rooms.CreateRoom(r.Context(), user, args)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, createRoomResponse{RoomID: roomID.String()})
}

func (s *Server) stats(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.monitoring.GetLatest())
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("Request failed", "error", err)
	}
	s.writeJSON(w, status, errorResponse{Error: errorBody{Code: errors.Code(err), Message: err.Error()}})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Warn("Cannot write response", "error", err)
	}
}
