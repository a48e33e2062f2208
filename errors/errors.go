package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Caller errors: rejected immediately, never persisted, never retried.
var (
	ErrRoomNotFound    = fmt.Errorf("room not found")
	ErrUnknownMethod   = fmt.Errorf("unknown method")
	ErrMalformedArgs   = fmt.Errorf("malformed arguments")
	ErrUnauthenticated = fmt.Errorf("unauthenticated")
	ErrInvalidToken    = fmt.Errorf("invalid or expired token")
	ErrMissingRoomID   = fmt.Errorf("room id is required")
	ErrInvalidRoomID   = fmt.Errorf("invalid room id")
)

// Infrastructure errors.
var (
	ErrPersistence         = fmt.Errorf("persistence failure")
	ErrReplayInconsistency = fmt.Errorf("replay inconsistency")
	ErrRoomUnusable        = fmt.Errorf("room is unusable until reloaded")
	ErrDomainPanic         = fmt.Errorf("domain logic panic")
	ErrWorkerPanic         = fmt.Errorf("worker panic")
	ErrEngineClosed        = fmt.Errorf("engine is closed")
	ErrRoomStopped         = fmt.Errorf("room worker stopped")
	ErrTokenGeneration     = fmt.Errorf("token generation failed")
	ErrUnknownLogBackend   = fmt.Errorf("unknown log backend")
	ErrSinkFull            = fmt.Errorf("connection buffer full")
	ErrSinkClosed          = fmt.Errorf("connection closed")
)

// Is forwards to the standard errors.Is so callers only import this package.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// IsCallerError reports whether err belongs to the caller error family.
func IsCallerError(err error) bool {
	return errors.Is(err, ErrRoomNotFound) ||
		errors.Is(err, ErrUnknownMethod) ||
		errors.Is(err, ErrMalformedArgs) ||
		errors.Is(err, ErrUnauthenticated) ||
		errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrMissingRoomID) ||
		errors.Is(err, ErrInvalidRoomID)
}

// HTTPStatus maps the error taxonomy onto an HTTP status code.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUnauthenticated), errors.Is(err, ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, ErrRoomNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnknownMethod), errors.Is(err, ErrMalformedArgs), errors.Is(err, ErrMissingRoomID),
		errors.Is(err, ErrInvalidRoomID):
		return http.StatusBadRequest
	case errors.Is(err, ErrRoomUnusable), errors.Is(err, ErrEngineClosed), errors.Is(err, ErrRoomStopped):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Code is the stable identifier sent to clients in error frames.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrUnknownMethod):
		return "unknown_method"
	case errors.Is(err, ErrMalformedArgs):
		return "malformed_args"
	case errors.Is(err, ErrRoomNotFound):
		return "room_not_found"
	case errors.Is(err, ErrUnauthenticated), errors.Is(err, ErrInvalidToken):
		return "unauthenticated"
	case errors.Is(err, ErrMissingRoomID):
		return "missing_room_id"
	case errors.Is(err, ErrInvalidRoomID):
		return "invalid_room_id"
	case errors.Is(err, ErrRoomUnusable):
		return "room_unusable"
	case errors.Is(err, ErrPersistence):
		return "persistence"
	case errors.Is(err, ErrEngineClosed), errors.Is(err, ErrRoomStopped):
		return "unavailable"
	default:
		return "internal"
	}
}

// FromCode maps a client-facing code back to its sentinel, nil when unknown.
func FromCode(code string) error {
	switch code {
	case "unknown_method":
		return ErrUnknownMethod
	case "malformed_args":
		return ErrMalformedArgs
	case "room_not_found":
		return ErrRoomNotFound
	case "unauthenticated":
		return ErrUnauthenticated
	case "missing_room_id":
		return ErrMissingRoomID
	case "invalid_room_id":
		return ErrInvalidRoomID
	case "room_unusable":
		return ErrRoomUnusable
	case "persistence":
		return ErrPersistence
	case "unavailable":
		return ErrEngineClosed
	default:
		return nil
	}
}
