package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{fmt.Errorf("%w: bad signature", ErrInvalidToken), http.StatusUnauthorized},
		{ErrUnauthenticated, http.StatusUnauthorized},
		{fmt.Errorf("%w: abc", ErrRoomNotFound), http.StatusNotFound},
		{ErrMalformedArgs, http.StatusBadRequest},
		{ErrUnknownMethod, http.StatusBadRequest},
		{fmt.Errorf("%w: \"a:b\"", ErrInvalidRoomID), http.StatusBadRequest},
		{ErrRoomUnusable, http.StatusServiceUnavailable},
		{ErrPersistence, http.StatusInternalServerError},
		{errors.New("anything"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, HTTPStatus(tt.err), "%v", tt.err)
	}
}

func TestIsCallerError(t *testing.T) {
	req := require.New(t)
	req.True(IsCallerError(fmt.Errorf("%w: \"dance\"", ErrUnknownMethod)))
	req.True(IsCallerError(ErrRoomNotFound))
	req.False(IsCallerError(ErrPersistence))
	req.False(IsCallerError(fmt.Errorf("%w: boom", ErrDomainPanic)))
}

func TestCode(t *testing.T) {
	req := require.New(t)
	req.Equal("unknown_method", Code(fmt.Errorf("%w: x", ErrUnknownMethod)))
	req.Equal("malformed_args", Code(ErrMalformedArgs))
	req.Equal("room_unusable", Code(ErrRoomUnusable))
	req.Equal("internal", Code(errors.New("x")))
}

func TestFromCode(t *testing.T) {
	req := require.New(t)
	for _, sentinel := range []error{ErrUnknownMethod, ErrMalformedArgs, ErrRoomNotFound, ErrRoomUnusable, ErrPersistence} {
		req.ErrorIs(FromCode(Code(sentinel)), sentinel)
	}
	req.Nil(FromCode("internal"))
}
