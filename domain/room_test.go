package domain

import (
	"strings"
	"testing"

	"game-lab/errors"

	"github.com/stretchr/testify/require"
)

func TestNewRoomID_IsUnique(t *testing.T) {
	req := require.New(t)
	seen := make(map[RoomID]struct{})
	for i := 0; i < 100; i++ {
		id := NewRoomID()
		req.Len(id.String(), 36)
		_, dup := seen[id]
		req.False(dup)
		seen[id] = struct{}{}
	}
}

func TestRoomID_Validate(t *testing.T) {
	tests := []struct {
		id   RoomID
		want error
	}{
		{NewRoomID(), nil},
		{"does-not-exist", nil},
		{"", errors.ErrMissingRoomID},
		{"a:b", errors.ErrInvalidRoomID},
		{"lobby:", errors.ErrInvalidRoomID},
		{"a/b", errors.ErrInvalidRoomID},
		{RoomID(strings.Repeat("x", 129)), errors.ErrInvalidRoomID},
	}
	for _, tt := range tests {
		err := tt.id.Validate()
		if tt.want == nil {
			require.NoError(t, err, "%q", tt.id)
			continue
		}
		require.ErrorIs(t, err, tt.want, "%q", tt.id)
		require.True(t, errors.IsCallerError(err))
	}
}

func TestResult_Response(t *testing.T) {
	req := require.New(t)

	req.Nil(Modified().Response())
	req.True(Modified().IsModified())

	req.Nil(Unmodified("").Response())
	req.False(Unmodified("").IsModified())

	rejected := Unmodified("Not your turn")
	req.NotNil(rejected.Response())
	req.Equal("Not your turn", *rejected.Response())
	req.Equal("Not your turn", rejected.Reason())
}
