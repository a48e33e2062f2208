package domain

import (
	"fmt"
	"strings"

	"game-lab/errors"

	"github.com/google/uuid"
)

const maxRoomIDLength = 128

// RoomID identifies one independent authoritative room.
type RoomID string

func NewRoomID() RoomID {
	return RoomID(uuid.NewString())
}

func (r RoomID) String() string {
	return string(r)
}

// Validate rejects ids an event log key cannot hold unambiguously.
// ':' separates the parts of a badger log key.
func (r RoomID) Validate() error {
	switch {
	case r == "":
		return errors.ErrMissingRoomID
	case len(r) > maxRoomIDLength:
		return fmt.Errorf("%w: longer than %d bytes", errors.ErrInvalidRoomID, maxRoomIDLength)
	case strings.ContainsAny(string(r), ":/"):
		return fmt.Errorf("%w: %q", errors.ErrInvalidRoomID, string(r))
	}
	return nil
}

// Subscription tells a connection whether it opened the user's subscription
// (and was pushed to) or joined an existing one. Snapshot is the current
// projection for that user either way.
type Subscription struct {
	First    bool
	Snapshot []byte
}
